package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ldap "github.com/clockard/OpenDJ-sub004"
	"github.com/clockard/OpenDJ-sub004/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var cfgFile string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run an LDAP listener that answers root DSE searches",
		Long: `serve accepts anonymous binds and answers base searches of the root DSE.
Every other operation gets the default refusal. With metrics enabled the
listener statistics are exported on a Prometheus endpoint.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if cfgFile != "" {
				var err error
				if cfg, err = config.Load(cfgFile); err != nil {
					return err
				}
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, cfg, cmd.OutOrStdout(), nil)
		},
	}
	cmd.Flags().StringVarP(&cfgFile, "config", "c", "", "Configuration file path")
	return cmd
}

// listening holds the bound addresses. Metrics is nil when disabled.
type listening struct {
	LDAP    net.Addr
	Metrics net.Addr
}

// runServer serves until ctx is done. ready, when set, is called once
// both listeners are bound.
func runServer(ctx context.Context, cfg *config.Config, out io.Writer, ready func(listening)) error {
	tlsConfig, err := cfg.TLSConfig()
	if err != nil {
		return err
	}

	s := ldap.NewServer()
	s.TLSConfig = tlsConfig
	s.CryptoNone = cfg.Server.Plain
	s.CryptoStartTLS = cfg.Server.StartTLS
	s.CryptoFullTLS = cfg.Server.FullTLS
	s.EnableV2 = cfg.Server.EnableV2
	s.EnableV3 = cfg.Server.EnableV3
	s.EnforceLDAP = cfg.Server.EnforceLDAP
	s.MaxPDUSize = cfg.Server.MaxPDUSize
	s.Debug.Enable(cfg.Debug)
	s.SetStats(cfg.Server.Stats)
	s.BindFunc("", anonymousBinder{})
	s.SearchFunc("", rootDSE{cfg: cfg})

	ln, err := net.Listen("tcp", cfg.Server.Address)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	addrs := listening{LDAP: ln.Addr()}

	var metrics *http.Server
	if cfg.Metrics.Enabled {
		mln, err := net.Listen("tcp", cfg.Metrics.Address)
		if err != nil {
			ln.Close()
			return fmt.Errorf("listen metrics: %w", err)
		}
		addrs.Metrics = mln.Addr()

		registry := prometheus.NewRegistry()
		registry.MustRegister(ldap.NewStatisticsCollector(s.Stats(), cfg.Metrics.Namespace))
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, promhttp.HandlerFor(registry, promhttp.HandlerOpts{
			EnableOpenMetrics: true,
		}))
		metrics = &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
		go func() {
			if err := metrics.Serve(mln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("metrics server error: %v", err)
			}
		}()
		fmt.Fprintf(out, "metrics on http://%s%s\n", mln.Addr(), cfg.Metrics.Path)
	}
	fmt.Fprintf(out, "ldap listener on %s\n", ln.Addr())
	if ready != nil {
		ready(addrs)
	}

	go func() {
		<-ctx.Done()
		s.Quit <- true
	}()
	err = s.Serve(ln)

	if metrics != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metrics.Shutdown(shutdownCtx); err != nil {
			log.Printf("metrics shutdown: %v", err)
		}
	}
	fmt.Fprintln(out, "stopped")
	return err
}

type anonymousBinder struct{}

func (anonymousBinder) Bind(bind ldap.BindSpec, req *ldap.BindRequest, conn net.Conn) (uint16, error) {
	if req.AuthType == ldap.LDAPBindAuthSimple && req.DN == "" && req.Password == "" {
		return ldap.LDAPResultSuccess, nil
	}
	return ldap.LDAPResultInvalidCredentials, nil
}

// rootDSE publishes what the listener supports. Only the base object
// search of the empty DN finds it.
type rootDSE struct {
	cfg *config.Config
}

func (d rootDSE) Search(bind ldap.BindSpec, req *ldap.SearchRequest, conn net.Conn) (ldap.ServerSearchResult, error) {
	if req.BaseDN != "" || req.Scope != ldap.ScopeBaseObject {
		return ldap.ServerSearchResult{ResultCode: ldap.LDAPResultNoSuchObject}, nil
	}

	var versions []string
	if d.cfg.Server.EnableV2 {
		versions = append(versions, "2")
	}
	if d.cfg.Server.EnableV3 {
		versions = append(versions, "3")
	}
	attrs := []ldap.Attribute{
		ldap.NewAttribute("objectClass", "top", "ds-root-dse"),
		ldap.NewAttribute("supportedLDAPVersion", versions...),
		ldap.NewAttribute("vendorName", "ldapcodec"),
		ldap.NewAttribute("vendorVersion", version),
	}
	if d.cfg.Server.StartTLS {
		attrs = append(attrs, ldap.NewAttribute("supportedExtension", ldap.OIDStartTLS))
	}
	entry := ldap.NewSearchResultEntry("", attrs...)
	return ldap.ServerSearchResult{
		Entries:    []*ldap.SearchResultEntry{entry},
		ResultCode: ldap.LDAPResultSuccess,
	}, nil
}
