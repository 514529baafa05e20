// Package config loads the YAML configuration of the ldapcodec server.
package config

import (
	"bytes"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top level configuration document.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Metrics MetricsConfig `yaml:"metrics"`
	Debug   bool          `yaml:"debug"`
}

// ServerConfig describes the LDAP listener.
type ServerConfig struct {
	Address string `yaml:"address"`
	TLSCert string `yaml:"tlsCert"`
	TLSKey  string `yaml:"tlsKey"`

	// Transport modes offered on the listener.
	Plain    bool `yaml:"plain"`
	StartTLS bool `yaml:"startTLS"`
	FullTLS  bool `yaml:"fullTLS"`

	EnableV2    bool `yaml:"enableV2"`
	EnableV3    bool `yaml:"enableV3"`
	EnforceLDAP bool `yaml:"enforceLDAP"`
	Stats       bool `yaml:"stats"`

	// MaxPDUSize is the largest request accepted, in bytes.
	MaxPDUSize int `yaml:"maxPDUSize"`
}

// MetricsConfig describes the Prometheus endpoint.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Address   string `yaml:"address"`
	Path      string `yaml:"path"`
	Namespace string `yaml:"namespace"`
}

// Default returns the configuration used for every key a document omits.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Address:     "127.0.0.1:1389",
			Plain:       true,
			EnableV2:    true,
			EnableV3:    true,
			EnforceLDAP: true,
			Stats:       true,
			MaxPDUSize:  16 << 20,
		},
		Metrics: MetricsConfig{
			Enabled:   false,
			Address:   "127.0.0.1:9389",
			Path:      "/metrics",
			Namespace: "ldapcodec",
		},
	}
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a YAML document over the defaults and validates the
// result. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ValidationError names the offending key.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var metricNamespace = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Validate reports every problem found, joined into one error.
func (c *Config) Validate() error {
	var errs []error
	fail := func(field, format string, args ...interface{}) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	s := &c.Server
	if _, _, err := net.SplitHostPort(s.Address); err != nil {
		fail("server.address", "%v", err)
	}
	if !s.Plain && !s.StartTLS && !s.FullTLS {
		fail("server", "at least one of plain, startTLS and fullTLS must be enabled")
	}
	if (s.TLSCert == "") != (s.TLSKey == "") {
		fail("server.tlsCert", "tlsCert and tlsKey must be set together")
	}
	if (s.StartTLS || s.FullTLS) && s.TLSCert == "" {
		fail("server.tlsCert", "required when startTLS or fullTLS is enabled")
	}
	if !s.EnableV2 && !s.EnableV3 {
		fail("server.enableV3", "at least one protocol version must be enabled")
	}
	if s.MaxPDUSize < 64 {
		fail("server.maxPDUSize", "%d is below the 64 byte minimum", s.MaxPDUSize)
	}

	m := &c.Metrics
	if m.Enabled {
		if !s.Stats {
			fail("metrics.enabled", "requires server.stats")
		}
		if _, _, err := net.SplitHostPort(m.Address); err != nil {
			fail("metrics.address", "%v", err)
		}
		if !strings.HasPrefix(m.Path, "/") {
			fail("metrics.path", "must start with /")
		}
		if m.Namespace != "" && !metricNamespace.MatchString(m.Namespace) {
			fail("metrics.namespace", "%q is not a valid metric name prefix", m.Namespace)
		}
	}
	return errors.Join(errs...)
}

// TLSConfig loads the certificate pair, or returns nil when none is
// configured.
func (c *Config) TLSConfig() (*tls.Config, error) {
	if c.Server.TLSCert == "" {
		return nil, nil
	}
	cert, err := tls.LoadX509KeyPair(c.Server.TLSCert, c.Server.TLSKey)
	if err != nil {
		return nil, fmt.Errorf("load TLS key pair: %w", err)
	}
	return &tls.Config{Certificates: []tls.Certificate{cert}, MinVersion: tls.VersionTLS12}, nil
}
