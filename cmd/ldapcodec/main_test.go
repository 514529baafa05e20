package main

import (
	"bytes"
	"context"
	"encoding/hex"
	"io"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	ldap "github.com/clockard/OpenDJ-sub004"
	"github.com/clockard/OpenDJ-sub004/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

const andNotHex = "a014a3070402636e040161a209a3070402736e040162"

func TestFilterParse(t *testing.T) {
	out, err := execute(t, "filter", "parse", "(&(cn=a)(!(sn=b)))")
	require.NoError(t, err)
	assert.Equal(t, "filter: (&(cn=a)(!(sn=b)))\nber:    "+andNotHex+"\n", out)

	_, err = execute(t, "filter", "parse", "(cn=a")
	assert.ErrorContains(t, err, "mismatched parentheses")

	_, err = execute(t, "filter", "parse")
	assert.Error(t, err)
}

func TestFilterDecode(t *testing.T) {
	out, err := execute(t, "filter", "decode", andNotHex)
	require.NoError(t, err)
	assert.Equal(t, "(&(cn=a)(!(sn=b)))\n", out)

	out, err = execute(t, "filter", "decode", "87:0b:6f:62:6a:65:63:74:43:6c:61:73:73")
	require.NoError(t, err)
	assert.Equal(t, "(objectClass=*)\n", out)

	_, err = execute(t, "filter", "decode", "zz")
	assert.ErrorContains(t, err, "invalid hex input")

	// A universal octet string is not a filter.
	_, err = execute(t, "filter", "decode", "040161")
	assert.Error(t, err)
}

func TestMessageDecode(t *testing.T) {
	m := ldap.NewMessage(1, ldap.NewDelRequest("cn=x,dc=example,dc=com"))
	out, err := execute(t, "message", "decode", hex.EncodeToString(m.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, m.String()+"\n", out)

	out, err = execute(t, "message", "decode", "--dump", "30 0c 02 01 01 60 07 02 01 03 04 00 80 00")
	require.NoError(t, err)
	assert.Contains(t, out, "Universal")
	assert.Contains(t, out, "BindRequest(version=3")

	_, err = execute(t, "message", "decode", "300302014100")
	assert.Error(t, err)
}

func TestServeRejectsBadConfig(t *testing.T) {
	_, err := execute(t, "serve", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestRunServer(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Address = "127.0.0.1:0"
	cfg.Metrics.Enabled = true
	cfg.Metrics.Address = "127.0.0.1:0"
	require.NoError(t, cfg.Validate())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ready := make(chan listening, 1)
	done := make(chan error, 1)
	var out bytes.Buffer
	go func() {
		done <- runServer(ctx, cfg, &out, func(l listening) { ready <- l })
	}()

	var addrs listening
	select {
	case addrs = <-ready:
	case err := <-done:
		t.Fatalf("server stopped early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start")
	}
	require.NotNil(t, addrs.Metrics)

	conn, err := net.DialTimeout("tcp", addrs.LDAP.String(), 2*time.Second)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetDeadline(time.Now().Add(5*time.Second)))

	_, err = conn.Write(ldap.NewMessage(1, ldap.NewSimpleBindRequest("", "")).Bytes())
	require.NoError(t, err)
	m, _, err := ldap.ReadMessage(conn)
	require.NoError(t, err)
	bind, ok := m.ProtocolOp.(*ldap.BindResponse)
	require.True(t, ok)
	assert.Equal(t, uint16(ldap.LDAPResultSuccess), bind.ResultCode)

	search := ldap.NewSearchRequest("", ldap.ScopeBaseObject, ldap.NeverDerefAliases, 0, 0, false,
		ldap.NewPresentFilter("objectClass"), []string{"supportedLDAPVersion"})
	_, err = conn.Write(ldap.NewMessage(2, search).Bytes())
	require.NoError(t, err)
	m, _, err = ldap.ReadMessage(conn)
	require.NoError(t, err)
	entry, ok := m.ProtocolOp.(*ldap.SearchResultEntry)
	require.True(t, ok)
	assert.Equal(t, "", entry.DN)
	assert.Equal(t, []ldap.Attribute{ldap.NewAttribute("supportedLDAPVersion", "2", "3")}, entry.Attributes)
	m, _, err = ldap.ReadMessage(conn)
	require.NoError(t, err)
	searchDone, ok := m.ProtocolOp.(*ldap.SearchResultDone)
	require.True(t, ok)
	assert.Equal(t, uint16(ldap.LDAPResultSuccess), searchDone.ResultCode)

	resp, err := http.Get("http://" + addrs.Metrics.String() + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `ldapcodec_ldap_bind_requests_total{scope="ldap listener"} 1`)
	assert.Contains(t, string(body), `ldapcodec_ldap_search_result_entries_total{scope="ldap listener"} 1`)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.Contains(t, out.String(), "ldap listener on 127.0.0.1:")
}

func TestRootDSEOnlyAtTheRoot(t *testing.T) {
	cfg := config.Default()
	cfg.Server.StartTLS = true
	dse := rootDSE{cfg: cfg}

	res, err := dse.Search(ldap.BindSpec{}, ldap.NewSearchRequest("dc=example,dc=com", ldap.ScopeBaseObject,
		ldap.NeverDerefAliases, 0, 0, false, ldap.NewPresentFilter("objectClass"), nil), nil)
	require.NoError(t, err)
	assert.Equal(t, uint16(ldap.LDAPResultNoSuchObject), res.ResultCode)
	assert.Empty(t, res.Entries)

	res, err = dse.Search(ldap.BindSpec{}, ldap.NewSearchRequest("", ldap.ScopeBaseObject,
		ldap.NeverDerefAliases, 0, 0, false, ldap.NewPresentFilter("objectClass"), nil), nil)
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, []string{ldap.OIDStartTLS}, res.Entries[0].GetAttributeValues("supportedExtension"))
}
