package main

import (
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"

	"github.com/spf13/cobra"
)

var version = "dev" // Will be set by build flags

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "ldapcodec",
		Version: version,
		Short:   "LDAP protocol codec toolbox",
		Long: `ldapcodec parses and encodes RFC 4515 search filters, decodes LDAP messages
from their BER form and runs a small LDAP listener that reports its
statistics to Prometheus.`,
		Example: `# Show the BER encoding of a filter
	ldapcodec filter parse '(&(objectClass=person)(cn=Bab*))'

	# Decode a captured message
	ldapcodec message decode '30 0c 02 01 01 60 07 02 01 03 04 00 80 00'

	# Serve with a configuration file
	ldapcodec serve --config ldapcodec.yaml`,
		SilenceUsage: true,
	}
	root.AddCommand(newFilterCmd(), newMessageCmd(), newServeCmd())
	return root
}

// decodeHex accepts hex dumps with whitespace or colons between bytes.
func decodeHex(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == ':' {
			return -1
		}
		return r
	}, s)
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex input: %w", err)
	}
	return b, nil
}
