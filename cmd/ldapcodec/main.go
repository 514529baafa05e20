// Command ldapcodec encodes, decodes and serves LDAP protocol messages.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
