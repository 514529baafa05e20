package main

import (
	"fmt"

	ldap "github.com/clockard/OpenDJ-sub004"
	ber "github.com/go-asn1-ber/asn1-ber"
	"github.com/spf13/cobra"
)

func newMessageCmd() *cobra.Command {
	var dump bool
	decode := &cobra.Command{
		Use:   "decode <hex>",
		Short: "Print the LDAP message held in a BER encoding",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := decodeHex(args[0])
			if err != nil {
				return err
			}
			packet, err := ldap.DecodeElement(b)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if dump {
				ber.WritePacket(out, packet)
			}
			m, err := ldap.DecodeMessage(packet)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, m)
			return nil
		},
	}
	decode.Flags().BoolVar(&dump, "dump", false, "Also print the BER element tree")

	cmd := &cobra.Command{
		Use:   "message",
		Short: "Decode LDAP messages",
	}
	cmd.AddCommand(decode)
	return cmd
}
