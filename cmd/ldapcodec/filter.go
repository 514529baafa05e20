package main

import (
	"encoding/hex"
	"fmt"

	ldap "github.com/clockard/OpenDJ-sub004"
	"github.com/spf13/cobra"
)

func newFilterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Parse and decode search filters",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "parse <filter>",
		Short: "Print the normalized filter and its BER encoding",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := ldap.ParseFilter(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "filter: %s\n", f)
			fmt.Fprintf(out, "ber:    %s\n", hex.EncodeToString(f.Encode().Bytes()))
			return nil
		},
	}, &cobra.Command{
		Use:   "decode <hex>",
		Short: "Print the filter held in a BER encoding",
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
			f, err := ldap.DecodeFilter(packet)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), f)
			return nil
		},
	})
	return cmd
}
