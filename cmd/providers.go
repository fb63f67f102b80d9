package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/skyfield-labs/aeromap/internal/geocode"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List configured geocoding providers in fallback order",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, descs, err := geocode.BuildChain(chainConfig(cfg))
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "PROVIDER\tCONFIGURED\tRATE LIMIT")
		for _, d := range descs {
			configured := "yes"
			if !d.CredentialPresent {
				configured = "no (skipped)"
			}
			limit := "-"
			if d.RateLimit > 0 {
				limit = d.RateLimit.String() + " between requests"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", d.ID, configured, limit)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(providersCmd)
}
