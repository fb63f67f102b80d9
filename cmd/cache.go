package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the geocode cache",
}

var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show cache entry count",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		n, err := st.GeocodeCacheSize(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%d cached addresses (%s)\n", n, cfg.Store.Driver)
		return nil
	},
}

var cacheLookupCmd = &cobra.Command{
	Use:   "lookup <address>",
	Short: "Look up one address in the cache without geocoding",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		address := strings.TrimSpace(strings.Join(args, " "))

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		res, ok, err := st.GetGeocode(ctx, address)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Printf("%q not cached\n", address)
			return nil
		}
		fmt.Printf("%.7f, %.7f  (%s)\n", res.Lat, res.Lon, res.Provider)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatusCmd, cacheLookupCmd)
	rootCmd.AddCommand(cacheCmd)
}
