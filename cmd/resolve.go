package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skyfield-labs/aeromap/internal/geocode"
)

var (
	resolveVerbose bool
	resolveNoCache bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <address>",
	Short: "Geocode a single address through the provider chain",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		address := strings.Join(args, " ")

		env, err := initEnv(ctx, resolveVerbose, !resolveNoCache)
		if err != nil {
			return err
		}
		defer env.Close()

		res, err := env.Resolver.Resolve(ctx, address)
		if err != nil {
			var exhausted *geocode.ExhaustedError
			if errors.As(err, &exhausted) {
				return fmt.Errorf("no provider could resolve %q (tried %d): %w", address, exhausted.Attempts, exhausted.Last)
			}
			return err
		}

		fmt.Printf("%.7f, %.7f  (%s)\n", res.Lat, res.Lon, res.Provider)
		return nil
	},
}

func init() {
	resolveCmd.Flags().BoolVarP(&resolveVerbose, "verbose", "v", false, "log each provider attempt")
	resolveCmd.Flags().BoolVar(&resolveNoCache, "no-cache", false, "bypass the geocode cache")
	rootCmd.AddCommand(resolveCmd)
}
