package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/skyfield-labs/aeromap/internal/export"
	"github.com/skyfield-labs/aeromap/internal/model"
)

var (
	discoverAddress string
	discoverName    string
	discoverRadius  float64
	discoverOutput  string
	discoverFormat  string
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find industrial suppliers near a facility address",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		radius := discoverRadius
		if radius <= 0 {
			radius = cfg.Discovery.RadiusMiles
		}

		var format export.Format
		if discoverOutput != "" {
			f, err := export.ParseFormat(discoverFormat)
			if err != nil {
				return err
			}
			format = f
		}

		env, err := initEnv(ctx, false, true)
		if err != nil {
			return err
		}
		defer env.Close()

		svc, err := newDiscovery()
		if err != nil {
			return err
		}

		res, err := env.Resolver.Resolve(ctx, discoverAddress)
		if err != nil {
			return eris.Wrapf(err, "geocode %q", discoverAddress)
		}

		name := discoverName
		if name == "" {
			name = discoverAddress
		}
		facility := model.Facility{
			Name:     name,
			Address:  strings.TrimSpace(discoverAddress),
			Lat:      res.Lat,
			Lon:      res.Lon,
			Provider: res.Provider,
		}

		facilityID, err := env.Store.SaveFacility(ctx, &facility)
		if err != nil {
			return eris.Wrap(err, "save facility")
		}

		suppliers, err := svc.FindSuppliers(ctx, res.Lat, res.Lon, radius)
		if err != nil {
			return err
		}
		if err := env.Store.SaveSuppliers(ctx, facilityID, suppliers); err != nil {
			return eris.Wrap(err, "save suppliers")
		}

		fmt.Printf("%s  (%.5f, %.5f via %s)\n", facility.Name, res.Lat, res.Lon, res.Provider)
		fmt.Printf("%d suppliers within %.0f miles:\n", len(suppliers), radius)
		for _, s := range suppliers {
			fmt.Printf("  %6.2f mi  %.1f  %s\n", s.DistanceMiles, s.Confidence, s.Name)
		}

		if discoverOutput != "" {
			if err := export.Write(format, discoverOutput, facility, suppliers); err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", discoverOutput)
		}

		zap.L().Info("discover: complete",
			zap.String("facility", facility.Name),
			zap.Int("suppliers", len(suppliers)),
		)
		return nil
	},
}

func init() {
	discoverCmd.Flags().StringVarP(&discoverAddress, "address", "a", "", "facility address to search around (required)")
	discoverCmd.Flags().StringVarP(&discoverName, "name", "n", "", "facility name (default the address)")
	discoverCmd.Flags().Float64VarP(&discoverRadius, "radius", "r", 0, "search radius in miles (default from config)")
	discoverCmd.Flags().StringVarP(&discoverOutput, "output", "o", "", "also export results to this path")
	discoverCmd.Flags().StringVar(&discoverFormat, "format", "csv", "export format: csv, geojson, shapefile, xlsx")
	_ = discoverCmd.MarkFlagRequired("address")
	rootCmd.AddCommand(discoverCmd)
}
