package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/skyfield-labs/aeromap/internal/export"
	"github.com/skyfield-labs/aeromap/internal/model"
)

var (
	exportFacility string
	exportOutput   string
	exportFormat   string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a stored facility's suppliers to a file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		format, err := export.ParseFormat(exportFormat)
		if err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		facilities, err := st.ListFacilities(ctx)
		if err != nil {
			return err
		}

		if exportFacility == "" {
			if len(facilities) == 0 {
				return eris.New("no facilities stored, run discover first")
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tADDRESS")
			for _, f := range facilities {
				fmt.Fprintf(w, "%s\t%s\t%s\n", f.ID, f.Name, f.Address)
			}
			_ = w.Flush()
			return eris.New("pass --facility with an id or name from the list above")
		}

		var facility *model.Facility
		for i := range facilities {
			if facilities[i].ID == exportFacility || facilities[i].Name == exportFacility {
				facility = &facilities[i]
				break
			}
		}
		if facility == nil {
			return eris.Errorf("facility %q not found", exportFacility)
		}

		suppliers, err := st.ListSuppliers(ctx, facility.ID)
		if err != nil {
			return err
		}

		if err := export.Write(format, exportOutput, *facility, suppliers); err != nil {
			return err
		}
		fmt.Printf("Wrote %d suppliers to %s\n", len(suppliers), exportOutput)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFacility, "facility", "", "facility id or name (empty lists facilities)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "suppliers.csv", "output path")
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "export format: csv, geojson, shapefile, xlsx")
	rootCmd.AddCommand(exportCmd)
}
