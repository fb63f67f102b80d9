package main

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/skyfield-labs/aeromap/internal/geocode/provider"
)

var (
	batchFile    string
	batchOutput  string
	batchNoCache bool
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Geocode a file of addresses, one per line",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		addresses, err := readAddresses(batchFile)
		if err != nil {
			return err
		}
		if len(addresses) == 0 {
			return eris.Errorf("no addresses in %s", batchFile)
		}

		env, err := initEnv(ctx, false, !batchNoCache)
		if err != nil {
			return err
		}
		defer env.Close()

		results := processBatch(ctx, addresses, cfg.Batch.MaxConcurrent, env.Resolver.Resolve)

		out := os.Stdout
		if batchOutput != "" {
			f, err := os.Create(batchOutput)
			if err != nil {
				return eris.Wrapf(err, "create %s", batchOutput)
			}
			defer f.Close()
			out = f
		}
		return writeBatchResults(out, results)
	},
}

func init() {
	batchCmd.Flags().StringVarP(&batchFile, "file", "f", "", "input file, one address per line (required)")
	batchCmd.Flags().StringVarP(&batchOutput, "output", "o", "", "output CSV path (default stdout)")
	batchCmd.Flags().BoolVar(&batchNoCache, "no-cache", false, "bypass the geocode cache")
	_ = batchCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(batchCmd)
}

// batchResult is one address's outcome, successful or not.
type batchResult struct {
	Address string
	Res     provider.Result
	Err     error
}

type resolveFunc func(ctx context.Context, address string) (provider.Result, error)

// processBatch resolves addresses concurrently, preserving input order in
// the results. Failures are recorded, never fatal to the batch.
func processBatch(ctx context.Context, addresses []string, maxConcurrent int, resolve resolveFunc) []batchResult {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	bar := progressbar.NewOptions(len(addresses),
		progressbar.OptionSetDescription("Geocoding"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	results := make([]batchResult, len(addresses))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)
	for i, addr := range addresses {
		g.Go(func() error {
			res, err := resolve(gctx, addr)
			results[i] = batchResult{Address: addr, Res: res, Err: err}
			_ = bar.Add(1)
			return nil
		})
	}
	_ = g.Wait()
	_ = bar.Finish()

	var failed int
	for _, r := range results {
		if r.Err != nil {
			failed++
			zap.L().Warn("batch: address failed",
				zap.String("address", r.Address),
				zap.Error(r.Err),
			)
		}
	}
	zap.L().Info("batch: complete",
		zap.Int("total", len(results)),
		zap.Int("failed", failed),
	)
	return results
}

func readAddresses(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	var addresses []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			addresses = append(addresses, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, eris.Wrapf(err, "read %s", path)
	}
	return addresses, nil
}

func writeBatchResults(out *os.File, results []batchResult) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"address", "lat", "lon", "provider", "error"}); err != nil {
		return eris.Wrap(err, "write header")
	}
	for _, r := range results {
		row := []string{r.Address, "", "", "", ""}
		if r.Err != nil {
			row[4] = r.Err.Error()
		} else {
			row[1] = strconv.FormatFloat(r.Res.Lat, 'f', -1, 64)
			row[2] = strconv.FormatFloat(r.Res.Lon, 'f', -1, 64)
			row[3] = r.Res.Provider
		}
		if err := w.Write(row); err != nil {
			return eris.Wrap(err, "write row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrap(err, "flush output")
	}

	var ok int
	for _, r := range results {
		if r.Err == nil {
			ok++
		}
	}
	fmt.Fprintf(os.Stderr, "Resolved %d/%d addresses\n", ok, len(results))
	return nil
}
