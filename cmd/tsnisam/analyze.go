package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"TSNiSAM/internal/notifier"
	"TSNiSAM/internal/render"
	"TSNiSAM/internal/scheduler"
	"TSNiSAM/internal/service"

	"github.com/spf13/cobra"
)

const commandTimeout = 2 * time.Minute

type rangeFlags struct {
	start, end string
}

func (r *rangeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&r.start, "start", "", "first day, YYYY-MM-DD (default from config)")
	cmd.Flags().StringVar(&r.end, "end", "", "last day, YYYY-MM-DD (default today)")
}

func (r *rangeFlags) resolve(svc *service.AnalysisService) (time.Time, time.Time, error) {
	start, end := svc.DefaultRange()
	var err error
	if r.start != "" {
		if start, err = time.Parse(time.DateOnly, r.start); err != nil {
			return start, end, fmt.Errorf("--start: %w", err)
		}
	}
	if r.end != "" {
		if end, err = time.Parse(time.DateOnly, r.end); err != nil {
			return start, end, fmt.Errorf("--end: %w", err)
		}
	}
	return start, end, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newIndicatorsCmd(cfgPath *string) *cobra.Command {
	var rf rangeFlags
	cmd := &cobra.Command{
		Use:     "indicators <symbol>",
		Short:   "Print the indicator set for a symbol as JSON",
		Example: "  tsnisam indicators TCS.NS --start 2023-01-01",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()
			start, end, err := rf.resolve(a.service)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()
			res, err := a.service.Indicators(ctx, strings.ToUpper(args[0]), start, end, nil)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}
	rf.register(cmd)
	return cmd
}

func newSignalCmd(cfgPath *string) *cobra.Command {
	var rf rangeFlags
	cmd := &cobra.Command{
		Use:   "signal <symbol>",
		Short: "Print the scored signal for a symbol as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()
			start, end, err := rf.resolve(a.service)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()
			sig, err := a.service.Signal(ctx, strings.ToUpper(args[0]), start, end)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), sig)
		},
	}
	rf.register(cmd)
	return cmd
}

func newSimulateCmd(cfgPath *string) *cobra.Command {
	var (
		rf         rangeFlags
		paths      int
		days       int
		drift      float64
		volatility float64
		seed       uint64
		summary    bool
		pngPath    string
	)
	cmd := &cobra.Command{
		Use:   "simulate <symbol>",
		Short: "Simulate future price paths from the last close",
		Example: `  tsnisam simulate RELIANCE.NS --paths 1000 --days 60 --summary
  tsnisam simulate TCS.NS --seed 42 --png tcs.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()
			start, end, err := rf.resolve(a.service)
			if err != nil {
				return err
			}

			req := service.SimulationRequest{
				Symbol: strings.ToUpper(args[0]),
				Start:  start,
				End:    end,
			}
			if cmd.Flags().Changed("paths") {
				req.Paths = &paths
			}
			if cmd.Flags().Changed("days") {
				req.Days = &days
			}
			if cmd.Flags().Changed("drift") {
				req.Drift = &drift
			}
			if cmd.Flags().Changed("volatility") {
				req.Volatility = &volatility
			}
			if cmd.Flags().Changed("seed") {
				req.Seed = &seed
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()
			res, err := a.service.Simulate(ctx, req)
			if err != nil {
				return err
			}

			if pngPath != "" {
				f, err := os.Create(pngPath)
				if err != nil {
					return err
				}
				if err := render.Simulation(f, res.Symbol, res.Paths, res.Summary); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
			}
			if summary {
				res.Paths.Paths = nil
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}
	rf.register(cmd)
	cmd.Flags().IntVar(&paths, "paths", 0, "number of paths (default from config)")
	cmd.Flags().IntVar(&days, "days", 0, "horizon in trading days (default from config)")
	cmd.Flags().Float64Var(&drift, "drift", 0, "daily drift (default estimated from history)")
	cmd.Flags().Float64Var(&volatility, "volatility", 0, "daily volatility (default estimated from history)")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed for reproducible paths")
	cmd.Flags().BoolVar(&summary, "summary", false, "omit the raw paths from the output")
	cmd.Flags().StringVar(&pngPath, "png", "", "also draw the paths to this PNG file")
	return cmd
}

func newDigestCmd(cfgPath *string) *cobra.Command {
	var send bool
	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Compute the daily digest; print it or send it to Telegram",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()
			if send {
				return scheduler.NewScheduler(ctx, a.service, a.notifier()).RunDigestNow("manual")
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), notifier.FormatDigest(a.service.Digest(ctx), time.Now()))
			return err
		},
	}
	cmd.Flags().BoolVar(&send, "send", false, "send via Telegram instead of printing")
	return cmd
}
