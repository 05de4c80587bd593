package app

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"gtile/core/errs"
	"gtile/core/loader"
	"gtile/internal/metrics"
	"gtile/internal/output"
	"gtile/pkg/api"
)

func newLoadCmd(e *env) *cobra.Command {
	var (
		input, metricsFile string
		threads, queue     int
		asJSON             bool
	)
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load a whole index and report its statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if input == "" {
				return errs.Configf("--input is required")
			}
			if cmd.Flags().Changed("threads") {
				e.cfg.Threads = threads
			}
			if cmd.Flags().Changed("queue-size") {
				e.cfg.QueueSize = queue
			}
			if err := e.cfg.Validate(); err != nil {
				return err
			}
			opts := e.cfg.LoaderOptions()
			opts.Logger = e.log.WithIndex(input).Logger
			obs := metrics.NewPrometheusObserver()
			opts.Metrics = obs

			res, err := loader.Load(cmd.Context(), input, opts)
			if err != nil {
				return err
			}
			if metricsFile != "" {
				if err := obs.WriteTextfile(metricsFile); err != nil {
					return err
				}
			}
			s := res.Stats
			v := api.LoadStatsV1{
				Index:        input,
				TileLength:   res.Header.TileLength,
				Contigs:      res.Coords.Len(),
				Lines:        s.Lines,
				Entries:      s.Inserted,
				CountOnly:    s.CountOnly,
				InvalidTiles: s.InvalidTiles,
				Malformed:    s.Malformed,
				Duplicates:   s.Duplicates,
			}
			if asJSON {
				return output.EncodePretty(e.stdout, v)
			}
			tw := tabwriter.NewWriter(e.stdout, 0, 0, 2, ' ', 0)
			rows := [][2]string{
				{"index", v.Index},
				{"tile length", fmt.Sprint(v.TileLength)},
				{"contigs", humanize.Comma(int64(v.Contigs))},
				{"genome size", humanize.Comma(int64(res.Coords.Total()))},
				{"lines", humanize.Comma(int64(v.Lines))},
				{"entries", humanize.Comma(int64(v.Entries))},
				{"count-only", humanize.Comma(int64(v.CountOnly))},
				{"invalid tiles", humanize.Comma(int64(v.InvalidTiles))},
				{"malformed", humanize.Comma(int64(v.Malformed))},
				{"duplicates", humanize.Comma(int64(v.Duplicates))},
			}
			for _, r := range rows {
				fmt.Fprintf(tw, "%s:\t%s\n", r[0], r[1])
			}
			return tw.Flush()
		},
	}
	f := cmd.Flags()
	f.StringVarP(&input, "input", "i", "", "tile index (.gz)")
	f.IntVarP(&threads, "threads", "t", 1, "load workers (0 = all CPUs)")
	f.IntVar(&queue, "queue-size", loader.DefaultQueueSize, "lines buffered between reader and workers")
	f.StringVar(&metricsFile, "metrics-file", "", "write load metrics in Prometheus text format")
	f.BoolVar(&asJSON, "json", false, "print statistics as JSON")
	return cmd
}
