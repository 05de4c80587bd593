package app

import (
	"bufio"
	"context"

	"github.com/spf13/cobra"

	"gtile/core/errs"
	"gtile/core/fasta"
	"gtile/core/query"
	"gtile/internal/metrics"
	"gtile/internal/writers"
)

func newQueryCmd(e *env) *cobra.Command {
	var (
		input, seq, name, queriesPath string
		format, metricsFile           string
		noHeader                      bool
		threads, minSupport           int
		slack, bufLeft, bufRight      uint64
	)
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Propose candidate loci for query sequences",
		Example: `  gtile query --input hg38.tiles.tsv.gz --sequence ACGT... --name probe1
  gtile query --input hg38.tiles.tsv.gz --queries reads.fa --format jsonl`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if input == "" {
				return errs.Configf("--input is required")
			}
			if (seq == "") == (queriesPath == "") {
				return errs.Configf("give exactly one of --sequence or --queries")
			}
			fl := cmd.Flags()
			if fl.Changed("threads") {
				e.cfg.Threads = threads
			}
			if fl.Changed("min-support") {
				e.cfg.MinSupport = minSupport
			}
			if fl.Changed("slack") {
				e.cfg.DiagonalSlack = slack
			}
			if fl.Changed("buffer-left") {
				e.cfg.BufferLeft = bufLeft
			}
			if fl.Changed("buffer-right") {
				e.cfg.BufferRight = bufRight
			}
			if fl.Changed("format") {
				e.cfg.OutputFormat = format
			}
			if err := e.cfg.Validate(); err != nil {
				return err
			}

			queries, err := readQueries(cmd.Context(), seq, name, queriesPath)
			if err != nil {
				return err
			}
			opts := e.cfg.LoaderOptions()
			opts.Logger = e.log.WithIndex(input).Logger
			var obs *metrics.PrometheusObserver
			if metricsFile != "" {
				obs = metrics.NewPrometheusObserver()
				opts.Metrics = obs
			}
			qc := e.cfg.QueryConfig()
			qc.Logger = e.logger()

			rep, err := query.Run(cmd.Context(), input, queries, qc, opts)
			if err != nil {
				return err
			}
			if obs != nil {
				if err := obs.WriteTextfile(metricsFile); err != nil {
					return err
				}
			}

			out := bufio.NewWriter(e.stdout)
			in, done, err := writers.StartCandidateWriter(out, e.cfg.OutputFormat, !noHeader, 0)
			if err != nil {
				return err
			}
			for _, c := range rep.Candidates {
				in <- c
			}
			close(in)
			if err := <-done; err != nil {
				return err
			}
			if err := out.Flush(); err != nil {
				return err
			}
			for _, q := range rep.Unmatched {
				e.log.Warn("no candidates", "query", q)
			}
			e.log.Info("query finished",
				"queries", len(queries),
				"candidates", len(rep.Candidates),
				"unmatched", len(rep.Unmatched),
				"tiles_loaded", rep.Load.Inserted)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&input, "input", "i", "", "tile index (.gz)")
	f.StringVarP(&seq, "sequence", "s", "", "query sequence")
	f.StringVarP(&name, "name", "n", "query", "name of --sequence")
	f.StringVarP(&queriesPath, "queries", "q", "", "query FASTA (plain or gzip, '-' for stdin)")
	f.StringVarP(&format, "format", "f", "text", "output format: text|json|jsonl")
	f.BoolVar(&noHeader, "no-header", false, "omit the TSV header row")
	f.IntVarP(&threads, "threads", "t", 1, "index load workers (0 = all CPUs)")
	f.IntVar(&minSupport, "min-support", query.DefaultMinSupport, "minimum distinct tiles per candidate")
	f.Uint64Var(&slack, "slack", query.DefaultDiagonalSlack, "max anchor distance within one candidate")
	f.Uint64Var(&bufLeft, "buffer-left", 0, "widen candidates to the left by this many bases")
	f.Uint64Var(&bufRight, "buffer-right", 0, "widen candidates to the right by this many bases")
	f.StringVar(&metricsFile, "metrics-file", "", "write load metrics in Prometheus text format")
	return cmd
}

func readQueries(ctx context.Context, seq, name, path string) ([]query.Sequence, error) {
	if seq != "" {
		return []query.Sequence{{Name: name, Seq: []byte(seq)}}, nil
	}
	recs, err := fasta.ReadAll(ctx, path)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, errs.Configf("no sequences in %s", path)
	}
	out := make([]query.Sequence, 0, len(recs))
	for _, r := range recs {
		out = append(out, query.Sequence{Name: r.ID, Seq: r.Seq})
	}
	return out, nil
}
