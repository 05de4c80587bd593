package app

import (
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"gtile/core/builder"
	"gtile/core/errs"
	"gtile/internal/version"
)

func newBuildCmd(e *env) *cobra.Command {
	var (
		reference, outPath string
		cutoff, tileLen    int
	)
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a tile index from a reference FASTA",
		Example: `  gtile build --reference hg38.fa.gz --output hg38.tiles.tsv.gz
  gtile build --reference ref.fa --output ref.tsv.gz --positionsCutoff 500`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if reference == "" || outPath == "" {
				return errs.Configf("--reference and --output are required")
			}
			if cmd.Flags().Changed("positionsCutoff") {
				e.cfg.PositionsCutoff = cutoff
			}
			if cmd.Flags().Changed("tile-length") {
				e.cfg.TileLength = tileLen
			}
			if err := e.cfg.Validate(); err != nil {
				return err
			}
			bc := e.cfg.BuilderConfig()
			bc.ToolVersion = version.Version
			bc.Logger = e.logger()

			sum, err := builder.BuildFile(cmd.Context(), bc, reference, outPath)
			if err != nil {
				return err
			}
			e.log.Info("build finished",
				"output", outPath,
				"contigs", sum.Contigs,
				"bases", humanize.Comma(int64(sum.Bases)),
				"tiles", humanize.Comma(int64(sum.Tiles)))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&reference, "reference", "r", "", "reference FASTA (plain or gzip, '-' for stdin)")
	f.StringVarP(&outPath, "output", "o", "", "index output path (must end in .gz)")
	f.IntVar(&cutoff, "positionsCutoff", builder.DefaultPositionsCutoff, "positions kept per tile before it becomes count-only")
	f.IntVarP(&tileLen, "tile-length", "k", 13, "tile length (1..32)")
	return cmd
}
