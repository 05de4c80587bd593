package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gtile/core/coords"
	"gtile/core/errs"
	"gtile/core/index"
	"gtile/core/packed"
	"gtile/internal/output"
)

func newLocateCmd(e *env) *cobra.Command {
	var (
		input, fai, contig string
		position, local    uint64
		length             uint64
		reverse, asJSON    bool
	)
	cmd := &cobra.Command{
		Use:   "locate",
		Short: "Translate between genome-wide and contig coordinates of an index",
		Example: `  gtile locate --input idx.tsv.gz --position 16
  gtile locate --input idx.tsv.gz --contig chr2 --local 2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if (input == "") == (fai == "") {
				return errs.Configf("give exactly one of --input or --fai")
			}
			cm, err := openCoordinateMap(input, fai)
			if err != nil {
				return err
			}
			cm = cm.WithLogger(e.logger())
			if input == "" {
				input = fai
			}

			if contig != "" {
				g, ok := cm.ToGenome(contig, local)
				if !ok {
					return errs.NotFoundf("%s:%d is not in %s", contig, local, input)
				}
				_, err := fmt.Fprintln(e.stdout, g)
				return err
			}
			if !cmd.Flags().Changed("position") {
				return errs.Configf("give --position, or --contig with --local")
			}
			p, err := packed.Encode(packed.Hit{Coord: position, Reverse: reverse})
			if err != nil {
				return err
			}
			loc, err := cm.FromGenome(p, length, coords.Buffer{})
			if err != nil {
				return err
			}
			if asJSON {
				return output.EncodePretty(e.stdout, output.ToAPILocus(position, loc))
			}
			_, err = fmt.Fprintf(e.stdout, "%s\t%d\t%d\t%s\n", loc.Contig, loc.Start, loc.End, loc.Strand)
			return err
		},
	}
	f := cmd.Flags()
	f.StringVarP(&input, "input", "i", "", "tile index (.gz); only its header is read")
	f.Uint64VarP(&position, "position", "p", 0, "genome-wide coordinate to decode")
	f.Uint64VarP(&length, "length", "l", 0, "span of the decoded locus [1]")
	f.BoolVar(&reverse, "reverse", false, "report the locus on the reverse strand")
	f.StringVar(&fai, "fai", "", "samtools .fai of the reference, instead of --input")
	f.StringVarP(&contig, "contig", "c", "", "contig name to encode")
	f.Uint64Var(&local, "local", 1, "1-based position within --contig")
	f.BoolVar(&asJSON, "json", false, "print the locus as JSON")
	return cmd
}

// openCoordinateMap reads contig ranges from an index header or a .fai.
func openCoordinateMap(indexPath, faiPath string) (*coords.Map, error) {
	if faiPath != "" {
		f, err := os.Open(faiPath)
		if err != nil {
			return nil, errs.IO(err, "open", faiPath)
		}
		defer f.Close()
		return coords.BuildFromFai(f)
	}
	r, err := index.Open(indexPath)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return r.Header.CoordinateMap()
}
