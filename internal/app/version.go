package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"gtile/internal/version"
)

func newVersionCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show gtile version and build information",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			_, err := fmt.Fprint(e.stdout, version.String())
			return err
		},
	}
}
