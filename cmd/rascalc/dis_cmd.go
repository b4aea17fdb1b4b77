package main

import (
	"github.com/spf13/cobra"

	"github.com/rascal-lang/rascalc/dis"
)

func (a *app) disCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dis [file]",
		Short: "Print the compiled instructions with their source positions",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) > 0 {
				path = args[0]
			}
			code, err := a.load(cmd.Context(), path)
			if err != nil {
				return err
			}
			return dis.PrintListing(a.stdout, code, a.colorize(a.stdout))
		},
	}
}
