package main

import (
	"bufio"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rascal-lang/rascalc"
)

func (a *app) runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Compile and execute a program",
		Long: `Execute a Rascal source file, or a .mepa file produced by compile.
Values for read statements come from stdin unless --input names a file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, args[0])
		},
	}
	cmd.Flags().String("input", "", "file to read program input from")
	cmd.Flags().Int("max-stack", 0, "maximum number of memory cells (0 uses the default)")
	return cmd
}

func (a *app) run(cmd *cobra.Command, path string) error {
	code, err := a.load(cmd.Context(), path)
	if err != nil {
		return err
	}

	var input io.Reader = a.stdin
	if file := a.v.GetString("input"); file != "" {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		defer f.Close()
		input = f
	}

	out := bufio.NewWriter(a.stdout)
	err = rascalc.Run(cmd.Context(), code,
		rascalc.WithInput(input),
		rascalc.WithOutput(out),
		rascalc.WithLogger(a.log),
		rascalc.WithMaxStackDepth(a.v.GetInt("max-stack")))
	if flushErr := out.Flush(); err == nil {
		err = flushErr
	}
	return err
}
