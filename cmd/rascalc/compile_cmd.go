package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/rascal-lang/rascalc"
	"github.com/rascal-lang/rascalc/dis"
)

func (a *app) compileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile [file...]",
		Short: "Compile Rascal sources to MEPA text",
		Long: `Compile each file and write the instructions next to it with the .mepa
extension. With no files the program is read from stdin and written to
out.mepa. Use -o - to print the instructions instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.compile(cmd, args)
		},
	}
	cmd.Flags().StringP("output", "o", "", "output file (single input only)")
	return cmd
}

func (a *app) compile(cmd *cobra.Command, args []string) error {
	output := a.v.GetString("output")
	if output != "" && len(args) > 1 {
		return errors.New("--output requires a single input file")
	}
	if len(args) == 0 {
		args = []string{""}
	}

	var result *multierror.Error
	for _, path := range args {
		if err := a.compileFile(cmd, path, output); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

func (a *app) compileFile(cmd *cobra.Command, path, output string) error {
	name, text, err := a.readSource(path)
	if err != nil {
		return err
	}
	code, err := rascalc.Compile(cmd.Context(), text,
		rascalc.WithFilename(name),
		rascalc.WithLogger(a.log))
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := dis.Print(&buf, code); err != nil {
		return err
	}
	if output == "-" {
		_, err := a.stdout.Write(buf.Bytes())
		return err
	}
	if output == "" {
		output = outputPath(name)
	}
	if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}
	a.log.Info().
		Str("source", name).
		Str("output", output).
		Int("instructions", code.InstructionCount()).
		Msg("compiled")
	return nil
}
