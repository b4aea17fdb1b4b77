package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rascal-lang/rascalc"
	"github.com/rascal-lang/rascalc/bytecode"
	"github.com/rascal-lang/rascalc/dis"
)

const (
	sourceExt   = ".ras"
	artifactExt = ".mepa"
	stdinName   = "<stdin>"
)

// readSource reads the named file, or stdin when path is empty or "-".
func (a *app) readSource(path string) (name, text string, err error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			return "", "", err
		}
		return stdinName, string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", err
	}
	return path, string(data), nil
}

// load returns executable code for path. Files ending in .mepa are parsed
// as MEPA text; anything else is compiled as Rascal source.
func (a *app) load(ctx context.Context, path string) (*bytecode.Code, error) {
	name, text, err := a.readSource(path)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(name), artifactExt) {
		code, err := dis.ParseString(text)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return code, nil
	}
	return rascalc.Compile(ctx, text,
		rascalc.WithFilename(name),
		rascalc.WithLogger(a.log))
}

// outputPath picks where the compiled artifact for input is written.
func outputPath(input string) string {
	if input == stdinName {
		return "out" + artifactExt
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + artifactExt
}
