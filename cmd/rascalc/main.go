// Command rascalc compiles Rascal programs into MEPA instructions and runs
// them on the bundled virtual machine.
package main

import (
	"os"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	a := newApp(os.Stdin, os.Stdout, os.Stderr)
	if err := a.execute(os.Args[1:]); err != nil {
		a.report(err)
		os.Exit(1)
	}
}
