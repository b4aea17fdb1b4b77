package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/require"
)

const addSource = "program p;\nvar x: integer;\nbegin\n  x := 1 + 2;\n  write(x)\nend."

const addArtifact = `INPP
AMEM 1
CRCT 1
CRCT 2
SOMA
ARMZ 0, 0
CRVL 0, 0
IMPR
DMEM 1
PARA
`

const echoSource = `program echo;
var n: integer;
begin
  read(n);
  while n > 0 do
  begin
    write(n);
    read(n)
  end
end.`

type result struct {
	stdout string
	stderr string
	err    error
	app    *app
}

// workspace changes into a fresh directory with an isolated home directory.
func workspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	homedir.DisableCache = true
	t.Setenv("HOME", t.TempDir())
	t.Chdir(dir)
	return dir
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(name, []byte(content), 0o644))
	return name
}

func execute(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	a := newApp(strings.NewReader(stdin), &stdout, &stderr)
	err := a.execute(append([]string{"--no-color"}, args...))
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err, app: a}
}

func TestCompileWritesArtifactBesideSource(t *testing.T) {
	workspace(t)
	writeFile(t, "add.ras", addSource)

	res := execute(t, "", "compile", "add.ras")
	require.NoError(t, res.err)

	data, err := os.ReadFile("add.mepa")
	require.NoError(t, err)
	require.Equal(t, addArtifact, string(data))
}

func TestCompileFromStdin(t *testing.T) {
	workspace(t)
	res := execute(t, addSource, "compile")
	require.NoError(t, res.err)

	data, err := os.ReadFile("out.mepa")
	require.NoError(t, err)
	require.Equal(t, addArtifact, string(data))
}

func TestCompileToStdout(t *testing.T) {
	workspace(t)
	writeFile(t, "add.ras", addSource)
	res := execute(t, "", "compile", "add.ras", "-o", "-")
	require.NoError(t, res.err)
	require.Equal(t, addArtifact, res.stdout)
}

func TestCompileOutputFlag(t *testing.T) {
	workspace(t)
	writeFile(t, "add.ras", addSource)
	res := execute(t, "", "compile", "add.ras", "-o", "prog.txt")
	require.NoError(t, res.err)
	_, err := os.Stat("prog.txt")
	require.NoError(t, err)

	writeFile(t, "other.ras", addSource)
	res = execute(t, "", "compile", "add.ras", "other.ras", "-o", "prog.txt")
	require.EqualError(t, res.err, "--output requires a single input file")
}

func TestCompileAccumulatesErrors(t *testing.T) {
	workspace(t)
	writeFile(t, "good.ras", addSource)
	writeFile(t, "bad1.ras", "program p;\nbegin\n  y := 1\nend.")
	writeFile(t, "bad2.ras", "program p;\nvar b: boolean;\nbegin\n  if 1 then b := true\nend.")

	res := execute(t, "", "compile", "bad1.ras", "good.ras", "bad2.ras", "missing.ras")
	require.Error(t, res.err)
	var merr *multierror.Error
	require.ErrorAs(t, res.err, &merr)
	require.Len(t, merr.Errors, 3)

	// The good file is still compiled.
	_, err := os.Stat("good.mepa")
	require.NoError(t, err)
	_, err = os.Stat("bad1.mepa")
	require.True(t, os.IsNotExist(err))

	var stderr bytes.Buffer
	res.app.stderr = &stderr
	res.app.report(res.err)
	report := stderr.String()
	require.Contains(t, report, "error[E2003]: 'y' is not defined")
	require.Contains(t, report, "--> bad1.ras:3:3")
	require.Contains(t, report, "error[E2008]")
	require.Contains(t, report, "missing.ras")
}

func TestRunSource(t *testing.T) {
	workspace(t)
	writeFile(t, "echo.ras", echoSource)
	res := execute(t, "3 2 1 0", "run", "echo.ras")
	require.NoError(t, res.err)
	require.Equal(t, "3\n2\n1\n", res.stdout)
}

func TestRunArtifact(t *testing.T) {
	workspace(t)
	writeFile(t, "echo.ras", echoSource)
	require.NoError(t, execute(t, "", "compile", "echo.ras").err)

	res := execute(t, "5 0", "run", "echo.mepa")
	require.NoError(t, res.err)
	require.Equal(t, "5\n", res.stdout)
}

func TestRunInputFile(t *testing.T) {
	workspace(t)
	writeFile(t, "echo.ras", echoSource)
	writeFile(t, "in.txt", "7\n8\n0\n")
	res := execute(t, "", "run", "echo.ras", "--input", "in.txt")
	require.NoError(t, res.err)
	require.Equal(t, "7\n8\n", res.stdout)
}

func TestRunInputFromEnvironment(t *testing.T) {
	workspace(t)
	writeFile(t, "echo.ras", echoSource)
	writeFile(t, "in.txt", "9 0")
	t.Setenv("RASCALC_INPUT", "in.txt")
	res := execute(t, "", "run", "echo.ras")
	require.NoError(t, res.err)
	require.Equal(t, "9\n", res.stdout)
}

func TestRunInputFromConfigFile(t *testing.T) {
	dir := workspace(t)
	writeFile(t, "echo.ras", echoSource)
	input := writeFile(t, filepath.Join(dir, "in.txt"), "4 0")
	writeFile(t, ".rascalc.yaml", "input: "+input+"\n")
	res := execute(t, "", "run", "echo.ras")
	require.NoError(t, res.err)
	require.Equal(t, "4\n", res.stdout)
}

func TestRunRuntimeError(t *testing.T) {
	workspace(t)
	writeFile(t, "div.ras", "program p;\nvar z: integer;\nbegin\n  write(1);\n  write(1 div z)\nend.")
	res := execute(t, "", "run", "div.ras")
	require.Error(t, res.err)
	// Output produced before the failure is kept.
	require.Equal(t, "1\n", res.stdout)

	var stderr bytes.Buffer
	res.app.stderr = &stderr
	res.app.report(res.err)
	require.Contains(t, stderr.String(), "runtime error[E3001]: division by zero")
}

func TestAST(t *testing.T) {
	workspace(t)
	writeFile(t, "add.ras", addSource)
	res := execute(t, "", "ast", "add.ras")
	require.NoError(t, res.err)

	var root ASTNode
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &root))
	require.Equal(t, "Program", root.Type)
	require.Equal(t, "p", root.Value)
	require.Equal(t, "1:1", root.Pos)
	require.Len(t, root.Children, 1)

	block := root.Children[0]
	require.Equal(t, "Block", block.Type)
	require.Len(t, block.Children, 2)
	require.Equal(t, "VarDecl", block.Children[0].Type)
	require.Equal(t, "x: integer", block.Children[0].Value)

	body := block.Children[1]
	require.Equal(t, "Compound", body.Type)
	require.Equal(t, "Assign", body.Children[0].Type)
	require.Equal(t, "Infix", body.Children[0].Children[0].Type)
	require.Equal(t, "+", body.Children[0].Children[0].Value)
	require.Equal(t, "Write", body.Children[1].Type)
}

func TestASTSyntaxError(t *testing.T) {
	workspace(t)
	res := execute(t, "program p begin end.", "ast")
	require.Error(t, res.err)
}

func TestDis(t *testing.T) {
	workspace(t)
	writeFile(t, "add.ras", addSource)
	res := execute(t, "", "dis", "add.ras")
	require.NoError(t, res.err)
	require.Contains(t, res.stdout, "| OFFSET | OPCODE | OPERANDS | SOURCE |")
	require.Contains(t, res.stdout, "|      4 | SOMA   |          | 4:8    |")
}

func TestVersion(t *testing.T) {
	workspace(t)
	res := execute(t, "", "version")
	require.NoError(t, res.err)
	require.Equal(t, "dev\n", res.stdout)

	res = execute(t, "", "version", "--json")
	require.NoError(t, res.err)
	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &info))
	require.Equal(t, "dev", info["version"])
}

func TestLogLevel(t *testing.T) {
	workspace(t)
	writeFile(t, "add.ras", addSource)
	res := execute(t, "", "--log-level", "info", "compile", "add.ras")
	require.NoError(t, res.err)
	require.Contains(t, res.stderr, "compiled")
	require.Contains(t, res.stderr, "add.mepa")

	res = execute(t, "", "--log-level", "loud", "version")
	require.EqualError(t, res.err, `invalid log level "loud"`)
}
