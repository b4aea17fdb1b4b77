// Package compiler checks a Rascal abstract syntax tree (AST) and translates
// it into MEPA instructions in a single pass.
//
// # Scopes and frames
//
// At most two scopes are active at once: the program scope (lexical level
// 0) and the body of one procedure or function (level 1). Variables are
// addressed by (level, index). Locals take indexes 0, 1, 2... in
// declaration order. Parameters take negative indexes relative to the frame
// built by CHPR and ENPR:
//
//	index of parameter i (0-based) of n = -3 - (n - i)
//
// so the first parameter is at -(n+3) and the last at -4. A function's
// result lives one slot below its first parameter, at -(n+4). The caller
// reserves that slot with AMEM 1 before pushing the arguments.
//
// # Callables
//
// A procedure or function is declared in two steps. Before its body is
// analyzed the compiler checks that the name is free in the enclosing scope,
// allocates the callable's label, pushes the body scope, declares the
// parameters and then declares the callable itself in the body scope, so
// that the body can call itself. After the body has been analyzed and its
// scope popped, the same descriptor is declared in the enclosing scope for
// use by the rest of the program.
//
// Inside a function body, assigning to the function's own name stores into
// the result slot. The function being analyzed is carried explicitly down
// the walk rather than kept in scope state.
//
// # Errors
//
// Analysis stops at the first error. Errors are values from the errors
// package that describe the problem and where it was found; no code is
// returned alongside them.
package compiler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rascal-lang/rascalc/ast"
	"github.com/rascal-lang/rascalc/bytecode"
	rerrors "github.com/rascal-lang/rascalc/errors"
	"github.com/rascal-lang/rascalc/internal/token"
	"github.com/rascal-lang/rascalc/op"
	"github.com/rascal-lang/rascalc/types"
)

// Option configures a Compiler.
type Option func(*Compiler)

// WithLogger sets the logger that receives debug events about the
// compilation. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Compiler) {
		c.log = logger
	}
}

// WithFilename sets the source filename used in error locations.
func WithFilename(filename string) Option {
	return func(c *Compiler) {
		c.filename = filename
	}
}

// WithSource sets the original source text, used to show the offending line
// in error messages and kept in the compiled code.
func WithSource(source string) Option {
	return func(c *Compiler) {
		c.source = source
	}
}

// Compiler translates Rascal programs into MEPA code. A Compiler may be
// reused for several programs but is not safe for concurrent use.
type Compiler struct {
	filename string
	source   string
	lines    []string
	log      zerolog.Logger

	// State of the compilation in progress
	scopes *ScopeStack
	code   *Code
	labels *LabelAllocator

	// Called after every successful declaration. Used by tests.
	onDeclare func(sym *Symbol, level int)
}

// walkContext carries what depends on where the walk currently is.
type walkContext struct {
	// The procedure or function whose body is being analyzed, or nil at
	// program level
	callable *Symbol
}

// returnsInto reports whether assigning to sym stores the result of the
// function being analyzed.
func (w walkContext) returnsInto(sym *Symbol) bool {
	return w.callable != nil && w.callable.Kind == Function && sym == w.callable
}

// Compile checks program and returns its code. This is shorthand for
// New(opts...).Compile(program).
func Compile(program *ast.Program, opts ...Option) (*bytecode.Code, error) {
	return New(opts...).Compile(program)
}

// New creates and returns a new Compiler.
func New(opts ...Option) *Compiler {
	c := &Compiler{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	if c.source != "" {
		c.lines = strings.Split(c.source, "\n")
	}
	return c
}

// Compile checks program and returns its code. On error the returned code
// is nil.
func (c *Compiler) Compile(program *ast.Program) (*bytecode.Code, error) {
	if program == nil || program.Name == nil || program.Block == nil {
		return nil, fmt.Errorf("compile error: incomplete program")
	}
	c.scopes = NewScopeStack()
	c.code = newCode(c.filename, c.source)
	c.code.name = program.Name.Name
	c.labels = NewLabelAllocator(c.code)
	defer func() {
		c.scopes, c.code, c.labels = nil, nil, nil
	}()

	c.log.Debug().Str("program", program.Name.Name).Str("file", c.filename).Msg("compiling")
	if err := c.compileProgram(program); err != nil {
		c.log.Debug().Err(err).Msg("compilation failed")
		return nil, err
	}
	if unplaced := c.labels.Unplaced(); len(unplaced) > 0 {
		return nil, fmt.Errorf("compile error: label %s is referenced but never placed", unplaced[0])
	}
	code := c.code.ToBytecode()
	c.log.Debug().
		Int("instructions", c.code.Len()).
		Int("labels", c.labels.Count()).
		Msg("compiled")
	return code, nil
}

// Program and declarations

func (c *Compiler) compileProgram(node *ast.Program) error {
	c.at(node)
	c.emit(op.EnterProgram)
	if err := c.pushScope(node.Pos()); err != nil {
		return err
	}
	if err := c.declare(node.Name, &Symbol{Name: node.Name.Name, Kind: ProgramName}); err != nil {
		return err
	}
	if err := c.compileBlock(walkContext{}, node.Block); err != nil {
		return err
	}
	c.at(node.Block.Body)
	c.emit(op.Dealloc, c.scopes.Current().LocalCount())
	if _, err := c.scopes.PopScope(); err != nil {
		return err
	}
	c.emit(op.Halt)
	return nil
}

// compileBlock emits the variable section, the subroutine section and the
// body of a program or callable. The caller releases the scope.
func (c *Compiler) compileBlock(ctx walkContext, block *ast.Block) error {
	if err := c.compileVars(block.Vars); err != nil {
		return err
	}
	if err := c.compileSubroutines(block.Subroutines); err != nil {
		return err
	}
	return c.compileCompound(ctx, block.Body)
}

// compileVars declares every variable of the section and reserves their
// slots. AMEM is emitted even when the section is empty.
func (c *Compiler) compileVars(decls []*ast.VarDecl) error {
	for _, decl := range decls {
		c.at(decl)
		typ, err := c.resolveType(decl.Type)
		if err != nil {
			return err
		}
		for _, name := range decl.Names {
			sym, err := c.scopes.DeclareLocal(name.Name, typ)
			if err != nil {
				return c.declareError(name, err)
			}
			c.declared(sym)
		}
	}
	c.emit(op.Alloc, c.scopes.Current().LocalCount())
	return nil
}

// compileSubroutines emits every procedure and function of a block, behind
// a jump to the block's body.
func (c *Compiler) compileSubroutines(decls []ast.Decl) error {
	if len(decls) == 0 {
		return nil
	}
	body := c.labels.NewLabel()
	c.emit(op.Jump, int(body))
	for _, decl := range decls {
		if err := c.compileCallable(decl); err != nil {
			return err
		}
	}
	return c.labels.Place(body)
}

func (c *Compiler) compileCallable(decl ast.Decl) error {
	c.at(decl)
	name := decl.Ident()
	kind := Procedure
	var result *ast.Ident
	if fn, ok := decl.(*ast.Function); ok {
		kind = Function
		result = fn.Result
	}

	// Step 1: declare the callable inside its own body.
	if c.scopes.IsDefined(name.Name) {
		return rerrors.NewDuplicateSymbolError(c.location(name.Pos()), name.Name)
	}
	sym := &Symbol{
		Name:  name.Name,
		Kind:  kind,
		Level: c.scopes.Level(),
		Label: c.labels.NewLabel(),
	}
	if result != nil {
		typ, err := c.resolveType(result)
		if err != nil {
			return err
		}
		sym.Type = typ
	}
	if err := c.pushScope(decl.Pos()); err != nil {
		return err
	}
	groups := decl.ParamGroups()
	count := ast.ParamCount(groups)
	position := 0
	for _, group := range groups {
		typ, err := c.resolveType(group.Type)
		if err != nil {
			return err
		}
		for _, paramName := range group.Names {
			param, err := c.scopes.DeclareParam(paramName.Name, typ, group.ByRef, position, count)
			if err != nil {
				return c.declareError(paramName, err)
			}
			c.declared(param)
			sym.Params = append(sym.Params, ParamDescriptor{
				Type:  param.Type,
				ByRef: param.ByRef,
				Level: param.Level,
				Index: param.Index,
			})
			position++
		}
	}
	// A parameter with the callable's own name shadows it inside the body,
	// so the body cannot call itself.
	if !c.scopes.IsDefined(name.Name) {
		if err := c.declare(name, sym); err != nil {
			return err
		}
	}
	c.log.Debug().
		Str("name", sym.Name).
		Str("kind", kind.String()).
		Stringer("label", sym.Label).
		Int("params", count).
		Msg("entering callable")

	level := c.scopes.Level()
	if err := c.labels.Place(sym.Label); err != nil {
		return err
	}
	c.emit(op.EnterProcedure, level)
	if err := c.compileBlock(walkContext{callable: sym}, decl.Body()); err != nil {
		return err
	}
	c.at(decl.Body().Body)
	c.emit(op.Dealloc, c.scopes.Current().LocalCount())
	if _, err := c.scopes.PopScope(); err != nil {
		return err
	}
	c.emit(op.Return, level, count)

	// Step 2: declare the same descriptor in the enclosing scope.
	return c.declare(name, sym)
}

// Statements

func (c *Compiler) compileStatement(ctx walkContext, stmt ast.Stmt) error {
	c.at(stmt)
	switch stmt := stmt.(type) {
	case *ast.Assign:
		return c.compileAssign(ctx, stmt)
	case *ast.CallStmt:
		return c.compileCallStmt(ctx, stmt)
	case *ast.If:
		return c.compileIf(ctx, stmt)
	case *ast.While:
		return c.compileWhile(ctx, stmt)
	case *ast.Read:
		return c.compileRead(stmt)
	case *ast.Write:
		return c.compileWrite(ctx, stmt)
	case *ast.Compound:
		return c.compileCompound(ctx, stmt)
	default:
		return fmt.Errorf("compile error: unknown statement type: %T", stmt)
	}
}

func (c *Compiler) compileCompound(ctx walkContext, node *ast.Compound) error {
	for _, stmt := range node.Stmts {
		if err := c.compileStatement(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) compileAssign(ctx walkContext, node *ast.Assign) error {
	sym, err := c.resolve(node.Name)
	if err != nil {
		return err
	}
	var store func()
	var target types.Type
	switch {
	case ctx.returnsInto(sym):
		target = sym.Type
		level, index := c.scopes.Level(), sym.ReturnIndex()
		store = func() { c.emit(op.StoreValue, level, index) }
	case sym.Kind == Variable:
		target = sym.Type
		store = func() { c.emitStore(sym) }
	default:
		return c.wrongKind(node.Name, sym, Variable)
	}
	valueType, err := c.compileExpr(ctx, node.Value)
	if err != nil {
		return err
	}
	if valueType != target {
		return rerrors.NewMismatchedTypesError(c.location(node.Value.Pos()), target, valueType)
	}
	c.at(node)
	store()
	return nil
}

func (c *Compiler) compileCallStmt(ctx walkContext, node *ast.CallStmt) error {
	call := node.Call
	sym, err := c.resolve(call.Fn)
	if err != nil {
		return err
	}
	if sym.Kind != Procedure {
		return c.wrongKind(call.Fn, sym, Procedure)
	}
	return c.compileCall(ctx, call, sym)
}

func (c *Compiler) compileIf(ctx walkContext, node *ast.If) error {
	if err := c.compileCondition(ctx, node.Cond, "if"); err != nil {
		return err
	}
	c.at(node)
	if node.Alternative == nil {
		end := c.labels.NewLabel()
		c.emit(op.JumpIfFalse, int(end))
		if err := c.compileStatement(ctx, node.Consequence); err != nil {
			return err
		}
		c.at(node)
		return c.labels.Place(end)
	}
	otherwise := c.labels.NewLabel()
	end := c.labels.NewLabel()
	c.emit(op.JumpIfFalse, int(otherwise))
	if err := c.compileStatement(ctx, node.Consequence); err != nil {
		return err
	}
	c.at(node)
	c.emit(op.Jump, int(end))
	if err := c.labels.Place(otherwise); err != nil {
		return err
	}
	if err := c.compileStatement(ctx, node.Alternative); err != nil {
		return err
	}
	c.at(node)
	return c.labels.Place(end)
}

func (c *Compiler) compileWhile(ctx walkContext, node *ast.While) error {
	loop := c.labels.NewLabel()
	end := c.labels.NewLabel()
	if err := c.labels.Place(loop); err != nil {
		return err
	}
	if err := c.compileCondition(ctx, node.Cond, "while"); err != nil {
		return err
	}
	c.at(node)
	c.emit(op.JumpIfFalse, int(end))
	if err := c.compileStatement(ctx, node.Body); err != nil {
		return err
	}
	c.at(node)
	c.emit(op.Jump, int(loop))
	return c.labels.Place(end)
}

// compileCondition emits cond, which must be boolean. The check happens
// before the caller emits any branch.
func (c *Compiler) compileCondition(ctx walkContext, cond ast.Expr, statement string) error {
	typ, err := c.compileExpr(ctx, cond)
	if err != nil {
		return err
	}
	if typ != types.Boolean {
		return rerrors.NewConditionalNotBooleanError(c.location(cond.Pos()), statement, typ)
	}
	return nil
}

func (c *Compiler) compileRead(node *ast.Read) error {
	for _, name := range node.Names {
		sym, err := c.resolve(name)
		if err != nil {
			return err
		}
		if sym.Kind != Variable {
			return c.wrongKind(name, sym, Variable)
		}
		c.at(name)
		c.emit(op.Read)
		c.emitStore(sym)
	}
	return nil
}

func (c *Compiler) compileWrite(ctx walkContext, node *ast.Write) error {
	for _, arg := range node.Args {
		if _, err := c.compileExpr(ctx, arg); err != nil {
			return err
		}
		c.at(arg)
		c.emit(op.Print)
	}
	return nil
}

// Expressions

var infixOps = map[string]op.Code{
	"+":   op.Add,
	"-":   op.Sub,
	"*":   op.Mul,
	"div": op.Div,
	"and": op.And,
	"or":  op.Or,
	"=":   op.Equal,
	"<>":  op.NotEqual,
	"<":   op.Less,
	"<=":  op.LessEqual,
	">":   op.Greater,
	">=":  op.GreaterEqual,
}

// compileExpr emits expr and returns its type.
func (c *Compiler) compileExpr(ctx walkContext, expr ast.Expr) (types.Type, error) {
	c.at(expr)
	switch expr := expr.(type) {
	case *ast.Int:
		c.emit(op.LoadConst, int(expr.Value))
		return types.Integer, nil
	case *ast.Bool:
		value := 0
		if expr.Value {
			value = 1
		}
		c.emit(op.LoadConst, value)
		return types.Boolean, nil
	case *ast.Ident:
		return c.compileIdent(expr)
	case *ast.Paren:
		return c.compileExpr(ctx, expr.X)
	case *ast.Prefix:
		return c.compilePrefix(ctx, expr)
	case *ast.Infix:
		return c.compileInfix(ctx, expr)
	case *ast.Call:
		return c.compileCallExpr(ctx, expr)
	default:
		return types.Invalid, fmt.Errorf("compile error: unknown expression type: %T", expr)
	}
}

func (c *Compiler) compileIdent(node *ast.Ident) (types.Type, error) {
	sym, err := c.resolve(node)
	if err != nil {
		return types.Invalid, err
	}
	if sym.Kind != Variable {
		return types.Invalid, c.wrongKind(node, sym, Variable)
	}
	c.emitLoad(sym)
	return sym.Type, nil
}

func (c *Compiler) compilePrefix(ctx walkContext, node *ast.Prefix) (types.Type, error) {
	typ, err := c.compileExpr(ctx, node.X)
	if err != nil {
		return types.Invalid, err
	}
	c.at(node)
	switch node.Op {
	case "-":
		if typ != types.Integer {
			return types.Invalid, rerrors.NewMismatchedTypesError(c.location(node.Pos()), typ, types.Integer)
		}
		c.emit(op.Negate)
		return types.Integer, nil
	case "not":
		if typ != types.Boolean {
			return types.Invalid, rerrors.NewMismatchedTypesError(c.location(node.Pos()), typ, types.Boolean)
		}
		c.emit(op.Not)
		return types.Boolean, nil
	default:
		return types.Invalid, fmt.Errorf("compile error: unknown operator: %s", node.Op)
	}
}

func (c *Compiler) compileInfix(ctx walkContext, node *ast.Infix) (types.Type, error) {
	opcode, ok := infixOps[node.Op]
	if !ok {
		return types.Invalid, fmt.Errorf("compile error: unknown operator: %s", node.Op)
	}
	left, err := c.compileExpr(ctx, node.X)
	if err != nil {
		return types.Invalid, err
	}
	right, err := c.compileExpr(ctx, node.Y)
	if err != nil {
		return types.Invalid, err
	}
	loc := c.location(node.OpPos)
	if left != right {
		return types.Invalid, rerrors.NewMismatchedTypesError(loc, left, right)
	}
	result := types.Boolean
	switch opcode {
	case op.Add, op.Sub, op.Mul, op.Div:
		if left != types.Integer {
			return types.Invalid, rerrors.NewMismatchedTypesError(loc, left, types.Integer)
		}
		result = types.Integer
	case op.And, op.Or:
		if left != types.Boolean {
			return types.Invalid, rerrors.NewMismatchedTypesError(loc, left, types.Boolean)
		}
	}
	c.at(node)
	c.emit(opcode)
	return result, nil
}

func (c *Compiler) compileCallExpr(ctx walkContext, call *ast.Call) (types.Type, error) {
	sym, err := c.resolve(call.Fn)
	if err != nil {
		return types.Invalid, err
	}
	if sym.Kind != Function {
		return types.Invalid, c.wrongKind(call.Fn, sym, Function)
	}
	c.at(call)
	c.emit(op.Alloc, 1)
	if err := c.compileCall(ctx, call, sym); err != nil {
		return types.Invalid, err
	}
	return sym.Type, nil
}

// compileCall emits the arguments of call followed by CHPR.
func (c *Compiler) compileCall(ctx walkContext, call *ast.Call, sym *Symbol) error {
	if len(call.Args) != len(sym.Params) {
		return rerrors.NewArityMismatchError(c.location(call.Pos()), sym.Name, len(sym.Params), len(call.Args))
	}
	for i, arg := range call.Args {
		param := sym.Params[i]
		if param.ByRef {
			if err := c.compileReference(ctx, arg, i, param.Type); err != nil {
				return err
			}
			continue
		}
		typ, err := c.compileExpr(ctx, arg)
		if err != nil {
			return err
		}
		if typ != param.Type {
			return rerrors.NewMismatchedTypesError(c.location(arg.Pos()), typ, param.Type)
		}
	}
	c.at(call)
	c.emit(op.Call, int(sym.Label), c.scopes.Level())
	return nil
}

// compileReference emits the address of the variable passed as argument
// index to a by-reference parameter of type want. The argument type is
// checked first; only then must the argument be a bare variable name. A
// variable that is itself a reference already holds an address.
func (c *Compiler) compileReference(ctx walkContext, arg ast.Expr, index int, want types.Type) error {
	loc := c.location(arg.Pos())
	ident, ok := arg.(*ast.Ident)
	if !ok {
		// Not addressable. The code emitted while typing it is discarded
		// with the failed compilation.
		typ, err := c.compileExpr(ctx, arg)
		if err != nil {
			return err
		}
		if typ != want {
			return rerrors.NewMismatchedTypesError(loc, typ, want)
		}
		return rerrors.NewExpectedReferenceError(loc, index)
	}
	sym, err := c.resolve(ident)
	if err != nil {
		return err
	}
	if sym.Kind != Variable {
		if sym.IsCallable() && sym.Type.IsValid() && sym.Type != want {
			return rerrors.NewMismatchedTypesError(loc, sym.Type, want)
		}
		return rerrors.NewExpectedReferenceError(loc, index)
	}
	if sym.Type != want {
		return rerrors.NewMismatchedTypesError(loc, sym.Type, want)
	}
	c.at(ident)
	if sym.ByRef {
		c.emit(op.LoadValue, sym.Level, sym.Index)
	} else {
		c.emit(op.LoadAddress, sym.Level, sym.Index)
	}
	return nil
}

// Emission helpers

func (c *Compiler) emit(opcode op.Code, operands ...int) int {
	return c.code.Emit(opcode, operands...)
}

func (c *Compiler) emitLoad(sym *Symbol) {
	if sym.ByRef {
		c.emit(op.LoadIndirect, sym.Level, sym.Index)
	} else {
		c.emit(op.LoadValue, sym.Level, sym.Index)
	}
}

func (c *Compiler) emitStore(sym *Symbol) {
	if sym.ByRef {
		c.emit(op.StoreIndirect, sym.Level, sym.Index)
	} else {
		c.emit(op.StoreValue, sym.Level, sym.Index)
	}
}

// at attaches node's position to the instructions emitted next.
func (c *Compiler) at(node ast.Node) {
	pos := node.Pos()
	c.code.setLocation(bytecode.SourceLocation{
		Line:   pos.LineNumber(),
		Column: pos.ColumnNumber(),
	})
}

// Scope helpers

func (c *Compiler) pushScope(pos token.Position) error {
	if err := c.scopes.PushScope(); err != nil {
		if errors.Is(err, ErrScopeDepthExceeded) {
			return rerrors.NewScopeDepthExceededError(c.location(pos), MaxScopeDepth)
		}
		return err
	}
	return nil
}

func (c *Compiler) declare(name *ast.Ident, sym *Symbol) error {
	if err := c.scopes.Declare(sym); err != nil {
		return c.declareError(name, err)
	}
	c.declared(sym)
	return nil
}

func (c *Compiler) declared(sym *Symbol) {
	level := c.scopes.Level()
	c.log.Debug().
		Str("name", sym.Name).
		Str("kind", sym.Kind.String()).
		Int("level", level).
		Int("index", sym.Index).
		Msg("declared")
	if c.onDeclare != nil {
		c.onDeclare(sym, level)
	}
}

func (c *Compiler) declareError(name *ast.Ident, err error) error {
	if errors.Is(err, ErrDuplicateSymbol) {
		return rerrors.NewDuplicateSymbolError(c.location(name.Pos()), name.Name)
	}
	return err
}

func (c *Compiler) resolve(name *ast.Ident) (*Symbol, error) {
	sym, ok := c.scopes.Resolve(name.Name)
	if !ok {
		return nil, rerrors.NewUndefinedSymbolError(c.location(name.Pos()), name.Name, c.scopes.AllNames())
	}
	return sym, nil
}

func (c *Compiler) resolveType(name *ast.Ident) (types.Type, error) {
	typ, ok := types.Lookup(name.Name)
	if !ok {
		return types.Invalid, rerrors.NewTypeNotDefinedError(c.location(name.Pos()), name.Name)
	}
	return typ, nil
}

// wrongKind reports that name was used as a want but is declared as
// something else.
func (c *Compiler) wrongKind(name *ast.Ident, sym *Symbol, want SymbolKind) error {
	return rerrors.NewNotCallableError(c.location(name.Pos()), name.Name, want.String(), sym.Kind.String())
}

// location converts a token position to an error location, including the
// source line when the source is known.
func (c *Compiler) location(pos token.Position) rerrors.SourceLocation {
	filename := c.filename
	if filename == "" {
		filename = pos.File
	}
	return rerrors.SourceLocation{
		Filename: filename,
		Line:     pos.LineNumber(),
		Column:   pos.ColumnNumber(),
		Source:   c.sourceLine(pos.Line),
	}
}

// sourceLine returns the 0-indexed line of the source, or "".
func (c *Compiler) sourceLine(line int) string {
	if line < 0 || line >= len(c.lines) {
		return ""
	}
	return strings.TrimRight(c.lines[line], "\r")
}
