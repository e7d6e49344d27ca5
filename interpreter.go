// interpreter.go: public surface of the evaluator
//
// OVERVIEW
// --------
// An Interpreter owns a ScopeStack (global scope + one scope per active call,
// program or module evaluation), the import caches, and the host plumbing
// (stdout, line input, library loader, logger, config).
//
// Sources are evaluated statement by statement as the parser produces them,
// so statements before a syntax error have already run when it is reported.
// The value of a program, block or function body is the value of the last
// ExpressionReturn statement that ran, or null when none did.
//
// ENTRY POINTS
// ------------
//   - EvalSource(src): evaluate in a fresh program scope, discarded after.
//   - EvalPersistentSource(src): evaluate in one long-lived scope that
//     survives across calls (REPL mode).
//   - RunFile(path): evaluate a script; imports resolve relative to it.
//   - EvalProgram / EvalStatement / EvalExpression: run parsed trees at the
//     current level.
//   - Get / Set / SetGlobal / Call: host access to bindings and functions.
//
// An Interpreter is single-threaded. Do not share one across goroutines.
package gl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Version is the release reported by the CLI.
const Version = "0.1.0"

// DefaultModuleName labels code that does not come from a file.
const DefaultModuleName = "<stdin>"

// MaxCallDepth bounds nested interpreted calls.
const MaxCallDepth = 2000

// ErrInterrupted is returned by a LineReader when the user interrupts input.
var ErrInterrupted = errors.New("interrupted")

// LineReader feeds the input builtin. It returns io.EOF at end of input and
// ErrInterrupted on a keyboard interrupt.
type LineReader interface {
	ReadLine(prompt string) (string, error)
}

type Interpreter struct {
	scopes *ScopeStack

	module      string // module name recorded in traceback frames
	file        string // file being evaluated, "" for in-memory sources
	moduleScope ScopeID
	inModule    bool // evaluating an imported module or one of its functions
	depth       int

	persistent    ScopeID
	hasPersistent bool

	modules   map[string]*Module           // by canonical path
	libraries map[string]*DynLibraryModule // by path
	loading   []string                     // import stack for cycle detection

	loader LibraryLoader
	stdout io.Writer
	stdin  LineReader
	logger *slog.Logger
	config *Config
}

type Option func(*Interpreter)

func WithStdout(w io.Writer) Option { return func(ip *Interpreter) { ip.stdout = w } }

func WithStdin(r LineReader) Option { return func(ip *Interpreter) { ip.stdin = r } }

func WithLoader(l LibraryLoader) Option { return func(ip *Interpreter) { ip.loader = l } }

func WithLogger(l *slog.Logger) Option { return func(ip *Interpreter) { ip.logger = l } }

func WithConfig(c *Config) Option { return func(ip *Interpreter) { ip.config = c } }

func NewInterpreter(opts ...Option) *Interpreter {
	ip := &Interpreter{
		module:    DefaultModuleName,
		modules:   map[string]*Module{},
		libraries: map[string]*DynLibraryModule{},
	}
	for _, opt := range opts {
		opt(ip)
	}
	if ip.stdout == nil {
		ip.stdout = os.Stdout
	}
	if ip.stdin == nil {
		ip.stdin = NewReaderInput(os.Stdin, ip.stdout)
	}
	if ip.loader == nil {
		ip.loader = defaultLoader()
	}
	if ip.logger == nil {
		ip.logger = discardLogger()
	}
	if ip.config == nil {
		ip.config = DefaultConfig()
	}
	ip.scopes = NewScopeStack(ip.logger)
	registerBuiltins(ip)
	registerNativeModules(ip)
	return ip
}

// EvalSource evaluates src in a fresh program scope.
func (ip *Interpreter) EvalSource(src string) (Value, error) {
	ip.scopes.Push()
	defer ip.scopes.Pop()
	return ip.evalStream(NewStringSource(src))
}

// EvalPersistentSource evaluates src in the interpreter's persistent scope,
// so bindings survive between calls.
func (ip *Interpreter) EvalPersistentSource(src string) (Value, error) {
	if !ip.hasPersistent {
		ip.persistent = ip.scopes.Arena().Alloc()
		ip.scopes.Arena().Pin(ip.persistent)
		ip.hasPersistent = true
	}
	ip.scopes.PushExisting(ip.persistent)
	defer ip.scopes.Pop()
	return ip.evalStream(NewStringSource(src))
}

// RunFile evaluates the script at path. Frames name the file as given.
func (ip *Interpreter) RunFile(path string) (Value, error) {
	fs, err := OpenFileSource(path)
	if err != nil {
		return Null, err
	}
	defer fs.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return Null, fmt.Errorf("resolve %s: %w", path, err)
	}
	restore := ip.enter(path, abs)
	defer restore()
	ip.loading = append(ip.loading, abs)
	defer func() { ip.loading = ip.loading[:len(ip.loading)-1] }()

	ip.scopes.Push()
	defer ip.scopes.Pop()
	v, err := ip.evalStream(fs)
	if err == nil && fs.Err != nil && fs.Err != io.EOF {
		return Null, fmt.Errorf("read %s: %w", path, fs.Err)
	}
	return v, err
}

// EvalProgram runs a parsed program in a fresh program scope.
func (ip *Interpreter) EvalProgram(prog *Program) (Value, error) {
	ip.scopes.Push()
	defer ip.scopes.Pop()
	return ip.runStatements(prog.Statements)
}

// EvalStatement runs one statement at the current level. Failures get a
// traceback frame for the statement.
func (ip *Interpreter) EvalStatement(s Statement) (Value, error) {
	v, err := ip.execStatement(s)
	if err != nil {
		return Null, ip.withFrame(err, s.Pos())
	}
	return v, nil
}

func (ip *Interpreter) EvalExpression(e Expression) (Value, error) {
	return ip.evalExpression(e)
}

// Get looks name up through the current scope stack.
func (ip *Interpreter) Get(name string) (Value, bool) {
	if v, ok := ip.scopes.Lookup(name); ok {
		return v, true
	}
	if ip.hasPersistent {
		return ip.scopes.Arena().Get(ip.persistent).Get(name)
	}
	return Null, false
}

// Set binds name in the current scope.
func (ip *Interpreter) Set(name string, v Value) { ip.scopes.Current().Set(name, v) }

func (ip *Interpreter) SetGlobal(name string, v Value) { ip.scopes.Global().Set(name, v) }

// Call invokes a function value with already evaluated arguments.
func (ip *Interpreter) Call(fn Value, args []Value) (Value, error) {
	return ip.call(fn, args)
}

func (ip *Interpreter) Stdout() io.Writer { return ip.stdout }

func (ip *Interpreter) Logger() *slog.Logger { return ip.logger }

//// END_OF_PUBLIC

func (ip *Interpreter) evalStream(src Source) (Value, error) {
	p, err := NewParser(NewLexer(src, ip.module))
	if err != nil {
		return Null, err
	}
	result := Null
	for {
		stmt, ok, err := p.Next()
		if err != nil {
			return Null, err
		}
		if !ok {
			return result, nil
		}
		v, err := ip.EvalStatement(stmt)
		if err != nil {
			return Null, err
		}
		if _, isReturn := stmt.(*ExpressionReturnStatement); isReturn {
			result = v
		}
	}
}

func (ip *Interpreter) runStatements(stmts []Statement) (Value, error) {
	result := Null
	for _, s := range stmts {
		v, err := ip.EvalStatement(s)
		if err != nil {
			return Null, err
		}
		if _, isReturn := s.(*ExpressionReturnStatement); isReturn {
			result = v
		}
	}
	return result, nil
}

// enter switches the module/file labels and returns a func restoring them.
func (ip *Interpreter) enter(module, file string) func() {
	savedModule, savedFile := ip.module, ip.file
	ip.module, ip.file = module, file
	return func() { ip.module, ip.file = savedModule, savedFile }
}

// withFrame converts err to an *Exception and, for runtime errors, prepends
// a frame for pos in the current module.
func (ip *Interpreter) withFrame(err error, pos Position) error {
	ex, ok := AsException(err)
	if !ok {
		ex = &Exception{Except: Except{Kind: ExceptType, Message: err.Error()}, IsRuntime: true}
	}
	if ex.IsRuntime {
		ex.Push(Frame{Module: ip.module, Position: pos})
	}
	return ex
}

// readerInput is the default LineReader over a plain reader.
type readerInput struct {
	r *bufio.Reader
	w io.Writer
}

// NewReaderInput reads lines from r, writing prompts to w.
func NewReaderInput(r io.Reader, w io.Writer) LineReader {
	return &readerInput{r: bufio.NewReader(r), w: w}
}

func (in *readerInput) ReadLine(prompt string) (string, error) {
	if prompt != "" {
		fmt.Fprint(in.w, prompt)
	}
	line, err := in.r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return line, nil
		}
		return "", err
	}
	return trimNewline(line), nil
}

func trimNewline(s string) string {
	if n := len(s); n > 0 && s[n-1] == '\n' {
		s = s[:n-1]
		if n := len(s); n > 0 && s[n-1] == '\r' {
			s = s[:n-1]
		}
	}
	return s
}
