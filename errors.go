// errors.go: exception taxonomy, tracebacks and caret snippets
//
// Every failure in the lexer, parser and evaluator is an *Exception. An
// Exception wraps one Except (kind + message) and a list of frames, one per
// site that had positional context while the error propagated. Frames are
// prepended as the error unwinds, so Frames[0] is the outermost site.
//
// Two display styles exist:
//
//   - runtime (IsRuntime == true), Python-traceback style, lines only:
//
//     Traceback (most recent call last):
//     File "main.gl", line 3
//     File "util.gl", line 7
//     TypeError: unsupported operand type(s) for +: 'Integer' and 'String'
//
//   - lex/parse time, with a column:
//
//     File "main.gl", line 1 column 9
//     InvalidSyntax: expected ',' or ')'
//
// Lines and columns are stored zero-based and rendered one-based.
//
// Pretty adds a numbered source snippet with a caret under the column for
// lex/parse errors, which is what the CLI prints when it has the source text.
package gl

import (
	"errors"
	"fmt"
	"strings"
)

// ExceptKind is the closed set of error classes.
type ExceptKind int

const (
	ExceptUnexpectedEOF ExceptKind = iota
	ExceptInvalidSyntax
	ExceptName
	ExceptType
	ExceptIndex
	ExceptKey
	ExceptAttribute
	ExceptImport
	ExceptEOF
	ExceptKeyboardInterrupt
)

var exceptNames = [...]string{
	ExceptUnexpectedEOF:     "UnexpectedEOF",
	ExceptInvalidSyntax:     "InvalidSyntax",
	ExceptName:              "NameError",
	ExceptType:              "TypeError",
	ExceptIndex:             "IndexError",
	ExceptKey:               "KeyError",
	ExceptAttribute:         "AttributeError",
	ExceptImport:            "ImportError",
	ExceptEOF:               "EOFError",
	ExceptKeyboardInterrupt: "KeyboardInterrupt",
}

func (k ExceptKind) String() string {
	if int(k) >= 0 && int(k) < len(exceptNames) {
		return exceptNames[k]
	}
	return fmt.Sprintf("ExceptKind(%d)", int(k))
}

// Except is the classification of an error.
type Except struct {
	Kind    ExceptKind
	Message string
}

func (e Except) String() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Message
}

// Frame is one {module, position} annotation on a propagating exception.
type Frame struct {
	Module   string
	Position Position
}

type Exception struct {
	Except    Except
	Frames    []Frame
	IsRuntime bool
}

// NewRuntimeException creates an evaluator error with no frames yet.
func NewRuntimeException(kind ExceptKind, format string, args ...any) *Exception {
	return &Exception{
		Except:    Except{Kind: kind, Message: sprintf(format, args...)},
		IsRuntime: true,
	}
}

// NewSyntaxException creates a lex/parse error located at pos in module.
func NewSyntaxException(kind ExceptKind, msg, module string, pos Position) *Exception {
	return &Exception{
		Except: Except{Kind: kind, Message: msg},
		Frames: []Frame{{Module: module, Position: pos}},
	}
}

// Push prepends a frame.
func (e *Exception) Push(f Frame) {
	e.Frames = append([]Frame{f}, e.Frames...)
}

func (e *Exception) Kind() ExceptKind { return e.Except.Kind }

func (e *Exception) Error() string {
	var b strings.Builder
	if e.IsRuntime {
		b.WriteString("Traceback (most recent call last):\n")
		for _, f := range e.Frames {
			fmt.Fprintf(&b, "  File %q, line %d\n", f.Module, f.Position.Line+1)
		}
	} else {
		for _, f := range e.Frames {
			fmt.Fprintf(&b, "  File %q, line %d column %d\n", f.Module, f.Position.Line+1, f.Position.Column+1)
		}
	}
	b.WriteString(e.Except.String())
	return b.String()
}

// Pretty renders e and, for lex/parse errors, appends a caret snippet taken
// from src. Runtime errors are rendered as their traceback.
func (e *Exception) Pretty(src string) string {
	if e.IsRuntime || len(e.Frames) == 0 {
		return e.Error()
	}
	f := e.Frames[len(e.Frames)-1]
	return e.Error() + "\n\n" + caretSnippet(src, f.Position.Line+1, f.Position.Column+1)
}

// AsException unwraps err into an *Exception.
func AsException(err error) (*Exception, bool) {
	var ex *Exception
	if errors.As(err, &ex) {
		return ex, true
	}
	return nil, false
}

// IsIncomplete reports whether err is a syntax error caused by running out of
// input, i.e. more lines could complete the program.
func IsIncomplete(err error) bool {
	ex, ok := AsException(err)
	return ok && !ex.IsRuntime && ex.Except.Kind == ExceptUnexpectedEOF
}

func sprintf(format string, args ...any) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}

// caretSnippet shows at most one previous and one next line around line,
// with a caret under col. Coordinates are 1-based and clamped to src.
func caretSnippet(src string, line, col int) string {
	lines := strings.Split(src, "\n")
	if line < 1 {
		line = 1
	}
	if col < 1 {
		col = 1
	}
	if line > len(lines) {
		line = len(lines)
	}

	var b strings.Builder
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lines[line-1])
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", col-1))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}
