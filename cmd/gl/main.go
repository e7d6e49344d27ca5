package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	gl "github.com/skalamark/gl-core"
)

const appName = "gl"

var (
	banner   = fmt.Sprintf("GLanguage %s REPL\nCtrl+C cancels input, Ctrl+D exits. Type :quit to exit.", gl.Version)
	helpText = `
REPL commands:
  :quit    Exit the REPL
  :help    Show this help
`
)

func red(s string) string  { return "\x1b[31m" + s + "\x1b[0m" }
func blue(s string) string { return "\x1b[94m" + s + "\x1b[0m" }

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd := os.Args[1]
	switch cmd {
	case "run":
		os.Exit(cmdRun(os.Args[2:]))
	case "repl":
		os.Exit(cmdRepl(os.Args[2:]))
	case "tokens":
		os.Exit(cmdTokens(os.Args[2:]))
	case "ast":
		os.Exit(cmdAst(os.Args[2:]))
	case "config":
		os.Exit(cmdConfig(os.Args[2:]))
	case "version":
		fmt.Println(gl.Version)
		return
	case "-h", "--help", "help":
		usage()
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", appName, cmd)
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Printf(`GLanguage %s

Usage:
  %s run [-log-level L] <file.gl>      Run a script.
  %s repl [-log-level L]               Start the REPL.
  %s tokens <file.gl>                  Print the token stream.
  %s ast <file.gl>                     Print the parsed program.
  %s config                            Print the effective configuration.
  %s version                           Print the version.

`, gl.Version, appName, appName, appName, appName, appName, appName)
}

// setup loads the config and builds the logger shared by run and repl.
func setup(name string, args []string) (*flag.FlagSet, *gl.Config, *slog.Logger, bool) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	level := fs.String("log-level", "", "log level: debug, info, warn or error")
	if err := fs.Parse(args); err != nil {
		return nil, nil, nil, false
	}
	cfg, err := gl.FindConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		return nil, nil, nil, false
	}
	if *level != "" {
		cfg.LogLevel = *level
	}
	lvl, err := gl.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		return nil, nil, nil, false
	}
	return fs, cfg, gl.NewLogger(os.Stderr, lvl), true
}

// report prints err, with a source excerpt for syntax errors.
func report(err error, src string) {
	if ex, ok := gl.AsException(err); ok {
		fmt.Fprintln(os.Stderr, red(ex.Pretty(src)))
		return
	}
	fmt.Fprintln(os.Stderr, red(err.Error()))
}

// -----------------------------------------------------------------------------
// run
// -----------------------------------------------------------------------------

func cmdRun(args []string) int {
	fs, cfg, logger, ok := setup("run", args)
	if !ok {
		return 2
	}
	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "usage: %s run <file.gl>\n", appName)
		return 2
	}
	file := fs.Arg(0)

	ip := gl.NewInterpreter(gl.WithConfig(cfg), gl.WithLogger(logger))
	if _, err := ip.RunFile(file); err != nil {
		src, _ := os.ReadFile(file)
		report(err, string(src))
		return 1
	}
	return 0
}

// -----------------------------------------------------------------------------
// repl
// -----------------------------------------------------------------------------

// linerInput serves the input builtin from the REPL's line editor.
type linerInput struct {
	ln *liner.State
}

func (in linerInput) ReadLine(prompt string) (string, error) {
	line, err := in.ln.Prompt(prompt)
	if errors.Is(err, liner.ErrPromptAborted) {
		return "", gl.ErrInterrupted
	}
	return line, err
}

func cmdRepl(args []string) int {
	_, cfg, logger, ok := setup("repl", args)
	if !ok {
		return 2
	}
	fmt.Println(banner)

	histPath := cfg.HistoryFile
	if !filepath.IsAbs(histPath) {
		home, _ := os.UserHomeDir()
		histPath = filepath.Join(home, histPath)
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	ip := gl.NewInterpreter(
		gl.WithConfig(cfg),
		gl.WithLogger(logger),
		gl.WithStdin(linerInput{ln: ln}),
	)

	for {
		code, ok := readByParseProbe(ln, cfg.Prompt, cfg.ContinuationPrompt)
		if !ok {
			fmt.Println()
			break
		}

		trimmed := strings.TrimSpace(code)
		if strings.HasPrefix(trimmed, ":") {
			switch strings.ToLower(trimmed) {
			case ":quit":
				return 0
			case ":help":
				fmt.Print(helpText)
			default:
				fmt.Printf("unknown command. Type :quit to exit.\n")
			}
			continue
		}
		if trimmed == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))

		v, err := ip.EvalPersistentSource(code)
		if err != nil {
			report(err, code)
			continue
		}
		if v.Tag != gl.VTNull {
			fmt.Println(blue(v.String()))
		}
	}
	return 0
}

// readByParseProbe reads lines until the buffer parses, or fails for a
// reason more input cannot fix.
func readByParseProbe(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder

	for {
		p := prompt
		if b.Len() > 0 {
			p = cont
		}
		line, err := ln.Prompt(p)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			// Ctrl+C drops the pending input.
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if _, perr := gl.ParseString(src, gl.DefaultModuleName); gl.IsIncomplete(perr) {
			continue
		}
		return src, true
	}
}

// -----------------------------------------------------------------------------
// tokens / ast / config
// -----------------------------------------------------------------------------

func cmdTokens(args []string) int {
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s tokens <file.gl>\n", appName)
		return 2
	}
	src, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: cannot read %s: %v\n", appName, args[0], err)
		return 1
	}
	toks, err := gl.NewLexer(gl.NewStringSource(string(src)), args[0]).Run()
	for _, t := range toks {
		fmt.Printf("%s\t%s\n", t.Span.Start, t)
	}
	if err != nil {
		report(err, string(src))
		return 1
	}
	return 0
}

func cmdAst(args []string) int {
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s ast <file.gl>\n", appName)
		return 2
	}
	src, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: cannot read %s: %v\n", appName, args[0], err)
		return 1
	}
	prog, err := gl.ParseString(string(src), args[0])
	if err != nil {
		report(err, string(src))
		return 1
	}
	fmt.Println(prog.String())
	return 0
}

func cmdConfig(_ []string) int {
	cfg, err := gl.FindConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		return 1
	}
	out, err := cfg.Marshal()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		return 1
	}
	if cfg.Path != "" {
		fmt.Printf("# %s\n", cfg.Path)
	}
	os.Stdout.Write(out)
	return 0
}
