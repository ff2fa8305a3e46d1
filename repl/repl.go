// Copyright © 2018 The ELPS authors

// Package repl implements an interactive zx checker.  Declarations typed at
// the prompt accumulate into a program; statements are type checked against
// it and their value type is printed.
package repl

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ergochat/readline"
	"github.com/sirupsen/logrus"

	"github.com/luthersystems/zxc/diagnostic"
)

type config struct {
	stdin  io.ReadCloser
	stderr io.WriteCloser
	color  diagnostic.ColorMode
	log    logrus.FieldLogger
}

func newConfig(opts ...Option) *config {
	config := &config{
		color: diagnostic.ColorAuto,
		log:   logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(config)
	}
	return config
}

type Option func(*config)

// WithStdin allows overriding the input to the REPL.
func WithStdin(stdin io.ReadCloser) Option {
	return func(c *config) {
		c.stdin = stdin
	}
}

// WithStderr allows overriding the output to the REPL.
func WithStderr(stderr io.WriteCloser) Option {
	return func(c *config) {
		c.stderr = stderr
	}
}

// WithColor sets the color mode used to render diagnostics.
func WithColor(mode diagnostic.ColorMode) Option {
	return func(c *config) {
		c.color = mode
	}
}

// WithLogger sets the logger for REPL internals.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *config) {
		c.log = log
	}
}

const help = `Enter declarations (fn, var, class) to add them to the session.
Any other statement is type checked and its value type printed.
Commands:
  :help     show this message
  :symbols  dump the session's symbol tables
  :source   print the declarations entered so far
  :emit     print the LLVM IR of the session
  :reset    discard all declarations
  :quit     exit`

// RunRepl runs the REPL until its input is exhausted.
func RunRepl(prompt string, opts ...Option) error {
	cfg := newConfig(opts...)
	var out io.Writer = os.Stderr
	if cfg.stderr != nil {
		out = cfg.stderr
	}
	cont := strings.Repeat(" ", len(prompt))
	history := historyPath()
	ensureHistoryFilePermissions(history)

	session := NewSession()
	rlCfg := &readline.Config{
		Stdout:            out,
		Stderr:            out,
		Prompt:            prompt,
		HistoryFile:       history,
		HistorySearchFold: true,
		AutoComplete:      &symbolCompleter{session: session},
	}
	if cfg.stdin != nil {
		rlCfg.Stdin = cfg.stdin
	}
	rl, err := readline.NewEx(rlCfg)
	if err != nil {
		return fmt.Errorf("readline: %w", err)
	}
	defer rl.Close() //nolint:errcheck // best-effort cleanup

	var buf bytes.Buffer
	for {
		if buf.Len() == 0 {
			rl.SetPrompt(prompt)
		} else {
			rl.SetPrompt(cont)
		}
		line, err := rl.ReadSlice()
		if err == readline.ErrInterrupt {
			buf.Reset()
			continue
		}
		if err != nil {
			if err != io.EOF {
				cfg.log.WithError(err).Debug("readline stopped")
			}
			if buf.Len() > 0 {
				evalInput(out, session, cfg, buf.String())
			}
			return nil
		}
		if buf.Len() == 0 && len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		buf.Write(line)
		buf.WriteByte('\n')
		input := buf.String()
		if Incomplete(input) {
			continue
		}
		buf.Reset()
		if cmd := strings.TrimSpace(input); strings.HasPrefix(cmd, ":") {
			if !command(out, session, cmd) {
				return nil
			}
			continue
		}
		evalInput(out, session, cfg, input)
	}
}

func evalInput(w io.Writer, session *Session, cfg *config, input string) {
	out := session.Eval(input)
	cfg.log.WithFields(logrus.Fields{
		"committed":   out.Committed,
		"diagnostics": len(out.Diagnostics),
	}).Debug("evaluated input")
	renderDiagnostics(w, cfg.color, strings.TrimSpace(input), out.Diagnostics)
	if s := out.Describe(); s != "" {
		fmt.Fprintln(w, s) //nolint:errcheck // best-effort REPL output
	}
}

// command runs a colon command and reports whether the REPL should keep
// running.
func command(w io.Writer, session *Session, cmd string) bool {
	var err error
	switch cmd {
	case ":quit", ":q":
		return false
	case ":help":
		_, err = fmt.Fprintln(w, help)
	case ":symbols":
		err = session.Dump(w)
	case ":source":
		_, err = io.WriteString(w, session.Source())
	case ":emit":
		err = session.Emit(w)
	case ":reset":
		session.Reset()
	default:
		err = fmt.Errorf("unknown command %s (try :help)", cmd)
	}
	if err != nil {
		fmt.Fprintln(w, err) //nolint:errcheck // best-effort error display
	}
	return true
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".zxc_history")
}

// ensureHistoryFilePermissions creates the history file with mode 0600 or
// restricts an existing one.
func ensureHistoryFilePermissions(path string) {
	if path == "" {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDONLY, 0600) //#nosec G304
	if err != nil {
		return
	}
	_ = f.Close()
	_ = os.Chmod(path, 0600)
}
