package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Commander runs an external program to completion.
type Commander interface {
	Run(ctx context.Context, name string, args ...string) error
}

// CommandError is returned when a program fails to start or exits with a
// non-zero status.
type CommandError struct {
	Name string
	Args []string
	// Code is the exit status, or -1 when the program did not run.
	Code int
	// Output is the tail of the combined stdout and stderr.
	Output string
	Err    error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("pipeline: %s exited with code %d", e.Name, e.Code)
	if e.Code < 0 {
		msg = fmt.Sprintf("pipeline: %s: %v", e.Name, e.Err)
	}
	if e.Output != "" {
		msg += "\n" + e.Output
	}
	return msg
}

func (e *CommandError) Unwrap() error { return e.Err }

// ExitCode returns the exit status of the program.
func (e *CommandError) ExitCode() int { return e.Code }

// tailLines bounds CommandError.Output.
const tailLines = 20

// Exec runs programs with os/exec.
type Exec struct {
	Log *zap.Logger
	// DryRun logs each command instead of running it.
	DryRun bool
	// Dir is the working directory; empty means the current one.
	Dir string
}

// Run implements Commander.
func (e *Exec) Run(ctx context.Context, name string, args ...string) error {
	log := e.Log
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("cmd", name), zap.Strings("args", args))

	if e.DryRun {
		log.Info("dry run")
		return nil
	}

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = e.Dir
	cmd.Stdout = &out
	cmd.Stderr = &out

	start := time.Now()
	if err := cmd.Run(); err != nil {
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		return &CommandError{Name: name, Args: args, Code: code, Output: tail(out.String(), tailLines), Err: err}
	}
	log.Debug("done", zap.Duration("elapsed", time.Since(start)))
	return nil
}

func tail(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

// Shell runs commands through a login bash, sourcing Env first so the
// tools it sets up are on PATH.
type Shell struct {
	Cmd Commander
	Env string
}

// Run runs name with args, each shell-quoted.
func (s Shell) Run(ctx context.Context, name string, args ...string) error {
	words := make([]string, 0, len(args)+1)
	words = append(words, quote(name))
	for _, a := range args {
		words = append(words, quote(a))
	}
	return s.Script(ctx, strings.Join(words, " "))
}

// Script runs a bash command line verbatim.
func (s Shell) Script(ctx context.Context, script string) error {
	if s.Env != "" {
		script = "source " + quote(s.Env) + " && " + script
	}
	return s.Cmd.Run(ctx, "bash", "-lc", script)
}

func quote(s string) string {
	if s != "" && strings.IndexFunc(s, needsQuote) < 0 {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func needsQuote(r rune) bool {
	switch {
	case 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z', '0' <= r && r <= '9':
		return false
	}
	return !strings.ContainsRune("-_./=:,+@%", r)
}
