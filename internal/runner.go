package internal

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/gookit/color"
)

// Command is one external tool invocation.
type Command struct {
	Dir  string
	Name string
	Args []string
}

// String renders the command line the way it would be typed.
func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Runner executes commands and blocks until they exit.
type Runner interface {
	Run(ctx context.Context, c Command) error
}

// ExecRunner runs commands as child processes, streaming their output.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
}

func NewExecRunner() *ExecRunner {
	return &ExecRunner{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

func (r *ExecRunner) Run(ctx context.Context, c Command) error {
	color.Fprintf(r.Stdout, "Running cmd <grey>%s</>\n", c)
	startTime := time.Now()
	cmd := exec.CommandContext(ctx, c.Name, c.Args...) // #nosec G204
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	cmd.Dir = c.Dir
	err := cmd.Run()
	if err == nil {
		color.Fprintf(r.Stdout, "Running cmd <grey>%s</> finished in %s\n", c, time.Since(startTime))
	} else {
		color.Fprintf(r.Stdout, "<red>%s</> encountered an error: %s\n", c, err.Error())
	}
	return err
}

// ExitCode returns the exit status of the first subprocess failure in err's
// chain, or 1 when err did not come from a subprocess. A nil err is 0.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
		return exitErr.ExitCode()
	}
	return 1
}
