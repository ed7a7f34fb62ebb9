// Package runner manages the command asyncgen watch runs after each
// successful generation, such as a dotnet build or a test runner.
package runner

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-shellwords"
)

// StopTimeout is how long Stop waits after asking the process to exit
// before killing it.
const StopTimeout = 5 * time.Second

// Runner owns at most one running instance of a command.
type Runner struct {
	command string
	args    []string
	workDir string
	stdout  io.Writer
	stderr  io.Writer

	mu   sync.Mutex
	proc *process
}

// process is one launched instance. err is written before done is closed.
type process struct {
	cmd  *exec.Cmd
	done chan struct{}
	err  error
}

func (p *process) exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// New creates a runner for command. Output is forwarded to stdout and
// stderr; the child never reads stdin.
func New(command string, args []string, workDir string, stdout, stderr io.Writer) *Runner {
	return &Runner{
		command: command,
		args:    args,
		workDir: workDir,
		stdout:  stdout,
		stderr:  stderr,
	}
}

// Parse splits a command line shell-style into a runner. Quotes and
// backslash escapes group arguments; variables are not expanded. It returns
// a nil runner for a blank line.
func Parse(line, workDir string, stdout, stderr io.Writer) (*Runner, error) {
	fields, err := shellwords.Parse(line)
	if err != nil {
		return nil, fmt.Errorf("parse command %q: %w", line, err)
	}
	if len(fields) == 0 {
		return nil, nil
	}
	return New(fields[0], fields[1:], workDir, stdout, stderr), nil
}

// String returns the command line.
func (r *Runner) String() string {
	return strings.Join(append([]string{r.command}, r.args...), " ")
}

func (r *Runner) newCmd() *exec.Cmd {
	cmd := exec.Command(r.command, r.args...)
	if r.workDir != "" {
		cmd.Dir = r.workDir
	}
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr
	return cmd
}

// start launches the process; r.mu must be held.
func (r *Runner) start() error {
	cmd := r.newCmd()
	configureCmd(cmd)
	if err := cmd.Start(); err != nil {
		return err
	}

	p := &process{cmd: cmd, done: make(chan struct{})}
	r.proc = p
	go func() {
		p.err = cmd.Wait()
		close(p.done)
	}()
	return nil
}

// Start starts the command.
func (r *Runner) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.start()
}

// Restart stops any running instance and starts a new one.
func (r *Runner) Restart() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stop()
	return r.start()
}

// Stop stops the running instance, if any.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stop()
}

// stop terminates the process and waits for it; r.mu must be held.
func (r *Runner) stop() {
	p := r.proc
	if p == nil || p.exited() {
		return
	}
	terminate(p.cmd)

	select {
	case <-p.done:
	case <-time.After(StopTimeout):
		kill(p.cmd)
		<-p.done
	}
}

// Wait blocks until the current process exits and returns its exit error.
func (r *Runner) Wait() error {
	r.mu.Lock()
	p := r.proc
	r.mu.Unlock()
	if p == nil {
		return errors.New("runner: not started")
	}
	<-p.done
	return p.err
}

// Running returns true if the process is running.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.proc != nil && !r.proc.exited()
}
