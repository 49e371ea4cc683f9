// Package testing provides test doubles for the exec package.
package testing

import (
	"fmt"
	"strings"
	"sync"

	"github.com/rileyhilliard/lp/internal/command"
	"github.com/rileyhilliard/lp/internal/errors"
	"github.com/rileyhilliard/lp/internal/exec"
)

// Response is a scripted reply for commands whose line contains Match.
type Response struct {
	Match  string
	Stdout string
	// Stderr and ExitCode produce an ErrCommand failure when ExitCode != 0.
	Stderr   string
	ExitCode int
	// Err, if set, is returned as-is.
	Err error
	// Times limits how often the response is used (0 = unlimited).
	Times int

	used int
}

// FakeRunner simulates lpass invocations for testing.
// It records calls and returns the first matching scripted response;
// unmatched commands succeed with empty output.
type FakeRunner struct {
	mu sync.Mutex

	responses []*Response

	// Calls records every command in order.
	Calls []command.Command
}

// NewFakeRunner creates a fake runner that succeeds with empty output by default.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{}
}

// On registers stdout for commands containing match.
func (f *FakeRunner) On(match, stdout string) *FakeRunner {
	return f.Respond(Response{Match: match, Stdout: stdout})
}

// OnOnce registers stdout for the next command containing match only.
func (f *FakeRunner) OnOnce(match, stdout string) *FakeRunner {
	return f.Respond(Response{Match: match, Stdout: stdout, Times: 1})
}

// Fail makes commands containing match exit non-zero with the given stderr.
func (f *FakeRunner) Fail(match, stderr string) *FakeRunner {
	return f.Respond(Response{Match: match, Stderr: stderr, ExitCode: 1})
}

// Respond registers an arbitrary response.
func (f *FakeRunner) Respond(r Response) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, &r)
	return f
}

// Run implements exec.Runner.
func (f *FakeRunner) Run(cmd command.Command) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Calls = append(f.Calls, cmd)

	for _, r := range f.responses {
		if !strings.Contains(cmd.Line, r.Match) {
			continue
		}
		if r.Times > 0 && r.used >= r.Times {
			continue
		}
		r.used++
		if r.Err != nil {
			return r.Stdout, r.Err
		}
		if r.ExitCode != 0 {
			cmdErr := &exec.CommandError{
				Command:  cmd.String(),
				Stdout:   r.Stdout,
				Stderr:   r.Stderr,
				ExitCode: r.ExitCode,
			}
			return r.Stdout, errors.WrapWithCode(cmdErr, errors.ErrCommand,
				fmt.Sprintf("Command exited with code %d", r.ExitCode), "")
		}
		return r.Stdout, nil
	}
	return "", nil
}

// Lines returns the command lines run so far.
func (f *FakeRunner) Lines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	lines := make([]string, len(f.Calls))
	for i, c := range f.Calls {
		lines[i] = c.Line
	}
	return lines
}

// CountMatching returns how many recorded commands contain substr.
func (f *FakeRunner) CountMatching(substr string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.Calls {
		if strings.Contains(c.Line, substr) {
			n++
		}
	}
	return n
}

// LastCall returns the most recent command, or nil if none.
func (f *FakeRunner) LastCall() *command.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Calls) == 0 {
		return nil
	}
	call := f.Calls[len(f.Calls)-1]
	return &call
}

// Reset clears recorded calls, keeping scripted responses.
func (f *FakeRunner) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = nil
}
