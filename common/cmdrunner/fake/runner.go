// Package fake provides cmdrunner.Executor implementations that never start
// a process.
package fake

import (
	"strings"

	"csi-shared-resource-e2e/common/cmdrunner"
)

// Runner answers command lines from a script. Each command line has a queue
// of results; the last result of a queue is repeated once the queue is
// drained. Unscripted command lines get Default.
type Runner struct {
	Default   cmdrunner.Result
	responses map[string][]cmdrunner.Result
	calls     []string
}

func NewRunner() *Runner {
	return &Runner{
		Default:   cmdrunner.Result{Output: "command not scripted", ExitCode: 127},
		responses: map[string][]cmdrunner.Result{},
	}
}

// On scripts the results returned for cmdLine, in order.
func (r *Runner) On(cmdLine string, results ...cmdrunner.Result) *Runner {
	r.responses[cmdLine] = append(r.responses[cmdLine], results...)
	return r
}

func (r *Runner) Run(cmdLine string) cmdrunner.Result {
	r.calls = append(r.calls, cmdLine)
	queue, ok := r.responses[cmdLine]
	if !ok || len(queue) == 0 {
		return r.Default
	}
	result := queue[0]
	if len(queue) > 1 {
		r.responses[cmdLine] = queue[1:]
	}
	return result
}

// Calls returns every command line run so far, in order.
func (r *Runner) Calls() []string {
	return append([]string(nil), r.calls...)
}

// CallCount returns how often cmdLine was run.
func (r *Runner) CallCount(cmdLine string) int {
	n := 0
	for _, c := range r.calls {
		if c == cmdLine {
			n++
		}
	}
	return n
}

// CalledWithPrefix reports whether any command line run starts with prefix.
func (r *Runner) CalledWithPrefix(prefix string) bool {
	for _, c := range r.calls {
		if strings.HasPrefix(c, prefix) {
			return true
		}
	}
	return false
}

// Ok is a successful Result with output.
func Ok(output string) cmdrunner.Result {
	return cmdrunner.Result{Output: output}
}

// Fail is a Result with a non-zero exit code.
func Fail(code int, output string) cmdrunner.Result {
	return cmdrunner.Result{Output: output, ExitCode: code}
}
