package cmdrunner

// Synchronous execution of shell command lines against the cluster.
import (
	"os"
	"os/exec"
	"sort"
	"strings"

	errors "github.com/pkg/errors"
	logf "sigs.k8s.io/controller-runtime/pkg/log"
)

// ErrMissingEnv is returned when an environment variable the runner passes on
// to child processes is not set.
var ErrMissingEnv = errors.New("required environment variable is not set")

// Result is the fully buffered outcome of one command line: stdout and stderr
// merged, and the exit status. A command that could not be started reports
// exit code -1.
type Result struct {
	Output   string
	ExitCode int
}

// Succeeded reports whether the command exited with status 0.
func (r Result) Succeeded() bool {
	return r.ExitCode == 0
}

// Executor runs a command line to completion.
type Executor interface {
	Run(cmdLine string) Result
}

// Runner executes command lines through "sh -c" with a restricted
// environment: KUBECONFIG, PATH and whatever was added with Setenv.
type Runner struct {
	Dir string
	env map[string]string
}

// New returns a Runner working in the current directory.
func New() (*Runner, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return NewInDir(dir)
}

// NewInDir returns a Runner working in dir.
func NewInDir(dir string) (*Runner, error) {
	r := &Runner{Dir: dir, env: map[string]string{}}
	for _, key := range []string{"KUBECONFIG", "PATH"} {
		value, ok := os.LookupEnv(key)
		if !ok || value == "" {
			return nil, errors.Wrapf(ErrMissingEnv, "%s needs to be set in the environment", key)
		}
		if err := r.Setenv(key, value); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Setenv adds a variable to the environment of every subsequent command.
func (r *Runner) Setenv(key, value string) error {
	if key == "" || value == "" {
		return errors.Errorf("name or value of the environment variable cannot be empty: [%s = %s]", key, value)
	}
	r.env[key] = value
	return nil
}

func (r *Runner) environ() []string {
	env := make([]string, 0, len(r.env))
	for k, v := range r.env {
		env = append(env, k+"="+v)
	}
	sort.Strings(env)
	return env
}

// Run executes cmdLine and waits for it. A non-zero exit status is returned
// in the Result, never as an error.
func (r *Runner) Run(cmdLine string) Result {
	return r.run(cmdLine, nil)
}

// RunWithStdin executes cmdLine feeding stdin to the process.
func (r *Runner) RunWithStdin(cmdLine string, stdin string) Result {
	return r.run(cmdLine, &stdin)
}

func (r *Runner) run(cmdLine string, stdin *string) Result {
	cmd := exec.Command("sh", "-c", cmdLine)
	cmd.Dir = r.Dir
	cmd.Env = r.environ()
	if stdin != nil {
		cmd.Stdin = strings.NewReader(*stdin)
	}
	out, err := cmd.CombinedOutput()
	result := Result{Output: string(out)}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = -1
			result.Output += err.Error()
		}
		logf.Log.Info("Command failed", "cmd", cmdLine, "code", result.ExitCode, "output", result.Output)
	}
	return result
}
