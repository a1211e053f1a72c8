package oc

// Cluster command line verbs used by steps and teardown, other than the
// project lifecycle.
import (
	"fmt"
	"strings"

	"csi-shared-resource-e2e/common"
	"csi-shared-resource-e2e/common/classify"
	"csi-shared-resource-e2e/common/cmdrunner"

	errors "github.com/pkg/errors"
	logf "sigs.k8s.io/controller-runtime/pkg/log"
)

type Client struct {
	runner cmdrunner.Executor
	binary string
}

func New(runner cmdrunner.Executor, binary string) *Client {
	return &Client{runner: runner, binary: binary}
}

// Runner returns the executor commands are sent through.
func (c *Client) Runner() cmdrunner.Executor {
	return c.runner
}

// Cmd builds a command line for the client binary.
func (c *Client) Cmd(args ...string) string {
	return c.binary + " " + strings.Join(args, " ")
}

// ProbeCluster queries the "default" project, the cluster is reachable when
// this exits 0.
func (c *Client) ProbeCluster() cmdrunner.Result {
	return c.runner.Run(c.Cmd("get", "project", common.ClusterProbeProject))
}

// IsResourceIn reports whether at least one object of kind can be listed.
func (c *Client) IsResourceIn(kind string) bool {
	result := c.runner.Run(c.Cmd("get", kind))
	if !result.Succeeded() {
		return false
	}
	return strings.TrimSpace(result.Output) != "" && !classify.NoResources(result.Output)
}

// Delete removes name of kind from namespace. An object that is already gone
// is not an error.
func (c *Client) Delete(kind string, name string, namespace string) error {
	result := c.runner.Run(c.Cmd("delete", kind, name, "-n", namespace, "--ignore-not-found"))
	if result.Succeeded() || classify.NotFound(result.Output) {
		return nil
	}
	return errors.Errorf("delete %s %s in %s failed with code %d: %s", kind, name, namespace, result.ExitCode, result.Output)
}

// Apply applies a manifest file, into namespace when one is given.
func (c *Client) Apply(file string, namespace string) cmdrunner.Result {
	args := []string{"apply", "-f", file}
	if namespace != "" {
		args = append(args, "-n", namespace)
	}
	return c.runner.Run(c.Cmd(args...))
}

// GetDaemonSets lists the daemon sets of namespace.
func (c *Client) GetDaemonSets(namespace string) cmdrunner.Result {
	return c.runner.Run(c.Cmd("get", "ds", "-n", namespace))
}

// LogsCmd returns the command line printing the logs of pod.
func (c *Client) LogsCmd(pod string, namespace string) string {
	return c.Cmd("logs", pod, "-n", namespace)
}

// WaitFor blocks in "wait" until name of kind in namespace satisfies waitFor,
// e.g. "condition=Available".
func (c *Client) WaitFor(kind string, name string, namespace string, waitFor string, timeoutSeconds int) cmdrunner.Result {
	return c.runner.Run(c.Cmd("wait", "--for="+waitFor, fmt.Sprintf("--timeout=%ds", timeoutSeconds), kind, name, "-n", namespace))
}

// RunScript runs a helper script with args. Scripts talk to the cluster
// themselves, only the exit code and output are interpreted.
func (c *Client) RunScript(script string, args ...string) cmdrunner.Result {
	cmdLine := strings.Join(append([]string{script}, args...), " ")
	logf.Log.Info("Running script", "cmd", cmdLine)
	return c.runner.Run(cmdLine)
}
