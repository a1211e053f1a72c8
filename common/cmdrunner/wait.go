package cmdrunner

import (
	"strings"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"
	logf "sigs.k8s.io/controller-runtime/pkg/log"
)

// WaitForStatus re-runs cmdLine every interval until its output contains
// status. The command runs at most timeout/interval times; the last Result
// is returned either way.
func WaitForStatus(e Executor, cmdLine string, status string, interval time.Duration, timeout time.Duration) (bool, Result) {
	result := Result{ExitCode: -1}
	if interval <= 0 {
		interval = time.Second
	}
	for elapsed := time.Duration(0); elapsed+interval <= timeout; elapsed += interval {
		result = e.Run(cmdLine)
		if strings.Contains(result.Output, status) {
			return true, result
		}
		time.Sleep(interval)
	}
	logf.Log.Info("Timed out waiting for status", "cmd", cmdLine, "status", status)
	return false, result
}

// WaitForOutput polls cmdLine until its output contains expected or timeout
// elapses.
func WaitForOutput(e Executor, cmdLine string, expected string, timeout time.Duration, interval time.Duration) (bool, Result) {
	result := Result{ExitCode: -1}
	err := wait.PollImmediate(interval, timeout, func() (bool, error) {
		result = e.Run(cmdLine)
		return strings.Contains(result.Output, expected), nil
	})
	if err != nil {
		logf.Log.Info("Timed out waiting for expected output", "cmd", cmdLine, "expected", expected)
		return false, result
	}
	return true, result
}
