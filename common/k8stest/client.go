package k8stest

import (
	"csi-shared-resource-e2e/common"
)

// Client exposes the API backed helpers as methods, for callers holding an
// interface.
type Client struct{}

// CreateSharePod creates a pod mounting the shared resource share of kind at
// mountPath and printing the mounted files.
func (Client) CreateSharePod(name string, namespace string, kind common.ShareKind, share string, mountPath string) error {
	return NewPodBuilder().
		WithName(name).
		WithNamespace(namespace).
		WithCommand("sh", "-c", "ls -la "+mountPath+" && cat "+mountPath+"/* && sleep 1000000").
		WithSharedResource(kind, share, mountPath).
		BuildAndCreate()
}

func (Client) WaitPodRunning(name string, namespace string, timeoutSecs int) error {
	return WaitPodRunning(name, namespace, timeoutSecs)
}

func (Client) GetPodLogs(name string, namespace string) (string, error) {
	return GetPodLogs(name, namespace)
}

func (Client) DaemonSetReady(name string, namespace string) (bool, error) {
	return DaemonSetReady(name, namespace)
}
