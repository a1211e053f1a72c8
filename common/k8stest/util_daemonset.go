package k8stest

import (
	"context"

	metaV1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	logf "sigs.k8s.io/controller-runtime/pkg/log"
)

// DaemonSetReady reports whether every scheduled pod of the daemon set is
// ready and at least one is scheduled.
func DaemonSetReady(name string, nameSpace string) (bool, error) {
	client, err := kubeInt()
	if err != nil {
		return false, err
	}
	ds, err := client.AppsV1().DaemonSets(nameSpace).Get(context.TODO(), name, metaV1.GetOptions{})
	if err != nil {
		return false, err
	}
	status := ds.Status
	logf.Log.Info("DaemonSet", "name", name,
		"desired", status.DesiredNumberScheduled, "ready", status.NumberReady)
	return status.DesiredNumberScheduled > 0 && status.NumberReady == status.DesiredNumberScheduled, nil
}
