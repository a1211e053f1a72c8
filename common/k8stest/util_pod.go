package k8stest

import (
	"context"
	"io/ioutil"
	"time"

	"csi-shared-resource-e2e/common"

	errors "github.com/pkg/errors"
	corev1 "k8s.io/api/core/v1"
	k8serrors "k8s.io/apimachinery/pkg/api/errors"
	metaV1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	"k8s.io/apimachinery/pkg/util/wait"
	logf "sigs.k8s.io/controller-runtime/pkg/log"
)

const (
	csiVolumeName  = "my-csi-volume"
	containerName  = "my-frontend"
	defaultImage   = "quay.io/quay/busybox"
	podPollSeconds = 2
)

// PodBuilder is the builder object for a test pod mounting shared resources
type PodBuilder struct {
	pod  *corev1.Pod
	errs []error
}

// NewPodBuilder returns a builder for a single container pod that sleeps.
func NewPodBuilder() *PodBuilder {
	return &PodBuilder{pod: &corev1.Pod{
		Spec: corev1.PodSpec{
			Containers: []corev1.Container{{
				Name:    containerName,
				Image:   defaultImage,
				Command: []string{"sleep", "1000000"},
			}},
			ServiceAccountName: "default",
		},
	}}
}

// WithName sets the Name field of Pod with provided value.
func (b *PodBuilder) WithName(name string) *PodBuilder {
	if len(name) == 0 {
		b.errs = append(b.errs, errors.New("failed to build Pod object: missing Pod name"))
		return b
	}
	b.pod.Name = name
	return b
}

// WithNamespace sets the Namespace field of Pod with provided value.
func (b *PodBuilder) WithNamespace(namespace string) *PodBuilder {
	if len(namespace) == 0 {
		b.errs = append(b.errs, errors.New("failed to build Pod object: missing namespace"))
		return b
	}
	b.pod.Namespace = namespace
	return b
}

// WithCommand replaces the container command.
func (b *PodBuilder) WithCommand(cmd ...string) *PodBuilder {
	if len(cmd) == 0 {
		b.errs = append(b.errs, errors.New("failed to build Pod object: missing command"))
		return b
	}
	b.pod.Spec.Containers[0].Command = cmd
	return b
}

// WithSharedResource adds a read only CSI volume publishing the shared
// resource name of kind, mounted at mountPath.
func (b *PodBuilder) WithSharedResource(kind common.ShareKind, name string, mountPath string) *PodBuilder {
	var attr string
	switch kind {
	case common.ShareConfigMap:
		attr = "sharedConfigMap"
	case common.ShareSecret:
		attr = "sharedSecret"
	default:
		b.errs = append(b.errs, errors.Errorf("failed to build Pod object: unknown share kind %q", kind))
		return b
	}
	if len(name) == 0 {
		b.errs = append(b.errs, errors.New("failed to build Pod object: missing shared resource name"))
		return b
	}
	readOnly := true
	volName := csiVolumeName
	if n := len(b.pod.Spec.Volumes); n != 0 {
		volName = csiVolumeName + "-" + string(rune('a'+n))
	}
	b.pod.Spec.Volumes = append(b.pod.Spec.Volumes, corev1.Volume{
		Name: volName,
		VolumeSource: corev1.VolumeSource{
			CSI: &corev1.CSIVolumeSource{
				Driver:           common.CSIDriverName,
				ReadOnly:         &readOnly,
				VolumeAttributes: map[string]string{attr: name},
			},
		},
	})
	b.pod.Spec.Containers[0].VolumeMounts = append(b.pod.Spec.Containers[0].VolumeMounts, corev1.VolumeMount{
		Name:      volName,
		MountPath: mountPath,
	})
	return b
}

// Build returns the Pod API instance
func (b *PodBuilder) Build() (*corev1.Pod, error) {
	if len(b.errs) > 0 {
		return nil, utilerrors.NewAggregate(b.errs)
	}
	return b.pod, nil
}

// BuildAndCreate builds the pod and creates it, an existing pod is kept.
func (b *PodBuilder) BuildAndCreate() error {
	pod, err := b.Build()
	if err != nil {
		return err
	}
	client, err := kubeInt()
	if err != nil {
		return err
	}
	logf.Log.Info("Creating", "pod", pod.Name, "namespace", pod.Namespace)
	_, err = client.CoreV1().Pods(pod.Namespace).Create(context.TODO(), pod, metaV1.CreateOptions{})
	if k8serrors.IsAlreadyExists(err) {
		return nil
	}
	return err
}

// IsPodRunning reports whether podName is in phase Running.
func IsPodRunning(podName string, nameSpace string) bool {
	client, err := kubeInt()
	if err != nil {
		return false
	}
	pod, err := client.CoreV1().Pods(nameSpace).Get(context.TODO(), podName, metaV1.GetOptions{})
	if err != nil {
		return false
	}
	return pod.Status.Phase == corev1.PodRunning
}

// WaitPodRunning polls until podName is running or timeoutSecs elapse.
func WaitPodRunning(podName string, nameSpace string, timeoutSecs int) error {
	err := wait.PollImmediate(podPollSeconds*time.Second, time.Duration(timeoutSecs)*time.Second, func() (bool, error) {
		running := IsPodRunning(podName, nameSpace)
		if !running {
			logf.Log.Info("Waiting for pod", "pod", podName, "namespace", nameSpace)
		}
		return running, nil
	})
	return errors.Wrapf(err, "pod %s/%s not running", nameSpace, podName)
}

// GetPodLogs returns the logs of the first container of podName.
func GetPodLogs(podName string, nameSpace string) (string, error) {
	client, err := kubeInt()
	if err != nil {
		return "", err
	}
	stream, err := client.CoreV1().Pods(nameSpace).GetLogs(podName, &corev1.PodLogOptions{}).Stream(context.TODO())
	if err != nil {
		return "", errors.Wrapf(err, "get logs of pod %s/%s", nameSpace, podName)
	}
	defer stream.Close()
	b, err := ioutil.ReadAll(stream)
	if err != nil {
		return "", errors.Wrapf(err, "read logs of pod %s/%s", nameSpace, podName)
	}
	return string(b), nil
}
