package k8stest

import (
	"io"

	errors "github.com/pkg/errors"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/klog/v2"
	"sigs.k8s.io/controller-runtime/pkg/client/config"
	logf "sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
)

type TestEnvironment struct {
	Cfg     *rest.Config
	KubeInt kubernetes.Interface
}

var gTestEnv TestEnvironment

// SetupLogging routes controller-runtime and klog output to w.
func SetupLogging(w io.Writer) {
	logger := zap.New(zap.UseDevMode(true), zap.WriteTo(w))
	logf.SetLogger(logger)
	klog.SetLogger(logger)
}

// SetupTestEnv connects to the cluster named by KUBECONFIG (or the in-cluster
// config).
func SetupTestEnv() error {
	restConfig, err := config.GetConfig()
	if err != nil {
		return errors.Wrap(err, "failed to load kubeconfig")
	}
	kubeInt, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return errors.Wrap(err, "failed to create clientset")
	}
	gTestEnv = TestEnvironment{
		Cfg:     restConfig,
		KubeInt: kubeInt,
	}
	return nil
}

// SetupTestEnvWithClient uses kubeInt instead of connecting to a cluster.
func SetupTestEnvWithClient(kubeInt kubernetes.Interface) {
	gTestEnv = TestEnvironment{KubeInt: kubeInt}
}

// TeardownTestEnv drops the clients, the cluster itself is untouched.
func TeardownTestEnv() {
	logf.Log.Info("TeardownTestEnv")
	gTestEnv = TestEnvironment{}
}

func kubeInt() (kubernetes.Interface, error) {
	if gTestEnv.KubeInt == nil {
		return nil, errors.New("test environment is not set up")
	}
	return gTestEnv.KubeInt, nil
}
