package steps

import (
	"time"

	"csi-shared-resource-e2e/common/classify"
	"csi-shared-resource-e2e/common/cmdrunner"
	"csi-shared-resource-e2e/common/e2e_config"
	"csi-shared-resource-e2e/common/locations"
	"csi-shared-resource-e2e/common/oc"
	"csi-shared-resource-e2e/common/project"
	"csi-shared-resource-e2e/common/scenario"
)

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// OptionsFromConfig returns the step options of the run configuration.
func OptionsFromConfig() (Options, error) {
	cfg := e2e_config.GetConfig()
	generated, err := locations.GetGeneratedYamlsDir()
	if err != nil {
		return Options{}, err
	}
	return Options{
		FixturesDir:     locations.GetFixturesDir(),
		GeneratedDir:    generated,
		ScriptsDir:      locations.GetScriptsDir(),
		SharedNamespace: cfg.SharedResourceNamespace,
		Marker:          cfg.TestNamespaceMarker,
		DriverDaemonSet: cfg.Driver.DaemonSet,
		Waits: Waits{
			StatusInterval:  seconds(cfg.Waits.StatusInterval),
			StatusTimeout:   seconds(cfg.Waits.StatusTimeout),
			ResourceTimeout: seconds(cfg.Waits.ResourceTimeout),
			OutputInterval:  seconds(cfg.Waits.OutputInterval),
			OutputTimeout:   seconds(cfg.Waits.OutputTimeout),
			PodReadyTimeout: seconds(cfg.Waits.PodReadyTimeout),
		},
	}, nil
}

// DepsFromConfig wires the clients and the scenario controller for the run
// configuration, sending commands through runner.
func DepsFromConfig(runner cmdrunner.Executor, kube KubeClient) Deps {
	cfg := e2e_config.GetConfig()
	ocClient := oc.New(runner, cfg.ClientBinary)
	projects := project.NewClient(runner, classify.New(cfg.ProjectAPIGroup), cfg.ClientBinary)
	controller := scenario.NewController(ocClient, projects, scenario.Options{
		SharedNamespace:        cfg.SharedResourceNamespace,
		Marker:                 cfg.TestNamespaceMarker,
		AbortRunOnProbeFailure: cfg.AbortRunOnProbeFailure,
	})
	return Deps{
		Controller: controller,
		OC:         ocClient,
		Projects:   projects,
		Kube:       kube,
	}
}

// FromConfig builds a Suite for the run configuration executing commands in
// the current directory.
func FromConfig(kube KubeClient) (*Suite, error) {
	runner, err := cmdrunner.New()
	if err != nil {
		return nil, err
	}
	opts, err := OptionsFromConfig()
	if err != nil {
		return nil, err
	}
	return NewSuite(DepsFromConfig(runner, kube), opts)
}
