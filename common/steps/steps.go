// Package steps binds the scenario step phrases to the project, shared
// resource and cluster operations.
package steps

import (
	"context"
	"os"
	"path"
	"strings"
	"time"

	"csi-shared-resource-e2e/common"
	"csi-shared-resource-e2e/common/cmdrunner"
	"csi-shared-resource-e2e/common/fixtures"
	"csi-shared-resource-e2e/common/oc"
	"csi-shared-resource-e2e/common/project"
	"csi-shared-resource-e2e/common/scenario"

	"github.com/cucumber/godog"
	errors "github.com/pkg/errors"
	logf "sigs.k8s.io/controller-runtime/pkg/log"
)

// KubeClient reads and creates cluster objects through the API rather than
// the command line client.
type KubeClient interface {
	CreateSharePod(name string, namespace string, kind common.ShareKind, share string, mountPath string) error
	WaitPodRunning(name string, namespace string, timeoutSecs int) error
	GetPodLogs(name string, namespace string) (string, error)
	DaemonSetReady(name string, namespace string) (bool, error)
}

type Waits struct {
	StatusInterval  time.Duration
	StatusTimeout   time.Duration
	ResourceTimeout time.Duration
	OutputInterval  time.Duration
	OutputTimeout   time.Duration
	PodReadyTimeout time.Duration
}

func (w Waits) withDefaults() Waits {
	defaults := []struct {
		d   *time.Duration
		def time.Duration
	}{
		{&w.StatusInterval, 20 * time.Second},
		{&w.StatusTimeout, 180 * time.Second},
		{&w.ResourceTimeout, 180 * time.Second},
		{&w.OutputInterval, 10 * time.Second},
		{&w.OutputTimeout, 140 * time.Second},
		{&w.PodReadyTimeout, 120 * time.Second},
	}
	for _, d := range defaults {
		if *d.d <= 0 {
			*d.d = d.def
		}
	}
	return w
}

type Options struct {
	FixturesDir     string
	GeneratedDir    string
	ScriptsDir      string
	SharedNamespace string
	Marker          string
	DriverDaemonSet string
	Waits           Waits
}

type Deps struct {
	Controller *scenario.Controller
	OC         *oc.Client
	Projects   *project.Client
	// Kube is optional, steps fall back to the command line client.
	Kube KubeClient
}

type Suite struct {
	Deps
	opts Options
	defs []StepDef
}

// NewSuite builds the step table and validates it.
func NewSuite(deps Deps, opts Options) (*Suite, error) {
	if deps.Controller == nil || deps.OC == nil || deps.Projects == nil {
		return nil, errors.New("steps need a controller, a cluster client and a project client")
	}
	if opts.SharedNamespace == "" {
		opts.SharedNamespace = common.NSDefault
	}
	if opts.Marker == "" {
		opts.Marker = common.TestingNamespaceMarker
	}
	if opts.DriverDaemonSet == "" {
		opts.DriverDaemonSet = common.DriverDaemonSet
	}
	opts.Waits = opts.Waits.withDefaults()
	s := &Suite{Deps: deps, opts: opts}
	s.defs = s.table()
	if err := Validate(s.defs); err != nil {
		return nil, err
	}
	return s, nil
}

// Steps returns the step table.
func (s *Suite) Steps() []StepDef {
	return s.defs
}

func (s *Suite) table() []StepDef {
	return []StepDef{
		{`^Project "([^"]*)" is used$`, []ParamKind{String}, s.projectIsUsed},
		{`^Project \[([^\]]*)\] is used$`, []ParamKind{String}, s.projectFromEnvIsUsed},
		{`^we have a openshift tech-preview cluster$`, nil, s.techPreviewCluster},
		{`^the tech-preview feature gate "([^"]*)" is enabled$`, []ParamKind{String}, s.featureGateEnabled},
		{`^the csi driver daemonset is available in namespace "([^"]*)"$`, []ParamKind{String}, s.driverAvailable},
		{`^a testing namespace is created$`, nil, s.testingNamespaceCreated},
		{`^namespace "([^"]*)" should exist$`, []ParamKind{String}, s.namespaceShouldExist},
		{`^the shared (configmap|secret) "([^"]*)" is created from "([^"]*)" with data "([^"]*)"="([^"]*)"$`,
			[]ParamKind{String, String, String, String, String}, s.sharedResourceCreated},
		{`^script "([^"]*)" is run for the current project$`, []ParamKind{String}, s.scriptForProject},
		{`^script "([^"]*)" is run for shared (configmap|secret) in the current project$`,
			[]ParamKind{String, String}, s.scriptForShare},
		{`^pod "([^"]*)" mounting the shared (configmap|secret) at "([^"]*)" is created in the current project$`,
			[]ParamKind{String, String, String}, s.sharePodCreated},
		{`^pod "([^"]*)" should be running in the current project$`, []ParamKind{String}, s.podRunning},
		{`^pod "([^"]*)" should be running in the current project within (\d+) seconds$`,
			[]ParamKind{String, Int}, s.podRunningWithin},
		{`^pod "([^"]*)" logs should contain "([^"]*)"$`, []ParamKind{String, String}, s.podLogsContain},
		{`^the current project should be "([^"]*)"$`, []ParamKind{String}, s.currentProjectIs},
		{`^(\S+) "([^"]*)" should satisfy "([^"]*)" in the current project$`,
			[]ParamKind{String, String, String}, s.resourceSatisfies},
	}
}

// InitializeScenario registers the scenario hooks and every step.
func (s *Suite) InitializeScenario(sc *godog.ScenarioContext) {
	sc.Before(func(ctx context.Context, sn *godog.Scenario) (context.Context, error) {
		_, err := s.Controller.Before(sn.Name)
		return ctx, err
	})
	sc.After(func(ctx context.Context, sn *godog.Scenario, err error) (context.Context, error) {
		return ctx, s.Controller.After(err)
	})
	for _, d := range s.defs {
		sc.Step(d.Pattern, d.Handler)
	}
}

func (s *Suite) scenario() (*scenario.Context, error) {
	if c := s.Controller.Context(); c != nil {
		return c, nil
	}
	return nil, ErrNoScenario
}

func (s *Suite) currentNamespace() (string, error) {
	c, err := s.scenario()
	if err != nil {
		return "", err
	}
	if c.CurrentProject == "" {
		return "", errors.New("no project is used by the scenario")
	}
	return c.CurrentProject, nil
}

func (s *Suite) projectIsUsed(name string) error {
	c, err := s.scenario()
	if err != nil {
		return err
	}
	p := s.Projects.Project(name)
	if !p.Ensure() {
		return errors.Errorf("project %s is not created", name)
	}
	logf.Log.Info("Project is used", "project", name)
	c.UseProject(p)
	return nil
}

func (s *Suite) projectFromEnvIsUsed(env string) error {
	value, ok := os.LookupEnv(env)
	if !ok || value == "" {
		return errors.Wrapf(ErrMissingEnv, "%s", env)
	}
	logf.Log.Info("Project from environment", env, value)
	return s.projectIsUsed(value)
}

func (s *Suite) techPreviewCluster() error {
	c, err := s.scenario()
	if err != nil {
		return err
	}
	logf.Log.Info("Using", "project", c.CurrentProject)
	if result := s.OC.ProbeCluster(); !result.Succeeded() {
		return errors.Errorf("cluster probe failed with code %d: %s", result.ExitCode, result.Output)
	}
	return nil
}

func (s *Suite) featureGateEnabled(gate string) error {
	manifest, err := fixtures.EnableFeatureGate(s.fixture(common.FeatureGateFixture), s.opts.GeneratedDir, gate)
	if err != nil {
		return err
	}
	if result := s.OC.Apply(manifest, ""); !result.Succeeded() {
		return errors.Errorf("apply %s failed with code %d: %s", manifest, result.ExitCode, result.Output)
	}
	return nil
}

func (s *Suite) driverAvailable(namespace string) error {
	result := s.OC.GetDaemonSets(namespace)
	if !result.Succeeded() || !strings.Contains(result.Output, s.opts.DriverDaemonSet) {
		return errors.Errorf("daemonset %s not found in %s: %s", s.opts.DriverDaemonSet, namespace, result.Output)
	}
	if s.Kube == nil {
		return nil
	}
	ready, err := s.Kube.DaemonSetReady(s.opts.DriverDaemonSet, namespace)
	if err != nil {
		return err
	}
	if !ready {
		return errors.Errorf("daemonset %s/%s is not ready", namespace, s.opts.DriverDaemonSet)
	}
	return nil
}

func (s *Suite) testingNamespaceCreated() error {
	c, err := s.scenario()
	if err != nil {
		return err
	}
	name := fixtures.TestingNamespaceName(s.opts.Marker)
	if !s.Projects.CreateNamespace(name) {
		return errors.Errorf("namespace %s is not created", name)
	}
	c.UseProject(s.Projects.Project(name))
	return nil
}

func (s *Suite) namespaceShouldExist(substr string) error {
	if !s.Projects.NamespaceExists(substr) {
		return errors.Errorf("no namespace matching %q", substr)
	}
	return nil
}

func (s *Suite) sharedResourceCreated(kindText string, name string, fixture string, key string, value string) error {
	c, err := s.scenario()
	if err != nil {
		return err
	}
	kind, ok := common.ParseShareKind(kindText)
	if !ok {
		return errors.Errorf("unknown shared resource kind %q", kindText)
	}
	fixtureKind := fixtures.ConfigMap
	if kind == common.ShareSecret {
		fixtureKind = fixtures.Secret
	}
	manifest, err := fixtures.EditResourceYAML(s.fixture(fixture), map[string]interface{}{key: value}, fixtureKind, s.opts.GeneratedDir)
	if err != nil {
		return err
	}
	if result := s.OC.Apply(manifest, s.opts.SharedNamespace); !result.Succeeded() {
		return errors.Errorf("apply %s failed with code %d: %s", manifest, result.ExitCode, result.Output)
	}
	return c.Registry.Register(name, kind.String())
}

func (s *Suite) scriptForProject(script string) error {
	ns, err := s.currentNamespace()
	if err != nil {
		return err
	}
	return s.runScript(script, ns)
}

func (s *Suite) scriptForShare(script string, kindText string) error {
	c, err := s.scenario()
	if err != nil {
		return err
	}
	ns, err := s.currentNamespace()
	if err != nil {
		return err
	}
	kind, ok := common.ParseShareKind(kindText)
	if !ok {
		return errors.Errorf("unknown shared resource kind %q", kindText)
	}
	name, err := c.Registry.Resolve(kind.String())
	if err != nil {
		return err
	}
	return s.runScript(script, ns, name, kind.String())
}

func (s *Suite) runScript(script string, args ...string) error {
	if !path.IsAbs(script) {
		script = path.Join(s.opts.ScriptsDir, script)
	}
	result := s.OC.RunScript(script, args...)
	if !result.Succeeded() {
		return errors.Errorf("script %s failed with code %d: %s", script, result.ExitCode, result.Output)
	}
	return nil
}

func (s *Suite) sharePodCreated(pod string, kindText string, mountPath string) error {
	c, err := s.scenario()
	if err != nil {
		return err
	}
	if s.Kube == nil {
		return errors.New("creating pods needs an API client")
	}
	ns, err := s.currentNamespace()
	if err != nil {
		return err
	}
	kind, ok := common.ParseShareKind(kindText)
	if !ok {
		return errors.Errorf("unknown shared resource kind %q", kindText)
	}
	name, err := c.Registry.Resolve(kind.String())
	if err != nil {
		return err
	}
	return s.Kube.CreateSharePod(pod, ns, kind, name, mountPath)
}

func (s *Suite) podRunning(pod string) error {
	return s.waitPodRunning(pod, s.opts.Waits.PodReadyTimeout)
}

func (s *Suite) podRunningWithin(pod string, seconds int) error {
	return s.waitPodRunning(pod, time.Duration(seconds)*time.Second)
}

func (s *Suite) waitPodRunning(pod string, timeout time.Duration) error {
	ns, err := s.currentNamespace()
	if err != nil {
		return err
	}
	if s.Kube != nil {
		return s.Kube.WaitPodRunning(pod, ns, int(timeout.Seconds()))
	}
	ok, result := cmdrunner.WaitForStatus(s.OC.Runner(), s.OC.Cmd("get", "pod", pod, "-n", ns), "Running",
		s.opts.Waits.StatusInterval, timeout)
	if !ok {
		return errors.Errorf("pod %s/%s not running: %s", ns, pod, result.Output)
	}
	return nil
}

func (s *Suite) podLogsContain(pod string, text string) error {
	ns, err := s.currentNamespace()
	if err != nil {
		return err
	}
	ok, result := cmdrunner.WaitForOutput(s.OC.Runner(), s.OC.LogsCmd(pod, ns), text,
		s.opts.Waits.OutputTimeout, s.opts.Waits.OutputInterval)
	if ok {
		return nil
	}
	if s.Kube != nil {
		logs, err := s.Kube.GetPodLogs(pod, ns)
		if err != nil {
			return err
		}
		if strings.Contains(logs, text) {
			return nil
		}
		result.Output = logs
	}
	return errors.Errorf("logs of pod %s/%s do not contain %q: %s", ns, pod, text, result.Output)
}

func (s *Suite) resourceSatisfies(kind string, name string, condition string) error {
	ns, err := s.currentNamespace()
	if err != nil {
		return err
	}
	result := s.OC.WaitFor(kind, name, ns, condition, int(s.opts.Waits.ResourceTimeout.Seconds()))
	if !result.Succeeded() {
		return errors.Errorf("%s %s/%s does not satisfy %s: %s", kind, ns, name, condition, result.Output)
	}
	return nil
}

func (s *Suite) currentProjectIs(name string) error {
	if current := s.Projects.CurrentProject(); current != name {
		return errors.Errorf("current project is %q, expected %q", current, name)
	}
	return nil
}

func (s *Suite) fixture(name string) string {
	if path.IsAbs(name) {
		return name
	}
	return path.Join(s.opts.FixturesDir, name)
}
