package scenario

// Per-scenario setup and teardown.
import (
	"os"
	"strings"

	"csi-shared-resource-e2e/common"
	"csi-shared-resource-e2e/common/loki"
	"csi-shared-resource-e2e/common/oc"
	"csi-shared-resource-e2e/common/project"
	"csi-shared-resource-e2e/common/share"

	"github.com/google/uuid"
	errors "github.com/pkg/errors"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	logf "sigs.k8s.io/controller-runtime/pkg/log"
)

var (
	// ErrClusterUnreachable is returned by Before when the cluster probe fails.
	ErrClusterUnreachable = errors.New("cluster is not reachable")
	// ErrRunAborted is returned by Before once a probe failure aborted the run.
	ErrRunAborted = errors.New("run aborted after cluster probe failure")
	// ErrInvalidTransition is returned for calls outside the scenario state diagram.
	ErrInvalidTransition = errors.New("invalid scenario state transition")
)

// State of the controller: Idle -> PreScenario -> Active -> PostScenario -> Idle.
type State int

const (
	Idle State = iota
	PreScenario
	Active
	PostScenario
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case PreScenario:
		return "PreScenario"
	case Active:
		return "Active"
	case PostScenario:
		return "PostScenario"
	default:
		return "Unknown"
	}
}

// Context is owned by the controller and handed to the steps of one
// scenario. It is discarded at scenario end.
type Context struct {
	ID             string
	Name           string
	Project        *project.Project
	CurrentProject string
	Registry       *share.Registry
}

// UseProject records p as the project the scenario works in.
func (c *Context) UseProject(p *project.Project) {
	c.Project = p
	c.CurrentProject = p.Name
}

type Options struct {
	// Namespace the shared resources are deleted from.
	SharedNamespace string
	// Namespaces containing Marker are deleted after every scenario.
	Marker string
	// Latch a probe failure and fail every later scenario.
	AbortRunOnProbeFailure bool
}

// Controller sequences scenarios. Scenarios run one at a time, it is not
// safe for concurrent use.
type Controller struct {
	oc         *oc.Client
	projects   *project.Client
	opts       Options
	state      State
	current    *Context
	runAborted bool
}

func NewController(ocClient *oc.Client, projects *project.Client, opts Options) *Controller {
	if opts.SharedNamespace == "" {
		opts.SharedNamespace = common.NSDefault
	}
	if opts.Marker == "" {
		opts.Marker = common.TestingNamespaceMarker
	}
	return &Controller{oc: ocClient, projects: projects, opts: opts}
}

func (c *Controller) State() State {
	return c.state
}

// Context returns the context of the running scenario, nil between scenarios.
func (c *Controller) Context() *Context {
	return c.current
}

// Before checks the cluster is reachable and starts a scenario with a fresh
// Context.
func (c *Controller) Before(name string) (*Context, error) {
	if c.state != Idle {
		return nil, errors.Wrapf(ErrInvalidTransition, "before scenario %q in state %s", name, c.state)
	}
	if c.runAborted {
		return nil, errors.Wrapf(ErrRunAborted, "scenario %q", name)
	}
	c.state = PreScenario
	logf.Log.Info("Getting cluster status before scenario", "scenario", SubstituteEnvName(name))

	result := c.oc.ProbeCluster()
	logf.Log.Info("Cluster probe", "[CODE]", result.ExitCode, "[CMD]", result.Output)
	if !result.Succeeded() {
		c.state = Idle
		if c.opts.AbortRunOnProbeFailure {
			c.runAborted = true
		}
		return nil, errors.Wrapf(ErrClusterUnreachable, "probe exited with %d: %s", result.ExitCode, result.Output)
	}
	logf.Log.Info("Connected to cluster")

	c.current = &Context{
		ID:       uuid.New().String(),
		Name:     name,
		Registry: share.NewRegistry(),
	}
	c.state = Active
	loki.SendLokiMarker("Start of scenario " + name)
	return c.current, nil
}

// After tears the scenario down whatever its outcome. After without a
// running scenario (Before failed) does nothing.
func (c *Controller) After(scenarioErr error) error {
	switch c.state {
	case Idle:
		logf.Log.Info("No scenario running, nothing to clean up")
		return nil
	case Active:
	default:
		return errors.Wrapf(ErrInvalidTransition, "after scenario in state %s", c.state)
	}
	c.state = PostScenario
	name := c.current.Name
	logf.Log.Info("Clean up for scenario", "scenario", name, "id", c.current.ID, "failed", scenarioErr != nil)

	err := c.Teardown(c.current.Registry)

	c.current = nil
	c.state = Idle
	loki.SendLokiMarker("End of scenario " + name)
	return err
}

// Teardown deletes the shared resources and every namespace carrying the
// marker. Resources that are already gone are not errors, so Teardown can be
// repeated. registry may be nil.
func (c *Controller) Teardown(registry *share.Registry) error {
	var errs []error

	logf.Log.Info("Delete the created shared resources")
	for _, kind := range common.KnownShareKinds() {
		if !c.oc.IsResourceIn(kind.String()) {
			continue
		}
		for _, name := range shareNames(registry, kind) {
			if err := c.oc.Delete(kind.String(), name, c.opts.SharedNamespace); err != nil {
				logf.Log.Info("Failed to delete shared resource", "kind", kind, "name", name, "error", err)
				errs = append(errs, err)
			}
		}
	}

	logf.Log.Info("Delete the namespaces created for the scenario")
	for _, ns := range c.TestingNamespaces() {
		if err := c.projects.RemoveNamespace(ns); err != nil {
			logf.Log.Info("Failed to delete namespace", "namespace", ns, "error", err)
			errs = append(errs, err)
		}
	}
	return utilerrors.NewAggregate(errs)
}

// TestingNamespaces returns the projects whose name contains the marker.
func (c *Controller) TestingNamespaces() []string {
	var namespaces []string
	for _, line := range strings.Split(c.projects.ListAll(), "\n") {
		line = strings.TrimSpace(line)
		if strings.Contains(line, c.opts.Marker) {
			namespaces = append(namespaces, line)
		}
	}
	return namespaces
}

// shareNames returns the registered name for kind, if any, followed by the
// conventional name.
func shareNames(registry *share.Registry, kind common.ShareKind) []string {
	names := []string{}
	if registry != nil {
		if name, err := registry.Resolve(kind.String()); err == nil {
			names = append(names, name)
		}
	}
	if conventional := kind.ConventionalName(); conventional != "" && (len(names) == 0 || names[0] != conventional) {
		names = append(names, conventional)
	}
	return names
}

// SubstituteEnvName replaces TEST_NAMESPACE in a scenario name with the value
// of the TEST_NAMESPACE environment variable, when set.
func SubstituteEnvName(name string) string {
	value, ok := os.LookupEnv("TEST_NAMESPACE")
	if !ok || !strings.Contains(name, "TEST_NAMESPACE") {
		return name
	}
	return strings.ReplaceAll(name, "TEST_NAMESPACE", value)
}
