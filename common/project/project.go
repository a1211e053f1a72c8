package project

// Project (namespace) lifecycle driven through the cluster command line client.
import (
	"fmt"
	"strings"

	"csi-shared-resource-e2e/common/classify"
	"csi-shared-resource-e2e/common/cmdrunner"

	errors "github.com/pkg/errors"
	"k8s.io/apimachinery/pkg/util/validation"
	logf "sigs.k8s.io/controller-runtime/pkg/log"
)

// Client runs project commands. Operations are single shot, callers assert
// on the returned values.
type Client struct {
	runner     cmdrunner.Executor
	classifier *classify.Classifier
	binary     string
}

func NewClient(runner cmdrunner.Executor, classifier *classify.Classifier, binary string) *Client {
	return &Client{runner: runner, classifier: classifier, binary: binary}
}

func (c *Client) cmd(format string, args ...interface{}) string {
	return c.binary + " " + fmt.Sprintf(format, args...)
}

func validName(name string) bool {
	if errs := validation.IsDNS1123Label(name); len(errs) != 0 {
		logf.Log.Info("Invalid project name", "name", name, "errors", errs)
		return false
	}
	return true
}

// quote makes s a single shell word.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// IsPresent reports whether the namespace name exists, by exit code only.
func (c *Client) IsPresent(name string) bool {
	if !validName(name) {
		return false
	}
	return c.runner.Run(c.cmd("get ns %s", name)).Succeeded()
}

// CurrentProject returns the name of the selected project as reported by the
// client, surrounding whitespace removed.
func (c *Client) CurrentProject() string {
	return strings.TrimSpace(c.runner.Run(c.cmd("project -q")).Output)
}

// ListAll returns the raw project listing, one project per line. Lines may
// carry decorations, search it by substring.
func (c *Client) ListAll() string {
	return c.runner.Run(c.cmd("projects -q")).Output
}

// Create creates project name and leaves it selected. A project that
// already exists is selected instead.
func (c *Client) Create(name string) bool {
	if !validName(name) {
		return false
	}
	result := c.runner.Run(c.cmd("new-project %s", name))
	outcome := c.classifier.Project(name, result.Output)
	switch {
	case outcome.Kind == classify.Created:
		return true
	case outcome.Variant == classify.VariantAlreadyOnProject:
		return true
	case outcome.Variant == classify.VariantExistsInCluster:
		logf.Log.Info("Project already exists, switching to it", "project", name)
		return c.SwitchTo(name)
	default:
		logf.Log.Info("Unexpected output creating project",
			"project", name, "output", outcome.Raw, "expected", outcome.Expected)
		return false
	}
}

// SwitchTo selects project name.
func (c *Client) SwitchTo(name string) bool {
	if !validName(name) {
		return false
	}
	result := c.runner.Run(c.cmd("project %s", name))
	outcome := c.classifier.Project(name, result.Output)
	if outcome.Kind == classify.Created || outcome.Variant == classify.VariantAlreadyOnProject {
		return true
	}
	logf.Log.Info("Unexpected output switching project",
		"project", name, "output", outcome.Raw, "expected", outcome.Expected[:2])
	return false
}

// NamespaceExists reports whether any project listing line contains substr.
func (c *Client) NamespaceExists(substr string) bool {
	return c.runner.Run(c.cmd("get projects | grep -- %s", quote(substr))).Succeeded()
}

// CreateNamespace creates namespace name, exit code 0 is success.
func (c *Client) CreateNamespace(name string) bool {
	if !validName(name) {
		return false
	}
	result := c.runner.Run(c.cmd("new-project %s", name))
	if result.Succeeded() && c.classifier.Project(name, result.Output).Kind != classify.Created {
		logf.Log.Info("Namespace created without confirmation", "namespace", name, "output", result.Output)
	}
	return result.Succeeded()
}

// DeleteNamespace deletes namespace name, exit code 0 is success.
func (c *Client) DeleteNamespace(name string) bool {
	if !validName(name) {
		return false
	}
	result := c.runner.Run(c.cmd("delete project %s", name))
	if result.Succeeded() && !classify.Deleted(name, result.Output) {
		logf.Log.Info("Namespace deleted without confirmation", "namespace", name, "output", result.Output)
	}
	return result.Succeeded()
}

// RemoveNamespace deletes namespace name for cleanup. A namespace that is
// already gone, or already being deleted, is not an error.
func (c *Client) RemoveNamespace(name string) error {
	if !validName(name) {
		return errors.Errorf("invalid namespace name %q", name)
	}
	result := c.runner.Run(c.cmd("delete project %s", name))
	switch {
	case result.Succeeded():
		return nil
	case classify.NotFound(result.Output):
		logf.Log.Info("Namespace already deleted", "namespace", name)
		return nil
	case classify.Terminating(result.Output):
		logf.Log.Info("Namespace is terminating", "namespace", name)
		return nil
	}
	return errors.Errorf("delete namespace %s failed with code %d: %s", name, result.ExitCode, result.Output)
}

// Project returns a handle on project name.
func (c *Client) Project(name string) *Project {
	return &Project{Name: name, client: c}
}

// Project is a handle on one cluster namespace. Existence is never cached.
type Project struct {
	Name   string
	client *Client
}

func (p *Project) IsPresent() bool {
	return p.client.IsPresent(p.Name)
}

func (p *Project) Create() bool {
	return p.client.Create(p.Name)
}

func (p *Project) SwitchTo() bool {
	return p.client.SwitchTo(p.Name)
}

// Ensure creates the project when missing and selects it otherwise.
func (p *Project) Ensure() bool {
	if !p.IsPresent() {
		logf.Log.Info("Project is not present, creating project", "project", p.Name)
		return p.Create()
	}
	return p.SwitchTo()
}
