package fake

import (
	"fmt"
	"sort"
	"strings"

	"csi-shared-resource-e2e/common/cmdrunner"
)

const defaultServer = "https://api.example:6443"

// Cluster is an in-memory stand-in for the cluster command line client. It
// understands the verbs the suite issues and answers with the phrasings the
// real client uses. Anything else, scripts included, is looked up in Extra by
// command line prefix.
type Cluster struct {
	Binary    string
	Server    string
	APIGroup  string
	Reachable bool
	// Extra answers command lines the cluster does not model, by prefix.
	Extra map[string]cmdrunner.Result

	projects  map[string]bool
	current   string
	resources map[string]map[string]bool
	podLogs   map[string]string
	applied   []string
	calls     []string
}

// NewCluster returns a reachable cluster holding the "default" project.
func NewCluster(binary string) *Cluster {
	return &Cluster{
		Binary:    binary,
		Server:    defaultServer,
		APIGroup:  "openshift.io",
		Reachable: true,
		Extra:     map[string]cmdrunner.Result{},
		projects:  map[string]bool{"default": true},
		current:   "default",
		resources: map[string]map[string]bool{},
		podLogs:   map[string]string{},
	}
}

func (c *Cluster) AddProject(name string) {
	c.projects[name] = true
}

func (c *Cluster) HasProject(name string) bool {
	return c.projects[name]
}

// Projects returns the project names, sorted.
func (c *Cluster) Projects() []string {
	names := make([]string, 0, len(c.projects))
	for name := range c.projects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *Cluster) Current() string {
	return c.current
}

func (c *Cluster) SetCurrent(name string) {
	c.current = name
}

func (c *Cluster) AddResource(kind string, name string) {
	if c.resources[kind] == nil {
		c.resources[kind] = map[string]bool{}
	}
	c.resources[kind][name] = true
}

func (c *Cluster) HasResource(kind string, name string) bool {
	return c.resources[kind][name]
}

func (c *Cluster) SetPodLogs(pod string, logs string) {
	c.podLogs[pod] = logs
}

// Applied returns the manifest files applied so far.
func (c *Cluster) Applied() []string {
	return append([]string(nil), c.applied...)
}

// Calls returns every command line run so far, in order.
func (c *Cluster) Calls() []string {
	return append([]string(nil), c.calls...)
}

func (c *Cluster) Run(cmdLine string) cmdrunner.Result {
	c.calls = append(c.calls, cmdLine)
	if result, ok := c.extra(cmdLine); ok {
		return result
	}
	if !strings.HasPrefix(cmdLine, c.Binary+" ") {
		return Fail(127, fmt.Sprintf("sh: %s: not found", strings.Fields(cmdLine)[0]))
	}
	if !c.Reachable {
		return Fail(1, fmt.Sprintf("Unable to connect to the server: dial tcp: lookup %s: no such host",
			strings.TrimPrefix(c.Server, "https://")))
	}

	if pipe := strings.Index(cmdLine, "|"); pipe >= 0 {
		return c.grep(cmdLine[:pipe], strings.TrimSpace(cmdLine[pipe+1:]))
	}
	args := strings.Fields(strings.TrimPrefix(cmdLine, c.Binary+" "))
	switch {
	case len(args) == 2 && args[0] == "new-project":
		return c.newProject(args[1])
	case len(args) == 2 && args[0] == "project" && args[1] == "-q":
		return Ok(c.current + "\n")
	case len(args) == 2 && args[0] == "project":
		return c.switchProject(args[1])
	case len(args) == 2 && args[0] == "projects" && args[1] == "-q":
		return Ok(strings.Join(c.Projects(), "\n") + "\n")
	case len(args) == 3 && args[0] == "get" && (args[1] == "ns" || args[1] == "project"):
		return c.getProject(args[1], args[2])
	case len(args) == 3 && args[0] == "delete" && args[1] == "project":
		return c.deleteProject(args[2])
	case len(args) == 2 && args[0] == "get":
		return c.list(args[1])
	case len(args) == 4 && args[0] == "get" && args[2] == "-n":
		return c.list(args[1])
	case len(args) == 5 && args[0] == "get" && args[3] == "-n":
		return c.getResource(args[1], args[2])
	case len(args) >= 3 && args[0] == "delete":
		return c.deleteResource(args[1], args[2], contains(args, "--ignore-not-found"))
	case len(args) >= 3 && args[0] == "apply" && args[1] == "-f":
		c.applied = append(c.applied, args[2])
		return Ok(fmt.Sprintf("%s applied\n", args[2]))
	case len(args) >= 2 && args[0] == "logs":
		if logs, ok := c.podLogs[args[1]]; ok {
			return Ok(logs)
		}
		return Fail(1, fmt.Sprintf("Error from server (NotFound): pods %q not found", args[1]))
	}
	return Fail(1, fmt.Sprintf("error: unknown command %q", strings.Join(args, " ")))
}

// extra returns the Extra result with the longest prefix of cmdLine.
func (c *Cluster) extra(cmdLine string) (cmdrunner.Result, bool) {
	best := ""
	found := false
	for prefix := range c.Extra {
		if strings.HasPrefix(cmdLine, prefix) && (!found || len(prefix) > len(best)) {
			best, found = prefix, true
		}
	}
	return c.Extra[best], found
}

func (c *Cluster) newProject(name string) cmdrunner.Result {
	if c.projects[name] {
		return Fail(1, fmt.Sprintf("Error from server (AlreadyExists): project.project.%s %q already exists", c.APIGroup, name))
	}
	c.projects[name] = true
	c.current = name
	return Ok(fmt.Sprintf("Now using project %q on server %q.\n\nYou can add applications to this project with the 'new-app' command.\n", name, c.Server))
}

func (c *Cluster) switchProject(name string) cmdrunner.Result {
	if !c.projects[name] {
		return Fail(1, fmt.Sprintf("error: A project named %q does not exist on %q.", name, c.Server))
	}
	if c.current == name {
		return Ok(fmt.Sprintf("Already on project %q on server %q.\n", name, c.Server))
	}
	c.current = name
	return Ok(fmt.Sprintf("Now using project %q on server %q.\n", name, c.Server))
}

func (c *Cluster) getProject(resource string, name string) cmdrunner.Result {
	if !c.projects[name] {
		plural := "namespaces"
		if resource == "project" {
			plural = "projects.project." + c.APIGroup
		}
		return Fail(1, fmt.Sprintf("Error from server (NotFound): %s %q not found", plural, name))
	}
	return Ok(fmt.Sprintf("NAME   STATUS   AGE\n%s   Active   1d\n", name))
}

func (c *Cluster) deleteProject(name string) cmdrunner.Result {
	if !c.projects[name] {
		return Fail(1, fmt.Sprintf("Error from server (NotFound): projects.project.%s %q not found", c.APIGroup, name))
	}
	delete(c.projects, name)
	if c.current == name {
		c.current = ""
	}
	return Ok(fmt.Sprintf("project.project.%s %q deleted\n", c.APIGroup, name))
}

func (c *Cluster) list(kind string) cmdrunner.Result {
	names := make([]string, 0, len(c.resources[kind]))
	for name := range c.resources[kind] {
		names = append(names, name)
	}
	if len(names) == 0 {
		return Ok("No resources found\n")
	}
	sort.Strings(names)
	return Ok("NAME\n" + strings.Join(names, "\n") + "\n")
}

// getResource reports every known object as Running.
func (c *Cluster) getResource(kind string, name string) cmdrunner.Result {
	if !c.resources[kind][name] {
		return Fail(1, fmt.Sprintf("Error from server (NotFound): %s %q not found", kind, name))
	}
	return Ok(fmt.Sprintf("NAME   READY   STATUS    RESTARTS   AGE\n%s   1/1     Running   0          5s\n", name))
}

func (c *Cluster) deleteResource(kind string, name string, ignoreNotFound bool) cmdrunner.Result {
	if !c.resources[kind][name] {
		if ignoreNotFound {
			return Ok("")
		}
		return Fail(1, fmt.Sprintf("Error from server (NotFound): %s %q not found", kind, name))
	}
	delete(c.resources[kind], name)
	return Ok(fmt.Sprintf("%s %q deleted\n", kind, name))
}

// grep answers "<binary> get projects | grep <substr>".
func (c *Cluster) grep(cmdLine string, filter string) cmdrunner.Result {
	fields := strings.Fields(filter)
	if len(fields) == 3 && fields[1] == "--" {
		fields = []string{fields[0], strings.Trim(fields[2], "'")}
	}
	if len(fields) != 2 || fields[0] != "grep" || strings.TrimSpace(cmdLine) != c.Binary+" get projects" {
		return Fail(1, "error: unsupported pipeline")
	}
	var matched []string
	for _, name := range c.Projects() {
		if strings.Contains(name, fields[1]) {
			matched = append(matched, name+"   Active")
		}
	}
	if len(matched) == 0 {
		return Fail(1, "")
	}
	return Ok(strings.Join(matched, "\n") + "\n")
}

func contains(args []string, arg string) bool {
	for _, a := range args {
		if a == arg {
			return true
		}
	}
	return false
}
