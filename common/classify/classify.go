// Package classify interprets the human readable output of the cluster
// command line client. Every phrasing the suite depends on lives here.
package classify

import (
	"fmt"
	"regexp"
	"strings"

	"csi-shared-resource-e2e/common"
)

// Kind is the outcome of a project creation or switch command.
type Kind int

const (
	Failed Kind = iota
	Created
	AlreadyExists
)

func (k Kind) String() string {
	switch k {
	case Created:
		return "Created"
	case AlreadyExists:
		return "AlreadyExists"
	default:
		return "Failed"
	}
}

// Variant tells the two AlreadyExists phrasings apart. Only
// VariantAlreadyOnProject guarantees the project is the selected one.
type Variant int

const (
	VariantNone Variant = iota
	// Already on project "<name>" on server ...
	VariantAlreadyOnProject
	// project.project.<group> "<name>" already exists
	VariantExistsInCluster
)

func (v Variant) String() string {
	switch v {
	case VariantAlreadyOnProject:
		return "AlreadyOnProject"
	case VariantExistsInCluster:
		return "ExistsInCluster"
	default:
		return "None"
	}
}

// Classification carries the outcome together with the raw text and the
// patterns that were tried, for diagnostics.
type Classification struct {
	Kind     Kind
	Variant  Variant
	Raw      string
	Expected []string
}

func (c Classification) String() string {
	return fmt.Sprintf("%s/%s", c.Kind, c.Variant)
}

// Classifier matches project command output for a given API group.
type Classifier struct {
	apiGroup string
}

var notFoundRe = regexp.MustCompile(`\(NotFound\)|\snot found`)
var noResourcesRe = regexp.MustCompile(`No resources found`)
var terminatingRe = regexp.MustCompile(`is ensuring all content is removed from this namespace`)

// New returns a Classifier for projects served by apiGroup, "openshift.io"
// when empty.
func New(apiGroup string) *Classifier {
	if apiGroup == "" {
		apiGroup = common.ProjectAPIGroup
	}
	return &Classifier{apiGroup: apiGroup}
}

type projectPatterns struct {
	created   *regexp.Regexp
	alreadyOn *regexp.Regexp
	exists    *regexp.Regexp
}

func (c *Classifier) patterns(name string) projectPatterns {
	quoted := regexp.QuoteMeta(name)
	return projectPatterns{
		created:   regexp.MustCompile(fmt.Sprintf(`Now using project "%s"\son\sserver`, quoted)),
		alreadyOn: regexp.MustCompile(fmt.Sprintf(`Already\son\sproject\s"%s"\son\sserver`, quoted)),
		exists: regexp.MustCompile(fmt.Sprintf(`project\.project\.%s\s"%s"\salready exists`,
			regexp.QuoteMeta(c.apiGroup), quoted)),
	}
}

// Project classifies the output of a project creation or switch for name.
// Anything unrecognised is Failed.
func (c *Classifier) Project(name string, output string) Classification {
	p := c.patterns(name)
	result := Classification{
		Raw:      output,
		Expected: []string{p.created.String(), p.alreadyOn.String(), p.exists.String()},
	}
	switch {
	case p.created.MatchString(output):
		result.Kind = Created
	case p.alreadyOn.MatchString(output):
		result.Kind, result.Variant = AlreadyExists, VariantAlreadyOnProject
	case p.exists.MatchString(output):
		result.Kind, result.Variant = AlreadyExists, VariantExistsInCluster
	default:
		result.Kind = Failed
	}
	return result
}

// Deleted reports whether output confirms deletion of name. Informational
// only, the exit code is authoritative.
func Deleted(name string, output string) bool {
	return strings.Contains(output, fmt.Sprintf("%q deleted", name))
}

// NotFound reports whether output is a "not found" error from the server.
func NotFound(output string) bool {
	return notFoundRe.MatchString(output)
}

// NoResources reports whether a listing came back empty.
func NoResources(output string) bool {
	return noResourcesRe.MatchString(output)
}

// Terminating reports whether output rejects a request because the namespace
// is already being deleted.
func Terminating(output string) bool {
	return terminatingRe.MatchString(output)
}
