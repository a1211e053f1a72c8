package share

// Bookkeeping of the shared resources a scenario created, by kind.
import (
	"sort"

	errors "github.com/pkg/errors"
)

var (
	// ErrDuplicateResource is returned when a resource name is registered twice.
	ErrDuplicateResource = errors.New("resource already registered")
	// ErrKindNotRegistered is returned when resolving a kind nothing was registered under.
	ErrKindNotRegistered = errors.New("no resource registered for kind")
	// ErrEmptyName is returned when registering an empty resource or kind name.
	ErrEmptyName = errors.New("resource and kind names must not be empty")
)

// ShareResource lists the underlying resource names published under one
// shared resource kind, in registration order.
type ShareResource struct {
	Resource string
	CSI      []string
}

// First returns the first registered resource name.
func (s *ShareResource) First() (string, bool) {
	if len(s.CSI) == 0 {
		return "", false
	}
	return s.CSI[0], true
}

// Registry maps kinds to their ShareResource. A resource name belongs to at
// most one kind. A Registry lives for one scenario and is not safe for
// concurrent use.
type Registry struct {
	registered map[string]string
	kinds      map[string]*ShareResource
}

func NewRegistry() *Registry {
	return &Registry{
		registered: map[string]string{},
		kinds:      map[string]*ShareResource{},
	}
}

// Register records name under kind.
func (r *Registry) Register(name string, kind string) error {
	if name == "" || kind == "" {
		return errors.Wrapf(ErrEmptyName, "register %q under %q", name, kind)
	}
	if owner, ok := r.registered[name]; ok {
		return errors.Wrapf(ErrDuplicateResource, "%q is registered under %q", name, owner)
	}
	sr, ok := r.kinds[kind]
	if !ok {
		sr = &ShareResource{Resource: kind}
		r.kinds[kind] = sr
	}
	sr.CSI = append(sr.CSI, name)
	r.registered[name] = kind
	return nil
}

// Resolve returns the first name registered under kind.
func (r *Registry) Resolve(kind string) (string, error) {
	if sr, ok := r.kinds[kind]; ok {
		if name, ok := sr.First(); ok {
			return name, nil
		}
	}
	return "", errors.Wrapf(ErrKindNotRegistered, "kind %q", kind)
}

// Lookup returns the ShareResource of kind, if any.
func (r *Registry) Lookup(kind string) (*ShareResource, bool) {
	sr, ok := r.kinds[kind]
	return sr, ok
}

// Kinds returns the registered kinds, sorted.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.kinds))
	for k := range r.kinds {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
