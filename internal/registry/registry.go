// Package registry manages the catalog of template components available to
// profile templates. Registrations happen once at process startup; the
// registry is read-only during request handling, so compilations never
// contend on it.
package registry

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/a-h/templ"

	"github.com/threadstead/threadstead/internal/types"
)

// PropType is the declared type of a component property.
type PropType string

const (
	PropString  PropType = "string"
	PropNumber  PropType = "number"
	PropBoolean PropType = "boolean"
	PropEnum    PropType = "enum"
)

// PropSpec declares one property a component accepts.
type PropSpec struct {
	Type     PropType
	Required bool
	// Default substitutes for missing or uncoercible values.
	Default any
	// Enum lists the accepted values when Type == PropEnum.
	Enum []string
	// Min and Max bound numeric values when set.
	Min *float64
	Max *float64
}

// ComponentKind classifies how a component participates in the tree.
type ComponentKind int

const (
	// KindLeaf components take no template children.
	KindLeaf ComponentKind = iota
	// KindContainer components wrap arbitrary template children.
	KindContainer
)

// String returns the string representation of the component kind.
func (k ComponentKind) String() string {
	switch k {
	case KindLeaf:
		return "leaf"
	case KindContainer:
		return "container"
	default:
		return "unknown"
	}
}

// Implementation builds the renderable for one component occurrence from its
// validated props, the resident data context, and its already-rendered
// children.
type Implementation func(props map[string]any, data *types.ResidentData, children templ.Component) templ.Component

// Registration describes one usable template-language tag.
type Registration struct {
	// Name is the canonical component name, e.g. "ProfilePhoto".
	Name        string
	Description string
	// Implementation produces the live component instance.
	Implementation Implementation
	// Props is the property schema keyed by attribute name.
	Props map[string]PropSpec
	Kind  ComponentKind
	// Interactive components become hydratable islands; static ones render
	// inline only.
	Interactive bool
	// AcceptsChildren restricts which component names may nest inside a
	// container. Empty means any.
	AcceptsChildren []string
	// RequiredParent names the only component this one may appear under.
	// Empty means anywhere.
	RequiredParent string
}

// Event represents a change in the component registry.
type Event struct {
	Type         EventType
	Registration *Registration
	Timestamp    time.Time
}

// EventType represents the type of registry event.
type EventType int

const (
	EventTypeAdded EventType = iota
	EventTypeUpdated
	EventTypeRemoved
)

// String returns the string representation of the event type.
func (t EventType) String() string {
	switch t {
	case EventTypeAdded:
		return "added"
	case EventTypeUpdated:
		return "updated"
	case EventTypeRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Registry maps component names to their registrations. Lookups are
// case-insensitive because template authors write tag names in arbitrary
// case and the HTML tokenizer lowercases them anyway.
type Registry struct {
	components map[string]*Registration
	lowercase  map[string]string
	mutex      sync.RWMutex
	watchers   []chan Event
}

// New creates an empty component registry.
func New() *Registry {
	return &Registry{
		components: make(map[string]*Registration),
		lowercase:  make(map[string]string),
		watchers:   make([]chan Event, 0),
	}
}

// Register adds or updates a component registration.
func (r *Registry) Register(reg *Registration) error {
	if reg == nil || reg.Name == "" {
		return fmt.Errorf("registration requires a name")
	}
	if reg.Implementation == nil {
		return fmt.Errorf("component %s: registration requires an implementation", reg.Name)
	}
	for propName, spec := range reg.Props {
		if spec.Type == PropEnum && len(spec.Enum) == 0 {
			return fmt.Errorf("component %s: enum prop %q declares no values", reg.Name, propName)
		}
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	eventType := EventTypeAdded
	if _, exists := r.components[reg.Name]; exists {
		eventType = EventTypeUpdated
	}

	r.components[reg.Name] = reg
	r.lowercase[strings.ToLower(reg.Name)] = reg.Name

	r.notify(Event{
		Type:         eventType,
		Registration: reg,
		Timestamp:    time.Now(),
	})

	return nil
}

// Get retrieves a registration by exact name.
func (r *Registry) Get(name string) (*Registration, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	reg, exists := r.components[name]
	return reg, exists
}

// Lookup retrieves a registration by name, falling back to a
// case-insensitive match.
func (r *Registry) Lookup(name string) (*Registration, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if reg, exists := r.components[name]; exists {
		return reg, true
	}
	canonical, exists := r.lowercase[strings.ToLower(name)]
	if !exists {
		return nil, false
	}
	reg, exists := r.components[canonical]
	return reg, exists
}

// GetAll returns a snapshot of all registrations.
func (r *Registry) GetAll() map[string]*Registration {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make(map[string]*Registration, len(r.components))
	for name, reg := range r.components {
		result[name] = reg
	}
	return result
}

// Names returns all registered component names, sorted.
func (r *Registry) Names() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	names := make([]string, 0, len(r.components))
	for name := range r.components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Remove removes a component registration.
func (r *Registry) Remove(name string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	reg, exists := r.components[name]
	if !exists {
		return
	}

	delete(r.components, name)
	delete(r.lowercase, strings.ToLower(name))

	r.notify(Event{
		Type:         EventTypeRemoved,
		Registration: reg,
		Timestamp:    time.Now(),
	})
}

// Count returns the number of registered components.
func (r *Registry) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return len(r.components)
}

// Watch returns a channel that receives registry events.
func (r *Registry) Watch() <-chan Event {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	ch := make(chan Event, 100)
	r.watchers = append(r.watchers, ch)
	return ch
}

// UnWatch removes a watcher channel and closes it.
func (r *Registry) UnWatch(ch <-chan Event) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for i, watcher := range r.watchers {
		if watcher == ch {
			close(watcher)
			r.watchers = append(r.watchers[:i], r.watchers[i+1:]...)
			break
		}
	}
}

// notify is called with the mutex held.
func (r *Registry) notify(event Event) {
	for _, watcher := range r.watchers {
		select {
		case watcher <- event:
		default:
			// Skip if channel is full
		}
	}
}

// Float returns a pointer to v, for PropSpec bounds literals.
func Float(v float64) *float64 {
	return &v
}
