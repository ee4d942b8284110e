package tools

import "fmt"

// Registry is a static mapping from tool name to Tool. All registration
// happens at startup; after that the registry is read-only, so no locking
// is needed for lookups.
type Registry struct {
	byName map[string]Tool
	order  []string // registration order, used for the planner catalogue
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Tool)}
}

// Register adds a tool. Registering a name twice fails fast rather than
// silently overwriting.
func (r *Registry) Register(tool Tool) error {
	name := tool.Name()
	if name == "" {
		return fmt.Errorf("tool name must not be empty")
	}
	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateTool, name)
	}
	r.byName[name] = tool
	r.order = append(r.order, name)
	return nil
}

// Find returns the tool registered under name.
func (r *Registry) Find(name string) (Tool, error) {
	tool, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrToolNotFound, name)
	}
	return tool, nil
}

// All returns every registered tool in registration order.
func (r *Registry) All() []Tool {
	all := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		all = append(all, r.byName[name])
	}
	return all
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.byName)
}
