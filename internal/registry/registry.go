package registry

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/golovatskygroup/mcp-netlify/internal/netlify"
	"github.com/golovatskygroup/mcp-netlify/pkg/mcp"
)

// Call is a validated tool invocation, ready to be turned into exactly one
// outbound request.
type Call struct {
	// Subject names the addressed resource (e.g. a site id) for messages.
	Subject string
	Build   func() netlify.Request
	Shape   func(body []byte) (any, error)
}

// Spec describes one tool. Specs are created once and never mutated.
type Spec struct {
	Name        string
	Description string
	InputSchema json.RawMessage
	// Operation is the human phrase used in failure messages ("create site").
	Operation string
	// NotFoundIsCallerError turns a remote 404 into an invalid-params error
	// naming Call.Subject.
	NotFoundIsCallerError bool
	// Validate checks raw arguments and returns the first violation found.
	Validate func(args map[string]any) (Call, error)
}

// Tool returns the discovery view of the spec.
func (s Spec) Tool() mcp.Tool {
	return mcp.Tool{Name: s.Name, Description: s.Description, InputSchema: s.InputSchema}
}

// Registry is a closed, read-only set of tool specs.
type Registry struct {
	specs   []Spec
	byName  map[string]int
	schemas map[string]*jsonschema.Schema
}

// New builds a registry. Every input schema must compile.
func New(specs ...Spec) (*Registry, error) {
	r := &Registry{
		specs:   make([]Spec, 0, len(specs)),
		byName:  make(map[string]int, len(specs)),
		schemas: make(map[string]*jsonschema.Schema, len(specs)),
	}
	for _, s := range specs {
		if strings.TrimSpace(s.Name) == "" {
			return nil, fmt.Errorf("tool spec without a name")
		}
		if _, dup := r.byName[s.Name]; dup {
			return nil, fmt.Errorf("duplicate tool %q", s.Name)
		}
		if s.Validate == nil {
			return nil, fmt.Errorf("tool %q has no validator", s.Name)
		}
		compiled, err := jsonschema.CompileString(s.Name+".json", string(s.InputSchema))
		if err != nil {
			return nil, fmt.Errorf("invalid inputSchema for %s: %w", s.Name, err)
		}
		r.byName[s.Name] = len(r.specs)
		r.specs = append(r.specs, s)
		r.schemas[s.Name] = compiled
	}
	return r, nil
}

// Lookup returns the spec registered under name.
func (r *Registry) Lookup(name string) (Spec, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Spec{}, false
	}
	return r.specs[i], true
}

// List returns all specs in registration order.
func (r *Registry) List() []Spec {
	out := make([]Spec, len(r.specs))
	copy(out, r.specs)
	return out
}

// Tools returns the discovery view of every spec.
func (r *Registry) Tools() []mcp.Tool {
	out := make([]mcp.Tool, 0, len(r.specs))
	for _, s := range r.specs {
		out = append(out, s.Tool())
	}
	return out
}

// Conform checks args against the compiled input schema of name and reports
// the first leaf violation.
func (r *Registry) Conform(name string, args map[string]any) error {
	s, ok := r.schemas[name]
	if !ok {
		return fmt.Errorf("unknown tool: %s", name)
	}
	if err := s.Validate(args); err != nil {
		if ve, ok := err.(*jsonschema.ValidationError); ok {
			leaf := firstLeafValidationError(ve)
			loc := strings.TrimPrefix(leaf.InstanceLocation, "/")
			msg := leaf.Message
			if msg == "" {
				msg = leaf.Error()
			}
			if loc == "" {
				return fmt.Errorf("invalid arguments: %s", msg)
			}
			return fmt.Errorf("invalid %s: %s", loc, msg)
		}
		return fmt.Errorf("invalid arguments: %v", err)
	}
	return nil
}

func firstLeafValidationError(err *jsonschema.ValidationError) *jsonschema.ValidationError {
	if err == nil {
		return nil
	}
	if len(err.Causes) == 0 {
		return err
	}
	for _, c := range err.Causes {
		if leaf := firstLeafValidationError(c); leaf != nil {
			return leaf
		}
	}
	return err
}

// Suggest returns registered names that look like a misspelling of name,
// closest first.
func (r *Registry) Suggest(name string, limit int) []string {
	if limit <= 0 {
		limit = 3
	}
	query := strings.ToLower(strings.TrimSpace(name))
	if query == "" {
		return nil
	}

	type scored struct {
		name string
		dist int
	}
	var hits []scored
	for _, s := range r.specs {
		target := strings.ToLower(s.Name)
		dist := fuzzy.LevenshteinDistance(query, target)
		if dist <= 3 || fuzzy.Match(query, target) || fuzzy.Match(target, query) {
			hits = append(hits, scored{name: s.Name, dist: dist})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].dist < hits[j].dist })

	out := make([]string, 0, limit)
	for i := 0; i < len(hits) && i < limit; i++ {
		out = append(out, hits[i].name)
	}
	return out
}
