package params

import (
	"context"
	"fmt"
	"sort"

	"github.com/cbroglie/mustache"

	"github.com/skylark-data/query-engine/pkg/models"
)

// RendererFunc substitutes resolved bindings into a template. The default
// renderer is mustache; deployments whose values may contain HTML-significant
// characters can supply a raw-output renderer instead.
type RendererFunc func(template string, bindings map[string]any) (string, error)

func mustacheRender(template string, bindings map[string]any) (string, error) {
	return mustache.Render(template, bindings)
}

// Option configures a ParameterizedQuery.
type Option func(*ParameterizedQuery)

// WithRenderer replaces the default mustache renderer.
func WithRenderer(render RendererFunc) Option {
	return func(q *ParameterizedQuery) {
		q.render = render
	}
}

// WithDropdownLookup attaches the lookup used to validate query-backed
// parameters. Without it, query-type values never validate.
func WithDropdownLookup(lookup DropdownLookup) Option {
	return func(q *ParameterizedQuery) {
		q.lookup = lookup
	}
}

// ParameterizedQuery accumulates validated parameter values against an
// immutable template and keeps the rendered text current. An empty schema
// accepts every value unconditionally.
//
// Instances are not safe for concurrent use; callers serialize access per
// instance.
type ParameterizedQuery struct {
	template string
	schema   []models.ParameterDefinition
	lookup   DropdownLookup
	render   RendererFunc

	parameters map[string]any
	resolved   map[string]any
	query      string
}

// NewParameterizedQuery builds a controller over a template and its schema.
// The rendered text equals the template until the first successful Apply.
func NewParameterizedQuery(template string, schema []models.ParameterDefinition, opts ...Option) *ParameterizedQuery {
	q := &ParameterizedQuery{
		template:   template,
		schema:     schema,
		render:     mustacheRender,
		parameters: make(map[string]any),
		resolved:   make(map[string]any),
		query:      template,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Apply validates a batch of parameter values and, if every value is
// acceptable, merges them into the cumulative parameter map, re-resolves the
// full map, and re-renders the template. The batch is atomic: one invalid
// value rejects the whole call with an InvalidParameterError naming every
// offending key, leaving prior state untouched. A detached-source condition
// on a query-backed parameter propagates unchanged.
func (q *ParameterizedQuery) Apply(ctx context.Context, parameters map[string]any) error {
	var invalid []string
	for name, value := range parameters {
		ok, err := q.valid(ctx, name, value)
		if err != nil {
			return err
		}
		if !ok {
			invalid = append(invalid, name)
		}
	}
	if len(invalid) > 0 {
		sort.Strings(invalid)
		return &InvalidParameterError{Names: invalid}
	}

	merged := make(map[string]any, len(q.parameters)+len(parameters))
	for k, v := range q.parameters {
		merged[k] = v
	}
	for k, v := range parameters {
		merged[k] = v
	}

	resolved, err := ResolveParameters(merged, q.schema)
	if err != nil {
		return err
	}

	rendered, err := q.render(q.template, resolved)
	if err != nil {
		return fmt.Errorf("failed to render template: %w", err)
	}

	q.parameters = merged
	q.resolved = resolved
	q.query = rendered
	return nil
}

func (q *ParameterizedQuery) valid(ctx context.Context, name string, value any) (bool, error) {
	if len(q.schema) == 0 {
		return true, nil
	}
	definition := models.FindDefinition(q.schema, name)
	if definition == nil {
		return false, nil
	}
	return ValidateValue(ctx, definition, value, q.lookup)
}

// IsSafe reports whether the rendered text is constrained enough to run
// without review: false as soon as the schema declares a free-text parameter.
func (q *ParameterizedQuery) IsSafe() bool {
	for _, definition := range q.schema {
		if definition.Type == models.TypeText {
			return false
		}
	}
	return true
}

// MissingParams returns the placeholder names the template references that
// neither the raw parameter map nor the resolved bindings satisfy, sorted.
func (q *ParameterizedQuery) MissingParams() ([]string, error) {
	referenced, err := CollectQueryPlaceholders(q.template)
	if err != nil {
		return nil, err
	}

	satisfied := make(map[string]bool)
	for _, name := range ParameterNames(q.parameters) {
		satisfied[name] = true
	}
	for _, name := range ParameterNames(q.resolved) {
		satisfied[name] = true
	}

	var missing []string
	for _, name := range referenced {
		if !satisfied[name] {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing, nil
}

// Text is the current rendered output.
func (q *ParameterizedQuery) Text() string {
	return q.query
}

// Parameters is a copy of the cumulative raw parameter map.
func (q *ParameterizedQuery) Parameters() map[string]any {
	out := make(map[string]any, len(q.parameters))
	for k, v := range q.parameters {
		out[k] = v
	}
	return out
}

// ResolvedParams is a copy of the current resolved bindings map.
func (q *ParameterizedQuery) ResolvedParams() map[string]any {
	out := make(map[string]any, len(q.resolved))
	for k, v := range q.resolved {
		out[k] = v
	}
	return out
}
