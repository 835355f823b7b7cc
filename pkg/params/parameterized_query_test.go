package params

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/skylark-data/query-engine/pkg/models"
)

func TestApply_SchemalessAcceptsAnything(t *testing.T) {
	q := NewParameterizedQuery("SELECT * FROM t WHERE a = {{a}}", nil)

	err := q.Apply(context.Background(), map[string]any{
		"a": map[string]any{"weird": []int{1, 2}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestApply_RendersTemplate(t *testing.T) {
	q := NewParameterizedQuery("SELECT * FROM events WHERE user = {{user}} LIMIT {{limit}}", nil)

	if err := q.Apply(context.Background(), map[string]any{"user": "anna", "limit": 10}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := q.Text(); got != "SELECT * FROM events WHERE user = anna LIMIT 10" {
		t.Errorf("unexpected rendered text: %q", got)
	}
}

func TestText_EqualsTemplateBeforeFirstApply(t *testing.T) {
	template := "SELECT * FROM t WHERE a = {{a}}"
	q := NewParameterizedQuery(template, nil)

	if q.Text() != template {
		t.Errorf("got %q, want the raw template", q.Text())
	}
}

func TestApply_BatchIsAtomic(t *testing.T) {
	schema := []models.ParameterDefinition{
		{Name: "a", Type: models.TypeNumber},
		{Name: "b", Type: models.TypeNumber},
	}
	q := NewParameterizedQuery("{{a}} {{b}}", schema)

	err := q.Apply(context.Background(), map[string]any{"a": "12", "b": "not a number"})
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var invalid *InvalidParameterError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected *InvalidParameterError, got %T", err)
	}
	if !reflect.DeepEqual(invalid.Names, []string{"b"}) {
		t.Errorf("invalid names: got %v, want [b]", invalid.Names)
	}

	// The valid half of the batch must not have merged.
	if len(q.Parameters()) != 0 {
		t.Errorf("parameters leaked into state: %v", q.Parameters())
	}
	if q.Text() != "{{a}} {{b}}" {
		t.Errorf("text changed on rejected batch: %q", q.Text())
	}
}

func TestApply_ErrorListsEveryInvalidKey(t *testing.T) {
	schema := []models.ParameterDefinition{
		{Name: "a", Type: models.TypeNumber},
		{Name: "b", Type: models.TypeNumber},
		{Name: "c", Type: models.TypeNumber},
	}
	q := NewParameterizedQuery("{{a}}", schema)

	err := q.Apply(context.Background(), map[string]any{"a": "x", "b": 2, "c": "y"})
	var invalid *InvalidParameterError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected *InvalidParameterError, got %v", err)
	}
	if !reflect.DeepEqual(invalid.Names, []string{"a", "c"}) {
		t.Errorf("invalid names: got %v, want [a c]", invalid.Names)
	}
}

func TestApply_UndeclaredNameRejectedWithSchema(t *testing.T) {
	schema := []models.ParameterDefinition{
		{Name: "a", Type: models.TypeNumber},
	}
	q := NewParameterizedQuery("{{a}}", schema)

	err := q.Apply(context.Background(), map[string]any{"mystery": 1})
	var invalid *InvalidParameterError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected *InvalidParameterError, got %v", err)
	}
}

func TestApply_MergesAcrossCalls(t *testing.T) {
	q := NewParameterizedQuery("{{a}}-{{b}}", nil)
	ctx := context.Background()

	if err := q.Apply(ctx, map[string]any{"a": "1", "b": "2"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := q.Apply(ctx, map[string]any{"b": "3"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if q.Text() != "1-3" {
		t.Errorf("got %q, want 1-3 (new values overlay prior ones)", q.Text())
	}
}

func TestApply_EmptyBatchIsIdempotent(t *testing.T) {
	q := NewParameterizedQuery("{{a}}", nil)
	ctx := context.Background()

	if err := q.Apply(ctx, map[string]any{"a": "v"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text := q.Text()
	resolved := q.ResolvedParams()

	if err := q.Apply(ctx, map[string]any{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Text() != text {
		t.Errorf("text changed: %q -> %q", text, q.Text())
	}
	if !reflect.DeepEqual(q.ResolvedParams(), resolved) {
		t.Errorf("resolved params changed: %v -> %v", resolved, q.ResolvedParams())
	}
}

func TestApply_EnumValidation(t *testing.T) {
	schema := []models.ParameterDefinition{
		{Name: "status", Type: models.TypeEnum, EnumOptions: "a\nb\nc"},
	}
	ctx := context.Background()

	for _, accepted := range []string{"a", "b", "c"} {
		q := NewParameterizedQuery("{{status}}", schema)
		if err := q.Apply(ctx, map[string]any{"status": accepted}); err != nil {
			t.Errorf("%q: unexpected error: %v", accepted, err)
		}
	}

	q := NewParameterizedQuery("{{status}}", schema)
	if err := q.Apply(ctx, map[string]any{"status": "d"}); err == nil {
		t.Error("expected rejection of value outside enum options")
	}
}

func TestApply_MultiValueEnumRendersJoined(t *testing.T) {
	schema := []models.ParameterDefinition{
		{
			Name:        "status",
			Type:        models.TypeEnum,
			EnumOptions: "x\ny\nz",
			MultiValuesOptions: &models.MultiValuesOptions{
				Separator: "|",
				Prefix:    "[",
				Suffix:    "]",
			},
		},
	}
	q := NewParameterizedQuery("{{status}}", schema)

	if err := q.Apply(context.Background(), map[string]any{"status": []string{"x", "y"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Text() != "[x]|[y]" {
		t.Errorf("got %q, want [x]|[y]", q.Text())
	}
}

func TestApply_DynamicDateRangeRendersDots(t *testing.T) {
	schema := []models.ParameterDefinition{
		{Name: "created", Type: models.TypeDateRange},
	}
	q := NewParameterizedQuery("BETWEEN {{created.start}} AND {{created.end}}", schema)

	if err := q.Apply(context.Background(), map[string]any{"created": "d_yesterday"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Text() == "BETWEEN  AND " {
		t.Errorf("range endpoints did not bind: %q", q.Text())
	}

	missing, err := q.MissingParams()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(missing) != 0 {
		t.Errorf("resolved range should satisfy dotted placeholders, missing: %v", missing)
	}
}

func TestApply_DetachedSourcePropagates(t *testing.T) {
	schema := []models.ParameterDefinition{
		{Name: "status", Type: models.TypeQuery, QueryID: "q1"},
	}
	lookup := &stubLookup{err: &QueryDetachedError{QueryID: "q1"}}
	q := NewParameterizedQuery("{{status}}", schema, WithDropdownLookup(lookup))

	err := q.Apply(context.Background(), map[string]any{"status": "enum-like"})
	if !IsQueryDetached(err) {
		t.Errorf("expected detached-source condition, got %v", err)
	}

	var invalid *InvalidParameterError
	if errors.As(err, &invalid) {
		t.Error("detached source must not be downgraded to an invalid-parameter error")
	}
}

func TestApply_QueryBackedParameter(t *testing.T) {
	schema := []models.ParameterDefinition{
		{Name: "status", Type: models.TypeQuery, QueryID: "q1"},
	}
	lookup := &stubLookup{values: []DropdownValue{{Name: "Open", Value: "open"}}}
	q := NewParameterizedQuery("{{status}}", schema, WithDropdownLookup(lookup))

	if err := q.Apply(context.Background(), map[string]any{"status": "open"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Text() != "open" {
		t.Errorf("got %q, want open", q.Text())
	}
}

func TestIsSafe(t *testing.T) {
	tests := []struct {
		name     string
		schema   []models.ParameterDefinition
		expected bool
	}{
		{
			name:     "empty schema is safe",
			schema:   nil,
			expected: true,
		},
		{
			name: "constrained types are safe",
			schema: []models.ParameterDefinition{
				{Name: "a", Type: models.TypeNumber},
				{Name: "b", Type: models.TypeEnum, EnumOptions: "x"},
				{Name: "c", Type: models.TypeDateRange},
			},
			expected: true,
		},
		{
			name: "any text parameter is unsafe",
			schema: []models.ParameterDefinition{
				{Name: "a", Type: models.TypeNumber},
				{Name: "b", Type: models.TypeText},
			},
			expected: false,
		},
		{
			name: "text-pattern is constrained and safe",
			schema: []models.ParameterDefinition{
				{Name: "a", Type: models.TypeTextPattern, Regex: "[0-9]+"},
			},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewParameterizedQuery("{{a}}", tt.schema)
			if got := q.IsSafe(); got != tt.expected {
				t.Errorf("got %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestMissingParams(t *testing.T) {
	q := NewParameterizedQuery("{{a}} {{b.c}}", nil)

	if err := q.Apply(context.Background(), map[string]any{"a": 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	missing, err := q.MissingParams()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(missing, []string{"b.c"}) {
		t.Errorf("got %v, want [b.c]", missing)
	}
}

func TestMissingParams_NestedValueSatisfiesDottedName(t *testing.T) {
	q := NewParameterizedQuery("{{a}} {{b.c}}", nil)

	err := q.Apply(context.Background(), map[string]any{
		"a": 1,
		"b": map[string]any{"c": 2},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	missing, err := q.MissingParams()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(missing) != 0 {
		t.Errorf("got %v, want none", missing)
	}
}

func TestMissingParams_BeforeAnyApply(t *testing.T) {
	q := NewParameterizedQuery("{{a}} {{b}}", nil)

	missing, err := q.MissingParams()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(missing, []string{"a", "b"}) {
		t.Errorf("got %v, want [a b]", missing)
	}
}

func TestWithRenderer(t *testing.T) {
	var captured map[string]any
	render := func(template string, bindings map[string]any) (string, error) {
		captured = bindings
		return "custom output", nil
	}
	q := NewParameterizedQuery("{{a}}", nil, WithRenderer(render))

	if err := q.Apply(context.Background(), map[string]any{"a": "v"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Text() != "custom output" {
		t.Errorf("got %q, want custom output", q.Text())
	}
	if captured["a"] != "v" {
		t.Errorf("renderer received %v", captured)
	}
}

func TestParameters_ReturnsCopy(t *testing.T) {
	q := NewParameterizedQuery("{{a}}", nil)
	if err := q.Apply(context.Background(), map[string]any{"a": "v"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := q.Parameters()
	got["a"] = "mutated"
	if q.Parameters()["a"] != "v" {
		t.Error("mutating the returned map must not affect controller state")
	}
}
