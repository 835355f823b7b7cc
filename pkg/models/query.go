package models

import (
	"time"

	"github.com/google/uuid"
)

// Query represents a saved query template with its parameter schema.
// A nil DataSourceID means the query is detached: it can never produce
// results, so dropdown values derived from it are unavailable.
type Query struct {
	ID           uuid.UUID             `json:"id"`
	ProjectID    uuid.UUID             `json:"project_id"`
	DataSourceID *uuid.UUID            `json:"data_source_id,omitempty"`
	Name         string                `json:"name"`
	Template     string                `json:"template"`
	Schema       []ParameterDefinition `json:"schema,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// IsDetached reports whether the query has no associated data source.
func (q *Query) IsDetached() bool {
	return q.DataSourceID == nil
}
