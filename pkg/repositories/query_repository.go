package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/skylark-data/query-engine/pkg/apperrors"
	"github.com/skylark-data/query-engine/pkg/database"
	"github.com/skylark-data/query-engine/pkg/models"
)

// QueryRepository provides data access for saved query templates.
type QueryRepository interface {
	Create(ctx context.Context, query *models.Query) error
	GetByID(ctx context.Context, queryID uuid.UUID) (*models.Query, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Query, error)
	UpdateSchema(ctx context.Context, queryID uuid.UUID, schema []models.ParameterDefinition) error
}

type queryRepository struct{}

// NewQueryRepository creates a new QueryRepository.
func NewQueryRepository() QueryRepository {
	return &queryRepository{}
}

var _ QueryRepository = (*queryRepository)(nil)

func (r *queryRepository) Create(ctx context.Context, query *models.Query) error {
	scope, ok := database.GetOrgScope(ctx)
	if !ok {
		return apperrors.ErrNoTenantScope
	}

	now := time.Now()
	query.ID = uuid.New()
	query.CreatedAt = now
	query.UpdatedAt = now

	sql := `
		INSERT INTO engine_queries (
			id, project_id, data_source_id, name, template, schema,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := scope.Conn.Exec(ctx, sql,
		query.ID, query.ProjectID, query.DataSourceID, query.Name,
		query.Template, query.Schema, query.CreatedAt, query.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create query: %w", err)
	}

	return nil
}

func (r *queryRepository) GetByID(ctx context.Context, queryID uuid.UUID) (*models.Query, error) {
	scope, ok := database.GetOrgScope(ctx)
	if !ok {
		return nil, apperrors.ErrNoTenantScope
	}

	sql := `
		SELECT id, project_id, data_source_id, name, template, schema,
		       created_at, updated_at
		FROM engine_queries
		WHERE id = $1`

	var query models.Query
	err := scope.Conn.QueryRow(ctx, sql, queryID).Scan(
		&query.ID, &query.ProjectID, &query.DataSourceID, &query.Name,
		&query.Template, &query.Schema, &query.CreatedAt, &query.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get query: %w", err)
	}

	return &query, nil
}

func (r *queryRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Query, error) {
	scope, ok := database.GetOrgScope(ctx)
	if !ok {
		return nil, apperrors.ErrNoTenantScope
	}

	sql := `
		SELECT id, project_id, data_source_id, name, template, schema,
		       created_at, updated_at
		FROM engine_queries
		WHERE project_id = $1
		ORDER BY created_at DESC`

	rows, err := scope.Conn.Query(ctx, sql, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list queries: %w", err)
	}
	defer rows.Close()

	var queries []*models.Query
	for rows.Next() {
		var query models.Query
		err := rows.Scan(
			&query.ID, &query.ProjectID, &query.DataSourceID, &query.Name,
			&query.Template, &query.Schema, &query.CreatedAt, &query.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan query: %w", err)
		}
		queries = append(queries, &query)
	}

	return queries, rows.Err()
}

func (r *queryRepository) UpdateSchema(ctx context.Context, queryID uuid.UUID, schema []models.ParameterDefinition) error {
	scope, ok := database.GetOrgScope(ctx)
	if !ok {
		return apperrors.ErrNoTenantScope
	}

	sql := `
		UPDATE engine_queries
		SET schema = $2, updated_at = $3
		WHERE id = $1`

	tag, err := scope.Conn.Exec(ctx, sql, queryID, schema, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update query schema: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}
