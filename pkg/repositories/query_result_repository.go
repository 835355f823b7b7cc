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

// QueryResultRepository provides data access for stored query results.
// Dropdown values for query-backed parameters are derived from the most
// recent stored result of the referenced query.
type QueryResultRepository interface {
	Save(ctx context.Context, result *models.QueryResult) error
	GetLatestData(ctx context.Context, queryID uuid.UUID) (*models.QueryResultData, error)
}

type queryResultRepository struct{}

// NewQueryResultRepository creates a new QueryResultRepository.
func NewQueryResultRepository() QueryResultRepository {
	return &queryResultRepository{}
}

var _ QueryResultRepository = (*queryResultRepository)(nil)

func (r *queryResultRepository) Save(ctx context.Context, result *models.QueryResult) error {
	scope, ok := database.GetOrgScope(ctx)
	if !ok {
		return apperrors.ErrNoTenantScope
	}

	if result.ID == uuid.Nil {
		result.ID = uuid.New()
	}
	if result.RetrievedAt.IsZero() {
		result.RetrievedAt = time.Now()
	}

	sql := `
		INSERT INTO engine_query_results (id, query_id, data, retrieved_at)
		VALUES ($1, $2, $3, $4)`

	_, err := scope.Conn.Exec(ctx, sql,
		result.ID, result.QueryID, result.Data, result.RetrievedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save query result: %w", err)
	}

	return nil
}

func (r *queryResultRepository) GetLatestData(ctx context.Context, queryID uuid.UUID) (*models.QueryResultData, error) {
	scope, ok := database.GetOrgScope(ctx)
	if !ok {
		return nil, apperrors.ErrNoTenantScope
	}

	sql := `
		SELECT data
		FROM engine_query_results
		WHERE query_id = $1
		ORDER BY retrieved_at DESC
		LIMIT 1`

	var data models.QueryResultData
	err := scope.Conn.QueryRow(ctx, sql, queryID).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNoResultData
		}
		return nil, fmt.Errorf("failed to get latest query result: %w", err)
	}

	return &data, nil
}
