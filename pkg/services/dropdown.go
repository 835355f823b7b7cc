package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/skylark-data/query-engine/pkg/params"
	"github.com/skylark-data/query-engine/pkg/repositories"
)

// DropdownService derives dropdown options from a query's latest stored
// result. It satisfies params.DropdownLookup.
type DropdownService interface {
	DropdownValues(ctx context.Context, queryID string) ([]params.DropdownValue, error)
}

type dropdownService struct {
	queryRepo  repositories.QueryRepository
	resultRepo repositories.QueryResultRepository
	logger     *zap.Logger
}

// NewDropdownService creates a new DropdownService.
func NewDropdownService(
	queryRepo repositories.QueryRepository,
	resultRepo repositories.QueryResultRepository,
	logger *zap.Logger,
) DropdownService {
	return &dropdownService{
		queryRepo:  queryRepo,
		resultRepo: resultRepo,
		logger:     logger,
	}
}

var _ params.DropdownLookup = (DropdownService)(nil)

// DropdownValues loads the referenced query and derives {name, value} pairs
// from its latest result. A query with no data source yields a
// QueryDetachedError: it can never produce results, which is a different
// condition from a value failing validation.
func (s *dropdownService) DropdownValues(ctx context.Context, queryID string) ([]params.DropdownValue, error) {
	id, err := uuid.Parse(queryID)
	if err != nil {
		return nil, fmt.Errorf("invalid query id %q: %w", queryID, err)
	}

	query, err := s.queryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load query %s: %w", queryID, err)
	}

	if query.IsDetached() {
		s.logger.Warn("Dropdown lookup against detached query",
			zap.String("query_id", queryID),
		)
		return nil, &params.QueryDetachedError{QueryID: queryID}
	}

	data, err := s.resultRepo.GetLatestData(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load result data for query %s: %w", queryID, err)
	}

	values := params.DropdownValues(data)
	s.logger.Debug("Derived dropdown values",
		zap.String("query_id", queryID),
		zap.Int("count", len(values)),
	)
	return values, nil
}
