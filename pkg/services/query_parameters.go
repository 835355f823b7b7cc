package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/skylark-data/query-engine/pkg/logging"
	"github.com/skylark-data/query-engine/pkg/params"
	"github.com/skylark-data/query-engine/pkg/repositories"
)

// QueryParameterService binds runtime parameter values into saved query
// templates. This is the seam a request handler calls; it owns no transport.
type QueryParameterService interface {
	// ApplyParameters validates and applies a batch of parameter values to
	// the saved query's template. Invalid batches are rejected whole with
	// an InvalidParameterError.
	ApplyParameters(ctx context.Context, queryID uuid.UUID, parameters map[string]any) (*ApplyResult, error)
}

// ApplyResult is the outcome of binding parameters into a template.
type ApplyResult struct {
	// Text is the rendered query text.
	Text string `json:"text"`
	// ResolvedParams are the bindings substituted into the template.
	ResolvedParams map[string]any `json:"resolved_params"`
	// MissingParams lists declared placeholders still unbound.
	MissingParams []string `json:"missing_params"`
	// IsSafe is false when the schema declares any free-text parameter.
	IsSafe bool `json:"is_safe"`
}

type queryParameterService struct {
	queryRepo repositories.QueryRepository
	dropdowns DropdownService
	logger    *zap.Logger
}

// NewQueryParameterService creates a new QueryParameterService.
func NewQueryParameterService(
	queryRepo repositories.QueryRepository,
	dropdowns DropdownService,
	logger *zap.Logger,
) QueryParameterService {
	return &queryParameterService{
		queryRepo: queryRepo,
		dropdowns: dropdowns,
		logger:    logger,
	}
}

func (s *queryParameterService) ApplyParameters(ctx context.Context, queryID uuid.UUID, parameters map[string]any) (*ApplyResult, error) {
	query, err := s.queryRepo.GetByID(ctx, queryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load query: %w", err)
	}

	pq := params.NewParameterizedQuery(query.Template, query.Schema,
		params.WithDropdownLookup(s.dropdowns))

	if err := pq.Apply(ctx, parameters); err != nil {
		var invalid *params.InvalidParameterError
		if errors.As(err, &invalid) {
			s.logger.Info("Rejected parameter batch",
				zap.String("query_id", queryID.String()),
				zap.Strings("invalid_params", invalid.Names),
			)
		} else {
			s.logger.Warn("Failed to apply parameters",
				zap.String("query_id", queryID.String()),
				zap.String("error", logging.SanitizeError(err)),
			)
		}
		return nil, err
	}

	missing, err := pq.MissingParams()
	if err != nil {
		return nil, fmt.Errorf("failed to collect placeholders: %w", err)
	}

	s.logger.Debug("Applied parameters",
		zap.String("query_id", queryID.String()),
		zap.String("text", logging.SanitizeQuery(pq.Text())),
		zap.Int("missing", len(missing)),
		zap.Bool("is_safe", pq.IsSafe()),
	)

	return &ApplyResult{
		Text:           pq.Text(),
		ResolvedParams: pq.ResolvedParams(),
		MissingParams:  missing,
		IsSafe:         pq.IsSafe(),
	}, nil
}
