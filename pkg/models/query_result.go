package models

import (
	"time"

	"github.com/google/uuid"
)

// ResultColumn describes one column of a stored query result.
type ResultColumn struct {
	Name string `json:"name"`
}

// QueryResultData is the tabular payload of a query's latest execution,
// stored as JSON alongside the query.
type QueryResultData struct {
	Columns []ResultColumn   `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

// QueryResult is the latest stored result for a query.
type QueryResult struct {
	ID          uuid.UUID       `json:"id"`
	QueryID     uuid.UUID       `json:"query_id"`
	Data        QueryResultData `json:"data"`
	RetrievedAt time.Time       `json:"retrieved_at"`
}
