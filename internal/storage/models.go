package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// PlanRecord is a persisted plan. PlanJSON holds the full assembled plan
// document; Goal is duplicated as a column so lists and search never have
// to parse JSON.
type PlanRecord struct {
	ID        int64
	Goal      string
	PlanJSON  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PlanSummary is the projection returned by list and search queries.
type PlanSummary struct {
	ID        int64
	Goal      string
	NumSteps  int
	CreatedAt time.Time
}

// Stats aggregates the whole store.
type Stats struct {
	TotalPlans   int
	AvgSteps     float64
	NewestPlanAt time.Time
}
