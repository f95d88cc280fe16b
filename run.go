package main

import (
	"time"

	_ "time/tzdata"

	"github.com/google/uuid"
)

const directoryTimezone = "Africa/Lagos"

// RunContext is computed once at program start and stamped into every exported row.
type RunContext struct {
	ID    string
	Start time.Time
}

func NewRunContext(now time.Time) RunContext {
	loc, err := time.LoadLocation(directoryTimezone)
	if err != nil {
		loc = time.UTC
	}
	// ms precision, no monotonic reading
	return RunContext{
		ID:    uuid.NewString(),
		Start: time.UnixMilli(now.UnixMilli()).In(loc),
	}
}
