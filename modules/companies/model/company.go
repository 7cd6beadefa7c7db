package model

import "time"

// BlocklistEntry is a case-insensitive company name the Application state
// machine refuses to create applications for (spec §3, §4.3).
type BlocklistEntry struct {
	ID        string
	Company   string
	Reason    string
	CreatedAt time.Time
}

// ApplicationRule bounds how many Applications may be created for a company
// within a rolling window (spec §3: "defaults (2, 14)").
type ApplicationRule struct {
	ID           string
	Company      string
	MaxPerPeriod int
	PeriodDays   int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

const (
	DefaultMaxPerPeriod = 2
	DefaultPeriodDays   = 14
)
