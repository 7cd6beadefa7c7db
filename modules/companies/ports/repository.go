package ports

import (
	"context"

	"github.com/jmartinez/canje/modules/companies/model"
)

// BlocklistRepository is consumed by the Application state machine's
// blocklist policy check (spec §4.3).
type BlocklistRepository interface {
	IsBlocklisted(ctx context.Context, companyLower string) (bool, error)
	Add(ctx context.Context, entry *model.BlocklistEntry) error
	Remove(ctx context.Context, companyLower string) error
	List(ctx context.Context) ([]*model.BlocklistEntry, error)
}

// RateLimitRepository is consumed by the Application state machine's
// per-company rate-limit policy check (spec §4.3).
type RateLimitRepository interface {
	// RuleFor returns nil, nil if no explicit rule exists for the company;
	// callers apply the default (2, 14) themselves.
	RuleFor(ctx context.Context, companyLower string) (*model.ApplicationRule, error)
	Upsert(ctx context.Context, rule *model.ApplicationRule) error
	List(ctx context.Context) ([]*model.ApplicationRule, error)
}
