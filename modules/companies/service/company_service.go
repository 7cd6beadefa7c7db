package service

import (
	"context"
	"strings"

	"github.com/jmartinez/canje/modules/companies/model"
	"github.com/jmartinez/canje/modules/companies/ports"
)

// PolicyService exposes the company policy stores (blocklist, rate-limit
// rules) behind a single service for the operator surface.
type PolicyService struct {
	blocklist ports.BlocklistRepository
	rules     ports.RateLimitRepository
}

func NewPolicyService(blocklist ports.BlocklistRepository, rules ports.RateLimitRepository) *PolicyService {
	return &PolicyService{blocklist: blocklist, rules: rules}
}

func (s *PolicyService) Blocklist(ctx context.Context) ([]*model.BlocklistEntry, error) {
	return s.blocklist.List(ctx)
}

func (s *PolicyService) AddToBlocklist(ctx context.Context, company, reason string) error {
	if strings.TrimSpace(company) == "" {
		return model.ErrCompanyNameRequired
	}
	return s.blocklist.Add(ctx, &model.BlocklistEntry{Company: strings.TrimSpace(company), Reason: reason})
}

func (s *PolicyService) RemoveFromBlocklist(ctx context.Context, company string) error {
	return s.blocklist.Remove(ctx, strings.ToLower(strings.TrimSpace(company)))
}

func (s *PolicyService) Rules(ctx context.Context) ([]*model.ApplicationRule, error) {
	return s.rules.List(ctx)
}

func (s *PolicyService) SetRule(ctx context.Context, company string, maxPerPeriod, periodDays int) error {
	if strings.TrimSpace(company) == "" {
		return model.ErrCompanyNameRequired
	}
	return s.rules.Upsert(ctx, &model.ApplicationRule{
		Company:      strings.TrimSpace(company),
		MaxPerPeriod: maxPerPeriod,
		PeriodDays:   periodDays,
	})
}
