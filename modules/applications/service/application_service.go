package service

import (
	"context"
	"strings"
	"time"

	"github.com/jmartinez/canje/modules/applications/model"
	"github.com/jmartinez/canje/modules/applications/ports"
	companyModel "github.com/jmartinez/canje/modules/companies/model"
	companyPorts "github.com/jmartinez/canje/modules/companies/ports"
	postingsports "github.com/jmartinez/canje/modules/postings/ports"
)

// postingsPort is the narrow slice of the postings repository this service
// needs, aliased to avoid a naming collision with this package's own ports
// import.
type postingsPort = postingsports.PostingRepository

// ApplicationService owns the state machine gate and the two creation-time
// policy checks (spec §4.3).
type ApplicationService struct {
	appRepo      ports.ApplicationRepository
	postingRepo  postingsPort
	blocklist    companyPorts.BlocklistRepository
	rateLimiter  companyPorts.RateLimitRepository
}

func NewApplicationService(
	appRepo ports.ApplicationRepository,
	postingRepo postingsPort,
	blocklist companyPorts.BlocklistRepository,
	rateLimiter companyPorts.RateLimitRepository,
) *ApplicationService {
	return &ApplicationService{
		appRepo:     appRepo,
		postingRepo: postingRepo,
		blocklist:   blocklist,
		rateLimiter: rateLimiter,
	}
}

// Create runs the two policy checks and then creates the Application in
// its initial "scraped" status.
func (s *ApplicationService) Create(ctx context.Context, postingID string) (*model.ApplicationDTO, error) {
	posting, err := s.postingRepo.GetByID(ctx, postingID)
	if err != nil {
		return nil, err
	}
	companyLower := strings.ToLower(posting.Company)

	blocked, err := s.blocklist.IsBlocklisted(ctx, companyLower)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, model.ErrCompanyBlocklisted
	}

	rule, err := s.rateLimiter.RuleFor(ctx, companyLower)
	if err != nil {
		return nil, err
	}
	maxPerPeriod, periodDays := companyModel.DefaultMaxPerPeriod, companyModel.DefaultPeriodDays
	if rule != nil {
		maxPerPeriod, periodDays = rule.MaxPerPeriod, rule.PeriodDays
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -periodDays)
	count, err := s.appRepo.CountForCompanySince(ctx, companyLower, cutoff)
	if err != nil {
		return nil, err
	}
	if count >= maxPerPeriod {
		return nil, model.ErrRateLimitExceeded
	}

	app := &model.Application{PostingID: postingID, Status: model.StatusScraped}
	if err := s.appRepo.Create(ctx, app); err != nil {
		return nil, err
	}
	return app.ToDTO(), nil
}

func (s *ApplicationService) GetByID(ctx context.Context, id string) (*model.ApplicationDTO, error) {
	app, err := s.appRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return app.ToDTO(), nil
}

func (s *ApplicationService) List(ctx context.Context, status model.Status, limit, offset int) ([]*model.ApplicationDTO, int, error) {
	apps, total, err := s.appRepo.List(ctx, status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	dtos := make([]*model.ApplicationDTO, len(apps))
	for i, a := range apps {
		dtos[i] = a.ToDTO()
	}
	return dtos, total, nil
}

// Transition is the sole entry point every module outside this package uses
// to move an Application's status; it never bypasses the repository gate.
func (s *ApplicationService) Transition(ctx context.Context, id string, to model.Status, actor string, fields ports.FieldUpdates) (*model.ApplicationDTO, error) {
	app, err := s.appRepo.Transition(ctx, id, to, actor, fields)
	if err != nil {
		return nil, err
	}
	return app.ToDTO(), nil
}

func (s *ApplicationService) Events(ctx context.Context, id string) ([]*model.Event, error) {
	return s.appRepo.Events(ctx, id)
}
