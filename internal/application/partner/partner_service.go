package partner

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/ledgerbook/backend/internal/application/common"
	"github.com/ledgerbook/backend/internal/domain/partner"
	"github.com/ledgerbook/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// PartnerService manages business partners and their ownership shares
type PartnerService struct {
	partnerRepo    partner.PartnerRepository
	expenseRepo    partner.ExpenseRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewPartnerService creates a new PartnerService
func NewPartnerService(
	partnerRepo partner.PartnerRepository,
	expenseRepo partner.ExpenseRepository,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *PartnerService {
	return &PartnerService{
		partnerRepo:    partnerRepo,
		expenseRepo:    expenseRepo,
		eventPublisher: eventPublisher,
		logger:         common.LoggerOrNop(logger),
	}
}

// Create adds a partner. Active partners' shares may not exceed 100% in total.
func (s *PartnerService) Create(ctx context.Context, req CreatePartnerRequest) (*PartnerResponse, error) {
	p, err := partner.NewPartner(req.Name, req.SharePercentage)
	if err != nil {
		return nil, err
	}
	if err := p.SetContact(req.Email, req.Phone); err != nil {
		return nil, err
	}
	p.Notes = req.Notes
	if partner.Status(req.Status) == partner.StatusInactive {
		p.Status = partner.StatusInactive
	}
	if actorID := shared.ActorID(ctx); actorID != uuid.Nil {
		p.SetCreatedBy(actorID)
	}

	err = s.partnerRepo.WithinShareLock(ctx, func(ctx context.Context, repo partner.PartnerRepository) error {
		if err := checkShares(ctx, repo, p); err != nil {
			return err
		}
		return repo.Save(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	common.PublishEvents(ctx, s.eventPublisher, s.logger, p)

	response := ToPartnerResponse(p)
	return &response, nil
}

// GetByID retrieves a partner by ID
func (s *PartnerService) GetByID(ctx context.Context, id uuid.UUID) (*PartnerResponse, error) {
	p, err := s.partnerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToPartnerResponse(p)
	return &response, nil
}

// List retrieves a page of partners
func (s *PartnerService) List(ctx context.Context, filter PartnerListFilter) (shared.Paginated[PartnerResponse], error) {
	f := filter.Filter()
	common.SetFilter(&f, "status", filter.Status)

	partners, err := s.partnerRepo.FindAll(ctx, f)
	if err != nil {
		return shared.Paginated[PartnerResponse]{}, err
	}
	total, err := s.partnerRepo.Count(ctx, f)
	if err != nil {
		return shared.Paginated[PartnerResponse]{}, err
	}
	return shared.NewPaginated(ToPartnerResponses(partners), total, f.Page, f.PageSize), nil
}

// Update changes a partner's details, share or status
func (s *PartnerService) Update(ctx context.Context, id uuid.UUID, req UpdatePartnerRequest) (*PartnerResponse, error) {
	p, err := s.partnerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Version != nil && *req.Version != p.Version {
		return nil, shared.ErrConcurrencyConflict
	}

	name, share, notes := p.Name, p.SharePercentage, p.Notes
	if req.Name != nil {
		name = *req.Name
	}
	if req.SharePercentage != nil {
		share = *req.SharePercentage
	}
	if req.Notes != nil {
		notes = *req.Notes
	}
	if err := p.Update(name, share, notes); err != nil {
		return nil, err
	}

	if req.Email != nil || req.Phone != nil {
		email, phone := p.Email, p.Phone
		if req.Email != nil {
			email = *req.Email
		}
		if req.Phone != nil {
			phone = *req.Phone
		}
		if err := p.SetContact(email, phone); err != nil {
			return nil, err
		}
	}
	if req.Status != nil {
		if err := p.SetStatus(partner.Status(strings.ToLower(*req.Status))); err != nil {
			return nil, err
		}
	}

	// the version guard rejects a concurrent edit of this partner, the
	// share lock one of another partner
	err = s.partnerRepo.WithinShareLock(ctx, func(ctx context.Context, repo partner.PartnerRepository) error {
		if err := checkShares(ctx, repo, p); err != nil {
			return err
		}
		return repo.SaveWithLock(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	common.PublishEvents(ctx, s.eventPublisher, s.logger, p)

	response := ToPartnerResponse(p)
	return &response, nil
}

// Delete removes a partner that has no recorded expenses
func (s *PartnerService) Delete(ctx context.Context, id uuid.UUID) error {
	p, err := s.partnerRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	count, err := s.expenseRepo.CountByPartner(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return shared.NewDomainError("HAS_DEPENDENCIES",
			fmt.Sprintf("Partner %s has %d expense(s); deactivate the partner instead", p.Name, count))
	}
	if err := s.partnerRepo.Delete(ctx, id); err != nil {
		return err
	}

	p.ClearDomainEvents()
	p.AddDomainEvent(partner.NewPartnerDeletedEvent(p))
	common.PublishEvents(ctx, s.eventPublisher, s.logger, p)
	return nil
}

// Summary totals one partner's expenses by reimbursement state
func (s *PartnerService) Summary(ctx context.Context, id uuid.UUID) (*partner.ExpenseSummary, error) {
	p, err := s.partnerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	expenses, err := s.expenseRepo.FindByPartner(ctx, id)
	if err != nil {
		return nil, err
	}
	return partner.ComputeExpenseSummary(p, expenses), nil
}

// Summaries totals the expenses of every partner
func (s *PartnerService) Summaries(ctx context.Context) ([]partner.ExpenseSummary, error) {
	partners, err := s.partnerRepo.FindAll(ctx, shared.AllFilter())
	if err != nil {
		return nil, err
	}
	out := make([]partner.ExpenseSummary, 0, len(partners))
	for i := range partners {
		expenses, err := s.expenseRepo.FindByPartner(ctx, partners[i].ID)
		if err != nil {
			return nil, err
		}
		out = append(out, *partner.ComputeExpenseSummary(&partners[i], expenses))
	}
	return out, nil
}

func checkShares(ctx context.Context, repo partner.PartnerRepository, p *partner.Partner) error {
	if !p.IsActive() || p.SharePercentage.IsZero() {
		return nil
	}
	active, err := repo.FindActive(ctx)
	if err != nil {
		return err
	}
	return partner.ValidateTotalShare(active, p)
}
