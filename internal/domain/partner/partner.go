package partner

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ledgerbook/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Status represents whether a partner is still part of the business
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	maxShare   = decimal.NewFromInt(100)
)

// Partner is a co-owner of the business whose personal spending on its
// behalf is tracked separately from company transactions.
type Partner struct {
	shared.BaseAggregateRoot
	Name            string
	Email           string
	Phone           string
	SharePercentage decimal.Decimal
	Status          Status
	Notes           string
}

// NewPartner creates an active partner holding the given ownership share
func NewPartner(name string, share decimal.Decimal) (*Partner, error) {
	if err := validatePartnerName(name); err != nil {
		return nil, err
	}
	if err := validateShare(share); err != nil {
		return nil, err
	}

	p := &Partner{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(name),
		SharePercentage:   share.Round(2),
		Status:            StatusActive,
	}
	p.AddDomainEvent(NewPartnerCreatedEvent(p))
	return p, nil
}

// Update changes the partner's details
func (p *Partner) Update(name string, share decimal.Decimal, notes string) error {
	if err := validatePartnerName(name); err != nil {
		return err
	}
	if err := validateShare(share); err != nil {
		return err
	}
	p.Name = strings.TrimSpace(name)
	p.SharePercentage = share.Round(2)
	p.Notes = notes
	p.Touch()
	p.AddDomainEvent(NewPartnerUpdatedEvent(p))
	return nil
}

// SetContact sets email and phone
func (p *Partner) SetContact(email, phone string) error {
	email = strings.TrimSpace(email)
	if email != "" && !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	p.Email = strings.ToLower(email)
	p.Phone = strings.TrimSpace(phone)
	return nil
}

// SetStatus activates or deactivates the partner
func (p *Partner) SetStatus(status Status) error {
	if status != StatusActive && status != StatusInactive {
		return shared.NewDomainError("INVALID_STATUS", "Status must be active or inactive")
	}
	if p.Status == status {
		return nil
	}
	p.Status = status
	p.Touch()
	p.AddDomainEvent(NewPartnerUpdatedEvent(p))
	return nil
}

// IsActive returns true if the partner is active
func (p *Partner) IsActive() bool {
	return p.Status == StatusActive
}

// ValidateTotalShare checks that the active partners' shares, with candidate
// replacing any stored copy of itself, do not exceed 100%.
func ValidateTotalShare(existing []Partner, candidate *Partner) error {
	total := decimal.Zero
	for i := range existing {
		if existing[i].ID == candidate.ID || !existing[i].IsActive() {
			continue
		}
		total = total.Add(existing[i].SharePercentage)
	}
	if candidate.IsActive() {
		total = total.Add(candidate.SharePercentage)
	}
	if total.GreaterThan(maxShare) {
		return shared.NewDomainError("SHARE_EXCEEDED",
			fmt.Sprintf("Total partner share would be %s%%, which exceeds 100%%", total.StringFixed(2)))
	}
	return nil
}

func validatePartnerName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Partner name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Partner name cannot exceed 200 characters")
	}
	return nil
}

func validateShare(share decimal.Decimal) error {
	if share.IsNegative() || share.GreaterThan(maxShare) {
		return shared.NewDomainError("INVALID_SHARE", "Share percentage must be between 0 and 100")
	}
	return nil
}
