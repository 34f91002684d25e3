package customer

import (
	"regexp"
	"strings"

	"github.com/ledgerbook/backend/internal/domain/shared"
)

// Status represents the status of a customer
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// IsValid reports whether s is a known customer status
func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusInactive
}

var (
	phoneRegex = regexp.MustCompile(`^[+]?[0-9\s\-()]{5,50}$`)
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// Customer is a client the business invoices.
// It is the aggregate root for customer-related operations.
type Customer struct {
	shared.BaseAggregateRoot
	Name      string
	Email     string
	Phone     string
	Address   string
	TaxNumber string
	Notes     string
	Status    Status
}

// NewCustomer creates a new active customer
func NewCustomer(name string) (*Customer, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	c := &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(name),
		Status:            StatusActive,
	}
	c.AddDomainEvent(NewCustomerCreatedEvent(c))
	return c, nil
}

// Update changes the customer's name and notes
func (c *Customer) Update(name, notes string) error {
	if err := validateName(name); err != nil {
		return err
	}
	c.Name = strings.TrimSpace(name)
	c.Notes = notes
	c.Touch()
	c.AddDomainEvent(NewCustomerUpdatedEvent(c))
	return nil
}

// SetContact sets the email and phone; empty values clear the field
func (c *Customer) SetContact(email, phone string) error {
	email = strings.TrimSpace(email)
	phone = strings.TrimSpace(phone)
	if email != "" && (len(email) > 200 || !emailRegex.MatchString(email)) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	if phone != "" && !phoneRegex.MatchString(phone) {
		return shared.NewDomainError("INVALID_PHONE", "Invalid phone format")
	}
	c.Email = strings.ToLower(email)
	c.Phone = phone
	c.Touch()
	return nil
}

// SetAddress sets the postal address
func (c *Customer) SetAddress(address string) {
	c.Address = strings.TrimSpace(address)
	c.Touch()
}

// SetTaxNumber sets the tax identification number
func (c *Customer) SetTaxNumber(taxNumber string) error {
	taxNumber = strings.TrimSpace(taxNumber)
	if len(taxNumber) > 50 {
		return shared.NewDomainError("INVALID_TAX_NUMBER", "Tax number cannot exceed 50 characters")
	}
	c.TaxNumber = taxNumber
	c.Touch()
	return nil
}

// Activate marks the customer active
func (c *Customer) Activate() error {
	if c.Status == StatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Customer is already active")
	}
	c.changeStatus(StatusActive)
	return nil
}

// Deactivate marks the customer inactive. Existing invoices are unaffected.
func (c *Customer) Deactivate() error {
	if c.Status == StatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Customer is already inactive")
	}
	c.changeStatus(StatusInactive)
	return nil
}

func (c *Customer) changeStatus(status Status) {
	old := c.Status
	c.Status = status
	c.Touch()
	c.AddDomainEvent(NewCustomerStatusChangedEvent(c, old))
}

// IsActive returns true if the customer is active
func (c *Customer) IsActive() bool {
	return c.Status == StatusActive
}

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot exceed 200 characters")
	}
	return nil
}
