package customer

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerbook/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProjectStatus represents the lifecycle state of a project
type ProjectStatus string

const (
	ProjectStatusPlanned   ProjectStatus = "planned"
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusCancelled ProjectStatus = "cancelled"
)

// IsValid reports whether s is a known project status
func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectStatusPlanned, ProjectStatusActive, ProjectStatusCompleted, ProjectStatusCancelled:
		return true
	}
	return false
}

// IsTerminal returns true for completed and cancelled projects
func (s ProjectStatus) IsTerminal() bool {
	return s == ProjectStatusCompleted || s == ProjectStatusCancelled
}

// Project is a piece of work done for a customer
type Project struct {
	shared.BaseAggregateRoot
	CustomerID  uuid.UUID
	Name        string
	Description string
	Budget      decimal.Decimal
	Status      ProjectStatus
	StartDate   *time.Time
	EndDate     *time.Time
}

// NewProject creates a planned project for a customer
func NewProject(customerID uuid.UUID, name string, budget decimal.Decimal) (*Project, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if err := validateProjectName(name); err != nil {
		return nil, err
	}
	if budget.IsNegative() {
		return nil, shared.NewDomainError("INVALID_BUDGET", "Budget cannot be negative")
	}

	p := &Project{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerID:        customerID,
		Name:              strings.TrimSpace(name),
		Budget:            shared.RoundMoney(budget),
		Status:            ProjectStatusPlanned,
	}
	p.AddDomainEvent(NewProjectCreatedEvent(p))
	return p, nil
}

// Update changes the descriptive fields and the budget
func (p *Project) Update(name, description string, budget decimal.Decimal) error {
	if err := validateProjectName(name); err != nil {
		return err
	}
	if budget.IsNegative() {
		return shared.NewDomainError("INVALID_BUDGET", "Budget cannot be negative")
	}
	p.Name = strings.TrimSpace(name)
	p.Description = description
	p.Budget = shared.RoundMoney(budget)
	p.Touch()
	p.AddDomainEvent(NewProjectUpdatedEvent(p))
	return nil
}

// SetSchedule sets the start and end dates. Either may be nil.
func (p *Project) SetSchedule(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return shared.NewDomainError("INVALID_DATE_RANGE", "End date cannot be before start date")
	}
	p.StartDate = start
	p.EndDate = end
	p.Touch()
	return nil
}

// ChangeStatus moves the project to a new status. Terminal states are final.
func (p *Project) ChangeStatus(status ProjectStatus) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Status must be planned, active, completed or cancelled")
	}
	if p.Status == status {
		return nil
	}
	if p.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Cannot change status of a "+string(p.Status)+" project")
	}
	old := p.Status
	p.Status = status
	p.Touch()
	p.AddDomainEvent(NewProjectStatusChangedEvent(p, old))
	return nil
}

// IsActive returns true if work on the project is ongoing
func (p *Project) IsActive() bool {
	return p.Status == ProjectStatusActive
}

func validateProjectName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Project name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Project name cannot exceed 200 characters")
	}
	return nil
}
