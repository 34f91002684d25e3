package customer

import (
	"github.com/google/uuid"
	"github.com/ledgerbook/backend/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeCustomer = "Customer"
	AggregateTypeProject  = "Project"
)

// Event type constants
const (
	EventTypeCustomerCreated       = "CustomerCreated"
	EventTypeCustomerUpdated       = "CustomerUpdated"
	EventTypeCustomerStatusChanged = "CustomerStatusChanged"
	EventTypeCustomerDeleted       = "CustomerDeleted"
	EventTypeProjectCreated        = "ProjectCreated"
	EventTypeProjectUpdated        = "ProjectUpdated"
	EventTypeProjectStatusChanged  = "ProjectStatusChanged"
	EventTypeProjectDeleted        = "ProjectDeleted"
)

// CustomerCreatedEvent is published when a new customer is created
type CustomerCreatedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
}

// NewCustomerCreatedEvent creates a new CustomerCreatedEvent
func NewCustomerCreatedEvent(c *Customer) *CustomerCreatedEvent {
	return &CustomerCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerCreated, AggregateTypeCustomer, c.ID),
		Name:            c.Name,
	}
}

// CustomerUpdatedEvent is published when a customer is updated
type CustomerUpdatedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
}

// NewCustomerUpdatedEvent creates a new CustomerUpdatedEvent
func NewCustomerUpdatedEvent(c *Customer) *CustomerUpdatedEvent {
	return &CustomerUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerUpdated, AggregateTypeCustomer, c.ID),
		Name:            c.Name,
	}
}

// CustomerStatusChangedEvent is published when a customer is activated or deactivated
type CustomerStatusChangedEvent struct {
	shared.BaseDomainEvent
	Name      string `json:"name"`
	OldStatus Status `json:"old_status"`
	NewStatus Status `json:"new_status"`
}

// NewCustomerStatusChangedEvent creates a new CustomerStatusChangedEvent
func NewCustomerStatusChangedEvent(c *Customer, old Status) *CustomerStatusChangedEvent {
	return &CustomerStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerStatusChanged, AggregateTypeCustomer, c.ID),
		Name:            c.Name,
		OldStatus:       old,
		NewStatus:       c.Status,
	}
}

// CustomerDeletedEvent is published after a customer is removed
type CustomerDeletedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
}

// NewCustomerDeletedEvent creates a new CustomerDeletedEvent
func NewCustomerDeletedEvent(c *Customer) *CustomerDeletedEvent {
	return &CustomerDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerDeleted, AggregateTypeCustomer, c.ID),
		Name:            c.Name,
	}
}

// ProjectCreatedEvent is published when a project is created
type ProjectCreatedEvent struct {
	shared.BaseDomainEvent
	CustomerID uuid.UUID `json:"customer_id"`
	Name       string    `json:"name"`
}

// NewProjectCreatedEvent creates a new ProjectCreatedEvent
func NewProjectCreatedEvent(p *Project) *ProjectCreatedEvent {
	return &ProjectCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProjectCreated, AggregateTypeProject, p.ID),
		CustomerID:      p.CustomerID,
		Name:            p.Name,
	}
}

// ProjectUpdatedEvent is published when a project's details change
type ProjectUpdatedEvent struct {
	shared.BaseDomainEvent
	CustomerID uuid.UUID `json:"customer_id"`
	Name       string    `json:"name"`
}

// NewProjectUpdatedEvent creates a new ProjectUpdatedEvent
func NewProjectUpdatedEvent(p *Project) *ProjectUpdatedEvent {
	return &ProjectUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProjectUpdated, AggregateTypeProject, p.ID),
		CustomerID:      p.CustomerID,
		Name:            p.Name,
	}
}

// ProjectStatusChangedEvent is published on status transitions
type ProjectStatusChangedEvent struct {
	shared.BaseDomainEvent
	CustomerID uuid.UUID     `json:"customer_id"`
	Name       string        `json:"name"`
	OldStatus  ProjectStatus `json:"old_status"`
	NewStatus  ProjectStatus `json:"new_status"`
}

// NewProjectStatusChangedEvent creates a new ProjectStatusChangedEvent
func NewProjectStatusChangedEvent(p *Project, old ProjectStatus) *ProjectStatusChangedEvent {
	return &ProjectStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProjectStatusChanged, AggregateTypeProject, p.ID),
		CustomerID:      p.CustomerID,
		Name:            p.Name,
		OldStatus:       old,
		NewStatus:       p.Status,
	}
}

// ProjectDeletedEvent is published after a project is removed
type ProjectDeletedEvent struct {
	shared.BaseDomainEvent
	CustomerID uuid.UUID `json:"customer_id"`
	Name       string    `json:"name"`
}

// NewProjectDeletedEvent creates a new ProjectDeletedEvent
func NewProjectDeletedEvent(p *Project) *ProjectDeletedEvent {
	return &ProjectDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProjectDeleted, AggregateTypeProject, p.ID),
		CustomerID:      p.CustomerID,
		Name:            p.Name,
	}
}

// CustomerRef returns the owning customer, letting account-level caches react
func (e *ProjectCreatedEvent) CustomerRef() uuid.UUID { return e.CustomerID }

// CustomerRef returns the owning customer
func (e *ProjectUpdatedEvent) CustomerRef() uuid.UUID { return e.CustomerID }

// CustomerRef returns the owning customer
func (e *ProjectStatusChangedEvent) CustomerRef() uuid.UUID { return e.CustomerID }

// CustomerRef returns the owning customer
func (e *ProjectDeletedEvent) CustomerRef() uuid.UUID { return e.CustomerID }
