package identity

import (
	"context"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/ledgerbook/backend/internal/application/common"
	"github.com/ledgerbook/backend/internal/domain/identity"
	"github.com/ledgerbook/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ActivityLogService reads the activity log
type ActivityLogService struct {
	logRepo identity.ActivityLogRepository
	logger  *zap.Logger
}

// NewActivityLogService creates a new ActivityLogService
func NewActivityLogService(logRepo identity.ActivityLogRepository, logger *zap.Logger) *ActivityLogService {
	return &ActivityLogService{
		logRepo: logRepo,
		logger:  common.LoggerOrNop(logger),
	}
}

// List retrieves a page of activity, newest first
func (s *ActivityLogService) List(ctx context.Context, filter ActivityLogListFilter) (shared.Paginated[ActivityLogResponse], error) {
	f := filter.Filter()
	if err := filter.Apply(&f); err != nil {
		return shared.Paginated[ActivityLogResponse]{}, err
	}
	common.SetFilter(&f, "user_id", filter.UserID)
	common.SetFilter(&f, "entity_type", filter.EntityType)
	common.SetFilter(&f, "entity_id", filter.EntityID)
	common.SetFilter(&f, "action", filter.Action)
	return s.list(ctx, f)
}

// ListForEntity retrieves the history of one record
func (s *ActivityLogService) ListForEntity(ctx context.Context, entityType string, entityID uuid.UUID, query common.ListQuery) (shared.Paginated[ActivityLogResponse], error) {
	f := query.Filter()
	common.SetFilter(&f, "entity_type", entityType)
	common.SetFilter(&f, "entity_id", entityID.String())
	return s.list(ctx, f)
}

func (s *ActivityLogService) list(ctx context.Context, f shared.Filter) (shared.Paginated[ActivityLogResponse], error) {
	logs, err := s.logRepo.FindAll(ctx, f)
	if err != nil {
		return shared.Paginated[ActivityLogResponse]{}, err
	}
	total, err := s.logRepo.Count(ctx, f)
	if err != nil {
		return shared.Paginated[ActivityLogResponse]{}, err
	}
	return shared.NewPaginated(ToActivityLogResponses(logs), total, f.Page, f.PageSize), nil
}

// ActivityRecorder writes an activity entry for every domain event. The
// acting user and IP address are taken from the publishing context.
type ActivityRecorder struct {
	logRepo identity.ActivityLogRepository
	logger  *zap.Logger
}

// NewActivityRecorder creates a new ActivityRecorder
func NewActivityRecorder(logRepo identity.ActivityLogRepository, logger *zap.Logger) *ActivityRecorder {
	return &ActivityRecorder{
		logRepo: logRepo,
		logger:  common.LoggerOrNop(logger),
	}
}

// EventTypes subscribes to all events
func (r *ActivityRecorder) EventTypes() []string {
	return nil
}

// Handle records the event. Failures are logged and swallowed so that a
// broken log table never fails a committed business write.
func (r *ActivityRecorder) Handle(ctx context.Context, event shared.DomainEvent) error {
	actor, _ := shared.ActorFromContext(ctx)
	var userID *uuid.UUID
	if actor.UserID != uuid.Nil {
		id := actor.UserID
		userID = &id
	} else if event.AggregateType() == identity.AggregateTypeUser && isSessionEvent(event.EventType()) {
		id := event.AggregateID()
		userID = &id
	}

	entityID := event.AggregateID()
	entry, err := identity.NewActivityLog(userID, ActionForEvent(event.EventType()), entityTypeOf(event), &entityID, describe(event.EventType()))
	if err != nil {
		r.logger.Warn("Skipping activity for event", zap.String("event_type", event.EventType()), zap.Error(err))
		return nil
	}
	entry.IPAddress = actor.IP
	entry.WithMetadata("event_id", event.EventID().String()).
		WithMetadata("event_type", event.EventType())

	if err := r.logRepo.Create(ctx, entry); err != nil {
		r.logger.Error("Failed to record activity",
			zap.String("event_type", event.EventType()),
			zap.String("entity_id", entityID.String()),
			zap.Error(err))
	}
	return nil
}

// ActionForEvent maps a domain event type to the activity action it represents
func ActionForEvent(eventType string) identity.Action {
	switch {
	case eventType == identity.EventTypeUserLoggedIn:
		return identity.ActionLogin
	case eventType == identity.EventTypeUserLoggedOut:
		return identity.ActionLogout
	case eventType == "PaymentRecorded":
		return identity.ActionPayment
	case eventType == "FileUploaded":
		return identity.ActionUpload
	case strings.HasSuffix(eventType, "Created"), strings.HasSuffix(eventType, "Recorded"):
		return identity.ActionCreate
	case strings.HasSuffix(eventType, "Deleted"):
		return identity.ActionDelete
	default:
		return identity.ActionUpdate
	}
}

func isSessionEvent(eventType string) bool {
	return eventType == identity.EventTypeUserLoggedIn || eventType == identity.EventTypeUserLoggedOut
}

// entityTypeOf turns an aggregate type such as "CustomerInvoice" into "customer_invoice"
func entityTypeOf(event shared.DomainEvent) string {
	return strings.Join(splitWords(event.AggregateType()), "_")
}

// describe turns an event type such as "InvoiceStatusChanged" into "Invoice status changed"
func describe(eventType string) string {
	words := splitWords(eventType)
	if len(words) == 0 {
		return eventType
	}
	text := strings.Join(words, " ")
	return strings.ToUpper(text[:1]) + text[1:]
}

func splitWords(s string) []string {
	var (
		words   []string
		current []rune
	)
	for _, r := range s {
		if unicode.IsUpper(r) && len(current) > 0 {
			words = append(words, string(current))
			current = current[:0]
		}
		current = append(current, unicode.ToLower(r))
	}
	if len(current) > 0 {
		words = append(words, string(current))
	}
	return words
}
