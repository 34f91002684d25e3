package common

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ledgerbook/backend/internal/domain/customer"
	"github.com/ledgerbook/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestListQuery_Filter(t *testing.T) {
	f := ListQuery{}.Filter()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, shared.DefaultPageSize, f.PageSize)
	assert.Equal(t, "created_at", f.OrderBy)
	assert.NotNil(t, f.Filters)

	f = ListQuery{Page: 3, PageSize: 500, OrderBy: "name", OrderDir: "ASC", Search: "  acme "}.Filter()
	assert.Equal(t, 3, f.Page)
	assert.Equal(t, shared.MaxPageSize, f.PageSize)
	assert.Equal(t, "name", f.OrderBy)
	assert.Equal(t, "asc", f.OrderDir)
	assert.Equal(t, "acme", f.Search)
}

func TestDateRange_Apply(t *testing.T) {
	from := time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	f := shared.DefaultFilter()
	require.NoError(t, DateRange{DateFrom: &from, DateTo: &to}.Apply(&f))
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), *f.DateFrom)
	assert.Equal(t, 31, f.DateTo.Day())
	assert.Equal(t, 23, f.DateTo.Hour())

	err := DateRange{DateFrom: &to, DateTo: &from}.Apply(&f)
	var de *shared.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "INVALID_DATE_RANGE", de.Code)
}

func TestSetFilter_SkipsBlank(t *testing.T) {
	f := shared.Filter{}
	SetFilter(&f, "status", "  ")
	assert.Empty(t, f.Filters)
	SetFilter(&f, "status", "active")
	assert.Equal(t, "active", f.Filters["status"])
}

func TestMonthRange(t *testing.T) {
	from, to := MonthRange(time.Date(2024, 2, 14, 9, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, 29, to.Day())
	assert.Equal(t, time.February, to.Month())
}

func TestDate_JSON(t *testing.T) {
	var body struct {
		Due  *Date `json:"due"`
		Paid Date  `json:"paid"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"due":"2026-05-31","paid":"2026-05-01T10:00:00Z"}`), &body))
	require.NotNil(t, body.Due)
	assert.Equal(t, time.May, body.Due.Month())
	assert.Equal(t, 10, body.Paid.Hour())

	out, err := json.Marshal(body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"due":"2026-05-31","paid":"2026-05-01"}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"due":"31/05/2026"}`), &body))

	var nilDate *Date
	assert.Nil(t, nilDate.Ptr())
	assert.Nil(t, (&Date{}).Ptr())
}

type recordingPublisher struct {
	events []shared.DomainEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return p.err
}

func TestPublishEvents(t *testing.T) {
	c, err := customer.NewCustomer("Acme")
	require.NoError(t, err)

	pub := &recordingPublisher{}
	PublishEvents(context.Background(), pub, zap.NewNop(), c)

	require.Len(t, pub.events, 1)
	assert.Equal(t, customer.EventTypeCustomerCreated, pub.events[0].EventType())
	assert.Empty(t, c.GetDomainEvents())
}

func TestPublishEvents_NilPublisherStillClears(t *testing.T) {
	c, err := customer.NewCustomer("Acme")
	require.NoError(t, err)

	PublishEvents(context.Background(), nil, nil, c)
	assert.Empty(t, c.GetDomainEvents())
}

func TestPublishEvents_LogsFailure(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	c, err := customer.NewCustomer("Acme")
	require.NoError(t, err)

	PublishEvents(context.Background(), &recordingPublisher{err: errors.New("bus down")}, zap.New(core), c)

	entries := logs.FilterMessage("Failed to publish domain events").All()
	require.Len(t, entries, 1)
	assert.Equal(t, c.ID.String(), entries[0].ContextMap()["aggregate_id"])
}
