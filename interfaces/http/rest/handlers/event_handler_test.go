package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bookcrawl-backend/domain/bookshop"
	storage "bookcrawl-backend/infrastructure/persistence/dynamodb"
)

type fakeEventLister struct {
	from   time.Time
	events []storage.UpcomingEvent
	err    error
}

func (f *fakeEventLister) ListEvents(_ context.Context, from time.Time) ([]storage.UpcomingEvent, error) {
	f.from = from
	return f.events, f.err
}

func TestListEventsDefaultsToToday(t *testing.T) {
	lister := &fakeEventLister{events: []storage.UpcomingEvent{
		{BookshopID: "s1", BookshopName: "Indy Reads",
			Event: bookshop.Event{ID: "e1", Title: "Author Signing", Date: "2026-09-15"}},
	}}
	h := NewEventHandler(lister, zap.NewNop())

	rec := httptest.NewRecorder()
	h.ListEvents(rec, httptest.NewRequest(http.MethodGet, "/events", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.WithinDuration(t, time.Now(), lister.from, time.Minute)
	assert.Contains(t, rec.Body.String(), "Author Signing")
}

func TestListEventsHonorsFromParameter(t *testing.T) {
	lister := &fakeEventLister{}
	h := NewEventHandler(lister, zap.NewNop())

	rec := httptest.NewRecorder()
	h.ListEvents(rec, httptest.NewRequest(http.MethodGet, "/events?from=2026-10-01", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), lister.from)
}

func TestListEventsRejectsBadFrom(t *testing.T) {
	lister := &fakeEventLister{}
	h := NewEventHandler(lister, zap.NewNop())

	rec := httptest.NewRecorder()
	h.ListEvents(rec, httptest.NewRequest(http.MethodGet, "/events?from=next-week", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.True(t, lister.from.IsZero(), "invalid dates never reach the store")
}
