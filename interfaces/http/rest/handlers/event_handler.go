package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	storage "bookcrawl-backend/infrastructure/persistence/dynamodb"
	"bookcrawl-backend/pkg/common"
	apperrors "bookcrawl-backend/pkg/errors"
	"bookcrawl-backend/pkg/utils"
)

// EventLister flattens upcoming events across approved bookshops.
type EventLister interface {
	ListEvents(ctx context.Context, from time.Time) ([]storage.UpcomingEvent, error)
}

// EventHandler serves the public events calendar.
type EventHandler struct {
	store  EventLister
	logger *zap.Logger
}

// NewEventHandler creates a new event handler.
func NewEventHandler(store EventLister, logger *zap.Logger) *EventHandler {
	return &EventHandler{store: store, logger: logger}
}

// ListEvents handles GET /events. The optional from parameter (YYYY-MM-DD)
// moves the cutoff; it defaults to today.
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	from := time.Now()
	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := utils.ParseEventDate(raw)
		if err != nil {
			common.RespondError(w, http.StatusBadRequest, string(apperrors.ErrorTypeValidation),
				"from must be a YYYY-MM-DD date")
			return
		}
		from = parsed
	}

	events, err := h.store.ListEvents(r.Context(), from)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, events)
}
