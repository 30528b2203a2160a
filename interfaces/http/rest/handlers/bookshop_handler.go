// Package handlers contains the HTTP handlers for the bookshop API.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"bookcrawl-backend/domain/bookshop"
	"bookcrawl-backend/domain/events"
	storage "bookcrawl-backend/infrastructure/persistence/dynamodb"
	"bookcrawl-backend/pkg/auth"
	"bookcrawl-backend/pkg/common"
	apperrors "bookcrawl-backend/pkg/errors"
	"bookcrawl-backend/pkg/utils"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// BookshopStore is the persistence surface the handler depends on.
type BookshopStore interface {
	Create(ctx context.Context, input storage.CreateInput) (*bookshop.Bookshop, error)
	Get(ctx context.Context, id string, includeDeleted bool) (*bookshop.Bookshop, error)
	List(ctx context.Context, filter storage.ListFilter) ([]*bookshop.Bookshop, error)
	Patch(ctx context.Context, id string, updates map[string]interface{}) (*bookshop.Bookshop, error)
	SoftDelete(ctx context.Context, id, actor string) (*bookshop.Bookshop, error)
	SetApproval(ctx context.Context, id string, approved bool) (*bookshop.Bookshop, error)
}

// EventPublisher emits moderation audit events. Optional; nil disables
// publishing.
type EventPublisher interface {
	Publish(ctx context.Context, event events.DomainEvent) error
}

// BookshopHandler serves the bookshop CRUD and moderation endpoints.
type BookshopHandler struct {
	store     BookshopStore
	publisher EventPublisher
	logger    *zap.Logger
}

// NewBookshopHandler creates a new bookshop handler.
func NewBookshopHandler(store BookshopStore, publisher EventPublisher, logger *zap.Logger) *BookshopHandler {
	return &BookshopHandler{
		store:     store,
		publisher: publisher,
		logger:    logger,
	}
}

// hoursPayload mirrors an operating-hours entry on the wire.
type hoursPayload struct {
	ID        string `json:"id"`
	DayOfWeek string `json:"dayOfWeek" validate:"required,oneof=Sunday Monday Tuesday Wednesday Thursday Friday Saturday"`
	OpenTime  string `json:"openTime" validate:"required,clock"`
	CloseTime string `json:"closeTime" validate:"required,clock"`
}

// eventPayload mirrors a calendar event on the wire.
type eventPayload struct {
	ID          string `json:"id"`
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Date        string `json:"date" validate:"required,dateonly"`
	Time        string `json:"time" validate:"omitempty,clock"`
	EndTime     string `json:"endTime" validate:"omitempty,clock"`
}

// createBookshopRequest is the submission payload. Moderation state and
// timestamps are never caller-supplied.
type createBookshopRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Description string  `json:"description" validate:"max=2000"`
	Address     string  `json:"address" validate:"max=300"`
	City        string  `json:"city" validate:"max=100"`
	State       string  `json:"state" validate:"max=100"`
	ZipCode     string  `json:"zipCode" validate:"max=20"`
	Latitude    float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude   float64 `json:"longitude" validate:"omitempty,longitude"`

	Hours      []hoursPayload `json:"hours" validate:"omitempty,dive"`
	Events     []eventPayload `json:"events" validate:"omitempty,dive"`
	Categories []string       `json:"categories" validate:"omitempty,dive,max=100"`

	Website   string `json:"website" validate:"omitempty,url"`
	Instagram string `json:"instagram" validate:"max=200"`
	Facebook  string `json:"facebook" validate:"max=200"`
	Twitter   string `json:"twitter" validate:"max=200"`
}

// patchBookshopRequest is the typed view of an update payload, used only to
// validate formats. Pointer fields distinguish absent from zero. The actual
// update is driven by the raw field map so that only supplied fields are
// written.
type patchBookshopRequest struct {
	Name        *string  `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string  `json:"description" validate:"omitempty,max=2000"`
	Address     *string  `json:"address" validate:"omitempty,max=300"`
	City        *string  `json:"city" validate:"omitempty,max=100"`
	State       *string  `json:"state" validate:"omitempty,max=100"`
	ZipCode     *string  `json:"zipCode" validate:"omitempty,max=20"`
	Latitude    *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude   *float64 `json:"longitude" validate:"omitempty,longitude"`

	Hours      []hoursPayload `json:"hours" validate:"omitempty,dive"`
	Events     []eventPayload `json:"events" validate:"omitempty,dive"`
	Categories []string       `json:"categories" validate:"omitempty,dive,max=100"`

	Website   *string `json:"website" validate:"omitempty,url"`
	Instagram *string `json:"instagram" validate:"omitempty,max=200"`
	Facebook  *string `json:"facebook" validate:"omitempty,max=200"`
	Twitter   *string `json:"twitter" validate:"omitempty,max=200"`

	Approved *bool `json:"approved"`
}

// CreateBookshop handles POST /bookshops. New submissions always start
// unapproved.
func (h *BookshopHandler) CreateBookshop(w http.ResponseWriter, r *http.Request) {
	var req createBookshopRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, string(apperrors.ErrorTypeValidation), "invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, string(apperrors.ErrorTypeValidation), err.Error())
		return
	}

	input := storage.CreateInput{
		Name:        req.Name,
		Description: req.Description,
		Address:     req.Address,
		City:        req.City,
		State:       req.State,
		ZipCode:     req.ZipCode,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Categories:  req.Categories,
		Website:     req.Website,
		Instagram:   req.Instagram,
		Facebook:    req.Facebook,
		Twitter:     req.Twitter,
	}
	for _, hp := range req.Hours {
		input.Hours = append(input.Hours, bookshop.OperatingHours{
			ID:        orNewID(hp.ID),
			DayOfWeek: bookshop.DayOfWeek(hp.DayOfWeek),
			OpenTime:  hp.OpenTime,
			CloseTime: hp.CloseTime,
		})
	}
	for _, ep := range req.Events {
		input.Events = append(input.Events, bookshop.Event{
			ID:          orNewID(ep.ID),
			Title:       ep.Title,
			Description: ep.Description,
			Date:        ep.Date,
			Time:        ep.Time,
			EndTime:     ep.EndTime,
		})
	}

	created, err := h.store.Create(r.Context(), input)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	h.publish(r.Context(), events.NewBookshopCreated(created.ID, created.Name, h.actor(r), time.Now()))
	common.RespondJSON(w, http.StatusCreated, created)
}

// GetBookshop handles GET /bookshops/{bookshopID}. Soft-deleted records are
// invisible to everyone, admins included; they come back through the list
// endpoint's includeDeleted switch instead.
func (h *BookshopHandler) GetBookshop(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "bookshopID")
	if id == "" {
		common.RespondError(w, http.StatusBadRequest, string(apperrors.ErrorTypeValidation), "bookshop id is required")
		return
	}

	shop, err := h.store.Get(r.Context(), id, false)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, shop)
}

// ListBookshops handles GET /bookshops with approved, category, q and
// includeDeleted query parameters. Anonymous callers only ever see approved
// records; the unapproved and deleted views require an admin token.
func (h *BookshopHandler) ListBookshops(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := storage.ListFilter{
		Category: q.Get("category"),
		Query:    q.Get("q"),
	}

	isAdmin := false
	if user, err := auth.GetUserFromContext(r.Context()); err == nil {
		isAdmin = user.IsAdmin()
	}

	switch {
	case !isAdmin:
		approved := true
		filter.Approved = &approved
	case q.Get("approved") != "":
		approved := q.Get("approved") == "true"
		filter.Approved = &approved
	}
	if isAdmin && q.Get("includeDeleted") == "true" {
		filter.IncludeDeleted = true
	}

	shops, err := h.store.List(r.Context(), filter)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, shops)
}

// SearchBookshops handles GET /search?q=. A case-insensitive substring match
// over name, description, city and categories; only approved records are
// searchable.
func (h *BookshopHandler) SearchBookshops(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		common.RespondError(w, http.StatusBadRequest, string(apperrors.ErrorTypeValidation), "q is required")
		return
	}

	approved := true
	shops, err := h.store.List(r.Context(), storage.ListFilter{
		Approved: &approved,
		Query:    query,
	})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, shops)
}

// AdminListBookshops handles GET /admin/bookshops, the moderation view:
// any approval status, optionally including soft-deleted records.
func (h *BookshopHandler) AdminListBookshops(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := storage.ListFilter{
		Category:       q.Get("category"),
		Query:          q.Get("q"),
		IncludeDeleted: q.Get("includeDeleted") == "true",
	}
	if raw := q.Get("approved"); raw != "" {
		approved := raw == "true"
		filter.Approved = &approved
	}

	shops, err := h.store.List(r.Context(), filter)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, shops)
}

// UpdateBookshop handles PATCH /bookshops/{bookshopID}. Only fields present
// in the payload are written; fields outside the record schema are rejected
// before anything touches storage. An empty payload is a valid update that
// only bumps updatedAt.
func (h *BookshopHandler) UpdateBookshop(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "bookshopID")
	if id == "" {
		common.RespondError(w, http.StatusBadRequest, string(apperrors.ErrorTypeValidation), "bookshop id is required")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, string(apperrors.ErrorTypeValidation), "failed to read request body")
		return
	}

	updates := map[string]interface{}{}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &updates); err != nil {
			common.RespondError(w, http.StatusBadRequest, string(apperrors.ErrorTypeValidation), "invalid request body")
			return
		}
		// Typed second decode for format validation; unknown fields are
		// left to the store's schema check so they report as such.
		var typed patchBookshopRequest
		if err := json.Unmarshal(body, &typed); err != nil {
			common.RespondError(w, http.StatusBadRequest, string(apperrors.ErrorTypeValidation), "invalid request body")
			return
		}
		if err := utils.ValidateStruct(typed); err != nil {
			common.RespondError(w, http.StatusBadRequest, string(apperrors.ErrorTypeValidation), err.Error())
			return
		}
	}

	// Deletion state only changes through DELETE; a patch must not be able
	// to resurrect a soft-deleted record or forge its audit trail.
	for _, field := range []string{bookshop.FieldDeleted, bookshop.FieldDeletedAt, bookshop.FieldDeletedBy} {
		if _, ok := updates[field]; ok {
			common.RespondError(w, http.StatusBadRequest, string(apperrors.ErrorTypeValidation),
				fmt.Sprintf("field %q is managed by the delete flow", field))
			return
		}
	}

	assignEntryIDs(updates, "hours")
	assignEntryIDs(updates, "events")

	updated, err := h.store.Patch(r.Context(), id, updates)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, updated)
}

// DeleteBookshop handles DELETE /bookshops/{bookshopID}. The record is
// retained with deleted="true" and actor attribution; nothing is physically
// removed. Deleting an already-deleted record succeeds and re-stamps
// deletedAt.
func (h *BookshopHandler) DeleteBookshop(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "bookshopID")
	if id == "" {
		common.RespondError(w, http.StatusBadRequest, string(apperrors.ErrorTypeValidation), "bookshop id is required")
		return
	}

	actor := h.actor(r)
	deleted, err := h.store.SoftDelete(r.Context(), id, actor)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	h.publish(r.Context(), events.NewBookshopDeleted(deleted.ID, actor, time.Now()))
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"id":        deleted.ID,
		"deleted":   true,
		"deletedAt": deleted.DeletedAt,
	})
}

// ApproveBookshop handles POST /bookshops/{bookshopID}/approve, the
// moderation transition that makes a submission publicly visible.
func (h *BookshopHandler) ApproveBookshop(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "bookshopID")
	if id == "" {
		common.RespondError(w, http.StatusBadRequest, string(apperrors.ErrorTypeValidation), "bookshop id is required")
		return
	}

	approved, err := h.store.SetApproval(r.Context(), id, true)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	h.publish(r.Context(), events.NewBookshopApproved(approved.ID, true, h.actor(r), time.Now()))
	common.RespondJSON(w, http.StatusOK, approved)
}

// publish emits an audit event. Failures are logged; the write already
// succeeded and is never rolled back over a missed event.
func (h *BookshopHandler) publish(ctx context.Context, event events.DomainEvent) {
	if h.publisher == nil {
		return
	}
	if err := h.publisher.Publish(ctx, event); err != nil {
		h.logger.Warn("Failed to publish audit event",
			zap.String("eventType", event.GetEventType()),
			zap.String("aggregateID", event.GetAggregateID()),
			zap.Error(err),
		)
	}
}

// actor returns the authenticated caller's id, empty for anonymous requests.
func (h *BookshopHandler) actor(r *http.Request) string {
	if user, err := auth.GetUserFromContext(r.Context()); err == nil {
		return user.UserID
	}
	return ""
}

// assignEntryIDs backfills ids on nested hours/events entries submitted
// without one.
func assignEntryIDs(updates map[string]interface{}, field string) {
	entries, ok := updates[field].([]interface{})
	if !ok {
		return
	}
	for _, entry := range entries {
		m, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		if id, _ := m["id"].(string); id == "" {
			m["id"] = uuid.NewString()
		}
	}
}

func orNewID(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}
