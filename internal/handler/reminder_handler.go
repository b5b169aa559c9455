package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/domain"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/service"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/pkg/errors"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/pkg/logger"
)

// ReminderHandler exposes the scheduled triggers to an external cron
type ReminderHandler struct {
	reminders service.ReminderService
	groups    service.GroupService
	logger    *logger.Logger
}

// NewReminderHandler creates a new reminder handler
func NewReminderHandler(reminders service.ReminderService, groups service.GroupService, log *logger.Logger) *ReminderHandler {
	return &ReminderHandler{
		reminders: reminders,
		groups:    groups,
		logger:    log.Named("reminders"),
	}
}

// Trigger handles GET/POST /api/reminders?type=monthly|weekly|daily|cleanup[&scope=this]
func (h *ReminderHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	kind, ok := domain.ParseReminderType(query.Get("type"))
	if !ok {
		respondError(w, r, errors.NewValidationError(
			"Invalid reminder type. Use: monthly, weekly, daily or cleanup",
			map[string]interface{}{"type": query.Get("type")},
		), h.logger)
		return
	}

	result, err := Run(r.Context(), h.reminders, kind, query.Get("scope"))
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondData(w, http.StatusOK, result)
}

// Run dispatches one trigger. The result is a *domain.ReminderResult or,
// for cleanup, a *domain.CleanupResult.
func Run(ctx context.Context, reminders service.ReminderService, kind domain.ReminderType, scope string) (interface{}, error) {
	switch kind {
	case domain.ReminderMonthly:
		return reminders.Monthly(ctx)
	case domain.ReminderWeekly:
		weekScope, ok := domain.ParseWeekScope(scope)
		if !ok {
			return nil, errors.NewValidationError("Invalid scope. Use: this or next", map[string]interface{}{"scope": scope})
		}
		return reminders.Weekly(ctx, weekScope)
	case domain.ReminderDaily:
		return reminders.Daily(ctx)
	case domain.ReminderCleanup:
		return reminders.Cleanup(ctx)
	}
	return nil, errors.NewValidationError("Invalid reminder type", nil)
}

// Groups handles GET /api/groups
func (h *ReminderHandler) Groups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.groups.ListActive(r.Context())
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	if groups == nil {
		groups = []domain.ReminderGroup{}
	}
	respondList(w, groups, len(groups))
}

// RenameGroupRequest is the body of PUT /api/groups/{id}
type RenameGroupRequest struct {
	GroupName string `json:"group_name"`
}

// RenameGroup handles PUT /api/groups/{id}
func (h *ReminderHandler) RenameGroup(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "id")

	var req RenameGroupRequest
	if err := decodeJSON(r, w, &req); err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	name := strings.TrimSpace(req.GroupName)
	if name == "" {
		respondError(w, r, errors.NewValidationError("group_name is required", nil), h.logger)
		return
	}

	if err := h.groups.Rename(r.Context(), groupID, name); err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, Envelope{Success: true, Message: "Group renamed"})
}
