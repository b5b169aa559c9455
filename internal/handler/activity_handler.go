package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/domain"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/middleware"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/service"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/pkg/errors"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/pkg/logger"
)

// ActivityHandler exposes activity CRUD over JSON
type ActivityHandler struct {
	activities service.ActivityService
	loc        *time.Location
	now        func() time.Time
	logger     *logger.Logger
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(activities service.ActivityService, loc *time.Location, log *logger.Logger) *ActivityHandler {
	return &ActivityHandler{
		activities: activities,
		loc:        loc,
		now:        time.Now,
		logger:     log.Named("activities"),
	}
}

// List handles GET /api/activities?month=&year=
func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	monthParam, yearParam := query.Get("month"), query.Get("year")

	var (
		activities []domain.Activity
		err        error
	)
	switch {
	case monthParam == "" && yearParam == "":
		activities, err = h.activities.QueryAll(r.Context())
	case monthParam == "":
		err = errors.NewValidationError("month is required when year is given", nil)
	default:
		var month, year int
		month, year, err = h.parseMonthYear(monthParam, yearParam)
		if err == nil {
			activities, err = h.activities.QueryByMonth(r.Context(), time.Month(month), year)
		}
	}
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	if activities == nil {
		activities = []domain.Activity{}
	}
	respondList(w, activities, len(activities))
}

func (h *ActivityHandler) parseMonthYear(monthParam, yearParam string) (int, int, error) {
	month, err := strconv.Atoi(monthParam)
	if err != nil {
		return 0, 0, errors.NewValidationError("月份必須介於 1 到 12。\nMonth must be between 1 and 12.", map[string]interface{}{"month": monthParam})
	}

	year := h.now().In(h.loc).Year()
	if yearParam != "" {
		year, err = strconv.Atoi(yearParam)
		if err != nil || year < 1970 || year > 9999 {
			return 0, 0, errors.NewValidationError("Invalid year", map[string]interface{}{"year": yearParam})
		}
	}
	return month, year, nil
}

// Get handles GET /api/activities/{id}
func (h *ActivityHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	activity, err := h.activities.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondData(w, http.StatusOK, activity)
}

// Create handles POST /api/activities
func (h *ActivityHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.NewActivity
	if err := decodeJSON(r, w, &req); err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	activity, err := h.activities.Create(r.Context(), req)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	h.audit(r, "create", activity.ID)
	respondData(w, http.StatusCreated, activity)
}

// Update handles PUT /api/activities/{id}
func (h *ActivityHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	var patch domain.ActivityPatch
	if err := decodeJSON(r, w, &patch); err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	activity, err := h.activities.Update(r.Context(), id, patch)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	h.audit(r, "update", id)
	respondData(w, http.StatusOK, activity)
}

// Delete handles DELETE /api/activities/{id}
func (h *ActivityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	activity, err := h.activities.Delete(r.Context(), id)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	h.audit(r, "delete", id)
	respondJSON(w, http.StatusOK, Envelope{Success: true, Data: activity, Message: "Activity deleted"})
}

func (h *ActivityHandler) audit(r *http.Request, action string, id int64) {
	fields := map[string]interface{}{
		"action":      action,
		"activity_id": id,
		"request_id":  middleware.GetRequestID(r.Context()),
	}
	if admin, ok := middleware.GetAdmin(r.Context()); ok {
		fields["admin"] = admin.Subject
	}
	h.logger.WithFields(fields).Info("Activity changed via API")
}
