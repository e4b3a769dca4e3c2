package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/watch-rotation-scheduler/internal/model"
	"github.com/iliyamo/watch-rotation-scheduler/internal/repository"
	"github.com/iliyamo/watch-rotation-scheduler/internal/rotation"
	"github.com/iliyamo/watch-rotation-scheduler/internal/service"
)

// maxListDays bounds GET /v1/schedules.
const maxListDays = 366

// Generator runs schedule generation.  *service.Generator implements it.
type Generator interface {
	Generate(ctx context.Context, req service.Request) (*service.Result, error)
}

// EntryLister reads persisted entries.  *repository.ScheduleEntryRepo
// implements it.
type EntryLister interface {
	ListByDateRange(ctx context.Context, userID uint64, start, end string) ([]model.ScheduleEntry, error)
}

// ScheduleHandler serves the generation trigger and the schedule read side.
type ScheduleHandler struct {
	gen     Generator
	entries EntryLister
	timeout time.Duration
	log     zerolog.Logger
}

// NewScheduleHandler panics if a dependency is nil.  timeout bounds a
// generation request; zero leaves it to the client connection.
func NewScheduleHandler(gen Generator, entries EntryLister, timeout time.Duration, log zerolog.Logger) *ScheduleHandler {
	if gen == nil || entries == nil {
		panic("nil dependency passed to NewScheduleHandler")
	}
	return &ScheduleHandler{gen: gen, entries: entries, timeout: timeout, log: log}
}

// generateBody is the JSON body of POST /v1/schedules/generate.  Weights
// are keyed by content id.
type generateBody struct {
	SourceType          string         `json:"source_type"`
	SourceID            uint64         `json:"source_id"`
	StartDate           string         `json:"start_date"`
	EndDate             string         `json:"end_date"`
	DailyStartTime      string         `json:"daily_start_time"`
	DailyEndTime        string         `json:"daily_end_time"`
	SlotDurationMinutes int            `json:"slot_duration_minutes"`
	MaxTracksPerSlot    int            `json:"max_tracks_per_slot"`
	TimezoneOffset      string         `json:"timezone_offset"`
	IncludeReruns       *bool          `json:"include_reruns"`
	RerunFrequency      string         `json:"rerun_frequency"`
	RotationType        string         `json:"rotation_type"`
	RotationWeights     map[uint64]int `json:"rotation_weights"`
}

// Generate handles POST /v1/schedules/generate.  It answers 201 with the
// run result, or 200 when nothing was created.
func (h *ScheduleHandler) Generate(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body generateBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	ctx := c.Request().Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	res, err := h.gen.Generate(ctx, service.Request{
		OwnerID:             userID,
		SourceType:          strings.TrimSpace(body.SourceType),
		SourceID:            body.SourceID,
		StartDate:           strings.TrimSpace(body.StartDate),
		EndDate:             strings.TrimSpace(body.EndDate),
		DailyStartTime:      strings.TrimSpace(body.DailyStartTime),
		DailyEndTime:        strings.TrimSpace(body.DailyEndTime),
		SlotDurationMinutes: body.SlotDurationMinutes,
		MaxTracksPerSlot:    body.MaxTracksPerSlot,
		TimezoneOffset:      strings.TrimSpace(body.TimezoneOffset),
		IncludeReruns:       body.IncludeReruns,
		RerunFrequency:      body.RerunFrequency,
		RotationType:        body.RotationType,
		RotationWeights:     body.RotationWeights,
	})
	if err != nil {
		return h.fail(c, err)
	}
	status := http.StatusCreated
	if res.CreatedCount == 0 {
		status = http.StatusOK
	}
	return c.JSON(status, res)
}

// List handles GET /v1/schedules?start=YYYY-MM-DD&end=YYYY-MM-DD, or
// ?date=YYYY-MM-DD for a single day.
func (h *ScheduleHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	start := strings.TrimSpace(c.QueryParam("start"))
	end := strings.TrimSpace(c.QueryParam("end"))
	if d := strings.TrimSpace(c.QueryParam("date")); d != "" {
		start, end = d, d
	}
	if start == "" || end == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start and end (or date) are required"})
	}
	from, err := rotation.ParseDate(start)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start must use YYYY-MM-DD"})
	}
	to, err := rotation.ParseDate(end)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "end must use YYYY-MM-DD"})
	}
	if to.Before(from) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start must not be after end"})
	}
	if days := int(to.Sub(from).Hours()/24) + 1; days > maxListDays {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date range is too long"})
	}

	list, err := h.entries.ListByDateRange(c.Request().Context(), userID, start, end)
	if err != nil {
		h.log.Error().Err(err).Uint64("user_id", userID).Msg("list schedule failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load schedule"})
	}
	if list == nil {
		list = []model.ScheduleEntry{}
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(list), "schedule_entries": list})
}

// fail maps generation errors to responses.
func (h *ScheduleHandler) fail(c echo.Context, err error) error {
	var verr *rotation.ValidationError
	var cerr *service.ConflictResolutionError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":      verr.Error(),
			"field":      verr.Field,
			"constraint": verr.Constraint,
		})
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "rotation group not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.As(err, &cerr) && cerr.Retryable:
		c.Response().Header().Set("Retry-After", "1")
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "schedule is being updated, retry", "retryable": true})
	case errors.Is(err, context.DeadlineExceeded):
		return c.JSON(http.StatusGatewayTimeout, echo.Map{"error": "generation timed out"})
	case errors.Is(err, context.Canceled):
		return c.JSON(http.StatusRequestTimeout, echo.Map{"error": "request cancelled"})
	}
	h.log.Error().Err(err).Msg("generation failed")
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "generation failed", "retryable": false})
}
