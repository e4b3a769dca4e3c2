package service

import (
	"strings"

	"github.com/iliyamo/watch-rotation-scheduler/internal/rotation"
)

// Source types accepted by Generate.
const (
	SourceQueue         = "queue"
	SourceRotationGroup = "rotationGroup"
)

// Request describes one generation run.  Optional policy fields left empty
// (or nil) fall back to the rotation group's stored policy, then to the
// defaults: round_robin, reruns disabled, frequency sometimes.
type Request struct {
	OwnerID             uint64
	SourceType          string
	SourceID            uint64
	StartDate           string
	EndDate             string
	DailyStartTime      string
	DailyEndTime        string
	SlotDurationMinutes int
	MaxTracksPerSlot    int
	TimezoneOffset      string
	IncludeReruns       *bool
	RerunFrequency      string
	RotationType        string
	RotationWeights     map[uint64]int
}

// plan is a validated Request.
type plan struct {
	req        Request
	sourceType string
	grid       rotation.GridSpec
	strategy   rotation.Strategy // empty when the request left it open
	frequency  rotation.Frequency
	startDate  string // canonical YYYY-MM-DD
	endDate    string
}

// validate checks every request field before any I/O happens.
func (g *Generator) validate(req Request) (*plan, error) {
	p := &plan{req: req}

	switch strings.ToLower(strings.TrimSpace(req.SourceType)) {
	case "", "queue":
		p.sourceType = SourceQueue
	case "rotationgroup", "rotation_group":
		p.sourceType = SourceRotationGroup
		if req.SourceID == 0 {
			return nil, rotation.Invalid(rotation.ErrInvalidParameter, "source_id", "source_id is required for rotation groups")
		}
	default:
		return nil, rotation.Invalid(rotation.ErrInvalidParameter, "source_type", "source_type must be queue or rotationGroup")
	}

	start, err := rotation.ParseDate(req.StartDate)
	if err != nil {
		return nil, rotation.Invalid(rotation.ErrInvalidParameter, "start_date", "start_date must use YYYY-MM-DD")
	}
	end, err := rotation.ParseDate(req.EndDate)
	if err != nil {
		return nil, rotation.Invalid(rotation.ErrInvalidParameter, "end_date", "end_date must use YYYY-MM-DD")
	}
	dailyStart, err := rotation.ParseClock(req.DailyStartTime)
	if err != nil {
		return nil, rotation.Invalid(rotation.ErrInvalidParameter, "daily_start_time", "daily_start_time must use HH:MM")
	}
	dailyEnd, err := rotation.ParseClock(req.DailyEndTime)
	if err != nil {
		return nil, rotation.Invalid(rotation.ErrInvalidParameter, "daily_end_time", "daily_end_time must use HH:MM")
	}

	tracks := req.MaxTracksPerSlot
	if tracks == 0 {
		tracks = 1
	}
	offset := req.TimezoneOffset
	if offset == "" {
		offset = "+00:00"
	}
	p.grid = rotation.GridSpec{
		StartDate:      start,
		EndDate:        end,
		DailyStart:     dailyStart,
		DailyEnd:       dailyEnd,
		SlotMinutes:    req.SlotDurationMinutes,
		Tracks:         tracks,
		TimezoneOffset: offset,
	}
	if err := p.grid.Validate(); err != nil {
		return nil, err
	}
	p.startDate = start.Format(rotation.DateLayout)
	p.endDate = end.Format(rotation.DateLayout)
	if days := p.grid.Days(); g.opts.MaxDays > 0 && days > g.opts.MaxDays {
		return nil, rotation.Invalid(rotation.ErrInvalidRange, "end_date", "date range is too long")
	}

	if req.RotationType != "" {
		if p.strategy, err = rotation.ParseStrategy(req.RotationType); err != nil {
			return nil, err
		}
	}
	if req.RerunFrequency != "" {
		if p.frequency, err = rotation.ParseFrequency(req.RerunFrequency); err != nil {
			return nil, err
		}
	}
	for _, w := range req.RotationWeights {
		if w < 1 {
			return nil, rotation.Invalid(rotation.ErrInvalidParameter, "rotation_weights", "rotation weights must be at least 1")
		}
	}
	return p, nil
}
