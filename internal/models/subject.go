package models

import "time"

// Subject is a gradable topic owned by exactly one tenant. The exam window
// is an explicit optional pair of columns; when both are nil the exam is
// unconditionally open.
type Subject struct {
	ID                    uint       `gorm:"primaryKey" json:"id"`
	TenantID              uint       `gorm:"not null;index" json:"tenant_id"`
	Name                  string     `gorm:"size:255;not null" json:"name"`
	Code                  string     `gorm:"size:64" json:"code"`
	TimeLimitMinutes      int        `gorm:"not null;default:60" json:"time_limit_minutes"`
	WindowStart           *time.Time `json:"window_start"`
	WindowDurationMinutes *int       `json:"window_duration_minutes"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// HasWindow reports whether the subject carries a scheduled exam window.
func (s Subject) HasWindow() bool {
	return s.WindowStart != nil && s.WindowDurationMinutes != nil
}

// WindowVerdict is the gate decision for an exam attempt at a point in time.
type WindowVerdict struct {
	State    WindowState
	StartsAt *time.Time
	EndsAt   *time.Time
}

// WindowState enumerates the possible gate outcomes.
type WindowState string

const (
	// WindowOpen means no window is configured; the exam is always available.
	WindowOpen WindowState = "open"
	// WindowNotStarted means the scheduled window has not begun yet.
	WindowNotStarted WindowState = "not_started"
	// WindowActive means the current time falls inside the scheduled window.
	WindowActive WindowState = "active"
	// WindowExpired means the scheduled window has already closed.
	WindowExpired WindowState = "expired"
)

// Admits reports whether the verdict permits starting or continuing an exam.
func (v WindowVerdict) Admits() bool {
	return v.State == WindowOpen || v.State == WindowActive
}

// EvaluateWindow recomputes the gate decision from stored timestamps. It is
// a pure function; callers invoke it on every request rather than relying on
// a background scheduler, so the verdict survives restarts.
func (s Subject) EvaluateWindow(now time.Time) WindowVerdict {
	if !s.HasWindow() {
		return WindowVerdict{State: WindowOpen}
	}

	start := *s.WindowStart
	end := start.Add(time.Duration(*s.WindowDurationMinutes) * time.Minute)

	switch {
	case now.Before(start):
		return WindowVerdict{State: WindowNotStarted, StartsAt: &start, EndsAt: &end}
	case now.After(end):
		return WindowVerdict{State: WindowExpired, StartsAt: &start, EndsAt: &end}
	default:
		return WindowVerdict{State: WindowActive, StartsAt: &start, EndsAt: &end}
	}
}
