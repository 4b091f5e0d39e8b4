package models

import (
	"github.com/campuskit/coursezoom/pkg/internal/zoom"
	"github.com/samber/lo"
)

type ScheduleMode = string

const (
	// ScheduleCourseDates keeps the meeting time derived from the course's
	// date list; the sync job moves it to the next date once it elapsed.
	ScheduleCourseDates = ScheduleMode("coursedates")
	// ScheduleManual leaves the time alone, optionally with a weekly
	// recurrence set at creation time.
	ScheduleManual = ScheduleMode("manual")
)

type ZoomMeeting struct {
	BaseModel

	CourseID string        `json:"course_id" gorm:"index"`
	UserID   string        `json:"user_id"`
	Type     ScheduleMode  `json:"type"`
	RoomType zoom.RoomType `json:"room_type"`
	RemoteID string        `json:"remote_id" gorm:"uniqueIndex"`

	// SkipCache forces the next hydration to bypass the meeting cache.
	SkipCache bool `json:"-" gorm:"-"`
	// Remote carries the provider-side state once hydrated, it is never
	// written to the local table.
	Remote *zoom.Meeting `json:"remote,omitempty" gorm:"-"`
	// TurnoutAdvisory is set when the course turnout has outgrown the
	// capacity of the current room type. Room types are immutable after
	// creation, so this is a hint for the lecturer, nothing is migrated.
	TurnoutAdvisory bool `json:"turnout_advisory,omitempty" gorm:"-"`
}

// IsHost reports whether the given user owns this meeting, either as the
// provider-side host or as one of the alternative hosts. Requires Remote to
// be hydrated; an unhydrated record grants nothing.
func (v ZoomMeeting) IsHost(email string, zoomUserId string) bool {
	if v.Remote == nil {
		return false
	}
	if len(zoomUserId) > 0 && zoomUserId == v.Remote.HostID {
		return true
	}
	return lo.Contains(v.Remote.AlternativeHosts(), email)
}
