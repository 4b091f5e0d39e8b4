package zoom

import (
	"strings"
	"time"
)

type RoomType = string

const (
	// RoomMeeting is a regular meeting room, capped at MeetingCapacity
	// attendees.
	RoomMeeting = RoomType("meeting")
	// RoomWebinar requires a webinar license on the hosting account and has
	// its own option vocabulary and capacity ceiling.
	RoomWebinar = RoomType("webinar")
)

// endpoint returns the provider's resource segment for the room type.
func endpoint(room RoomType) string {
	if room == RoomWebinar {
		return "webinars"
	}
	return "meetings"
}

// License types of a provider account.
const (
	LicenseBasic    = 1
	LicenseLicensed = 2
	LicenseOnPrem   = 3
)

// Numeric meeting type codes of the provider.
const (
	TypeInstantMeeting   = 1
	TypeScheduledMeeting = 2
	TypeRecurringMeeting = 8
	TypeWebinar          = 5
	TypeRecurringWebinar = 9
)

// Recurrence frequencies.
const (
	RecurrenceDaily   = 1
	RecurrenceWeekly  = 2
	RecurrenceMonthly = 3
)

type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Type      int    `json:"type"`
	PMI       int64  `json:"pmi"`
	Timezone  string `json:"timezone"`
}

type UserSettings struct {
	Feature struct {
		MeetingCapacity int  `json:"meeting_capacity"`
		Webinar         bool `json:"webinar"`
		WebinarCapacity int  `json:"webinar_capacity"`
	} `json:"feature"`
	ScheduleMeeting struct {
		EmbedPasswordInJoinLink bool `json:"embed_password_in_join_link"`
	} `json:"schedule_meeting"`
}

type Occurrence struct {
	OccurrenceID string `json:"occurrence_id"`
	StartTime    string `json:"start_time"`
	Duration     int    `json:"duration"`
	Status       string `json:"status"`
}

type Recurrence struct {
	Type           int    `json:"type"`
	RepeatInterval int    `json:"repeat_interval"`
	WeeklyDays     string `json:"weekly_days,omitempty"`
	EndDateTime    string `json:"end_date_time,omitempty"`
	EndTimes       int    `json:"end_times,omitempty"`
}

// Meeting is the provider's representation of a meeting or webinar.
// Settings stays a raw map on purpose: option keys the provider adds over
// time must survive a fetch-modify-update cycle untouched.
type Meeting struct {
	ID       int64  `json:"id"`
	UUID     string `json:"uuid"`
	HostID   string `json:"host_id"`
	Topic    string `json:"topic"`
	Agenda   string `json:"agenda"`
	Password string `json:"password"`
	Type     int    `json:"type"`

	StartTime string `json:"start_time"`
	Duration  int    `json:"duration"`
	Timezone  string `json:"timezone"`

	StartURL    string         `json:"start_url"`
	JoinURL     string         `json:"join_url"`
	Occurrences []Occurrence   `json:"occurrences,omitempty"`
	Recurrence  *Recurrence    `json:"recurrence,omitempty"`
	Settings    map[string]any `json:"settings"`

	// StartsAt is StartTime (or the first occurrence for recurring rooms)
	// converted into the configured local timezone.
	StartsAt time.Time `json:"starts_at"`
}

// HasEnded reports whether the (first) occurrence lies entirely in the past.
func (v Meeting) HasEnded(now time.Time) bool {
	return v.StartsAt.Add(time.Duration(v.Duration) * time.Minute).Before(now)
}

// AlternativeHosts splits the provider's comma-joined co-host list.
func (v Meeting) AlternativeHosts() []string {
	raw, _ := v.Settings["alternative_hosts"].(string)
	if len(raw) == 0 {
		return nil
	}
	var hosts []string
	for _, one := range strings.Split(raw, ",") {
		if one = strings.TrimSpace(one); len(one) > 0 {
			hosts = append(hosts, one)
		}
	}
	return hosts
}

// MeetingRequest is the request body for meeting / webinar create and
// update calls.
type MeetingRequest struct {
	Type       int            `json:"type,omitempty"`
	Topic      string         `json:"topic,omitempty"`
	Agenda     string         `json:"agenda"`
	Password   string         `json:"password,omitempty"`
	StartTime  string         `json:"start_time,omitempty"`
	Timezone   string         `json:"timezone,omitempty"`
	Duration   int            `json:"duration,omitempty"`
	Settings   map[string]any `json:"settings,omitempty"`
	Recurrence *Recurrence    `json:"recurrence,omitempty"`
}
