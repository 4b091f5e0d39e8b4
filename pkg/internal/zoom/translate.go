package zoom

import (
	"strconv"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// The provider renders local timestamps without an embedded offset; the
// timezone rides along as its own field.
const wireTimeLayout = "2006-01-02T15:04:05"

// Form is the editable field set of a meeting, as collected from a
// lecturer or re-derived from the course schedule.
type Form struct {
	Topic    string
	Agenda   string
	Password string

	StartsAt time.Time
	Duration int

	Toggles   map[string]bool
	CoHosts   []string
	Recurring bool
	// LectureEnd bounds a weekly recurrence; only read when Recurring.
	LectureEnd time.Time
}

// typeCode picks the provider's numeric meeting type.
func typeCode(room RoomType, recurring bool) int {
	switch {
	case room == RoomWebinar && recurring:
		return TypeRecurringWebinar
	case room == RoomWebinar:
		return TypeWebinar
	case recurring:
		return TypeRecurringMeeting
	default:
		return TypeScheduledMeeting
	}
}

// zoomWeekday remaps Go's Sunday-based 0..6 weekday onto the provider's
// 1=Sunday..7=Saturday numbering.
func zoomWeekday(day time.Weekday) int {
	return int(day) + 1
}

var rruleWeekdays = [7]rrule.Weekday{
	rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA,
}

// BuildRequest translates a form into the provider request body for the
// given room type. Toggles are filtered to the room's schema and co-hosts
// are serialized as a comma-joined list, empty string when there are none.
func BuildRequest(form Form, room RoomType, tz *time.Location) *MeetingRequest {
	settings := FilterOptions(form.Toggles, room)
	settings["alternative_hosts"] = strings.Join(form.CoHosts, ",")

	startsAt := form.StartsAt.In(tz)
	req := &MeetingRequest{
		Type:      typeCode(room, form.Recurring),
		Topic:     form.Topic,
		Agenda:    form.Agenda,
		Password:  form.Password,
		StartTime: startsAt.Format(wireTimeLayout),
		Timezone:  tz.String(),
		Duration:  form.Duration,
		Settings:  settings,
	}

	if form.Recurring {
		req.Recurrence = BuildWeeklyRecurrence(startsAt, form.LectureEnd)
	}
	return req
}

// BuildWeeklyRecurrence constructs a weekly rule on the start's weekday,
// ending at the last occurrence of that weekday on or before the lecture
// period end. The lecture end is a calendar date; an occurrence on that day
// counts regardless of its time of day.
func BuildWeeklyRecurrence(start time.Time, lectureEnd time.Time) *Recurrence {
	until := time.Date(lectureEnd.Year(), lectureEnd.Month(), lectureEnd.Day(),
		23, 59, 59, 0, lectureEnd.Location())

	last := start
	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Interval:  1,
		Dtstart:   start,
		Until:     until,
		Byweekday: []rrule.Weekday{rruleWeekdays[start.Weekday()]},
	})
	if err == nil {
		if all := rule.All(); len(all) > 0 {
			last = all[len(all)-1]
		}
	}

	return &Recurrence{
		Type:           RecurrenceWeekly,
		RepeatInterval: 1,
		WeeklyDays:     strconv.Itoa(zoomWeekday(start.Weekday())),
		EndDateTime:    last.UTC().Format(wireTimeLayout) + "Z",
	}
}

// BuildSyncUpdate clones a fetched remote state into an update request that
// only moves the schedule: start and duration are substituted, everything
// else passes through verbatim except the reserved authentication options,
// which this service must never overwrite.
func BuildSyncUpdate(remote *Meeting, startsAt time.Time, duration int, tz *time.Location) *MeetingRequest {
	settings := make(map[string]any, len(remote.Settings))
	for key, value := range remote.Settings {
		settings[key] = value
	}
	for _, key := range reservedOptions {
		delete(settings, key)
	}

	return &MeetingRequest{
		Type:      remote.Type,
		Topic:     remote.Topic,
		Agenda:    remote.Agenda,
		Password:  remote.Password,
		StartTime: startsAt.In(tz).Format(wireTimeLayout),
		Timezone:  tz.String(),
		Duration:  duration,
		Settings:  settings,
	}
}
