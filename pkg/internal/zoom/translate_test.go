package zoom

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func berlin(t *testing.T) *time.Location {
	t.Helper()
	tz, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Fatalf("unable to load timezone: %v", err)
	}
	return tz
}

func TestFilterOptionsKeepsRoomVocabularyClosed(t *testing.T) {
	toggles := map[string]bool{
		"host_video":       true,
		"join_before_host": true,
		"mute_upon_entry":  true,
		"panelists_video":  true,
		"breakout_rooms":   true, // not in any schema
	}

	meeting := FilterOptions(toggles, RoomMeeting)
	assert.Equal(t, true, meeting["host_video"])
	assert.Equal(t, true, meeting["join_before_host"])
	assert.NotContains(t, meeting, "panelists_video")
	assert.NotContains(t, meeting, "breakout_rooms")
	// Known but unset keys come out as explicit false.
	assert.Equal(t, false, meeting["waiting_room"])

	webinar := FilterOptions(toggles, RoomWebinar)
	assert.NotContains(t, webinar, "join_before_host")
	assert.NotContains(t, webinar, "mute_upon_entry")
	assert.NotContains(t, webinar, "breakout_rooms")
	assert.Equal(t, true, webinar["panelists_video"])
}

func TestTypeCodeTable(t *testing.T) {
	assert.Equal(t, TypeScheduledMeeting, typeCode(RoomMeeting, false))
	assert.Equal(t, TypeRecurringMeeting, typeCode(RoomMeeting, true))
	assert.Equal(t, TypeWebinar, typeCode(RoomWebinar, false))
	assert.Equal(t, TypeRecurringWebinar, typeCode(RoomWebinar, true))
}

func TestZoomWeekdayRemap(t *testing.T) {
	for day := time.Sunday; day <= time.Saturday; day++ {
		got := zoomWeekday(day)
		assert.GreaterOrEqual(t, got, 1)
		assert.LessOrEqual(t, got, 7)
	}
	assert.Equal(t, 1, zoomWeekday(time.Sunday))
	assert.Equal(t, 7, zoomWeekday(time.Saturday))
}

func TestBuildWeeklyRecurrence(t *testing.T) {
	tz := berlin(t)
	// A Wednesday morning lecture slot.
	start := time.Date(2024, 4, 10, 10, 0, 0, 0, tz)
	lectureEnd := time.Date(2024, 7, 30, 0, 0, 0, 0, tz) // a Tuesday

	rec := BuildWeeklyRecurrence(start, lectureEnd)

	assert.Equal(t, RecurrenceWeekly, rec.Type)
	assert.Equal(t, 1, rec.RepeatInterval)
	assert.Equal(t, "4", rec.WeeklyDays)
	// Last Wednesday on or before the lecture end is July 24th; 10:00 CEST
	// renders as 08:00 UTC.
	assert.Equal(t, "2024-07-24T08:00:00Z", rec.EndDateTime)
}

func TestBuildWeeklyRecurrenceEndOnLectureEnd(t *testing.T) {
	tz := berlin(t)
	start := time.Date(2024, 4, 10, 10, 0, 0, 0, tz)
	// The lecture end itself is a Wednesday and still counts.
	lectureEnd := time.Date(2024, 7, 31, 12, 0, 0, 0, tz)

	rec := BuildWeeklyRecurrence(start, lectureEnd)
	assert.Equal(t, "2024-07-31T08:00:00Z", rec.EndDateTime)
}

func TestBuildWeeklyRecurrenceMidnightLectureEnd(t *testing.T) {
	tz := berlin(t)
	start := time.Date(2024, 4, 10, 10, 0, 0, 0, tz)
	// Term timestamps are midnight instants; a meeting later that day still
	// falls within the lecture period.
	lectureEnd := time.Date(2024, 7, 31, 0, 0, 0, 0, tz)

	rec := BuildWeeklyRecurrence(start, lectureEnd)
	assert.Equal(t, "2024-07-31T08:00:00Z", rec.EndDateTime)
}

func TestBuildRequest(t *testing.T) {
	tz := berlin(t)
	form := Form{
		Topic:    "10123 Intro to Databases",
		Agenda:   "Weekly lecture",
		Password: "421337",
		StartsAt: time.Date(2024, 4, 10, 10, 0, 0, 0, tz),
		Duration: 90,
		Toggles:  map[string]bool{"host_video": true, "join_before_host": true},
		CoHosts:  []string{"a@example.edu", "b@example.edu"},
	}

	req := BuildRequest(form, RoomMeeting, tz)

	assert.Equal(t, TypeScheduledMeeting, req.Type)
	// Local wall time without offset, timezone as its own field.
	assert.Equal(t, "2024-04-10T10:00:00", req.StartTime)
	assert.Equal(t, "Europe/Berlin", req.Timezone)
	assert.Equal(t, 90, req.Duration)
	assert.Equal(t, "a@example.edu,b@example.edu", req.Settings["alternative_hosts"])
	assert.Nil(t, req.Recurrence)
}

func TestBuildRequestWithoutCoHosts(t *testing.T) {
	tz := berlin(t)
	req := BuildRequest(Form{StartsAt: time.Date(2024, 4, 10, 10, 0, 0, 0, tz)}, RoomWebinar, tz)

	// Empty string, never null: the provider clears co-hosts this way.
	assert.Equal(t, "", req.Settings["alternative_hosts"])
	assert.Equal(t, TypeWebinar, req.Type)
}

func TestBuildRequestRecurring(t *testing.T) {
	tz := berlin(t)
	form := Form{
		Topic:      "Weekly seminar",
		StartsAt:   time.Date(2024, 4, 10, 10, 0, 0, 0, tz),
		Duration:   60,
		Recurring:  true,
		LectureEnd: time.Date(2024, 7, 30, 0, 0, 0, 0, tz),
	}

	req := BuildRequest(form, RoomMeeting, tz)
	assert.Equal(t, TypeRecurringMeeting, req.Type)
	if assert.NotNil(t, req.Recurrence) {
		assert.Equal(t, "4", req.Recurrence.WeeklyDays)
	}
}

func TestBuildSyncUpdate(t *testing.T) {
	tz := berlin(t)
	remote := &Meeting{
		Topic:    "Lecture",
		Agenda:   "agenda",
		Password: "123456",
		Type:     TypeScheduledMeeting,
		Settings: map[string]any{
			"host_video":             true,
			"waiting_room":           false,
			"alternative_hosts":      "a@example.edu",
			"some_future_option":     "kept-as-is",
			"authentication_option":  "signin_xyz",
			"authentication_domains": "example.edu",
			"authentication_name":    "Sign in",
		},
	}

	next := time.Date(2024, 4, 17, 10, 0, 0, 0, tz)
	req := BuildSyncUpdate(remote, next, 60, tz)

	assert.Equal(t, "2024-04-17T10:00:00", req.StartTime)
	assert.Equal(t, 60, req.Duration)
	assert.Equal(t, "Lecture", req.Topic)

	// The reserved authentication family must never be written back.
	assert.NotContains(t, req.Settings, "authentication_option")
	assert.NotContains(t, req.Settings, "authentication_domains")
	assert.NotContains(t, req.Settings, "authentication_name")

	// Everything else passes through verbatim, unknown keys included.
	assert.Equal(t, "kept-as-is", req.Settings["some_future_option"])
	assert.Equal(t, "a@example.edu", req.Settings["alternative_hosts"])
	assert.Equal(t, true, req.Settings["host_video"])

	// The source map stays untouched.
	assert.Contains(t, remote.Settings, "authentication_option")
}
