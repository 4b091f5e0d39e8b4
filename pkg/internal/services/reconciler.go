package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/campuskit/coursezoom/pkg/internal/database"
	"github.com/campuskit/coursezoom/pkg/internal/models"
	"github.com/campuskit/coursezoom/pkg/internal/zoom"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
)

type syncAction int

const (
	syncNone syncAction = iota
	syncDelete
	syncUpdate
)

type syncDecision struct {
	action syncAction
	reason string
	req    *zoom.MeetingRequest
}

// decideSync evaluates one record against its remote state. nextDate is
// only consulted once the meeting is known to be elapsed, so the course
// date query stays lazy.
func decideSync(
	meeting models.ZoomMeeting,
	remote *zoom.Meeting,
	fetchErr error,
	now time.Time,
	nextDate func() (*models.CourseDate, error),
) syncDecision {
	if fetchErr != nil {
		if errors.Is(fetchErr, zoom.ErrNotFound) {
			return syncDecision{action: syncDelete, reason: "gone in zoom"}
		}
		return syncDecision{action: syncNone, reason: fmt.Sprintf("fetch failed: %v", fetchErr)}
	}

	// Manual meetings are operator-controlled, the job never touches them.
	if meeting.Type != models.ScheduleCourseDates {
		return syncDecision{action: syncNone, reason: "manual schedule"}
	}

	// Only elapsed meetings are advanced to the next date.
	if !remote.HasEnded(now) {
		return syncDecision{action: syncNone, reason: "not elapsed yet"}
	}

	next, err := nextDate()
	if err != nil || next == nil {
		// Explicitly keep the current remote time instead of blanking it.
		return syncDecision{action: syncNone, reason: "no next course date"}
	}

	req := zoom.BuildSyncUpdate(remote, next.StartsAt(), next.DurationMinutes(), zoom.C.LocalTZ())
	return syncDecision{action: syncUpdate, reason: "elapsed", req: req}
}

// listSyncCandidates selects the coursedates-mode meetings of courses that
// run within the given term (or are open-ended and already started),
// ordered stably for readable logs.
func listSyncCandidates(term models.Term) ([]models.ZoomMeeting, error) {
	var meetings []models.ZoomMeeting
	if err := database.C.
		Joins("JOIN courses c ON c.course_id = zoom_meetings.course_id").
		Where("zoom_meetings.type = ?", models.ScheduleCourseDates).
		Where("(c.start_time + c.duration_time BETWEEN ? AND ?) OR (c.duration_time = -1 AND c.start_time <= ?)",
			term.Begin, term.End, term.Begin).
		Order("c.number ASC, c.name ASC").
		Find(&meetings).Error; err != nil {
		return meetings, err
	}
	return meetings, nil
}

// DoSyncCourseMeetings runs one reconciliation pass: every candidate record
// is fetched fresh from zoom, vanished rooms are deleted locally and
// elapsed rooms are moved to the next course date. Failures never abort the
// pass, the next scheduled run is the retry.
func DoSyncCourseMeetings() *models.SyncReport {
	now := time.Now()
	report := &models.SyncReport{
		PassID:  uuid.NewString()[:8],
		Details: datatypes.JSONMap{},
	}

	term, err := GetCurrentTerm(now)
	if err != nil {
		log.Warn().Err(err).Msg("No current term found, skipping meeting sync pass...")
		return report
	}

	meetings, err := listSyncCandidates(term)
	if err != nil {
		log.Error().Err(err).Msg("Unable to list meetings for sync pass...")
		return report
	}

	log.Info().Str("pass", report.PassID).Int("candidates", len(meetings)).
		Msg("Now syncing course meetings against zoom...")

	for _, meeting := range meetings {
		report.Processed++
		outcome := syncOne(meeting, now)
		report.Details[fmt.Sprintf("%s/%s", meeting.CourseID, meeting.RemoteID)] = outcome

		switch outcome {
		case "updated":
			report.Updated++
		case "deleted":
			report.Deleted++
		case "failed":
			report.Failed++
		default:
			report.Skipped++
		}
	}

	if err := database.C.Save(report).Error; err != nil {
		log.Warn().Err(err).Msg("Unable to persist sync report...")
	}

	log.Info().Str("pass", report.PassID).
		Int("updated", report.Updated).
		Int("deleted", report.Deleted).
		Int("failed", report.Failed).
		Int("skipped", report.Skipped).
		Msg("Course meeting sync accomplished.")

	return report
}

func syncOne(meeting models.ZoomMeeting, now time.Time) string {
	// Freshness matters for elapsed-time detection, never trust the cache
	// inside a sync pass.
	remote, fetchErr := zoom.C.GetMeeting(meeting.RemoteID, meeting.RoomType, false)

	decision := decideSync(meeting, remote, fetchErr, now, func() (*models.CourseDate, error) {
		return GetNextCourseDate(meeting.CourseID, now)
	})

	switch decision.action {
	case syncDelete:
		if err := database.C.Delete(&meeting).Error; err != nil {
			log.Error().Err(err).Uint("meeting", meeting.ID).Msg("Unable to delete vanished meeting...")
			return "failed"
		}
		log.Info().Str("course", meeting.CourseID).Str("remote_id", meeting.RemoteID).
			Msg("Meeting not found in zoom, deleted the local record.")
		return "deleted"

	case syncUpdate:
		if err := zoom.C.UpdateMeeting(meeting.RemoteID, decision.req, meeting.RoomType); err != nil {
			if errors.Is(err, zoom.ErrNotFound) {
				// Raced with a remote deletion between fetch and update; the
				// next pass will observe the 404 on fetch and clean up.
				log.Info().Str("course", meeting.CourseID).Str("remote_id", meeting.RemoteID).
					Msg("Meeting vanished between fetch and update, leaving it for the next pass.")
				return "raced"
			}
			log.Warn().Err(err).Str("course", meeting.CourseID).Str("remote_id", meeting.RemoteID).
				Msg("Unable to store new meeting time in zoom...")
			return "failed"
		}
		log.Info().Str("course", meeting.CourseID).Str("remote_id", meeting.RemoteID).
			Str("start_time", decision.req.StartTime).
			Msg("Moved meeting to the next course date.")
		return "updated"

	default:
		log.Debug().Str("course", meeting.CourseID).Str("remote_id", meeting.RemoteID).
			Str("reason", decision.reason).
			Msg("Leaving meeting untouched.")
		if fetchErr != nil && !errors.Is(fetchErr, zoom.ErrNotFound) {
			return "failed"
		}
		return "skipped"
	}
}
