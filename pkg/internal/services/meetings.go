package services

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/campuskit/coursezoom/pkg/internal/database"
	"github.com/campuskit/coursezoom/pkg/internal/models"
	"github.com/campuskit/coursezoom/pkg/internal/zoom"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// Precondition violations surfaced to users, one distinct message each.
var (
	ErrWebinarLicense  = errors.New("course turnout exceeds the meeting capacity, but your zoom account has no webinar license")
	ErrWebinarCapacity = errors.New("course turnout exceeds the webinar capacity of your zoom account")
	ErrNotHost         = errors.New("you are neither host nor alternative host of this meeting")
	ErrAlreadyLinked   = errors.New("this zoom meeting is already linked to a course")
	ErrPersonalRoom    = errors.New("personal meeting rooms cannot be imported")
	ErrEmptyRemoteID   = errors.New("no zoom meeting id was given")
	ErrMeetingGone     = errors.New("this meeting no longer exists in zoom")
	ErrModeChange      = errors.New("the schedule mode of a meeting cannot be changed")
)

func GetMeeting(id uint) (models.ZoomMeeting, error) {
	var meeting models.ZoomMeeting
	if err := database.C.Where("id = ?", id).First(&meeting).Error; err != nil {
		return meeting, err
	}
	return meeting, nil
}

func FindMeetingByRemoteID(remoteId string) (models.ZoomMeeting, error) {
	var meeting models.ZoomMeeting
	if err := database.C.Where("remote_id = ?", remoteId).First(&meeting).Error; err != nil {
		return meeting, err
	}
	return meeting, nil
}

// HydrateMeeting attaches the provider-side state to the record. Honors the
// record's SkipCache flag.
func HydrateMeeting(meeting *models.ZoomMeeting) error {
	if meeting.Remote != nil {
		return nil
	}
	remote, err := zoom.C.GetMeeting(meeting.RemoteID, meeting.RoomType, !meeting.SkipCache)
	if err != nil {
		return err
	}
	meeting.Remote = remote
	return nil
}

// SyncOnRead hydrates a record and applies the not-found rule of the sync
// job on the spot: a meeting that vanished remotely is deleted locally.
// Returns true when the record was removed.
func SyncOnRead(meeting *models.ZoomMeeting) (bool, error) {
	err := HydrateMeeting(meeting)
	if err == nil {
		return false, nil
	}
	if errors.Is(err, zoom.ErrNotFound) {
		if err := database.C.Delete(meeting).Error; err != nil {
			log.Warn().Err(err).Uint("meeting", meeting.ID).Msg("Unable to delete vanished meeting...")
			return false, err
		}
		log.Info().Uint("meeting", meeting.ID).Str("remote_id", meeting.RemoteID).
			Msg("Meeting vanished in zoom, deleted the local record.")
		return true, ErrMeetingGone
	}
	return false, err
}

// ListCourseMeetings lists a course's meetings with hydrated remote state.
// Records whose remote room is gone are pruned on the way, mirroring the
// sync job's rule.
func ListCourseMeetings(course models.Course) ([]models.ZoomMeeting, error) {
	var meetings []models.ZoomMeeting
	if err := database.C.
		Where("course_id = ?", course.ID).
		Order("created_at ASC").
		Find(&meetings).Error; err != nil {
		return meetings, err
	}

	turnout := CountTurnout(course.ID)
	out := make([]models.ZoomMeeting, 0, len(meetings))
	for _, meeting := range meetings {
		if deleted, _ := SyncOnRead(&meeting); deleted {
			continue
		}
		meeting.TurnoutAdvisory = meeting.RoomType == zoom.RoomMeeting &&
			turnout > int64(zoom.MeetingCapacity())
		out = append(out, meeting)
	}
	return out, nil
}

// MeetingDefaults prefills the form for a brand-new meeting: course name as
// topic, next full hour, duration by license, a random numeric password and
// the schema defaults of the room's options.
func MeetingDefaults(course models.Course, owner *zoom.User, room zoom.RoomType) zoom.Form {
	nextHour := time.Now().In(zoom.C.LocalTZ()).Truncate(time.Hour).Add(time.Hour)

	duration := 90
	if owner != nil && owner.Type == zoom.LicenseBasic {
		duration = 40
	}

	toggles := make(map[string]bool)
	for _, option := range zoom.RoomOptions(room) {
		toggles[option.Name] = option.Default
	}

	return zoom.Form{
		Topic:    course.Fullname(),
		Password: strconv.FormatInt(100000+rand.Int63n(9999899999), 10),
		StartsAt: nextHour,
		Duration: duration,
		Toggles:  toggles,
	}
}

// decideRoomType picks meeting vs webinar from the course turnout and the
// owner's entitlement. A required webinar the account cannot host is a
// refusal, never a silent downgrade.
func decideRoomType(ownerEmail string, turnout int64) (zoom.RoomType, error) {
	if turnout <= int64(zoom.MeetingCapacity()) {
		return zoom.RoomMeeting, nil
	}

	settings, err := zoom.C.GetUserSettings(ownerEmail)
	if err != nil {
		return zoom.RoomMeeting, fmt.Errorf("unable to check webinar entitlement: %v", err)
	}
	if !settings.Feature.Webinar {
		return zoom.RoomMeeting, ErrWebinarLicense
	}
	if int64(settings.Feature.WebinarCapacity) < turnout {
		return zoom.RoomWebinar, ErrWebinarCapacity
	}
	return zoom.RoomWebinar, nil
}

// CreateMeeting creates the room in zoom first and only persists the local
// record once the provider confirmed; a failed remote call leaves nothing
// behind.
func CreateMeeting(user models.User, course models.Course, mode models.ScheduleMode, form zoom.Form) (models.ZoomMeeting, error) {
	var meeting models.ZoomMeeting

	room, err := decideRoomType(user.Email, CountTurnout(course.ID))
	if err != nil {
		return meeting, err
	}

	if mode == models.ScheduleCourseDates {
		// The first course date wins over whatever the form says; later
		// dates are handled by the periodic sync.
		form.Recurring = false
		if next, err := GetNextCourseDate(course.ID, time.Now()); err == nil {
			form.StartsAt = next.StartsAt()
			form.Duration = next.DurationMinutes()
		}
	} else if form.Recurring && form.LectureEnd.IsZero() {
		if term, err := GetTerm(course.TermID); err == nil {
			form.LectureEnd = time.Unix(term.LectureEnd, 0).In(zoom.C.LocalTZ())
		}
	}

	req := zoom.BuildRequest(form, room, zoom.C.LocalTZ())
	remote, err := zoom.C.CreateMeeting(user.Email, req, room)
	if err != nil {
		return meeting, fmt.Errorf("zoom refused to create the meeting: %v", err)
	}

	meeting = models.ZoomMeeting{
		CourseID: course.ID,
		UserID:   user.ID,
		Type:     mode,
		RoomType: room,
		RemoteID: strconv.FormatInt(remote.ID, 10),
		Remote:   remote,
	}
	if err := database.C.Save(&meeting).Error; err != nil {
		return meeting, err
	}
	return meeting, nil
}

// UpdateMeeting pushes edited settings for an existing record. Neither the
// room type nor the schedule mode changes here; growth past the capacity
// only raises the advisory flag on listings.
func UpdateMeeting(meeting *models.ZoomMeeting, course models.Course, mode models.ScheduleMode, form zoom.Form) error {
	if mode != meeting.Type {
		return ErrModeChange
	}

	if meeting.Type == models.ScheduleCourseDates {
		form.Recurring = false
	} else if form.Recurring && form.LectureEnd.IsZero() {
		if term, err := GetTerm(course.TermID); err == nil {
			form.LectureEnd = time.Unix(term.LectureEnd, 0).In(zoom.C.LocalTZ())
		}
	}

	req := zoom.BuildRequest(form, meeting.RoomType, zoom.C.LocalTZ())
	if err := zoom.C.UpdateMeeting(meeting.RemoteID, req, meeting.RoomType); err != nil {
		if errors.Is(err, zoom.ErrNotFound) {
			return ErrMeetingGone
		}
		return fmt.Errorf("zoom refused to update the meeting: %v", err)
	}

	meeting.Remote = nil
	meeting.SkipCache = true
	return database.C.Save(meeting).Error
}

// DeleteMeeting removes the record, cascading to a best-effort remote
// deletion unless localOnly is set. A room that is already gone remotely
// still deletes cleanly.
func DeleteMeeting(meeting *models.ZoomMeeting, localOnly bool) error {
	if !localOnly {
		if err := zoom.C.DeleteMeeting(meeting.RemoteID, meeting.RoomType); err != nil {
			return fmt.Errorf("unable to delete the meeting in zoom: %v", err)
		}
	}
	return database.C.Delete(meeting).Error
}

// IsMeetingHost resolves the user against the provider and checks host or
// alternative-host status on the hydrated record. A user without a zoom
// account is simply not the host; any other provider failure is an error,
// never a denial.
func IsMeetingHost(user models.User, meeting *models.ZoomMeeting) (bool, error) {
	if err := HydrateMeeting(meeting); err != nil {
		return false, err
	}
	var zoomUserId string
	if me, err := zoom.C.GetUser(user.Email, false); err == nil {
		zoomUserId = me.ID
	} else if !errors.Is(err, zoom.ErrNotFound) {
		return false, err
	}
	return meeting.IsHost(user.Email, zoomUserId), nil
}

// JoinURL picks the start link for hosts and the plain join link for
// everyone else.
func JoinURL(user models.User, meeting *models.ZoomMeeting) (string, error) {
	if err := HydrateMeeting(meeting); err != nil {
		return "", err
	}
	isHost, err := IsMeetingHost(user, meeting)
	if err != nil {
		return "", err
	}
	if isHost {
		return meeting.Remote.StartURL, nil
	}
	return meeting.Remote.JoinURL, nil
}

// ImportMeeting attaches an existing zoom room to a course. The id must not
// be linked elsewhere, personal rooms are off limits and the importer has
// to be host or alternative host of the room.
func ImportMeeting(user models.User, course models.Course, rawId string, room zoom.RoomType) (models.ZoomMeeting, error) {
	var meeting models.ZoomMeeting

	remoteId := strings.NewReplacer("-", "", " ", "").Replace(strings.TrimSpace(rawId))
	if len(remoteId) == 0 {
		return meeting, ErrEmptyRemoteID
	}

	if _, err := FindMeetingByRemoteID(remoteId); err == nil {
		return meeting, ErrAlreadyLinked
	}

	remote, err := zoom.C.GetMeeting(remoteId, room, false)
	if err != nil {
		if errors.Is(err, zoom.ErrNotFound) {
			return meeting, ErrMeetingGone
		}
		return meeting, fmt.Errorf("unable to read the meeting from zoom: %v", err)
	}

	me, err := zoom.C.GetUser(user.Email, false)
	if err != nil {
		return meeting, fmt.Errorf("unable to resolve your zoom account: %v", err)
	}
	host, _ := zoom.C.GetUser(remote.HostID, false)

	if remoteId == strconv.FormatInt(me.PMI, 10) ||
		(host != nil && remoteId == strconv.FormatInt(host.PMI, 10)) {
		return meeting, ErrPersonalRoom
	}

	isHost := me.ID == remote.HostID || lo.Contains(remote.AlternativeHosts(), user.Email)
	if !isHost {
		return meeting, ErrNotHost
	}

	// The local owner is the room's host when they exist here, otherwise
	// the importing user.
	owner := user
	if host != nil {
		if local, err := GetUserByEmail(host.Email); err == nil {
			owner = local
		}
	}

	meeting = models.ZoomMeeting{
		CourseID: course.ID,
		UserID:   owner.ID,
		Type:     models.ScheduleManual,
		RoomType: room,
		RemoteID: remoteId,
		Remote:   remote,
	}
	if err := database.C.Save(&meeting).Error; err != nil {
		return meeting, err
	}
	return meeting, nil
}
