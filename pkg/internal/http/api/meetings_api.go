package api

import (
	"errors"
	"time"

	"github.com/campuskit/coursezoom/pkg/internal/http/exts"
	"github.com/campuskit/coursezoom/pkg/internal/models"
	"github.com/campuskit/coursezoom/pkg/internal/services"
	"github.com/campuskit/coursezoom/pkg/internal/zoom"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

type meetingForm struct {
	Mode      models.ScheduleMode `json:"mode" validate:"required,oneof=coursedates manual"`
	Topic     string              `json:"topic" validate:"required,max=200"`
	Agenda    string              `json:"agenda" validate:"max=2000"`
	Password  string              `json:"password" validate:"max=10"`
	StartTime string              `json:"start_time"`
	Duration  int                 `json:"duration" validate:"min=0"`
	Recurring bool                `json:"recurring"`
	Settings  map[string]bool     `json:"settings"`
	CoHosts   []string            `json:"co_hosts"`
}

// toForm resolves the submitted field set into a translator form; co-hosts
// arrive as LMS user ids and leave as email addresses.
func (f meetingForm) toForm() (zoom.Form, error) {
	var startsAt time.Time
	if len(f.StartTime) > 0 {
		var err error
		startsAt, err = time.ParseInLocation("2006-01-02T15:04:05", f.StartTime, zoom.C.LocalTZ())
		if err != nil {
			return zoom.Form{}, fiber.NewError(fiber.StatusBadRequest, "malformed start_time")
		}
	}

	var coHosts []string
	for _, id := range f.CoHosts {
		user, err := services.GetUser(id)
		if err != nil {
			return zoom.Form{}, fiber.NewError(fiber.StatusBadRequest, "unknown co-host user")
		}
		coHosts = append(coHosts, user.Email)
	}

	return zoom.Form{
		Topic:     f.Topic,
		Agenda:    f.Agenda,
		Password:  f.Password,
		StartsAt:  startsAt,
		Duration:  f.Duration,
		Toggles:   f.Settings,
		CoHosts:   coHosts,
		Recurring: f.Recurring,
	}, nil
}

func listMeetings(c *fiber.Ctx) error {
	course := c.Locals("course").(models.Course)

	if meetings, err := services.ListCourseMeetings(course); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	} else {
		return c.JSON(meetings)
	}
}

func getMeeting(c *fiber.Ctx) error {
	course := c.Locals("course").(models.Course)

	meetingId, _ := c.ParamsInt("meetingId")
	meeting, err := services.GetMeeting(uint(meetingId))
	if err != nil || meeting.CourseID != course.ID {
		return fiber.NewError(fiber.StatusNotFound, "no such meeting in this course")
	}

	meeting.SkipCache = c.QueryBool("fresh", false)
	if deleted, err := services.SyncOnRead(&meeting); deleted {
		return fiber.NewError(fiber.StatusGone, services.ErrMeetingGone.Error())
	} else if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, "the meeting data could not be retrieved from zoom")
	}

	return c.JSON(meeting)
}

func getMeetingDefaults(c *fiber.Ctx) error {
	if err := ensureLecturer(c); err != nil {
		return err
	}
	user := c.Locals("user").(models.User)
	course := c.Locals("course").(models.Course)

	me, err := zoom.C.GetUser(user.Email, false)
	if err != nil && !errors.Is(err, zoom.ErrNotFound) {
		return fiber.NewError(fiber.StatusBadGateway, "zoom is not reachable right now")
	}

	now := time.Now()
	dateCount := services.CountFutureCourseDates(course.ID, now)
	mode := lo.Ternary(dateCount > 0, models.ScheduleCourseDates, models.ScheduleManual)

	lecturers, _ := services.ListCoLecturers(course, user.ID)
	possibleCoHosts := zoom.C.UsersExist(lo.Map(lecturers, func(item models.User, idx int) string {
		return item.Email
	}))

	form := services.MeetingDefaults(course, me, zoom.RoomMeeting)
	return c.JSON(fiber.Map{
		"mode":              mode,
		"date_count":        dateCount,
		"turnout":           services.CountTurnout(course.ID),
		"topic":             form.Topic,
		"start_time":        form.StartsAt,
		"duration":          form.Duration,
		"password":          form.Password,
		"settings":          form.Toggles,
		"possible_co_hosts": possibleCoHosts,
	})
}

func createMeeting(c *fiber.Ctx) error {
	if err := ensureLecturer(c); err != nil {
		return err
	}
	user := c.Locals("user").(models.User)
	course := c.Locals("course").(models.Course)

	var data meetingForm
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}
	form, err := data.toForm()
	if err != nil {
		return err
	}

	meeting, err := services.CreateMeeting(user, course, data.Mode, form)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrWebinarLicense), errors.Is(err, services.ErrWebinarCapacity):
			return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
		default:
			return fiber.NewError(fiber.StatusBadGateway, err.Error())
		}
	}
	return c.JSON(meeting)
}

func editMeeting(c *fiber.Ctx) error {
	if err := ensureLecturer(c); err != nil {
		return err
	}
	user := c.Locals("user").(models.User)
	course := c.Locals("course").(models.Course)

	meetingId, _ := c.ParamsInt("meetingId")
	meeting, err := services.GetMeeting(uint(meetingId))
	if err != nil || meeting.CourseID != course.ID {
		return fiber.NewError(fiber.StatusNotFound, "no such meeting in this course")
	}

	meeting.SkipCache = true
	if deleted, _ := services.SyncOnRead(&meeting); deleted {
		return fiber.NewError(fiber.StatusGone, services.ErrMeetingGone.Error())
	}
	if isHost, err := services.IsMeetingHost(user, &meeting); err != nil {
		return fiber.NewError(fiber.StatusBadGateway, "the meeting data could not be retrieved from zoom")
	} else if !isHost {
		return fiber.NewError(fiber.StatusForbidden, services.ErrNotHost.Error())
	}

	var data meetingForm
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}
	form, err := data.toForm()
	if err != nil {
		return err
	}

	if err := services.UpdateMeeting(&meeting, course, data.Mode, form); err != nil {
		switch {
		case errors.Is(err, services.ErrMeetingGone):
			return fiber.NewError(fiber.StatusGone, err.Error())
		case errors.Is(err, services.ErrModeChange):
			return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
		default:
			return fiber.NewError(fiber.StatusBadGateway, err.Error())
		}
	}
	return c.JSON(meeting)
}

func deleteMeeting(c *fiber.Ctx) error {
	if err := ensureLecturer(c); err != nil {
		return err
	}
	user := c.Locals("user").(models.User)
	course := c.Locals("course").(models.Course)

	meetingId, _ := c.ParamsInt("meetingId")
	meeting, err := services.GetMeeting(uint(meetingId))
	if err != nil || meeting.CourseID != course.ID {
		return fiber.NewError(fiber.StatusNotFound, "no such meeting in this course")
	}

	localOnly := c.QueryBool("local_only", false)
	if !localOnly {
		if isHost, err := services.IsMeetingHost(user, &meeting); err != nil {
			return fiber.NewError(fiber.StatusBadGateway, "the meeting data could not be retrieved from zoom")
		} else if !isHost {
			return fiber.NewError(fiber.StatusForbidden, services.ErrNotHost.Error())
		}
	}

	if err := services.DeleteMeeting(&meeting, localOnly); err != nil {
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}
	return c.SendStatus(fiber.StatusOK)
}

func importMeeting(c *fiber.Ctx) error {
	if err := ensureLecturer(c); err != nil {
		return err
	}
	user := c.Locals("user").(models.User)
	course := c.Locals("course").(models.Course)

	var data struct {
		ZoomID  string `json:"zoom_id" validate:"required"`
		Webinar bool   `json:"webinar"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	room := lo.Ternary(data.Webinar, zoom.RoomWebinar, zoom.RoomMeeting)
	meeting, err := services.ImportMeeting(user, course, data.ZoomID, room)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMeetingGone):
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		case errors.Is(err, services.ErrAlreadyLinked),
			errors.Is(err, services.ErrPersonalRoom),
			errors.Is(err, services.ErrEmptyRemoteID):
			return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, services.ErrNotHost):
			return fiber.NewError(fiber.StatusForbidden, err.Error())
		default:
			return fiber.NewError(fiber.StatusBadGateway, err.Error())
		}
	}
	return c.JSON(meeting)
}

func joinMeeting(c *fiber.Ctx) error {
	user := c.Locals("user").(models.User)
	course := c.Locals("course").(models.Course)

	meetingId, _ := c.ParamsInt("meetingId")
	meeting, err := services.GetMeeting(uint(meetingId))
	if err != nil || meeting.CourseID != course.ID {
		return fiber.NewError(fiber.StatusNotFound, "no such meeting in this course")
	}

	url, err := services.JoinURL(user, &meeting)
	if err != nil {
		if errors.Is(err, zoom.ErrNotFound) {
			return fiber.NewError(fiber.StatusGone, services.ErrMeetingGone.Error())
		}
		return fiber.NewError(fiber.StatusBadGateway, "the meeting data could not be retrieved from zoom")
	}
	return c.JSON(fiber.Map{"url": url})
}
