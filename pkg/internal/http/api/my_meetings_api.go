package api

import (
	"time"

	"github.com/campuskit/coursezoom/pkg/internal/models"
	"github.com/campuskit/coursezoom/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
)

// listMyMeetings groups the meetings of all courses the user belongs to in
// the selected term, course by course.
func listMyMeetings(c *fiber.Ctx) error {
	user := c.Locals("user").(models.User)

	var term models.Term
	var err error
	if termId := c.Query("term"); len(termId) > 0 && termId != "current" {
		term, err = services.GetTerm(termId)
	} else {
		term, err = services.GetCurrentTerm(time.Now())
	}
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "no such term")
	}

	courses, err := services.ListUserCourses(user.ID, term)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	type courseGroup struct {
		Course   models.Course        `json:"course"`
		Meetings []models.ZoomMeeting `json:"meetings"`
	}

	var groups []courseGroup
	for _, course := range courses {
		meetings, err := services.ListCourseMeetings(course)
		if err != nil || len(meetings) == 0 {
			continue
		}
		groups = append(groups, courseGroup{Course: course, Meetings: meetings})
	}

	return c.JSON(fiber.Map{
		"term":    term,
		"courses": groups,
	})
}
