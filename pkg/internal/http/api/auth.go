package api

import (
	"github.com/campuskit/coursezoom/pkg/internal/database"
	"github.com/campuskit/coursezoom/pkg/internal/models"
	"github.com/campuskit/coursezoom/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
)

// The LMS gateway authenticates every request and forwards the user's
// identity; we only resolve it against the shared user table.
func authMiddleware(c *fiber.Ctx) error {
	userId := c.Get("X-User-Id")
	if len(userId) == 0 {
		return fiber.NewError(fiber.StatusUnauthorized, "no user identity was forwarded")
	}

	var user models.User
	if err := database.C.Where("user_id = ?", userId).First(&user).Error; err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unknown user identity")
	}

	c.Locals("user", user)
	return c.Next()
}

// courseMiddleware loads the course of the route and requires at least a
// plain membership in it.
func courseMiddleware(c *fiber.Ctx) error {
	user := c.Locals("user").(models.User)

	course, err := services.GetCourse(c.Params("courseId"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	if !services.HasCoursePerm(course.ID, user.ID, models.MemberStatusUser) {
		return fiber.NewError(fiber.StatusForbidden, "you are not a member of this course")
	}

	c.Locals("course", course)
	return c.Next()
}

// ensureLecturer rejects users below the course's management status
// (lecturer, or tutor in studygroups).
func ensureLecturer(c *fiber.Ctx) error {
	user := c.Locals("user").(models.User)
	course := c.Locals("course").(models.Course)

	if !services.HasCoursePerm(course.ID, user.ID, services.LecturerStatus(course)) {
		return fiber.NewError(fiber.StatusForbidden, "you have not enough permission to manage meetings")
	}
	return nil
}
