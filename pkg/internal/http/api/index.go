package api

import (
	"github.com/gofiber/fiber/v2"
)

func MapAPIs(app *fiber.App, baseURL string) {
	api := app.Group(baseURL).Name("API").Use(authMiddleware)
	{
		api.Get("/users/me/zoom", getMyZoomAccount)
		api.Get("/rooms/:roomType/options", listRoomOptions)

		api.Get("/meetings/mine", listMyMeetings)

		course := api.Group("/courses/:courseId").Use(courseMiddleware).Name("Course Meetings API")
		{
			course.Get("/meetings", listMeetings)
			course.Get("/meetings/new", getMeetingDefaults)
			course.Post("/meetings", createMeeting)
			course.Post("/meetings/import", importMeeting)
			course.Get("/meetings/:meetingId", getMeeting)
			course.Put("/meetings/:meetingId", editMeeting)
			course.Delete("/meetings/:meetingId", deleteMeeting)
			course.Get("/meetings/:meetingId/join", joinMeeting)
		}
	}
}
