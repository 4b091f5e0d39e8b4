package api

import (
	"errors"

	"github.com/campuskit/coursezoom/pkg/internal/models"
	"github.com/campuskit/coursezoom/pkg/internal/zoom"
	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"
)

// getMyZoomAccount resolves the current user's zoom account. Users without
// one get the provider login address so their account can be provisioned by
// signing in once.
func getMyZoomAccount(c *fiber.Ctx) error {
	user := c.Locals("user").(models.User)

	me, err := zoom.C.GetUser(user.Email, c.QueryBool("fresh", false))
	if err != nil {
		if errors.Is(err, zoom.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message":   "you have no zoom account yet, sign in once to create it",
				"login_url": viper.GetString("zoom.login_url"),
			})
		}
		return fiber.NewError(fiber.StatusBadGateway, "zoom is not reachable right now")
	}

	return c.JSON(me)
}

func listRoomOptions(c *fiber.Ctx) error {
	room := c.Params("roomType")
	if room != zoom.RoomMeeting && room != zoom.RoomWebinar {
		return fiber.NewError(fiber.StatusNotFound, "no such room type")
	}
	return c.JSON(zoom.RoomOptions(room))
}
