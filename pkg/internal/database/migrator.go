package database

import (
	"github.com/campuskit/coursezoom/pkg/internal/models"
	"gorm.io/gorm"
)

// AutoMaintainRange only lists tables owned by this service. The host
// platform tables (users, courses, course dates, memberships, terms) are
// maintained by the LMS and must never be migrated from here.
var AutoMaintainRange = []any{
	&models.ZoomMeeting{},
	&models.SyncReport{},
}

func RunMigration(source *gorm.DB) error {
	if err := source.AutoMigrate(AutoMaintainRange...); err != nil {
		return err
	}

	return nil
}
