package models

import (
	"gorm.io/datatypes"
)

// SyncReport records the outcome of one reconciliation pass over all
// course-bound meetings, mostly for operators reading back what the last
// runs did.
type SyncReport struct {
	BaseModel

	PassID    string            `json:"pass_id"`
	Processed int               `json:"processed"`
	Updated   int               `json:"updated"`
	Deleted   int               `json:"deleted"`
	Skipped   int               `json:"skipped"`
	Failed    int               `json:"failed"`
	Details   datatypes.JSONMap `json:"details"`
}
