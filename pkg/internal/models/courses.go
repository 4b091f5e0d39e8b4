package models

import (
	"fmt"
	"time"
)

// The types below map the host platform's tables. They are read-only for
// this service and excluded from auto migration.

type User struct {
	ID        string `json:"id" gorm:"primaryKey;column:user_id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (User) TableName() string { return "users" }

func (v User) Fullname() string {
	return fmt.Sprintf("%s %s", v.FirstName, v.LastName)
}

type CourseCategory = string

const (
	CourseCategoryRegular    = CourseCategory("regular")
	CourseCategoryStudygroup = CourseCategory("studygroup")
)

type Course struct {
	ID       string         `json:"id" gorm:"primaryKey;column:course_id"`
	Number   string         `json:"number"`
	Name     string         `json:"name"`
	Category CourseCategory `json:"category"`
	TermID   string         `json:"term_id"`

	// StartTime is the unix timestamp of the course's first term,
	// DurationTime the covered span in seconds. -1 means open-ended.
	StartTime    int64 `json:"start_time"`
	DurationTime int64 `json:"duration_time"`
}

func (Course) TableName() string { return "courses" }

func (v Course) Fullname() string {
	if len(v.Number) == 0 {
		return v.Name
	}
	return fmt.Sprintf("%s %s", v.Number, v.Name)
}

func (v Course) IsOpenEnded() bool {
	return v.DurationTime < 0
}

type CourseDate struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	CourseID string `json:"course_id" gorm:"index"`
	Date     int64  `json:"date"`
	EndTime  int64  `json:"end_time"`
}

func (CourseDate) TableName() string { return "course_dates" }

func (v CourseDate) StartsAt() time.Time { return time.Unix(v.Date, 0) }
func (v CourseDate) EndsAt() time.Time   { return time.Unix(v.EndTime, 0) }

// DurationMinutes floors to whole minutes, partial minutes are cut off.
func (v CourseDate) DurationMinutes() int {
	return int((v.EndTime - v.Date) / 60)
}

type MemberStatus = string

const (
	MemberStatusUser   = MemberStatus("user")
	MemberStatusAutor  = MemberStatus("autor")
	MemberStatusTutor  = MemberStatus("tutor")
	MemberStatusDozent = MemberStatus("dozent")
)

var memberStatusRank = map[MemberStatus]int{
	MemberStatusUser:   0,
	MemberStatusAutor:  1,
	MemberStatusTutor:  2,
	MemberStatusDozent: 3,
}

type CourseMember struct {
	CourseID string       `json:"course_id" gorm:"primaryKey"`
	UserID   string       `json:"user_id" gorm:"primaryKey"`
	Status   MemberStatus `json:"status"`
	Position int          `json:"position"`
}

func (CourseMember) TableName() string { return "course_members" }

func (v CourseMember) HasStatus(need MemberStatus) bool {
	return memberStatusRank[v.Status] >= memberStatusRank[need]
}

type Term struct {
	ID           string `json:"id" gorm:"primaryKey;column:term_id"`
	Name         string `json:"name"`
	Begin        int64  `json:"begin"`
	End          int64  `json:"end"`
	LectureBegin int64  `json:"lecture_begin"`
	LectureEnd   int64  `json:"lecture_end"`
}

func (Term) TableName() string { return "terms" }
