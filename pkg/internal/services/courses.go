package services

import (
	"time"

	"github.com/campuskit/coursezoom/pkg/internal/database"
	"github.com/campuskit/coursezoom/pkg/internal/models"
)

func GetCourse(id string) (models.Course, error) {
	var course models.Course
	if err := database.C.Where("course_id = ?", id).First(&course).Error; err != nil {
		return course, err
	}
	return course, nil
}

func GetUser(id string) (models.User, error) {
	var user models.User
	if err := database.C.Where("user_id = ?", id).First(&user).Error; err != nil {
		return user, err
	}
	return user, nil
}

func GetUserByEmail(email string) (models.User, error) {
	var user models.User
	if err := database.C.Where("email = ?", email).First(&user).Error; err != nil {
		return user, err
	}
	return user, nil
}

// GetCurrentTerm picks the academic term covering the given instant.
func GetCurrentTerm(now time.Time) (models.Term, error) {
	var term models.Term
	if err := database.C.
		Where("begin <= ? AND \"end\" >= ?", now.Unix(), now.Unix()).
		Order("begin DESC").
		First(&term).Error; err != nil {
		return term, err
	}
	return term, nil
}

func GetTerm(id string) (models.Term, error) {
	var term models.Term
	if err := database.C.Where("term_id = ?", id).First(&term).Error; err != nil {
		return term, err
	}
	return term, nil
}

// GetNextCourseDate returns the first course date starting at or after the
// given instant; ascending by date, first one wins.
func GetNextCourseDate(courseId string, after time.Time) (*models.CourseDate, error) {
	var date models.CourseDate
	if err := database.C.
		Where("course_id = ? AND date >= ?", courseId, after.Unix()).
		Order("date ASC").
		First(&date).Error; err != nil {
		return nil, err
	}
	return &date, nil
}

func CountFutureCourseDates(courseId string, after time.Time) int64 {
	var count int64
	database.C.Model(&models.CourseDate{}).
		Where("course_id = ? AND date >= ?", courseId, after.Unix()).
		Count(&count)
	return count
}

// CountTurnout counts enrolled non-staff members of a course.
func CountTurnout(courseId string) int64 {
	var count int64
	database.C.Model(&models.CourseMember{}).
		Where("course_id = ? AND status IN ?", courseId, []models.MemberStatus{
			models.MemberStatusUser,
			models.MemberStatusAutor,
		}).
		Count(&count)
	return count
}

func GetMembership(courseId string, userId string) (models.CourseMember, error) {
	var member models.CourseMember
	if err := database.C.
		Where("course_id = ? AND user_id = ?", courseId, userId).
		First(&member).Error; err != nil {
		return member, err
	}
	return member, nil
}

// LecturerStatus returns the membership status required to manage meetings
// in the given course. Studygroups lower the bar to tutors.
func LecturerStatus(course models.Course) models.MemberStatus {
	if course.Category == models.CourseCategoryStudygroup {
		return models.MemberStatusTutor
	}
	return models.MemberStatusDozent
}

// HasCoursePerm reports whether the user's membership in the course grants
// at least the needed status.
func HasCoursePerm(courseId string, userId string, need models.MemberStatus) bool {
	member, err := GetMembership(courseId, userId)
	if err != nil {
		return false
	}
	return member.HasStatus(need)
}

// ListCoLecturers returns the course's other lecturers (possible co-hosts),
// in their course position order.
func ListCoLecturers(course models.Course, excluding string) ([]models.User, error) {
	statuses := []models.MemberStatus{models.MemberStatusDozent}
	if course.Category == models.CourseCategoryStudygroup {
		statuses = append(statuses, models.MemberStatusTutor)
	}

	var users []models.User
	if err := database.C.
		Joins("JOIN course_members cm ON cm.user_id = users.user_id").
		Where("cm.course_id = ? AND cm.user_id != ? AND cm.status IN ?", course.ID, excluding, statuses).
		Order("cm.position ASC").
		Find(&users).Error; err != nil {
		return users, err
	}
	return users, nil
}

// ListUserCourses lists the courses the user belongs to within a term,
// ordered for stable display.
func ListUserCourses(userId string, term models.Term) ([]models.Course, error) {
	var courses []models.Course
	if err := database.C.
		Joins("JOIN course_members cm ON cm.course_id = courses.course_id").
		Where("cm.user_id = ?", userId).
		Where("(courses.start_time + courses.duration_time BETWEEN ? AND ?) OR (courses.duration_time = -1 AND courses.start_time <= ?)",
			term.Begin, term.End, term.Begin).
		Order("courses.number ASC, courses.name ASC").
		Find(&courses).Error; err != nil {
		return courses, err
	}
	return courses, nil
}
