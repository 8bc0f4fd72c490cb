package models

import "sort"

// YearLevel holds the base channel for a year level and the course threads created under it
type YearLevel struct {
	BaseChannel    Snowflake            `json:"base_channel"`
	CurrentCourses map[string]Snowflake `json:"current_courses"`
}

// CourseThreadMap is keyed by year level (a single digit)
type CourseThreadMap map[string]YearLevel

func NewCourseThreadMap() CourseThreadMap {
	return CourseThreadMap{}
}

// CourseThread is a flattened view of one course entry
type CourseThread struct {
	YearLevel string
	Course    string
	ThreadID  string
}

// YearLevels returns the registered year levels in order
func (m CourseThreadMap) YearLevels() []string {
	years := make([]string, 0, len(m))
	for year := range m {
		years = append(years, year)
	}
	sort.Strings(years)
	return years
}

// Courses returns every course thread ordered by year level then course key
func (m CourseThreadMap) Courses() []CourseThread {
	var courses []CourseThread
	for _, year := range m.YearLevels() {
		keys := make([]string, 0, len(m[year].CurrentCourses))
		for key := range m[year].CurrentCourses {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			courses = append(courses, CourseThread{
				YearLevel: year,
				Course:    key,
				ThreadID:  m[year].CurrentCourses[key].String(),
			})
		}
	}
	return courses
}

// ThreadIDs flattens every course thread into one working set
func (m CourseThreadMap) ThreadIDs() []string {
	courses := m.Courses()
	threadIDs := make([]string, 0, len(courses))
	for _, course := range courses {
		threadIDs = append(threadIDs, course.ThreadID)
	}
	return threadIDs
}
