package models

import (
	"fmt"
	"regexp"
	"strings"
)

const maxCourseStrLength = 8

var (
	courseRegex = regexp.MustCompile(`\b([A-Za-z]{4})([0-9]{3}[A-Za-z]?)\b`)
	// free text such as calendar summaries writes "DEPT ### SECTION"
	mentionRegex = regexp.MustCompile(`\b([A-Za-z]{4})\s?([0-9]{3}[A-Za-z]?)\b`)
)

// Course is a department + course number, e.g. CPEN 211
type Course struct {
	Dept string
	Code string
}

// ParseCourse parses DEPT### (optionally with a trailing letter), without a space
func ParseCourse(raw string) (Course, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(raw) > maxCourseStrLength {
		return Course{}, fmt.Errorf("invalid course %q", raw)
	}
	match := courseRegex.FindStringSubmatch(raw)
	if match == nil {
		return Course{}, fmt.Errorf("invalid course %q", raw)
	}
	return Course{
		Dept: strings.ToUpper(match[1]),
		Code: strings.ToUpper(match[2]),
	}, nil
}

// FindCourses returns every course mentioned in text, in order of appearance. Unlike ParseCourse,
// a space between department and number is accepted.
func FindCourses(text string) []Course {
	var courses []Course
	for _, match := range mentionRegex.FindAllStringSubmatch(text, -1) {
		courses = append(courses, Course{
			Dept: strings.ToUpper(match[1]),
			Code: strings.ToUpper(match[2]),
		})
	}
	return courses
}

func (c Course) String() string {
	return c.Dept + " " + c.Code
}

// YearLevel is the first digit of the course number
func (c Course) YearLevel() string {
	return c.Code[:1]
}

// CourseInfo is the metadata scraped for a course
type CourseInfo struct {
	URL           string
	Name          string
	Description   string
	Prerequisites string
	Corequisites  string
	Credits       string
	Source        string
}
