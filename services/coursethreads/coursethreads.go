package coursethreads

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/mo"

	"ecessbot/core"
	"ecessbot/core/log"
	"ecessbot/models"
	"ecessbot/services/jsonstore"
)

const Filename = "thread_channel_mapping.json"

type CourseThreadsService struct {
	store *jsonstore.Store[models.CourseThreadMap]
}

func NewCourseThreadsService(store *jsonstore.Store[models.CourseThreadMap]) *CourseThreadsService {
	return &CourseThreadsService{store: store}
}

// RegisterBase points a year level at channelID. A year level that already has
// courses cannot be re-registered.
func (s *CourseThreadsService) RegisterBase(ctx context.Context, yearLevel, channelID string) error {
	log.Info("📋 Starting to register base channel", "year_level", yearLevel, "channel_id", channelID)
	if !isYearLevel(yearLevel) {
		return core.NewValidationError(
			"`%s` isn't a valid year level. This should map to the first digit of the course code.", yearLevel)
	}

	err := s.store.Update(func(doc models.CourseThreadMap) (models.CourseThreadMap, error) {
		if existing, ok := doc[yearLevel]; ok && len(existing.CurrentCourses) > 0 {
			return nil, core.NewConflictError(
				"There are already courses mapped to this year level; changing this is destructive, thus is manual.")
		}
		doc[yearLevel] = models.YearLevel{
			BaseChannel:    models.Snowflake(channelID),
			CurrentCourses: map[string]models.Snowflake{},
		}
		return doc, nil
	})
	if err != nil {
		return fmt.Errorf("failed to register base channel: %w", err)
	}
	log.Info("✅ Registered base channel", "year_level", yearLevel, "channel_id", channelID)
	return nil
}

func (s *CourseThreadsService) GetBase(ctx context.Context, yearLevel string) (mo.Option[string], error) {
	year, ok := s.store.Load()[yearLevel]
	if !ok || year.BaseChannel == "" {
		return mo.None[string](), nil
	}
	return mo.Some(year.BaseChannel.String()), nil
}

func (s *CourseThreadsService) AddCourse(ctx context.Context, course models.Course, threadID string) error {
	log.Info("📋 Starting to add course thread", "course", course.String(), "thread_id", threadID)
	err := s.store.Update(func(doc models.CourseThreadMap) (models.CourseThreadMap, error) {
		year, ok := doc[course.YearLevel()]
		if !ok {
			return nil, NoBaseError(course)
		}
		if _, exists := year.CurrentCourses[course.String()]; exists {
			return nil, CourseExistsError(course)
		}
		if year.CurrentCourses == nil {
			year.CurrentCourses = map[string]models.Snowflake{}
		}
		year.CurrentCourses[course.String()] = models.Snowflake(threadID)
		doc[course.YearLevel()] = year
		return doc, nil
	})
	if err != nil {
		return fmt.Errorf("failed to add course %s: %w", course, err)
	}
	log.Info("✅ Added course thread", "course", course.String())
	return nil
}

// RemoveCourse deletes exactly the course key and returns the thread it pointed at
func (s *CourseThreadsService) RemoveCourse(ctx context.Context, course models.Course) (string, error) {
	log.Info("📋 Starting to remove course thread", "course", course.String())
	var threadID string
	err := s.store.Update(func(doc models.CourseThreadMap) (models.CourseThreadMap, error) {
		year, ok := doc[course.YearLevel()]
		if !ok {
			return nil, MissingCourseError(course)
		}
		existing, ok := year.CurrentCourses[course.String()]
		if !ok {
			return nil, MissingCourseError(course)
		}
		threadID = existing.String()
		delete(year.CurrentCourses, course.String())
		doc[course.YearLevel()] = year
		return doc, nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to remove course %s: %w", course, err)
	}
	log.Info("✅ Removed course thread", "course", course.String(), "thread_id", threadID)
	return threadID, nil
}

func (s *CourseThreadsService) GetCourseThread(ctx context.Context, course models.Course) (mo.Option[string], error) {
	year, ok := s.store.Load()[course.YearLevel()]
	if !ok {
		return mo.None[string](), nil
	}
	threadID, ok := year.CurrentCourses[course.String()]
	if !ok {
		return mo.None[string](), nil
	}
	return mo.Some(threadID.String()), nil
}

func (s *CourseThreadsService) ListCourses(ctx context.Context) ([]models.CourseThread, error) {
	return s.store.Load().Courses(), nil
}

// SearchCourses matches query case-insensitively against course keys, with and without the space
func (s *CourseThreadsService) SearchCourses(ctx context.Context, query string) ([]models.CourseThread, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	var matches []models.CourseThread
	for _, course := range s.store.Load().Courses() {
		key := strings.ToLower(course.Course)
		if strings.Contains(key, query) || strings.Contains(strings.ReplaceAll(key, " ", ""), query) {
			matches = append(matches, course)
		}
	}
	return matches, nil
}

func (s *CourseThreadsService) IsCourseThread(ctx context.Context, threadID string) (bool, error) {
	for _, tracked := range s.store.Load().ThreadIDs() {
		if tracked == threadID {
			return true, nil
		}
	}
	return false, nil
}

func (s *CourseThreadsService) TrackedThreads(ctx context.Context) ([]string, error) {
	return s.store.Load().ThreadIDs(), nil
}

// RepairIfTracked does not lock. Callers that delete threads must hold their own lock around it.
func (s *CourseThreadsService) RepairIfTracked(
	ctx context.Context,
	threadID string,
	repair func(ctx context.Context) error,
) (bool, error) {
	tracked, err := s.IsCourseThread(ctx, threadID)
	if err != nil || !tracked {
		return false, err
	}
	return true, repair(ctx)
}

func (s *CourseThreadsService) PruneThread(ctx context.Context, threadID string) (bool, error) {
	var prunedCourse string
	err := s.store.Update(func(doc models.CourseThreadMap) (models.CourseThreadMap, error) {
		for _, course := range doc.Courses() {
			if course.ThreadID != threadID {
				continue
			}
			delete(doc[course.YearLevel].CurrentCourses, course.Course)
			prunedCourse = course.Course
			break
		}
		return doc, nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to prune thread %s: %w", threadID, err)
	}
	if prunedCourse == "" {
		return false, nil
	}
	log.Info("🧹 Pruned vanished course thread", "course", prunedCourse, "thread_id", threadID)
	return true, nil
}

func isYearLevel(raw string) bool {
	return len(raw) == 1 && raw[0] >= '0' && raw[0] <= '9'
}

// NoBaseError is reported when the year level of a course has no base channel
func NoBaseError(course models.Course) error {
	return core.NewValidationError(
		"Base channel for year level (`%s`) doesn't exist. Initialize it with `register_base_channel`.",
		course.YearLevel())
}

// MissingCourseError is reported when a course has no thread
func MissingCourseError(course models.Course) error {
	return core.NewValidationError("A thread for `%s` doesn't exist.", course)
}

func CourseExistsError(course models.Course) error {
	return core.NewConflictError("Course `%s` already exists.", course)
}
