package coursethreads

import (
	"context"

	"github.com/samber/mo"
	"github.com/stretchr/testify/mock"

	"ecessbot/models"
)

// MockCourseThreadsService is a mock implementation of the CourseThreadsService interface
type MockCourseThreadsService struct {
	mock.Mock
}

func (m *MockCourseThreadsService) RegisterBase(ctx context.Context, yearLevel, channelID string) error {
	args := m.Called(ctx, yearLevel, channelID)
	return args.Error(0)
}

func (m *MockCourseThreadsService) GetBase(ctx context.Context, yearLevel string) (mo.Option[string], error) {
	args := m.Called(ctx, yearLevel)
	return args.Get(0).(mo.Option[string]), args.Error(1)
}

func (m *MockCourseThreadsService) AddCourse(ctx context.Context, course models.Course, threadID string) error {
	args := m.Called(ctx, course, threadID)
	return args.Error(0)
}

func (m *MockCourseThreadsService) RemoveCourse(ctx context.Context, course models.Course) (string, error) {
	args := m.Called(ctx, course)
	return args.String(0), args.Error(1)
}

func (m *MockCourseThreadsService) GetCourseThread(ctx context.Context, course models.Course) (mo.Option[string], error) {
	args := m.Called(ctx, course)
	return args.Get(0).(mo.Option[string]), args.Error(1)
}

func (m *MockCourseThreadsService) ListCourses(ctx context.Context) ([]models.CourseThread, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CourseThread), args.Error(1)
}

func (m *MockCourseThreadsService) SearchCourses(ctx context.Context, query string) ([]models.CourseThread, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CourseThread), args.Error(1)
}

func (m *MockCourseThreadsService) IsCourseThread(ctx context.Context, threadID string) (bool, error) {
	args := m.Called(ctx, threadID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCourseThreadsService) TrackedThreads(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockCourseThreadsService) PruneThread(ctx context.Context, threadID string) (bool, error) {
	args := m.Called(ctx, threadID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCourseThreadsService) RepairIfTracked(
	ctx context.Context,
	threadID string,
	repair func(ctx context.Context) error,
) (bool, error) {
	args := m.Called(ctx, threadID)
	return args.Bool(0), args.Error(1)
}
