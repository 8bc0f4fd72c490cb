package courseinfo

import (
	"context"

	"github.com/samber/mo"
	"github.com/stretchr/testify/mock"

	"ecessbot/models"
)

// MockCourseInfoClient implements the clients.CourseInfoClient interface for testing
type MockCourseInfoClient struct {
	mock.Mock
}

func (m *MockCourseInfoClient) Lookup(ctx context.Context, course models.Course) (mo.Option[models.CourseInfo], error) {
	args := m.Called(ctx, course)
	return args.Get(0).(mo.Option[models.CourseInfo]), args.Error(1)
}
