package schedule

import (
	"context"

	"github.com/stretchr/testify/mock"

	"ecessbot/models"
)

// MockScheduleService is a mock implementation of the ScheduleService interface
type MockScheduleService struct {
	mock.Mock
}

func (m *MockScheduleService) ParseCourses(ctx context.Context, calendar []byte) ([]models.Course, error) {
	args := m.Called(ctx, calendar)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Course), args.Error(1)
}
