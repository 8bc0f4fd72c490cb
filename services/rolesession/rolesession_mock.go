package rolesession

import (
	"github.com/samber/mo"
	"github.com/stretchr/testify/mock"

	"ecessbot/models"
)

// MockRoleSessionService is a mock implementation of the RoleSessionService interface
type MockRoleSessionService struct {
	mock.Mock
}

func (m *MockRoleSessionService) Reserve(
	operatorID, guildID, channelID, messageID string,
	unique bool,
) (models.RoleSession, error) {
	args := m.Called(operatorID, guildID, channelID, messageID, unique)
	return args.Get(0).(models.RoleSession), args.Error(1)
}

func (m *MockRoleSessionService) Activate(sessionID string) error {
	args := m.Called(sessionID)
	return args.Error(0)
}

func (m *MockRoleSessionService) Release(sessionID string) {
	m.Called(sessionID)
}

func (m *MockRoleSessionService) Current() mo.Option[models.RoleSession] {
	args := m.Called()
	return args.Get(0).(mo.Option[models.RoleSession])
}

func (m *MockRoleSessionService) AddEntry(sessionID string, entry models.RoleMappingEntry) error {
	args := m.Called(sessionID, entry)
	return args.Error(0)
}

func (m *MockRoleSessionService) Finish() (models.RoleSession, error) {
	args := m.Called()
	return args.Get(0).(models.RoleSession), args.Error(1)
}
