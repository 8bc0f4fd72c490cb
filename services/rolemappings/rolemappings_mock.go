package rolemappings

import (
	"context"

	"github.com/samber/mo"
	"github.com/stretchr/testify/mock"

	"ecessbot/models"
)

// MockRoleMappingsService is a mock implementation of the RoleMappingsService interface
type MockRoleMappingsService struct {
	mock.Mock
}

func (m *MockRoleMappingsService) GetMapping(ctx context.Context, messageID string) (mo.Option[models.RoleMapping], error) {
	args := m.Called(ctx, messageID)
	return args.Get(0).(mo.Option[models.RoleMapping]), args.Error(1)
}

func (m *MockRoleMappingsService) ListMappings(ctx context.Context) (models.RoleMappingDocument, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.RoleMappingDocument), args.Error(1)
}

func (m *MockRoleMappingsService) FindMessageForRole(
	ctx context.Context,
	roleID, excludeMessageID string,
) (mo.Option[string], error) {
	args := m.Called(ctx, roleID, excludeMessageID)
	return args.Get(0).(mo.Option[string]), args.Error(1)
}

func (m *MockRoleMappingsService) UpsertMapping(ctx context.Context, messageID string, mapping models.RoleMapping) error {
	args := m.Called(ctx, messageID, mapping)
	return args.Error(0)
}

func (m *MockRoleMappingsService) DeleteMapping(ctx context.Context, messageID string) error {
	args := m.Called(ctx, messageID)
	return args.Error(0)
}
