package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/GriffinCanCode/adapterhub/internal/shared/types"
)

// MockCaller is a mock adapter caller for orchestrator tests.
type MockCaller struct {
	mock.Mock
}

// Call mocks the Call method.
func (m *MockCaller) Call(ctx context.Context, adapterID string, input *string, actx types.Context) (types.AdapterResponse, error) {
	args := m.Called(ctx, adapterID, input, actx)
	return args.Get(0).(types.AdapterResponse), args.Error(1)
}

// BatchCall mocks the BatchCall method.
func (m *MockCaller) BatchCall(ctx context.Context, adapterIDs []string, input *string, actx types.Context) []types.AdapterResponse {
	args := m.Called(ctx, adapterIDs, input, actx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]types.AdapterResponse)
}

// MockRegistry is a mock adapter registry.
type MockRegistry struct {
	mock.Mock
}

// IsValidAdapterID mocks the IsValidAdapterID method.
func (m *MockRegistry) IsValidAdapterID(id string) bool {
	args := m.Called(id)
	return args.Bool(0)
}

// AdapterType mocks the AdapterType method.
func (m *MockRegistry) AdapterType(id string) types.AdapterType {
	args := m.Called(id)
	return args.Get(0).(types.AdapterType)
}

// InputPtr matches a *string argument by value.
func InputPtr(s string) interface{} {
	return mock.MatchedBy(func(p *string) bool {
		return p != nil && *p == s
	})
}
