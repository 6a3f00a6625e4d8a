package mocks

import (
	"github.com/stretchr/testify/mock"
)

// MockContentProvider implements treefs.ContentProvider for testing across packages
type MockContentProvider struct {
	mock.Mock
}

func (m *MockContentProvider) Content() ([]byte, error) {
	args := m.Called()

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
