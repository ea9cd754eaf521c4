package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docintel/internal/domain"
	"docintel/internal/port"
)

// MockPageLoader is a mock implementation of port.PageLoader.
type MockPageLoader struct {
	mock.Mock
}

func (m *MockPageLoader) Load(ctx context.Context, data []byte, fileType domain.FileType) ([]port.Page, error) {
	args := m.Called(ctx, data, fileType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]port.Page), args.Error(1)
}
