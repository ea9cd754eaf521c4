package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docintel/internal/domain"
)

// MockTableExtractor is a mock implementation of port.TableExtractor.
type MockTableExtractor struct {
	mock.Mock
}

func (m *MockTableExtractor) ExtractTables(ctx context.Context, source []byte) ([]domain.Table, error) {
	args := m.Called(ctx, source)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Table), args.Error(1)
}
