package mocks

import (
	"context"
	"image"

	"github.com/stretchr/testify/mock"

	"docintel/internal/domain"
)

// MockOCREngine is a mock implementation of port.OCREngine.
type MockOCREngine struct {
	mock.Mock
}

func (m *MockOCREngine) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockOCREngine) Recognize(ctx context.Context, img image.Image) ([]domain.Fragment, error) {
	args := m.Called(ctx, img)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Fragment), args.Error(1)
}
