package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"attachapi/internal/model"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) TitleOf(ctx context.Context, ref model.EntityRef) (string, error) {
	args := m.Called(ctx, ref)
	return args.String(0), args.Error(1)
}

func (m *MockStore) Exists(ctx context.Context, ref model.EntityRef) (bool, error) {
	args := m.Called(ctx, ref)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) IDsWithPrefix(ctx context.Context, t model.EntityType, prefix string) ([]string, error) {
	args := m.Called(ctx, t, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
