package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"attachapi/internal/model"
)

type MockAttachmentRepository struct {
	mock.Mock
}

func (m *MockAttachmentRepository) Upsert(ctx context.Context, a *model.Attachment) (*model.Attachment, bool, error) {
	args := m.Called(ctx, a)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*model.Attachment), args.Bool(1), args.Error(2)
}

func (m *MockAttachmentRepository) FindByID(ctx context.Context, id string) (*model.Attachment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Attachment), args.Error(1)
}

func (m *MockAttachmentRepository) ListByEntity(ctx context.Context, ref model.EntityRef) ([]model.AttachmentWithFile, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AttachmentWithFile), args.Error(1)
}

func (m *MockAttachmentRepository) ListByFile(ctx context.Context, fileID string) ([]model.Attachment, error) {
	args := m.Called(ctx, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Attachment), args.Error(1)
}

func (m *MockAttachmentRepository) Delete(ctx context.Context, id string, ref model.EntityRef) error {
	args := m.Called(ctx, id, ref)
	return args.Error(0)
}

func (m *MockAttachmentRepository) DeleteByEntity(ctx context.Context, ref model.EntityRef) (int64, error) {
	args := m.Called(ctx, ref)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAttachmentRepository) IDsWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	args := m.Called(ctx, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
