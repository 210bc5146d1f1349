package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"attachapi/internal/ingest"
	"attachapi/internal/model"
)

type MockAttachmentService struct {
	mock.Mock
}

func (m *MockAttachmentService) Attach(ctx context.Context, caller model.Caller, ref model.EntityRef, p *ingest.UploadPayload, description string) (*model.Attachment, error) {
	args := m.Called(ctx, caller, ref, p, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Attachment), args.Error(1)
}

func (m *MockAttachmentService) Link(ctx context.Context, caller model.Caller, ref model.EntityRef, fileRef, description string) (*model.Attachment, bool, error) {
	args := m.Called(ctx, caller, ref, fileRef, description)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*model.Attachment), args.Bool(1), args.Error(2)
}

func (m *MockAttachmentService) ListAttachments(ctx context.Context, ref model.EntityRef) ([]model.AttachmentWithFile, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AttachmentWithFile), args.Error(1)
}

func (m *MockAttachmentService) Unlink(ctx context.Context, ref model.EntityRef, attachmentRef string) error {
	args := m.Called(ctx, ref, attachmentRef)
	return args.Error(0)
}

func (m *MockAttachmentService) UnlinkAll(ctx context.Context, ref model.EntityRef) (int64, error) {
	args := m.Called(ctx, ref)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAttachmentService) FileAttachments(ctx context.Context, fileRef string) ([]model.EntityLink, error) {
	args := m.Called(ctx, fileRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.EntityLink), args.Error(1)
}
