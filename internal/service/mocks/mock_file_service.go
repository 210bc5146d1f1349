package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"attachapi/internal/ingest"
	"attachapi/internal/model"
	"attachapi/internal/repository"
	"attachapi/internal/service"
)

type MockFileService struct {
	mock.Mock
}

func (m *MockFileService) Upload(ctx context.Context, caller model.Caller, p *ingest.UploadPayload) (*model.File, error) {
	args := m.Called(ctx, caller, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.File), args.Error(1)
}

func (m *MockFileService) Get(ctx context.Context, ref string) (*model.File, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.File), args.Error(1)
}

func (m *MockFileService) GetByPath(ctx context.Context, path string) (*model.File, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.File), args.Error(1)
}

func (m *MockFileService) Download(ctx context.Context, ref string) (*model.File, []byte, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*model.File), args.Get(1).([]byte), args.Error(2)
}

func (m *MockFileService) DownloadURL(ctx context.Context, ref string) (string, error) {
	args := m.Called(ctx, ref)
	return args.String(0), args.Error(1)
}

func (m *MockFileService) List(ctx context.Context, limit, offset int) (*service.FileListResult, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FileListResult), args.Error(1)
}

func (m *MockFileService) UpdateMeta(ctx context.Context, caller model.Caller, ref string, u repository.MetaUpdate) (*model.File, error) {
	args := m.Called(ctx, caller, ref, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.File), args.Error(1)
}

func (m *MockFileService) RefreshTTL(ctx context.Context, caller model.Caller, ref string, minutes int) (*model.File, error) {
	args := m.Called(ctx, caller, ref, minutes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.File), args.Error(1)
}

func (m *MockFileService) Delete(ctx context.Context, ref string) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}

func (m *MockFileService) PurgeExpired(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
