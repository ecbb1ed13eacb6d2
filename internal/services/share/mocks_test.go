package share

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/taskshare/internal/models"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) ActivateTrial(ctx context.Context, userUID string, at time.Time) (bool, error) {
	args := m.Called(ctx, userUID, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) CountSharesByList(ctx context.Context, listID string) (int, error) {
	args := m.Called(ctx, listID)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockRepository) GetTaskList(ctx context.Context, listID string) (*models.TaskList, error) {
	args := m.Called(ctx, listID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TaskList), args.Error(1)
}

func (m *MockRepository) ShareExists(ctx context.Context, listID, userUID string) (bool, error) {
	args := m.Called(ctx, listID, userUID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) CreateShare(ctx context.Context, share models.Share) (*models.Share, error) {
	args := m.Called(ctx, share)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Share), args.Error(1)
}

func (m *MockRepository) ListShares(ctx context.Context, listID string) ([]*models.Share, error) {
	args := m.Called(ctx, listID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Share), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Publish(ctx context.Context, n models.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}
