package tasklist

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/taskshare/internal/lib/apperr"
	"github.com/magabrotheeeer/taskshare/internal/models"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateTaskList(ctx context.Context, list models.TaskList) (*models.TaskList, error) {
	args := m.Called(ctx, list)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TaskList), args.Error(1)
}

func (m *MockRepository) ListTaskListsForUser(ctx context.Context, userUID string, limit, offset int) ([]*models.TaskList, error) {
	args := m.Called(ctx, userUID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TaskList), args.Error(1)
}

func TestService_Create(t *testing.T) {
	tests := []struct {
		name       string
		req        models.DummyTaskList
		setupMocks func(*MockRepository)
		wantErr    bool
	}{
		{
			name: "creates list owned by caller",
			req:  models.DummyTaskList{Name: "  Groceries ", Description: "weekly"},
			setupMocks: func(r *MockRepository) {
				r.On("CreateTaskList", mock.Anything, models.TaskList{
					Name: "Groceries", Description: "weekly", OwnerUID: "owner",
				}).Return(&models.TaskList{ID: "l1", Name: "Groceries", OwnerUID: "owner"}, nil).Once()
			},
		},
		{
			name: "storage failure",
			req:  models.DummyTaskList{Name: "Groceries"},
			setupMocks: func(r *MockRepository) {
				r.On("CreateTaskList", mock.Anything, mock.Anything).Return(nil, errors.New("db down")).Once()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			tt.setupMocks(repo)

			got, err := New(repo).Create(context.Background(), "owner", tt.req)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
			} else {
				require.NoError(t, err)
				assert.Equal(t, "owner", got.OwnerUID)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestService_List(t *testing.T) {
	tests := []struct {
		name       string
		limit      int
		offset     int
		wantLimit  int
		wantOffset int
	}{
		{name: "default limit", limit: 0, offset: 0, wantLimit: defaultLimit, wantOffset: 0},
		{name: "limit capped", limit: 1000, offset: 10, wantLimit: maxLimit, wantOffset: 10},
		{name: "negative offset", limit: 5, offset: -3, wantLimit: 5, wantOffset: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			repo.On("ListTaskListsForUser", mock.Anything, "u1", tt.wantLimit, tt.wantOffset).Return(nil, nil).Once()

			got, err := New(repo).List(context.Background(), "u1", tt.limit, tt.offset)
			require.NoError(t, err)
			assert.NotNil(t, got)
			assert.Empty(t, got)
			repo.AssertExpectations(t)
		})
	}
}
