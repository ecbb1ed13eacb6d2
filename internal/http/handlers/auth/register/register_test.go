package register

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/taskshare/internal/http/response"
	"github.com/magabrotheeeer/taskshare/internal/lib/apperr"
)

type AuthServiceMock struct {
	mock.Mock
}

func (m *AuthServiceMock) Register(ctx context.Context, email, username, password string) (string, error) {
	args := m.Called(ctx, email, username, password)
	return args.String(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestRegisterHandler_ServeHTTP(t *testing.T) {
	valid := Request{Username: "user1", Password: "password123", Email: "user1@example.com"}

	tests := []struct {
		name           string
		body           any
		mockUID        string
		mockErr        error
		expectCall     bool
		wantStatusCode int
		wantError      string
		wantReason     string
	}{
		{
			name:           "valid registration",
			body:           valid,
			mockUID:        "uid-1",
			expectCall:     true,
			wantStatusCode: http.StatusCreated,
		},
		{
			name:           "invalid json body",
			body:           "not a json",
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
		},
		{
			name:           "validation error - missing password",
			body:           Request{Username: "user1", Email: "user1@example.com"},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field Password is a required field",
		},
		{
			name:           "validation error - bad email",
			body:           Request{Username: "user1", Password: "password123", Email: "nope"},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field Email must be a valid email",
		},
		{
			name:           "duplicate user",
			body:           valid,
			mockErr:        apperr.New(apperr.KindConflict, apperr.ReasonAlreadyExists, "user already exists"),
			expectCall:     true,
			wantStatusCode: http.StatusConflict,
			wantError:      "user already exists",
			wantReason:     "ALREADY_EXISTS",
		},
		{
			name:           "service error",
			body:           valid,
			mockErr:        apperr.Internal(errors.New("db down"), "failed"),
			expectCall:     true,
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "internal error",
			wantReason:     "STORAGE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(AuthServiceMock)
			if tt.expectCall {
				svc.On("Register", mock.Anything, valid.Email, valid.Username, valid.Password).
					Return(tt.mockUID, tt.mockErr).Once()
			}

			var bodyBytes []byte
			if s, ok := tt.body.(string); ok {
				bodyBytes = []byte(s)
			} else {
				var err error
				bodyBytes, err = json.Marshal(tt.body)
				require.NoError(t, err)
			}

			req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewReader(bodyBytes))
			rr := httptest.NewRecorder()
			New(newNoopLogger(), svc).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatusCode, rr.Code)
			var resp response.Response
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			if tt.wantError != "" {
				assert.Equal(t, response.StatusError, resp.Status)
				assert.Contains(t, resp.Error, tt.wantError)
				assert.Equal(t, tt.wantReason, resp.Reason)
			} else {
				assert.Equal(t, response.StatusOK, resp.Status)
				data := resp.Data.(map[string]any)
				assert.Equal(t, tt.mockUID, data["user_uid"])
			}
			svc.AssertExpectations(t)
		})
	}
}
