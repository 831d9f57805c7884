package update

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/glebkarpov/identity-hub/internal/authctx"
	"github.com/glebkarpov/identity-hub/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) UpdateMe(ctx context.Context, entry models.UpdateUserEntry) (*models.UserView, error) {
	args := m.Called(ctx, entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserView), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestUpdateMeHandler_ServeHTTP(t *testing.T) {
	view := &models.UserView{
		UID:         "uid1",
		Email:       "alice@example.com",
		FirstName:   "Alice",
		CountryCode: "DE",
	}

	tests := []struct {
		name           string
		requestBody    interface{}
		mockEntry      models.UpdateUserEntry
		mockView       *models.UserView
		mockErr        error
		mockCall       bool
		wantStatusCode int
		wantError      string
		wantStatus     string
	}{
		{
			name: "full profile replace",
			requestBody: Request{
				FirstName:   "Alice",
				LastName:    "Smith",
				CountryCode: "DE",
				City:        "Berlin",
			},
			mockEntry: models.UpdateUserEntry{
				FirstName:   "Alice",
				LastName:    "Smith",
				CountryCode: "DE",
				City:        "Berlin",
			},
			mockView:       view,
			mockCall:       true,
			wantStatusCode: http.StatusOK,
			wantStatus:     "OK",
		},
		{
			name: "profile replace with password change",
			requestBody: Request{
				Password:  "new-password",
				FirstName: "Alice",
			},
			mockEntry: models.UpdateUserEntry{
				Password:  "new-password",
				FirstName: "Alice",
			},
			mockView:       view,
			mockCall:       true,
			wantStatusCode: http.StatusOK,
			wantStatus:     "OK",
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
			wantStatus:     "Error",
		},
		{
			name:           "validation error - short password",
			requestBody:    Request{Password: "123"},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field Password is too short",
			wantStatus:     "Error",
		},
		{
			name:           "validation error - bad country code",
			requestBody:    Request{CountryCode: "DEU"},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field CountryCode has invalid length",
			wantStatus:     "Error",
		},
		{
			name:           "not authenticated",
			requestBody:    Request{FirstName: "Alice"},
			mockEntry:      models.UpdateUserEntry{FirstName: "Alice"},
			mockErr:        authctx.ErrNotAuthenticated,
			mockCall:       true,
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "not authenticated",
			wantStatus:     "Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(ServiceMock)
			if tt.mockCall {
				serviceMock.On("UpdateMe", mock.Anything, tt.mockEntry).
					Return(tt.mockView, tt.mockErr).Once()
			}

			handler := New(newNoopLogger(), serviceMock)

			var bodyBytes []byte
			var err error
			switch v := tt.requestBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				bodyBytes, err = json.Marshal(tt.requestBody)
				if err != nil {
					t.Fatal(err)
				}
			}

			req := httptest.NewRequest(http.MethodPut, "/me", bytes.NewReader(bodyBytes))
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			err = json.NewDecoder(rec.Body).Decode(&got)
			assert.NoError(t, err)

			assert.Equal(t, tt.wantStatus, got["status"])

			if tt.wantError != "" {
				errStr, ok := got["error"].(string)
				assert.True(t, ok)
				assert.Equal(t, tt.wantError, errStr)
			}

			if tt.mockCall {
				serviceMock.AssertExpectations(t)
			}
		})
	}
}
