package update

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

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/subscription-calendar/internal/billing"
	"github.com/magabrotheeeer/subscription-calendar/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-calendar/internal/models"
	"github.com/magabrotheeeer/subscription-calendar/internal/storage"
)

const userID = "3b241101-e2bb-4255-8caf-4136c566a962"

type MockService struct {
	mock.Mock
}

func (m *MockService) Update(ctx context.Context, userID string, id int64, req models.SubscriptionRequest) error {
	return m.Called(ctx, userID, id, req).Error(0)
}

func TestUpdateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	valid := models.SubscriptionRequest{
		Title:   "Spotify",
		DueType: "yearly",
		DueDate: "2024-02-29",
		EndDate: "2026-02-28",
	}
	companyID := int64(3)
	conflicting := valid
	conflicting.CompanyID = &companyID
	conflicting.CustomCompany = "Spotify AB"

	tests := []struct {
		name           string
		id             string
		body           any
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешное обновление",
			id:   "7",
			body: valid,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, userID, int64(7), valid).Return(nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK","data":{"id":7}}`,
		},
		{
			name:           "некорректный id",
			id:             "seven",
			body:           valid,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `failed to decode id from url`,
		},
		{
			name:           "некорректный JSON",
			id:             "7",
			body:           "{",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `failed to decode request`,
		},
		{
			name:           "некорректная дата",
			id:             "7",
			body:           models.SubscriptionRequest{Title: "Spotify", DueType: "yearly", DueDate: "29.02.2024"},
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field DueDate can contain only date in format YYYY-MM-DD`,
		},
		{
			name: "компания каталога и произвольная одновременно",
			id:   "7",
			body: conflicting,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, userID, int64(7), conflicting).
					Return(&billing.ValidationError{Field: "company", Reason: "company_id and custom_company are mutually exclusive"}).Once()
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `invalid company`,
		},
		{
			name: "подписка не найдена",
			id:   "7",
			body: valid,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, userID, int64(7), valid).Return(storage.ErrNotFound).Once()
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `subscription not found`,
		},
		{
			name: "ошибка сервиса",
			id:   "7",
			body: valid,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, userID, int64(7), valid).Return(errors.New("db error")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `could not update subscription`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			var body []byte
			if s, ok := tt.body.(string); ok {
				body = []byte(s)
			} else {
				body, _ = json.Marshal(tt.body)
			}

			req := httptest.NewRequest(http.MethodPut, "/subscriptions/"+tt.id, bytes.NewReader(body))
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.id)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			req = req.WithContext(middlewarectx.WithUserID(ctx, userID))

			w := httptest.NewRecorder()
			New(logger, mockService).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
