package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/octobees/leads-enricher/internal/auth"
	"github.com/octobees/leads-enricher/internal/dto"
	"github.com/octobees/leads-enricher/internal/service"
)

func newTestAuthHandler(t *testing.T) *AuthHandler {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	manager := auth.NewJWTManager("secret", time.Hour)
	return NewAuthHandler(service.NewAuthService("ops@example.com", string(hash), manager))
}

func TestAuthHandler_Login(t *testing.T) {
	handler := newTestAuthHandler(t)
	e := echo.New()

	tests := map[string]struct {
		body       string
		expectCode int
	}{
		"success": {
			body:       `{"email":"ops@example.com","password":"hunter2"}`,
			expectCode: http.StatusOK,
		},
		"wrong password": {
			body:       `{"email":"ops@example.com","password":"nope"}`,
			expectCode: http.StatusUnauthorized,
		},
		"unknown email": {
			body:       `{"email":"other@example.com","password":"hunter2"}`,
			expectCode: http.StatusUnauthorized,
		},
		"missing fields": {
			body:       `{"email":""}`,
			expectCode: http.StatusBadRequest,
		},
		"invalid json": {
			body:       `{`,
			expectCode: http.StatusBadRequest,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(tt.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			if err := handler.Login(c); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.Code != tt.expectCode {
				t.Fatalf("expected %d, got %d", tt.expectCode, rec.Code)
			}

			if tt.expectCode == http.StatusOK {
				var payload APIResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
					t.Fatalf("decode response: %v", err)
				}
				data, err := json.Marshal(payload.Data)
				if err != nil {
					t.Fatalf("marshal data: %v", err)
				}
				var login dto.LoginResponse
				if err := json.Unmarshal(data, &login); err != nil {
					t.Fatalf("decode login data: %v", err)
				}
				if login.AccessToken == "" {
					t.Fatalf("expected access token in response")
				}
			}
		})
	}
}
