package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smartbill/smartbill/internal/services"
)

type stubRegisterer struct {
	err      error
	username string
	password string
}

func (s *stubRegisterer) Register(ctx context.Context, username, password string) error {
	s.username = username
	s.password = password
	return s.err
}

func TestRegisterHandler(t *testing.T) {
	tests := []struct {
		name          string
		inputBody     interface{}
		serviceErr    error
		expectedCode  int
		expectedError string
	}{
		{
			name:         "success",
			inputBody:    RegisterRequest{Username: "alice", Password: "pw1"},
			expectedCode: http.StatusCreated,
		},
		{
			name:          "invalid JSON",
			inputBody:     "{invalid json}",
			expectedCode:  http.StatusBadRequest,
			expectedError: "invalid request body",
		},
		{
			name:          "empty credentials",
			inputBody:     RegisterRequest{Username: "", Password: "pw1"},
			serviceErr:    services.ErrEmptyCredentials,
			expectedCode:  http.StatusBadRequest,
			expectedError: "Username and password cannot be empty.",
		},
		{
			name:          "duplicate username",
			inputBody:     RegisterRequest{Username: "alice", Password: "pw1"},
			serviceErr:    services.ErrUsernameTaken,
			expectedCode:  http.StatusBadRequest,
			expectedError: "Username already exists.",
		},
		{
			name:          "internal error",
			inputBody:     RegisterRequest{Username: "alice", Password: "pw1"},
			serviceErr:    errors.New("database error"),
			expectedCode:  http.StatusInternalServerError,
			expectedError: "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var bodyBytes []byte
			switch v := tt.inputBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				bodyBytes, _ = json.Marshal(v)
			}

			svc := &stubRegisterer{err: tt.serviceErr}
			handler := NewRegisterHandler(svc)

			req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewReader(bodyBytes))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedCode, w.Code)

			if tt.expectedError != "" {
				var resp RegisterErrorResponse
				assert.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
				assert.Equal(t, tt.expectedError, resp.Error)
			} else {
				var resp RegisterResponse
				assert.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
				assert.Equal(t, "Signup successful! Please login.", resp.Message)
				assert.Equal(t, "alice", svc.username)
				assert.Equal(t, "pw1", svc.password)
			}
		})
	}
}
