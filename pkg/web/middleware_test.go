package web

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockVerifier is a mock implementation of the auth.Verifier interface for testing purposes.
type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) Verify(ctx context.Context, tokenString string) (jwt.Token, error) {
	args := m.Called(ctx, tokenString)

	var token jwt.Token
	if args.Get(0) != nil {
		token = args.Get(0).(jwt.Token)
	}
	return token, args.Error(1)
}

func buildToken(t *testing.T, subject, role string) jwt.Token {
	t.Helper()
	builder := jwt.NewBuilder().
		Subject(subject).
		Issuer("test-issuer").
		IssuedAt(time.Now()).
		Expiration(time.Now().Add(time.Hour))
	if role != "" {
		builder = builder.Claim("role", role)
	}
	token, err := builder.Build()
	require.NoError(t, err)
	return token
}

func TestAuthMiddleware(t *testing.T) {
	testCases := []struct {
		name               string
		authHeader         string
		setupMock          func(t *testing.T, m *MockVerifier)
		expectedStatusCode int
		shouldCallNext     bool
		expectedUserID     string
		expectedRole       string
	}{
		{
			name:       "Success - valid bearer token with role",
			authHeader: "Bearer valid-token",
			setupMock: func(t *testing.T, m *MockVerifier) {
				m.On("Verify", mock.Anything, "valid-token").Return(buildToken(t, "user-123", "admin"), nil)
			},
			expectedStatusCode: http.StatusOK,
			shouldCallNext:     true,
			expectedUserID:     "user-123",
			expectedRole:       "admin",
		},
		{
			name:       "Success - token without role claim",
			authHeader: "Bearer valid-token",
			setupMock: func(t *testing.T, m *MockVerifier) {
				m.On("Verify", mock.Anything, "valid-token").Return(buildToken(t, "user-123", ""), nil)
			},
			expectedStatusCode: http.StatusOK,
			shouldCallNext:     true,
			expectedUserID:     "user-123",
			expectedRole:       "",
		},
		{
			name:               "Failure - no auth header",
			authHeader:         "",
			setupMock:          func(t *testing.T, m *MockVerifier) {},
			expectedStatusCode: http.StatusUnauthorized,
			shouldCallNext:     false,
		},
		{
			name:               "Failure - not a bearer token",
			authHeader:         "Basic some-credentials",
			setupMock:          func(t *testing.T, m *MockVerifier) {},
			expectedStatusCode: http.StatusUnauthorized,
			shouldCallNext:     false,
		},
		{
			name:       "Failure - verifier returns error",
			authHeader: "Bearer invalid-token",
			setupMock: func(t *testing.T, m *MockVerifier) {
				m.On("Verify", mock.Anything, "invalid-token").Return(nil, errors.New("signature is invalid"))
			},
			expectedStatusCode: http.StatusUnauthorized,
			shouldCallNext:     false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockVerifier := new(MockVerifier)
			tc.setupMock(t, mockVerifier)
			authMiddleware := Auth(mockVerifier)

			nextHandlerCalled := false
			nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextHandlerCalled = true
				userID, ok := r.Context().Value(UserIDKey).(string)
				assert.True(t, ok, "userID should be in context")
				assert.Equal(t, tc.expectedUserID, userID, "userID in context is incorrect")
				assert.Equal(t, tc.expectedRole, GetUserRole(r), "role in context is incorrect")
				w.WriteHeader(http.StatusOK)
			})

			testHandler := authMiddleware(nextHandler)

			req := httptest.NewRequest("GET", "/", nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			rr := httptest.NewRecorder()

			// when
			testHandler.ServeHTTP(rr, req)

			// then
			assert.Equal(t, tc.expectedStatusCode, rr.Code, "HTTP status code is wrong")
			assert.Equal(t, tc.shouldCallNext, nextHandlerCalled, "Next handler call status is wrong")
			mockVerifier.AssertExpectations(t)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	testCases := []struct {
		name               string
		role               string
		expectedStatusCode int
	}{
		{"admin passes", RoleAdmin, http.StatusOK},
		{"customer is forbidden", "customer", http.StatusForbidden},
		{"missing role is forbidden", "", http.StatusForbidden},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest("GET", "/", nil)
			if tc.role != "" {
				req = req.WithContext(context.WithValue(req.Context(), UserRoleKey, tc.role))
			}
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatusCode, rr.Code)
		})
	}
}
