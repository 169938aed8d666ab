package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spendwise/spendwise/pkg/auth"
	"github.com/spendwise/spendwise/pkg/notice"
	"github.com/spendwise/spendwise/pkg/notification"
	"github.com/spendwise/spendwise/pkg/token"
	"github.com/spendwise/spendwise/pkg/twofa"
	"github.com/spendwise/spendwise/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testStack struct {
	handler      http.Handler
	users        *user.UserService
	twoFaService *twofa.TwoFaService
	tokenService token.TokenService
	notifier     *notification.MockNotifier
	user         user.User
	admin        user.User
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()
	ctx := context.Background()

	notifier := &notification.MockNotifier{}
	manager := notification.NewNotificationManager()
	manager.RegisterNotifier(notification.EmailSystem, notifier)
	err := manager.RegisterNotification(notice.TwofaCodeNotice, notification.EmailSystem, notification.NoticeTemplate{
		Subject: "Your 2FA Verification Code",
		Html:    "<p>{{.Code}}</p>",
	})
	require.NoError(t, err)

	users := user.NewUserService(user.NewInMemUserRepository())
	u, err := users.Register(ctx, user.RegisterParams{Name: "Test User", Email: "test@example.com", Password: "password123"})
	require.NoError(t, err)
	admin, err := users.Register(ctx, user.RegisterParams{Name: "Admin", Email: "admin@example.com", Password: "password123", Role: user.RoleAdmin})
	require.NoError(t, err)

	tokenService := token.NewJwtTokenService("test-secret", "spendwise", "spendwise")
	twoFaService := twofa.NewTwoFaService(twofa.NewInMemTwoFARepository(), users, tokenService, manager)
	mw := auth.NewMiddleware("test-secret", users)

	return &testStack{
		handler:      Routes(NewHandle(twoFaService), mw),
		users:        users,
		twoFaService: twoFaService,
		tokenService: tokenService,
		notifier:     notifier,
		user:         u,
		admin:        admin,
	}
}

func (s *testStack) do(t *testing.T, method, path, bearer string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func TestSetupRequiresSetupToken(t *testing.T) {
	s := newTestStack(t)

	body := map[string]interface{}{"userId": s.user.ID, "method": twofa.MethodEmail}

	rec := s.do(t, http.MethodPost, "/setup", "", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "no token should be rejected")

	sessionToken, _, err := s.tokenService.IssueSessionToken(s.user.ID, string(s.user.Role))
	require.NoError(t, err)
	rec = s.do(t, http.MethodPost, "/setup", sessionToken, body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "a session token is not a setup token")

	setupToken, _, err := s.tokenService.IssueSetupToken(s.user.ID)
	require.NoError(t, err)
	rec = s.do(t, http.MethodPost, "/setup", setupToken, body)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, s.notifier.SentNotifications, 1, "a code should be delivered")
}

func TestSetupInvalidMethod(t *testing.T) {
	s := newTestStack(t)

	setupToken, _, err := s.tokenService.IssueSetupToken(s.user.ID)
	require.NoError(t, err)

	rec := s.do(t, http.MethodPost, "/setup", setupToken, map[string]interface{}{
		"userId": s.user.ID,
		"method": "SMS",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerifyFlow(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()

	rec := s.do(t, http.MethodPost, "/verify", "", map[string]interface{}{"userId": s.user.ID, "code": "123456"})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "verify before setup should fail")

	_, err := s.twoFaService.Setup(ctx, s.user.ID, twofa.MethodEmail)
	require.NoError(t, err)
	delivery, ok := s.notifier.Last()
	require.True(t, ok)
	code := delivery.Data["Code"]

	rec = s.do(t, http.MethodPost, "/verify", "", map[string]interface{}{"userId": s.user.ID, "code": "000000"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "a wrong code should be rejected")

	rec = s.do(t, http.MethodPost, "/verify", "", map[string]interface{}{"userId": s.user.ID, "code": code})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Token string `json:"token"`
		User  struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token, "a session token should be returned")
	assert.Equal(t, s.user.Email, resp.User.Email)

	claims, err := s.tokenService.ParseSessionToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, s.user.ID.String(), claims.UserID)
}

func TestResend(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()

	rec := s.do(t, http.MethodPost, "/resend", "", map[string]interface{}{"userId": s.user.ID})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "resend without enrollment should fail")

	_, err := s.twoFaService.Setup(ctx, s.user.ID, twofa.MethodEmail)
	require.NoError(t, err)

	rec = s.do(t, http.MethodPost, "/resend", "", map[string]interface{}{"userId": s.user.ID})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, s.notifier.SentNotifications, 2, "resend should deliver a fresh code")
}

func TestAdminReset(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()

	_, err := s.twoFaService.Setup(ctx, s.user.ID, twofa.MethodEmail)
	require.NoError(t, err)

	path := fmt.Sprintf("/reset/%s", s.user.ID)

	userToken, _, err := s.tokenService.IssueSessionToken(s.user.ID, string(s.user.Role))
	require.NoError(t, err)
	rec := s.do(t, http.MethodPatch, path, userToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code, "a plain user cannot reset 2FA")

	adminToken, _, err := s.tokenService.IssueSessionToken(s.admin.ID, string(s.admin.Role))
	require.NoError(t, err)
	rec = s.do(t, http.MethodPatch, path, adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPatch, path, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "resetting twice reports a missing record")
}
