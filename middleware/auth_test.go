package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Dosada05/draft-league/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionEcho(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := GetUserIDFromContext(r.Context())
		if err != nil {
			w.Write([]byte("anonymous"))
			return
		}
		if IsAdmin(r.Context()) {
			id += ":admin"
		}
		w.Write([]byte(id))
	})
}

func TestSessionManager_IssueAndLoad(t *testing.T) {
	m := NewSessionManager("secret", time.Hour, true, []string{"u-admin"})

	rec := httptest.NewRecorder()
	require.NoError(t, m.Issue(rec, &models.User{ID: "u-admin", DisplayName: "Oak"}))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	m.LoadSession(sessionEcho(t)).ServeHTTP(rec, req)
	assert.Equal(t, "u-admin:admin", rec.Body.String())

	session, err := m.Parse(cookies[0].Value)
	require.NoError(t, err)
	assert.Equal(t, "Oak", session.Name)
}

func TestSessionManager_RejectsBadTokens(t *testing.T) {
	m := NewSessionManager("secret", time.Hour, false, nil)
	other := NewSessionManager("other-secret", time.Hour, false, nil)
	expired := NewSessionManager("secret", -time.Hour, false, nil)

	forged, err := other.Token(&models.User{ID: "u1"}, time.Now())
	require.NoError(t, err)
	stale, err := expired.Token(&models.User{ID: "u1"}, time.Now())
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"user_id": "u1"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{"forged": forged, "expired": stale, "alg none": none, "garbage": "abc"} {
		t.Run(name, func(t *testing.T) {
			_, err := m.Parse(token)
			assert.ErrorIs(t, err, ErrInvalidSession)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
			rec := httptest.NewRecorder()
			m.LoadSession(sessionEcho(t)).ServeHTTP(rec, req)
			assert.Equal(t, "anonymous", rec.Body.String())
			require.Len(t, rec.Result().Cookies(), 1)
			assert.Equal(t, -1, rec.Result().Cookies()[0].MaxAge)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	handler := RequireAdmin(sessionEcho(t))

	tests := []struct {
		name     string
		session  *Session
		status   int
		location string
	}{
		{name: "anonymous", status: http.StatusSeeOther, location: "/login"},
		{name: "member", session: &Session{UserID: "u1"}, status: http.StatusForbidden},
		{name: "admin", session: &Session{UserID: "u2", Admin: true}, status: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/new-tournament", nil)
			if tt.session != nil {
				req = req.WithContext(WithSession(req.Context(), tt.session))
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.location, rec.Header().Get("Location"))
		})
	}
}
