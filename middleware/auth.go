package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Dosada05/draft-league/models"
	"github.com/golang-jwt/jwt/v4"
)

// SessionCookieName - HttpOnly cookie с подписанным JWT.
const SessionCookieName = "app_session"

var ErrInvalidSession = errors.New("invalid session token")

// SessionManager выпускает и проверяет сессионные токены.
type SessionManager struct {
	secret []byte
	ttl    time.Duration
	secure bool
	admins map[string]bool
}

func NewSessionManager(secret string, ttl time.Duration, secure bool, adminUserIDs []string) *SessionManager {
	admins := make(map[string]bool, len(adminUserIDs))
	for _, id := range adminUserIDs {
		admins[id] = true
	}
	return &SessionManager{secret: []byte(secret), ttl: ttl, secure: secure, admins: admins}
}

// Token signs an HS256 token carrying user_id, name and exp.
func (m *SessionManager) Token(user *models.User, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		jwtClaimUserID: user.ID,
		jwtClaimName:   user.DisplayName,
		"exp":          now.Add(m.ttl).Unix(),
		"iat":          now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Issue sets the session cookie for user.
func (m *SessionManager) Issue(w http.ResponseWriter, user *models.User) error {
	now := time.Now()
	token, err := m.Token(user, now)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  now.Add(m.ttl),
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (m *SessionManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Parse validates the token and builds the session.
func (m *SessionManager) Parse(tokenString string) (*Session, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidSession
	}
	userID, _ := claims[jwtClaimUserID].(string)
	if userID == "" {
		return nil, fmt.Errorf("%w: missing '%s' claim", ErrInvalidSession, jwtClaimUserID)
	}
	name, _ := claims[jwtClaimName].(string)
	return &Session{UserID: userID, Name: name, Admin: m.admins[userID]}, nil
}

// LoadSession кладёт сессию в контекст, если cookie валиден. Просроченный или
// подделанный cookie удаляется, запрос продолжается анонимно.
func (m *SessionManager) LoadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}
		session, err := m.Parse(cookie.Value)
		if err != nil {
			m.Clear(w)
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
	})
}

// RequireAdmin пускает только пользователей из ADMIN_USER_IDS. Анонимных
// отправляет на страницу входа.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, ok := SessionFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		if !session.Admin {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
