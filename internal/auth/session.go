package auth

import (
	"context"
	"crypto/sha256"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"growthos/internal/config"

	"github.com/go-jose/go-jose/v4"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrNoSession means the request carried no session token
	ErrNoSession = stderrors.New("no session")
	// ErrInvalidSession means a token was present but could not be verified
	ErrInvalidSession = stderrors.New("invalid or expired session")
	// ErrSessionsDisabled means no signing secret is configured
	ErrSessionsDisabled = stderrors.New("session secret not configured")
)

// Session is the signed-in identity attached to a request
type Session struct {
	UserID      uuid.UUID
	Email       string
	Name        string
	GitHubToken string
}

// HasGitHub reports whether the session carries a GitHub access token
func (s *Session) HasGitHub() bool {
	return s != nil && s.GitHubToken != ""
}

// Claims is the JWT payload of a session token. GitHubToken holds a compact
// JWE sealed with a key derived from the signing secret.
type Claims struct {
	Email       string `json:"email"`
	Name        string `json:"name,omitempty"`
	GitHubToken string `json:"gh,omitempty"`
	jwt.RegisteredClaims
}

// Manager issues and verifies session tokens
type Manager struct {
	secret     []byte
	issuer     string
	cookieName string
	ttl        time.Duration
	now        func() time.Time
}

// NewManager creates a session manager. Without a secret every request is treated as signed out.
func NewManager(cfg config.AuthConfig) *Manager {
	return &Manager{
		secret:     []byte(cfg.JWTSecret),
		issuer:     cfg.Issuer,
		cookieName: cfg.CookieName,
		ttl:        cfg.SessionTTL,
		now:        time.Now,
	}
}

// Enabled reports whether a signing secret is configured
func (m *Manager) Enabled() bool {
	return len(m.secret) > 0
}

// CookieName returns the name of the session cookie
func (m *Manager) CookieName() string {
	return m.cookieName
}

// Issue signs a session token for s
func (m *Manager) Issue(s Session) (string, error) {
	if !m.Enabled() {
		return "", ErrSessionsDisabled
	}
	if s.UserID == uuid.Nil {
		return "", fmt.Errorf("session user id is required")
	}

	sealed, err := m.sealGitHubToken(s.GitHubToken)
	if err != nil {
		return "", err
	}

	now := m.now()
	claims := Claims{
		Email:       s.Email,
		Name:        s.Name,
		GitHubToken: sealed,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.UserID.String(),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Parse verifies a session token
func (m *Manager) Parse(tokenString string) (*Session, error) {
	if !m.Enabled() {
		return nil, ErrSessionsDisabled
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidSession
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user id in token", ErrInvalidSession)
	}
	githubToken, err := m.openGitHubToken(claims.GitHubToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	return &Session{
		UserID:      userID,
		Email:       claims.Email,
		Name:        claims.Name,
		GitHubToken: githubToken,
	}, nil
}

func (m *Manager) encryptionKey() []byte {
	key := sha256.Sum256(append([]byte("growthos-github-token:"), m.secret...))
	return key[:]
}

func (m *Manager) sealGitHubToken(token string) (string, error) {
	if token == "" {
		return "", nil
	}
	encrypter, err := jose.NewEncrypter(jose.A256GCM, jose.Recipient{Algorithm: jose.DIRECT, Key: m.encryptionKey()}, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create token encrypter: %w", err)
	}
	object, err := encrypter.Encrypt([]byte(token))
	if err != nil {
		return "", fmt.Errorf("failed to seal GitHub token: %w", err)
	}
	return object.CompactSerialize()
}

func (m *Manager) openGitHubToken(sealed string) (string, error) {
	if sealed == "" {
		return "", nil
	}
	object, err := jose.ParseEncryptedCompact(sealed, []jose.KeyAlgorithm{jose.DIRECT}, []jose.ContentEncryption{jose.A256GCM})
	if err != nil {
		return "", fmt.Errorf("malformed GitHub token: %w", err)
	}
	plain, err := object.Decrypt(m.encryptionKey())
	if err != nil {
		return "", fmt.Errorf("failed to open GitHub token: %w", err)
	}
	return string(plain), nil
}

// FromRequest reads the session from the Authorization bearer header or the session cookie
func (m *Manager) FromRequest(r *http.Request) (*Session, error) {
	token := bearerToken(r)
	if token == "" && m.cookieName != "" {
		if cookie, err := r.Cookie(m.cookieName); err == nil {
			token = cookie.Value
		}
	}
	if token == "" {
		return nil, ErrNoSession
	}
	if !m.Enabled() {
		return nil, ErrNoSession
	}
	return m.Parse(token)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

type sessionKey struct{}

// WithSession returns a context carrying s
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// FromContext returns the session attached by Middleware, if any
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*Session)
	return s, ok && s != nil
}

// Middleware attaches a verified session to the request context when one is present.
// It never rejects requests; handlers decide whether a session is required.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s, err := m.FromRequest(r); err == nil {
			r = r.WithContext(WithSession(r.Context(), s))
		}
		next.ServeHTTP(w, r)
	})
}
