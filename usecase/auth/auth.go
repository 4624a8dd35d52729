package auth

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/donelist/backend/domain"
	"github.com/donelist/backend/repository"
)

const minPasswordLen = 8

type UseCase struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	logger   *zap.Logger

	secret     []byte
	issuer     string
	sessionTTL time.Duration
}

type Config struct {
	Secret     string
	Issuer     string
	SessionTTL time.Duration
}

func New(users repository.UserRepository, sessions repository.SessionRepository, logger *zap.Logger, cfg Config) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	return &UseCase{
		users:      users,
		sessions:   sessions,
		logger:     logger,
		secret:     []byte(cfg.Secret),
		issuer:     cfg.Issuer,
		sessionTTL: cfg.SessionTTL,
	}
}

// Credentials is what a successful sign-in hands back to the client.
type Credentials struct {
	Token     string       `json:"token"`
	User      *domain.User `json:"user"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// SignUp registers a new user and signs them in immediately.
func (uc *UseCase) SignUp(ctx context.Context, email, password string) (*Credentials, error) {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if len(password) < minPasswordLen {
		return nil, domain.ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user, err := uc.users.Create(ctx, &domain.User{
		Email:        email,
		PasswordHash: string(hash),
	})
	if err != nil {
		return nil, err
	}

	return uc.issueCredentials(ctx, user)
}

// SignIn verifies the password and issues a fresh session. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (uc *UseCase) SignIn(ctx context.Context, email, password string) (*Credentials, error) {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil, domain.ErrBadCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrBadCredentials
	}

	return uc.issueCredentials(ctx, user)
}

// Resolve validates a bearer token and returns the live session, extending
// its expiry as a side effect. Every task operation gates on this.
func (uc *UseCase) Resolve(ctx context.Context, token string) (*domain.Session, error) {
	sessionID, err := uc.parseToken(token)
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}

	session, err := uc.sessions.Extend(ctx, sessionID, uc.sessionTTL)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, err
	}
	if session.IsExpired(time.Now()) {
		_ = uc.sessions.Delete(ctx, sessionID)
		return nil, domain.ErrUnauthenticated
	}
	return session, nil
}

// SignOut revokes the session behind the token. Invalid tokens are ignored.
func (uc *UseCase) SignOut(ctx context.Context, token string) error {
	sessionID, err := uc.parseToken(token)
	if err != nil {
		return nil
	}
	return uc.sessions.Delete(ctx, sessionID)
}

// CurrentUser loads the user behind a resolved session.
func (uc *UseCase) CurrentUser(ctx context.Context, session *domain.Session) (*domain.User, error) {
	if session == nil {
		return nil, domain.ErrUnauthenticated
	}
	return uc.users.GetByID(ctx, session.UserID)
}

func (uc *UseCase) issueCredentials(ctx context.Context, user *domain.User) (*Credentials, error) {
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(uc.sessionTTL),
	}
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	token, err := uc.mintToken(session)
	if err != nil {
		return nil, err
	}

	return &Credentials{
		Token:     token,
		User:      user,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// mintToken wraps the session id in a signed JWT. The token is only an
// envelope: Redis remains the source of truth for validity and expiry.
func (uc *UseCase) mintToken(session *domain.Session) (string, error) {
	claims := jwt.MapClaims{
		"sid": session.ID,
		"sub": session.UserID,
		"iss": uc.issuer,
		"iat": session.CreatedAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(uc.secret)
}

func (uc *UseCase) parseToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrUnauthenticated
		}
		return uc.secret, nil
	})
	if err != nil || !token.Valid {
		return "", domain.ErrUnauthenticated
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", domain.ErrUnauthenticated
	}
	if !claims.VerifyIssuer(uc.issuer, uc.issuer != "") {
		return "", domain.ErrUnauthenticated
	}
	sessionID, ok := claims["sid"].(string)
	if !ok || sessionID == "" {
		return "", domain.ErrUnauthenticated
	}
	return sessionID, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return domain.ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || strings.ToLower(addr.Address) != email {
		return domain.ErrInvalidEmail
	}
	return nil
}
