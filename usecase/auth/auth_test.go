package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donelist/backend/domain"
)

type fakeUserRepo struct {
	byID    map[string]domain.User
	byEmail map[string]domain.User
	seq     int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    make(map[string]domain.User),
		byEmail: make(map[string]domain.User),
	}
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if _, ok := r.byEmail[user.Email]; ok {
		return nil, domain.ErrEmailTaken
	}
	r.seq++
	if user.ID == "" {
		user.ID = fmt.Sprintf("user-%03d", r.seq)
	}
	user.CreatedAt = time.Now()
	r.byID[user.ID] = *user
	r.byEmail[user.Email] = *user
	return user, nil
}

type fakeSessionRepo struct {
	sessions map[string]domain.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]domain.Session)}
}

func (r *fakeSessionRepo) Get(_ context.Context, id string) (*domain.Session, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &s, nil
}

func (r *fakeSessionRepo) Save(_ context.Context, session *domain.Session) error {
	r.sessions[session.ID] = *session
	return nil
}

func (r *fakeSessionRepo) Delete(_ context.Context, id string) error {
	delete(r.sessions, id)
	return nil
}

func (r *fakeSessionRepo) Extend(_ context.Context, id string, ttl time.Duration) (*domain.Session, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	s.ExpiresAt = time.Now().Add(ttl)
	r.sessions[id] = s
	return &s, nil
}

func newAuthForTests() (*UseCase, *fakeUserRepo, *fakeSessionRepo) {
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	uc := New(users, sessions, nil, Config{
		Secret:     "test-secret",
		Issuer:     "donelist-test",
		SessionTTL: time.Hour,
	})
	return uc, users, sessions
}

func TestSignUp_CreatesUserAndSession(t *testing.T) {
	uc, users, sessions := newAuthForTests()
	ctx := context.Background()

	creds, err := uc.SignUp(ctx, "Alice@Example.com", "correct horse")
	require.NoError(t, err)
	require.NotNil(t, creds.User)
	assert.Equal(t, "alice@example.com", creds.User.Email)
	assert.NotEmpty(t, creds.Token)
	assert.Len(t, sessions.sessions, 1)

	stored, err := users.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", stored.PasswordHash)
}

func TestSignUp_DuplicateEmailConflicts(t *testing.T) {
	uc, _, _ := newAuthForTests()
	ctx := context.Background()

	_, err := uc.SignUp(ctx, "alice@example.com", "correct horse")
	require.NoError(t, err)

	_, err = uc.SignUp(ctx, "alice@example.com", "another pass")
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestSignUp_RejectsBadInput(t *testing.T) {
	uc, _, _ := newAuthForTests()
	ctx := context.Background()

	_, err := uc.SignUp(ctx, "not-an-email", "correct horse")
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, err = uc.SignUp(ctx, "alice@example.com", "short")
	assert.ErrorIs(t, err, domain.ErrPasswordTooShort)
}

func TestSignIn_WrongPasswordAndUnknownEmailLookAlike(t *testing.T) {
	uc, _, _ := newAuthForTests()
	ctx := context.Background()

	_, err := uc.SignUp(ctx, "alice@example.com", "correct horse")
	require.NoError(t, err)

	_, err = uc.SignIn(ctx, "alice@example.com", "wrong horse")
	assert.ErrorIs(t, err, domain.ErrBadCredentials)

	_, err = uc.SignIn(ctx, "nobody@example.com", "correct horse")
	assert.ErrorIs(t, err, domain.ErrBadCredentials)
}

func TestSignIn_ThenResolve(t *testing.T) {
	uc, _, _ := newAuthForTests()
	ctx := context.Background()

	signedUp, err := uc.SignUp(ctx, "alice@example.com", "correct horse")
	require.NoError(t, err)

	creds, err := uc.SignIn(ctx, "alice@example.com", "correct horse")
	require.NoError(t, err)

	session, err := uc.Resolve(ctx, creds.Token)
	require.NoError(t, err)
	assert.Equal(t, signedUp.User.ID, session.UserID)
}

func TestResolve_ExtendsSessionExpiry(t *testing.T) {
	uc, _, sessions := newAuthForTests()
	ctx := context.Background()

	creds, err := uc.SignUp(ctx, "alice@example.com", "correct horse")
	require.NoError(t, err)

	// Age the stored session so the renewal is observable.
	for id, s := range sessions.sessions {
		s.ExpiresAt = time.Now().Add(time.Minute)
		sessions.sessions[id] = s
	}

	session, err := uc.Resolve(ctx, creds.Token)
	require.NoError(t, err)
	assert.Greater(t, session.ExpiresAt, time.Now().Add(30*time.Minute))
}

func TestResolve_RejectsGarbageAndForgedTokens(t *testing.T) {
	uc, _, _ := newAuthForTests()
	ctx := context.Background()

	_, err := uc.Resolve(ctx, "")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = uc.Resolve(ctx, "not.a.jwt")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	// Token signed with a different secret.
	other := New(newFakeUserRepo(), newFakeSessionRepo(), nil, Config{Secret: "other-secret", SessionTTL: time.Hour})
	creds, err := other.SignUp(ctx, "alice@example.com", "correct horse")
	require.NoError(t, err)

	_, err = uc.Resolve(ctx, creds.Token)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestResolve_RejectsForeignIssuer(t *testing.T) {
	uc, users, sessions := newAuthForTests()
	ctx := context.Background()

	// Same secret, same session store, different issuer: the signature and
	// the session both check out, yet the token was minted for another
	// deployment and must not resolve here.
	foreign := New(users, sessions, nil, Config{
		Secret:     "test-secret",
		Issuer:     "someone-else",
		SessionTTL: time.Hour,
	})
	creds, err := foreign.SignUp(ctx, "alice@example.com", "correct horse")
	require.NoError(t, err)

	_, err = uc.Resolve(ctx, creds.Token)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestResolve_RevokedSessionRejected(t *testing.T) {
	uc, _, _ := newAuthForTests()
	ctx := context.Background()

	creds, err := uc.SignUp(ctx, "alice@example.com", "correct horse")
	require.NoError(t, err)

	require.NoError(t, uc.SignOut(ctx, creds.Token))

	_, err = uc.Resolve(ctx, creds.Token)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}
