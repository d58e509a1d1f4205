// Package local implements the identity provider boundary without a remote
// service: accounts and the active session live in the blob store.
package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	pkgcrypto "github.com/avelichko/storycircle/internal/crypto"
	"github.com/avelichko/storycircle/internal/errs"
	"github.com/avelichko/storycircle/internal/identity"
	"github.com/avelichko/storycircle/internal/storage"
)

// Blob keys owned by this provider.
const (
	usersKey   = "identity_users"
	sessionKey = "identity_session"
)

// account is a stored user record. Passwords are kept as Argon2id hashes.
type account struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	PwdHash     []byte `json:"pwdHash"`
	SaltAuth    []byte `json:"saltAuth"`
}

type sessionFile struct {
	Token string `json:"token"`
}

// Provider is a blob-store backed identity.Provider. Identity change events
// are delivered to subscribers in registration order on the caller's
// goroutine.
type Provider struct {
	mu       sync.Mutex
	blobs    storage.Store
	log      *zap.Logger
	signKey  []byte
	ttl      time.Duration
	handlers []identity.Handler
	current  *identity.ProviderUser
}

// New constructs a provider signing session tokens with signKey.
func New(blobs storage.Store, signKey []byte, ttl time.Duration, log *zap.Logger) *Provider {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &Provider{blobs: blobs, log: log, signKey: signKey, ttl: ttl}
}

// Subscribe registers a handler for identity change events.
func (p *Provider) Subscribe(h identity.Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers = append(p.handlers, h)
}

// emit delivers the event to every subscriber. Called with mu held.
func (p *Provider) emit(u *identity.ProviderUser) {
	p.current = u
	for _, h := range p.handlers {
		h(u)
	}
}

// Signup creates the account and signs the user in. Duplicate emails are
// rejected with errs.ErrAlreadyExists.
func (p *Provider) Signup(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return errors.New("empty email/password")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	accs, err := p.loadAccounts(ctx)
	if err != nil {
		return err
	}
	if _, exists := accs[email]; exists {
		return errs.ErrAlreadyExists
	}

	uid, err := uuid.NewV4()
	if err != nil {
		return err
	}
	salt, err := pkgcrypto.RandBytes(16)
	if err != nil {
		return err
	}

	acc := account{
		ID:       uid.String(),
		Email:    email,
		PwdHash:  pkgcrypto.HashPassword([]byte(password), salt),
		SaltAuth: salt,
	}
	accs[email] = acc
	if err := p.saveAccounts(ctx, accs); err != nil {
		return err
	}
	return p.signIn(ctx, acc)
}

// Login verifies credentials. Unknown users and wrong passwords both map to
// errs.ErrUnauthorized so account existence is not revealed.
func (p *Provider) Login(ctx context.Context, email, password string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	accs, err := p.loadAccounts(ctx)
	if err != nil {
		return err
	}
	acc, ok := accs[email]
	if !ok || !pkgcrypto.VerifyPassword([]byte(password), acc.SaltAuth, acc.PwdHash) {
		return errs.ErrUnauthorized
	}
	return p.signIn(ctx, acc)
}

// Logout removes the persisted session and emits a nil identity.
func (p *Provider) Logout(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.blobs.Remove(ctx, sessionKey); err != nil && !errors.Is(err, errs.ErrNotFound) {
		return fmt.Errorf("remove session: %w", err)
	}
	p.emit(nil)
	return nil
}

// Restore re-emits the identity from a persisted, still-valid session token.
// Any failure leaves the provider signed out.
func (p *Provider) Restore(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	b, err := p.blobs.Get(ctx, sessionKey)
	if err != nil {
		p.emit(nil)
		return
	}
	var sf sessionFile
	if err := json.Unmarshal(b, &sf); err != nil {
		p.log.Warn("parse stored session", zap.Error(err))
		p.emit(nil)
		return
	}

	var claims jwt.RegisteredClaims
	if _, err := jwt.ParseWithClaims(sf.Token, &claims, func(*jwt.Token) (any, error) {
		return p.signKey, nil
	}); err != nil {
		p.log.Warn("stored session invalid", zap.Error(err))
		p.emit(nil)
		return
	}

	accs, err := p.loadAccounts(ctx)
	if err != nil {
		p.log.Warn("load accounts", zap.Error(err))
		p.emit(nil)
		return
	}
	for _, acc := range accs {
		if acc.ID == claims.Subject {
			p.emit(&identity.ProviderUser{ID: acc.ID, Email: acc.Email, DisplayName: acc.DisplayName})
			return
		}
	}
	p.emit(nil)
}

// UpdateDisplayName stores the provider-side display name for the signed-in
// user.
func (p *Provider) UpdateDisplayName(ctx context.Context, name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil {
		return errs.ErrUnauthenticated
	}
	accs, err := p.loadAccounts(ctx)
	if err != nil {
		return err
	}
	acc, ok := accs[p.current.Email]
	if !ok {
		return errs.ErrNotFound
	}
	acc.DisplayName = name
	accs[p.current.Email] = acc
	if err := p.saveAccounts(ctx, accs); err != nil {
		return err
	}
	p.current.DisplayName = name
	return nil
}

// signIn issues and persists a session token, then emits the identity.
// Called with mu held.
func (p *Provider) signIn(ctx context.Context, acc account) error {
	tok, err := p.issueToken(acc.ID)
	if err != nil {
		return err
	}
	b, err := json.Marshal(sessionFile{Token: tok})
	if err != nil {
		return err
	}
	if err := p.blobs.Set(ctx, sessionKey, b); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	p.emit(&identity.ProviderUser{ID: acc.ID, Email: acc.Email, DisplayName: acc.DisplayName})
	return nil
}

// issueToken creates a signed HS256 JWT for the given subject.
func (p *Provider) issueToken(userID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(p.signKey)
}

// loadAccounts reads the account map keyed by email. A missing blob is an
// empty map; a malformed blob is an error that propagates to the caller.
func (p *Provider) loadAccounts(ctx context.Context) (map[string]account, error) {
	b, err := p.blobs.Get(ctx, usersKey)
	if errors.Is(err, errs.ErrNotFound) {
		return map[string]account{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	var accs map[string]account
	if err := json.Unmarshal(b, &accs); err != nil {
		return nil, fmt.Errorf("parse accounts: %w", err)
	}
	if accs == nil {
		accs = map[string]account{}
	}
	return accs, nil
}

func (p *Provider) saveAccounts(ctx context.Context, accs map[string]account) error {
	b, err := json.Marshal(accs)
	if err != nil {
		return err
	}
	return p.blobs.Set(ctx, usersKey, b)
}
