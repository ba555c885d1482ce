// Package session owns the viewer's authentication state. A Provider starts
// unresolved, resolves exactly once from the stored credential, and is reset
// on logout. Components read it through Current and Subscribe only.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gerunddev/projecthub/internal/api"
	"github.com/gerunddev/projecthub/internal/db"
	"github.com/gerunddev/projecthub/internal/log"
)

// Session is the local view of the current viewer.
type Session struct {
	IsAuthenticated bool
	User            *api.User
	Loading         bool
}

// Authenticator is the remote side of authentication.
type Authenticator interface {
	Login(ctx context.Context, creds api.Credentials) (*api.AuthResult, error)
	Register(ctx context.Context, reg api.Registration) (*api.AuthResult, error)
	Me(ctx context.Context, token string) (*api.User, error)
}

// CredentialStore persists the session token between runs.
type CredentialStore interface {
	GetCredential(apiURL string) (*db.Credential, error)
	SaveCredential(cred *db.Credential) error
	DeleteCredential(apiURL string) error
}

// Provider holds the process-wide session.
type Provider struct {
	auth   Authenticator
	store  CredentialStore
	apiURL string

	mu       sync.Mutex
	session  Session
	token    string
	resolved bool
	subs     []chan Session
}

// NewProvider returns an unresolved provider for the given API server.
func NewProvider(auth Authenticator, store CredentialStore, apiURL string) *Provider {
	return &Provider{
		auth:    auth,
		store:   store,
		apiURL:  apiURL,
		session: Session{Loading: true},
	}
}

// Current returns a copy of the session.
func (p *Provider) Current() Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.copyLocked()
}

// Token returns the session token, or "" when signed out.
func (p *Provider) Token() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.token
}

// Subscribe returns a channel that receives the session after every change.
// Slow readers only ever see the latest value.
func (p *Provider) Subscribe() <-chan Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	ch := make(chan Session, 1)
	p.subs = append(p.subs, ch)
	return ch
}

// Resolve validates the stored credential. It runs at most once; later calls
// return the already resolved session. Any failure resolves to signed out.
func (p *Provider) Resolve(ctx context.Context) Session {
	p.mu.Lock()
	if p.resolved {
		s := p.copyLocked()
		p.mu.Unlock()
		return s
	}
	p.mu.Unlock()

	user, token := p.validateStored(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.resolved {
		// A login finished while we were validating; keep it.
		return p.copyLocked()
	}
	p.resolved = true
	if user != nil {
		p.setLocked(user, token)
	} else {
		p.clearLocked()
	}
	return p.copyLocked()
}

func (p *Provider) validateStored(ctx context.Context) (*api.User, string) {
	cred, err := p.store.GetCredential(p.apiURL)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ""
	}
	if err != nil {
		log.Warn("failed to read stored credential", "error", err)
		return nil, ""
	}

	user, err := p.auth.Me(ctx, cred.Token)
	if err != nil {
		log.Warn("stored session rejected", "error", err)
		if errors.Is(err, api.ErrUnauthorized) {
			if delErr := p.store.DeleteCredential(p.apiURL); delErr != nil {
				log.Warn("failed to delete stale credential", "error", delErr)
			}
		}
		return nil, ""
	}
	return user, cred.Token
}

// Login authenticates and persists the new session.
func (p *Provider) Login(ctx context.Context, creds api.Credentials) (Session, error) {
	res, err := p.auth.Login(ctx, creds)
	if err != nil {
		return p.Current(), fmt.Errorf("login failed: %w", err)
	}
	return p.establish(res)
}

// Register creates an account and persists the new session.
func (p *Provider) Register(ctx context.Context, reg api.Registration) (Session, error) {
	res, err := p.auth.Register(ctx, reg)
	if err != nil {
		return p.Current(), fmt.Errorf("registration failed: %w", err)
	}
	return p.establish(res)
}

func (p *Provider) establish(res *api.AuthResult) (Session, error) {
	cred := &db.Credential{
		APIURL: p.apiURL,
		Token:  res.Token,
		UserID: res.User.ID,
		Name:   res.User.Name,
		Email:  res.User.Email,
	}
	if err := p.store.SaveCredential(cred); err != nil {
		// The session is still valid for this run.
		log.Warn("failed to persist credential", "error", err)
	}

	user := res.User
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resolved = true
	p.setLocked(&user, res.Token)
	return p.copyLocked(), nil
}

// Logout forgets the stored credential and resets to signed out.
func (p *Provider) Logout() {
	if err := p.store.DeleteCredential(p.apiURL); err != nil {
		log.Warn("failed to delete credential", "error", err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resolved = true
	p.clearLocked()
}

func (p *Provider) setLocked(user *api.User, token string) {
	p.token = token
	p.session = Session{IsAuthenticated: true, User: user}
	p.notifyLocked()
}

func (p *Provider) clearLocked() {
	p.token = ""
	p.session = Session{}
	p.notifyLocked()
}

func (p *Provider) copyLocked() Session {
	s := p.session
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

func (p *Provider) notifyLocked() {
	s := p.copyLocked()
	for _, ch := range p.subs {
		select {
		case <-ch:
		default:
		}
		ch <- s
	}
}
