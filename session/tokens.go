package session

import (
	"context"
	"sync"

	"flightcast/services"
)

// TokenProvider fetches credentials once and keeps them for the rest of the
// session. Failed fetches are not remembered.
type TokenProvider struct {
	source services.TokenSource

	mu    sync.Mutex
	creds services.Credentials
	ok    bool
}

func NewTokenProvider(source services.TokenSource) *TokenProvider {
	return &TokenProvider{source: source}
}

func (p *TokenProvider) Credentials(ctx context.Context) (services.Credentials, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ok {
		return p.creds, nil
	}
	creds, err := p.source.Credentials(ctx)
	if err != nil {
		return services.Credentials{}, err
	}
	p.creds, p.ok = creds, true
	return creds, nil
}

// Invalidate drops the remembered credentials so the next call fetches again.
func (p *TokenProvider) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.creds, p.ok = services.Credentials{}, false
}
