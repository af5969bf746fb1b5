package identity

import (
	"errors"
	"sync"

	"github.com/golang/glog"
	"github.com/google/uuid"

	"github.com/idilsaglam/todosync/internal/store"
)

// storageKey is the fixed key the installation identity lives under.
const storageKey = "installation_id"

// Provider hands out the stable per-installation identity that scopes
// every remote call to one anonymous user. The first call generates and
// persists a UUID; every later call returns the same value. Safe for
// concurrent use.
type Provider struct {
	mu       sync.Mutex
	store    store.Store
	cached   string
	volatile bool
}

func NewProvider(s store.Store) *Provider { return &Provider{store: s} }

// Identity returns the installation identity, creating it on first use.
// A persisted non-empty value is never regenerated. If the store is
// unusable the identity is minted in-memory only; it still works for
// this process, but the next run becomes a fresh anonymous user.
func (p *Provider) Identity() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cached != "" {
		return p.cached
	}
	v, err := p.store.Get(storageKey)
	if err == nil && v != "" {
		p.cached = v
		return v
	}
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		glog.Warningf("identity: read state: %v", err)
	}
	id := uuid.NewString()
	if err := p.store.Set(storageKey, id); err != nil {
		glog.Warningf("identity: persist state: %v (identity is volatile for this run)", err)
		p.volatile = true
	}
	p.cached = id
	glog.V(1).Infof("identity: created %s", id)
	return id
}

// Volatile reports whether the current identity could not be persisted.
func (p *Provider) Volatile() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volatile
}

// Reset discards the persisted identity. The next Identity call mints a
// new one, which the server treats as a brand new anonymous user with no
// visible records.
func (p *Provider) Reset() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cached = ""
	p.volatile = false
	return p.store.Delete(storageKey)
}
