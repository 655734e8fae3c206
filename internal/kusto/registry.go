package kusto

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"mcp-kusto/internal/authcache"
	"mcp-kusto/internal/config"
	"mcp-kusto/internal/logging"
)

// handleExpiryMargin is how long before token expiry a handle is
// considered stale and rebuilt with a fresh credential.
const handleExpiryMargin = 2 * time.Minute

// TokenProvider serves valid bearer tokens for cluster access.
// Implemented by authcache.Accessor; tests substitute fakes.
type TokenProvider interface {
	Token(ctx context.Context) (authcache.CachedCredential, error)
}

// Handle is one live, authenticated connection to a cluster. The
// registry is its sole owner and mutator.
type Handle struct {
	Cluster   string
	Database  string
	CreatedAt time.Time

	client      Client
	tokenExpiry time.Time

	mu       sync.Mutex
	lastUsed time.Time
}

// Client returns the underlying authenticated client.
func (h *Handle) Client() Client { return h.client }

// LastUsed returns when the handle last served a request.
func (h *Handle) LastUsed() time.Time {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastUsed
}

func (h *Handle) touch() {
	h.mu.Lock()
	h.lastUsed = time.Now()
	h.mu.Unlock()
}

// valid reports whether the handle's credential is still usable.
// Checked lazily on access, never by a background timer.
func (h *Handle) valid() bool {
	return time.Until(h.tokenExpiry) > handleExpiryMargin
}

// Registry maps logical cluster names to live connection handles,
// constructing each lazily on first use. Construction for a given
// cluster name is mutually exclusive across concurrent callers via
// singleflight; different cluster names build independently.
type Registry struct {
	cfg     *config.Config
	creds   TokenProvider
	factory ClientFactory
	logger  *slog.Logger

	mu      sync.RWMutex
	handles map[string]*Handle
	group   singleflight.Group
}

// NewRegistry builds a Registry over the given configuration, credential
// provider and client factory.
func NewRegistry(cfg *config.Config, creds TokenProvider, factory ClientFactory, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		cfg:     cfg,
		creds:   creds,
		factory: factory,
		logger:  logger,
		handles: make(map[string]*Handle),
	}
}

// Get returns the live handle for the named cluster, constructing it on
// first use or after credential expiry. Unknown names fail with
// ErrUnknownCluster; credential and transport failures pass through
// untouched so the caller can classify them.
func (r *Registry) Get(ctx context.Context, cluster string) (*Handle, error) {
	r.mu.RLock()
	h := r.handles[cluster]
	r.mu.RUnlock()
	if h != nil && h.valid() {
		h.touch()
		return h, nil
	}

	v, err, _ := r.group.Do(cluster, func() (any, error) {
		// Re-check: a concurrent flight may have already rebuilt it.
		r.mu.RLock()
		existing := r.handles[cluster]
		r.mu.RUnlock()
		if existing != nil && existing.valid() {
			return existing, nil
		}
		return r.build(ctx, cluster)
	})
	if err != nil {
		return nil, err
	}
	handle := v.(*Handle)
	handle.touch()
	return handle, nil
}

// build constructs and caches a new handle, replacing any prior entry
// for the cluster name atomically from the caller's perspective.
func (r *Registry) build(ctx context.Context, cluster string) (*Handle, error) {
	cc, ok := r.cfg.Clusters[cluster]
	if !ok {
		return nil, fmt.Errorf("%w: %q (configured: %s)", ErrUnknownCluster, cluster,
			strings.Join(r.cfg.ClusterNames(), ", "))
	}

	cred, err := r.creds.Token(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	handle := &Handle{
		Cluster:     cluster,
		Database:    cc.Database,
		CreatedAt:   now,
		client:      r.factory(cc.URL, cred.Token),
		tokenExpiry: cred.ExpiresOn,
		lastUsed:    now,
	}

	r.mu.Lock()
	r.handles[cluster] = handle
	r.mu.Unlock()

	r.logger.Info("cluster connection established",
		logging.Cluster(cluster),
		logging.Host(cc.URL),
		slog.Time("token_expiry", cred.ExpiresOn))
	return handle, nil
}

// Invalidate drops the handle for a cluster after an unrecoverable auth
// failure. The next request reconstructs it lazily.
func (r *Registry) Invalidate(cluster string) {
	r.mu.Lock()
	_, existed := r.handles[cluster]
	delete(r.handles, cluster)
	r.mu.Unlock()
	if existed {
		r.logger.Info("cluster connection invalidated", logging.Cluster(cluster))
	}
}

// Len returns the number of live handles.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handles)
}

// Close drops all handles at process shutdown.
func (r *Registry) Close() {
	r.mu.Lock()
	r.handles = make(map[string]*Handle)
	r.mu.Unlock()
}
