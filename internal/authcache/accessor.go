package authcache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
)

// KustoScope is the AAD scope requested for Kusto data-plane access.
const KustoScope = "https://kusto.kusto.windows.net/.default"

// refreshMargin is how long before expiry a token is treated as stale.
// Refreshing early avoids handing out a token that expires mid-query.
const refreshMargin = 2 * time.Minute

// ErrCredentialExpired indicates the cached credential has expired and no
// silent refresh was possible. Fatal for the current request only; the
// remediation is to re-run the offline login.
var ErrCredentialExpired = errors.New("cached credential expired and silent refresh failed: re-run the offline login (e.g. `az login`) and retry")

// Accessor serves valid tokens from the persisted cache, refreshing
// silently through a non-interactive credential chain when expired.
type Accessor struct {
	store      *Store
	credential azcore.TokenCredential
	logger     *slog.Logger
}

// NewAccessor builds an Accessor over the given store using the default
// non-interactive refresh chain (Azure CLI, environment, managed identity).
func NewAccessor(store *Store, logger *slog.Logger) (*Accessor, error) {
	cli, err := azidentity.NewAzureCLICredential(nil)
	if err != nil {
		return nil, fmt.Errorf("initializing azure cli credential: %w", err)
	}
	var sources []azcore.TokenCredential
	sources = append(sources, cli)
	if env, err := azidentity.NewEnvironmentCredential(nil); err == nil {
		sources = append(sources, env)
	}
	if mi, err := azidentity.NewManagedIdentityCredential(nil); err == nil {
		sources = append(sources, mi)
	}
	chain, err := azidentity.NewChainedTokenCredential(sources, nil)
	if err != nil {
		return nil, fmt.Errorf("building credential chain: %w", err)
	}
	return NewAccessorWithCredential(store, chain, logger), nil
}

// NewAccessorWithCredential builds an Accessor with an explicit refresh
// credential. Tests inject a fake azcore.TokenCredential here.
func NewAccessorWithCredential(store *Store, credential azcore.TokenCredential, logger *slog.Logger) *Accessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Accessor{store: store, credential: credential, logger: logger}
}

// Token returns a valid bearer token and its expiry. The persisted cache
// is consulted first; on expiry exactly one silent refresh is attempted
// and persisted. Failure to refresh yields ErrCredentialExpired.
func (a *Accessor) Token(ctx context.Context) (CachedCredential, error) {
	cred, err := a.store.Load()
	if err != nil {
		return CachedCredential{}, fmt.Errorf("reading credential cache: %w", err)
	}
	if cred.ValidUntil(refreshMargin) {
		return cred, nil
	}

	a.logger.Debug("cached credential stale, attempting silent refresh",
		slog.String("principal", cred.Principal))

	tok, err := a.credential.GetToken(ctx, policy.TokenRequestOptions{
		Scopes: []string{KustoScope},
	})
	if err != nil {
		a.logger.Warn("silent credential refresh failed", slog.String("error", err.Error()))
		return CachedCredential{}, fmt.Errorf("%w: %v", ErrCredentialExpired, err)
	}

	refreshed := CachedCredential{
		Principal: cred.Principal,
		Token:     tok.Token,
		ExpiresOn: tok.ExpiresOn,
	}
	if err := a.store.Save(refreshed); err != nil {
		// The refreshed token is still usable for this request.
		a.logger.Warn("persisting refreshed credential failed", slog.String("error", err.Error()))
	}
	a.logger.Info("credential refreshed",
		slog.Time("expires_on", refreshed.ExpiresOn))
	return refreshed, nil
}
