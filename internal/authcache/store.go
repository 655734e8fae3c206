// Package authcache reads and refreshes the cached Azure credential used
// for Kusto requests. The cache is populated by a one-time offline login
// outside this process; this package never prompts interactively.
package authcache

import (
	"encoding/json"
	"time"

	"github.com/99designs/keyring"
)

// ServiceName identifies our namespace in the OS keychain/credential store.
const ServiceName = "mcp-kusto"

// keyCredential is the keyring item key holding the serialized credential.
const keyCredential = "kusto_credential"

// CachedCredential is the persisted token state for a principal.
type CachedCredential struct {
	Principal string    `json:"principal"`
	Token     string    `json:"token"`
	ExpiresOn time.Time `json:"expires_on"`
}

// ValidUntil reports whether the token remains valid past the given margin.
func (c CachedCredential) ValidUntil(margin time.Duration) bool {
	return c.Token != "" && time.Until(c.ExpiresOn) > margin
}

// Store persists the cached credential in the OS keyring.
type Store struct {
	ring keyring.Keyring
}

// OpenStore opens the default OS keyring for this service.
func OpenStore() (*Store, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: ServiceName,
	})
	if err != nil {
		return nil, err
	}
	return &Store{ring: ring}, nil
}

// NewStore wraps an existing keyring. Tests pass keyring.NewArrayKeyring.
func NewStore(ring keyring.Keyring) *Store {
	return &Store{ring: ring}
}

// Load reads the cached credential. A missing entry yields the zero value
// with no error; the caller treats that as an expired credential.
func (s *Store) Load() (CachedCredential, error) {
	var cred CachedCredential
	item, err := s.ring.Get(keyCredential)
	if err != nil {
		if err == keyring.ErrKeyNotFound {
			return cred, nil
		}
		return cred, err
	}
	if len(item.Data) == 0 {
		return cred, nil
	}
	if err := json.Unmarshal(item.Data, &cred); err != nil {
		return CachedCredential{}, err
	}
	return cred, nil
}

// Save writes the credential back to the keyring.
func (s *Store) Save(cred CachedCredential) error {
	data, err := json.Marshal(cred)
	if err != nil {
		return err
	}
	return s.ring.Set(keyring.Item{
		Key:   keyCredential,
		Label: "mcp-kusto cached credential",
		Data:  data,
	})
}
