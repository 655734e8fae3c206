package authcache

import (
	"testing"
	"time"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRoundTrip(t *testing.T) {
	store := NewStore(keyring.NewArrayKeyring(nil))

	cred := CachedCredential{
		Principal: "user@example.com",
		Token:     "tok-123",
		ExpiresOn: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	require.NoError(t, store.Save(cred))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, cred.Principal, loaded.Principal)
	assert.Equal(t, cred.Token, loaded.Token)
	assert.True(t, cred.ExpiresOn.Equal(loaded.ExpiresOn))
}

func TestStoreLoadMissingYieldsZeroValue(t *testing.T) {
	store := NewStore(keyring.NewArrayKeyring(nil))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, loaded.Token)
	assert.False(t, loaded.ValidUntil(0))
}

func TestCachedCredentialValidUntil(t *testing.T) {
	tests := []struct {
		name   string
		cred   CachedCredential
		margin time.Duration
		want   bool
	}{
		{"fresh token", CachedCredential{Token: "t", ExpiresOn: time.Now().Add(time.Hour)}, 2 * time.Minute, true},
		{"expired token", CachedCredential{Token: "t", ExpiresOn: time.Now().Add(-time.Hour)}, 2 * time.Minute, false},
		{"inside margin", CachedCredential{Token: "t", ExpiresOn: time.Now().Add(time.Minute)}, 2 * time.Minute, false},
		{"empty token", CachedCredential{ExpiresOn: time.Now().Add(time.Hour)}, 2 * time.Minute, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cred.ValidUntil(tt.margin))
		})
	}
}
