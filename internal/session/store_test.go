package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKeys = Keys{
	Token:       "certipro_token",
	User:        "certipro_user",
	AccountType: "certipro_account_type",
}

func TestStoreTokenLifecycle(t *testing.T) {
	store := NewStore(NewMemoryStorage(), testKeys)

	assert.False(t, store.IsLoggedIn())
	assert.Equal(t, "", store.Token())

	require.NoError(t, store.SetToken("abc"))
	assert.True(t, store.IsLoggedIn())
	assert.Equal(t, "abc", store.Token())

	require.NoError(t, store.SetToken(""))
	assert.False(t, store.IsLoggedIn(), "an empty token is not a session")
}

func TestStoreClearRemovesEverything(t *testing.T) {
	storage := NewMemoryStorage()
	store := NewStore(storage, testKeys)

	require.NoError(t, store.SetToken("abc"))
	require.NoError(t, store.SetUser(map[string]any{"id": 1}))
	require.NoError(t, store.SetAccountType(AccountOrganization))
	require.NoError(t, storage.Set("unrelated", "kept"))

	require.NoError(t, store.Clear())

	assert.False(t, store.IsLoggedIn())
	_, ok := store.User()
	assert.False(t, ok)
	assert.Equal(t, AccountType(""), store.AccountType())

	v, ok := storage.Get("unrelated")
	assert.True(t, ok)
	assert.Equal(t, "kept", v)
}

func TestStoreUserRoundTrip(t *testing.T) {
	store := NewStore(NewMemoryStorage(), testKeys)

	require.NoError(t, store.SetUser(map[string]any{"id": 1, "name": "A"}))

	user, ok := store.User()
	require.True(t, ok)
	assert.Equal(t, map[string]any{"id": float64(1), "name": "A"}, user)

	var typed struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, store.DecodeUser(&typed))
	assert.Equal(t, 1, typed.ID)
	assert.Equal(t, "A", typed.Name)
}

func TestStoreCorruptUserIsAbsent(t *testing.T) {
	storage := NewMemoryStorage()
	store := NewStore(storage, testKeys)
	require.NoError(t, storage.Set(testKeys.User, "{broken"))

	_, ok := store.User()
	assert.False(t, ok)
	assert.Error(t, store.DecodeUser(&map[string]any{}))
}

func TestStoreUnencodableUser(t *testing.T) {
	store := NewStore(NewMemoryStorage(), testKeys)
	assert.Error(t, store.SetUser(map[string]any{"ch": make(chan int)}))
}

func TestAccountType(t *testing.T) {
	store := NewStore(NewMemoryStorage(), testKeys)
	require.NoError(t, store.SetAccountType(AccountUser))
	assert.Equal(t, AccountUser, store.AccountType())

	assert.True(t, AccountUser.Valid())
	assert.True(t, AccountOrganization.Valid())
	assert.False(t, AccountType("admin").Valid())
	assert.False(t, AccountType("").Valid())
}
