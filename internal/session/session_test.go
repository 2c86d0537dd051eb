package session

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapabilitySet(t *testing.T) {
	set := NewCapabilitySet(ViewMembers, ViewEvents)
	assert.True(t, set.Has(ViewMembers))
	assert.True(t, set.Has(ViewEvents))
	assert.False(t, set.Has(ViewFinance))
	assert.False(t, set.Has(Capability(99)))
	assert.Equal(t, []Capability{ViewMembers, ViewEvents}, set.List())
	assert.Equal(t, set, set.With(Capability(-1)))
}

func TestParseCapability(t *testing.T) {
	for _, c := range AllCapabilities() {
		got, err := ParseCapability(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
	_, err := ParseCapability("members:delete")
	assert.ErrorIs(t, err, ErrUnknownCapability)
}

func TestSessionCan(t *testing.T) {
	s := &Session{Roles: []string{RoleTreasurer}, Capabilities: NewCapabilitySet(ViewEvents)}
	assert.True(t, s.Can(ViewFinance), "granted by role")
	assert.True(t, s.Can(ViewEvents), "granted directly")
	assert.False(t, s.Can(ManageCommunications))

	var none *Session
	assert.False(t, none.Can(ViewMembers))

	for _, c := range AllCapabilities() {
		assert.True(t, Guest().Can(c))
	}
}

func TestSaveLoadLogout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.yaml")

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrNoSession)
	guest, err := LoadOrGuest(path)
	require.NoError(t, err)
	assert.Equal(t, "guest", guest.User)

	s := &Session{User: "pastor.ruth", Roles: []string{RolePastor}, Capabilities: NewCapabilitySet(ViewFinance)}
	require.NoError(t, s.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "pastor.ruth", loaded.User)
	assert.Equal(t, s.Capabilities, loaded.Capabilities)
	assert.Equal(t, DefaultCurrency, loaded.Currency)

	require.NoError(t, Logout(path))
	require.NoError(t, Logout(path))
	_, err = Load(path)
	assert.ErrorIs(t, err, ErrNoSession)
}
