package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Run("creates active user with hashed password", func(t *testing.T) {
		u, err := NewUser("  Jossie ", "jossie@example.com", "s3cretpass")
		require.NoError(t, err)
		assert.Equal(t, "jossie", u.Username)
		assert.True(t, u.IsActive)
		assert.False(t, u.IsSuperuser)
		assert.NotEqual(t, "s3cretpass", u.PasswordHash)
		assert.True(t, u.VerifyPassword("s3cretpass"))
		assert.False(t, u.VerifyPassword("wrong"))

		events := u.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeUserRegistered, events[0].EventType())
	})

	t.Run("validates input", func(t *testing.T) {
		_, err := NewUser("ab", "a@b.co", "password1")
		assert.Error(t, err)

		_, err = NewUser("valid", "not-an-email", "password1")
		assert.Error(t, err)

		_, err = NewUser("valid", "a@b.co", "short")
		assert.Error(t, err)

		_, err = NewUser("bad name", "a@b.co", "password1")
		assert.Error(t, err)
	})
}

func TestNewSuperuser(t *testing.T) {
	u, err := NewSuperuser("admin", "admin@example.com", "adminpass1")
	require.NoError(t, err)
	assert.True(t, u.IsAdmin())

	u.Deactivate()
	assert.False(t, u.IsAdmin())
}

func TestUser_RecordLogin(t *testing.T) {
	u, err := NewUser("shopper", "s@example.com", "password1")
	require.NoError(t, err)
	assert.Nil(t, u.LastLoginAt)

	u.RecordLogin("10.0.0.1")
	require.NotNil(t, u.LastLoginAt)
	assert.Equal(t, "10.0.0.1", u.LastLoginIP)
}

func TestUser_FullName(t *testing.T) {
	u := &User{}
	u.SetName("Jane", "Wanjiku")
	assert.Equal(t, "Jane Wanjiku", u.FullName())

	u.SetName("", "")
	assert.Equal(t, "", u.FullName())
}
