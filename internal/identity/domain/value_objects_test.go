package domain_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gzeu/tarot-reading-app/internal/identity/domain"
)

func TestNewEmail(t *testing.T) {
	t.Run("normalizes case and whitespace", func(t *testing.T) {
		email, err := domain.NewEmail("  Seeker@Example.COM ")
		require.NoError(t, err)
		assert.Equal(t, "seeker@example.com", email.String())
	})

	t.Run("rejects invalid addresses", func(t *testing.T) {
		for _, input := range []string{"", "   ", "plainaddress", "@example.com", "user@", "user@host"} {
			_, err := domain.NewEmail(input)
			assert.ErrorIs(t, err, domain.ErrInvalidEmail, "input %q", input)
		}
	})

	t.Run("exposes the domain part", func(t *testing.T) {
		email, err := domain.NewEmail("seeker@example.com")
		require.NoError(t, err)
		assert.Equal(t, "example.com", email.Domain())
	})
}

func TestNewName(t *testing.T) {
	t.Run("trims whitespace", func(t *testing.T) {
		name, err := domain.NewName("  Seeker  ")
		require.NoError(t, err)
		assert.Equal(t, "Seeker", name.String())
	})

	t.Run("rejects empty names", func(t *testing.T) {
		_, err := domain.NewName("   ")
		assert.ErrorIs(t, err, domain.ErrEmptyName)
	})

	t.Run("rejects oversize names", func(t *testing.T) {
		_, err := domain.NewName(strings.Repeat("a", domain.MaxNameLength+1))
		assert.ErrorIs(t, err, domain.ErrNameTooLong)
	})
}
