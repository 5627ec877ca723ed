package auth

import (
	"testing"
	"time"

	"github.com/cx-tal-miterani/booking-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokens_IssueAndParse(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)
	user := models.PublicUser{
		ID:        "2",
		Email:     "cliente@example.com",
		Name:      "Sample Client",
		Role:      models.RoleClient,
		CreatedAt: time.Date(2029, 12, 24, 10, 30, 0, 0, time.UTC),
	}

	signed, err := tokens.Issue(user)
	require.NoError(t, err)

	claims, err := tokens.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, user, claims.User())
	assert.False(t, claims.User().CreatedAt.IsZero())
}

func TestTokens_Rejects(t *testing.T) {
	issued := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	tokens := NewTokens("test-secret", time.Hour)
	tokens.now = func() time.Time { return issued }

	signed, err := tokens.Issue(models.PublicUser{ID: "1", Role: models.RoleAdmin})
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		later := NewTokens("test-secret", time.Hour)
		later.now = func() time.Time { return issued.Add(2 * time.Hour) }
		_, err := later.Parse(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokens("other-secret", time.Hour)
		other.now = tokens.now
		_, err := other.Parse(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := tokens.Parse("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
