package directory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cx-tal-miterani/booking-service/internal/database"
	"github.com/cx-tal-miterani/booking-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDirectory(t *testing.T) *Directory {
	t.Helper()
	d := New(database.NewMemoryStore())
	_, err := d.Register(context.Background(), models.RegisterRequest{
		Email:    "cliente@example.com",
		Password: "cliente123",
		Name:     "Sample Client",
	})
	require.NoError(t, err)
	return d
}

func TestRegister(t *testing.T) {
	d := New(database.NewMemoryStore())
	fixed := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	d.now = func() time.Time { return fixed }

	user, err := d.Register(context.Background(), models.RegisterRequest{
		Email:    "new@example.com",
		Password: "secret1",
		Name:     "New User",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, models.RoleClient, user.Role)
	assert.Equal(t, fixed, user.CreatedAt)
	assert.NotEqual(t, "secret1", user.Password)

	found, err := d.FindByEmail(context.Background(), "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	byID, err := d.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "New User", byID.Name)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	d := setupDirectory(t)

	_, err := d.Register(context.Background(), models.RegisterRequest{
		Email:    "cliente@example.com",
		Password: "other123",
		Name:     "Impostor",
	})
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)

	users, err := d.load(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, "Sample Client", users[0].Name)
}

func TestAuthenticate(t *testing.T) {
	d := setupDirectory(t)

	tests := []struct {
		name     string
		email    string
		password string
		err      error
	}{
		{name: "valid credentials", email: "cliente@example.com", password: "cliente123"},
		{name: "wrong password", email: "cliente@example.com", password: "nope", err: ErrInvalidCredentials},
		{name: "unknown email", email: "ghost@example.com", password: "cliente123", err: ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := d.Authenticate(context.Background(), tt.email, tt.password)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				assert.Nil(t, user)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.email, user.Email)
		})
	}
}

func TestAuthenticate_SeededUsers(t *testing.T) {
	store := database.NewMemoryStore()
	require.NoError(t, database.Seed(context.Background(), store, time.Now()))
	d := New(store)

	admin, err := d.Authenticate(context.Background(), "admin@emirates.com", "admin123")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)
}

func TestPublic(t *testing.T) {
	created := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	pub := Public(models.User{
		ID:        "1",
		Email:     "a@b.c",
		Password:  "hash",
		Name:      "A",
		Role:      models.RoleAdmin,
		CreatedAt: created,
	})

	assert.Equal(t, models.PublicUser{ID: "1", Email: "a@b.c", Name: "A", Role: models.RoleAdmin, CreatedAt: created}, pub)
}

func TestRegister_ConcurrentSameEmailAcrossDirectories(t *testing.T) {
	store := database.NewMemoryStore()
	first, second := New(store), New(store)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, d := range []*Directory{first, second} {
		wg.Add(1)
		go func(i int, d *Directory) {
			defer wg.Done()
			_, errs[i] = d.Register(context.Background(), models.RegisterRequest{
				Email:    "race@example.com",
				Password: "secret1",
				Name:     "Racer",
			})
		}(i, d)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrEmailAlreadyExists)
		}
	}
	assert.Equal(t, 1, succeeded)

	users, err := database.LoadList[models.User](context.Background(), store, database.UsersKey)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
