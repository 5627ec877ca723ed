package directory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cx-tal-miterani/booking-service/internal/database"
	"github.com/cx-tal-miterani/booking-service/internal/models"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Directory holds registered users keyed by email
type Directory struct {
	store database.Store
	now   func() time.Time
}

func New(store database.Store) *Directory {
	return &Directory{store: store, now: time.Now}
}

func (d *Directory) load(ctx context.Context) ([]models.User, error) {
	users, err := database.LoadList[models.User](ctx, d.store, database.UsersKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	return users, nil
}

// FindByEmail returns the user registered under email, or ErrUserNotFound
func (d *Directory) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	users, err := d.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Email == email {
			return &users[i], nil
		}
	}
	return nil, ErrUserNotFound
}

// FindByID returns a user by id, or ErrUserNotFound
func (d *Directory) FindByID(ctx context.Context, id string) (*models.User, error) {
	users, err := d.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, ErrUserNotFound
}

// Register adds a new client. Self-registration never grants another role;
// administrators exist only through seeding. The directory is unchanged when
// the email is taken.
func (d *Directory) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		ID:        uuid.New().String(),
		Email:     req.Email,
		Password:  hash,
		Name:      req.Name,
		Role:      models.RoleClient,
		CreatedAt: d.now(),
	}

	err = database.UpdateList(ctx, d.store, database.UsersKey, func(users []models.User) ([]models.User, error) {
		for _, u := range users {
			if u.Email == req.Email {
				return nil, ErrEmailAlreadyExists
			}
		}
		return append(users, user), nil
	})
	if err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to save users: %w", err)
	}
	return &user, nil
}

// Authenticate returns the user whose email and password both match
func (d *Directory) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := d.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !CheckPasswordHash(password, user.Password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Public strips the password from a user
func Public(u models.User) models.PublicUser {
	var out models.PublicUser
	// copier only fails on mismatched kinds, which these types cannot have
	_ = copier.Copy(&out, &u)
	return out
}
