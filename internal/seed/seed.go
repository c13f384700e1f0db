package seed

import (
	"context"
	"fmt"
	"strings"

	"github.com/aaeducates/backend/internal/app/models"
	"github.com/aaeducates/backend/internal/app/repositories"
	"github.com/aaeducates/backend/internal/pkg/auth"
	"github.com/rs/zerolog"
)

// AdminAccount is the identity created on first start
type AdminAccount struct {
	Email    string
	Password string
}

// CreateDefaultAdmin makes sure an ADMIN identity with an AdminProfile exists.
// Existing rows are left untouched, so it is safe to run on every start.
func CreateDefaultAdmin(ctx context.Context, stores *repositories.Stores, account AdminAccount, lgr zerolog.Logger) error {
	email := strings.ToLower(strings.TrimSpace(account.Email))
	if email == "" || account.Password == "" {
		lgr.Info().Msg("No seed admin credentials configured, skipping")
		return nil
	}

	user, err := stores.Users.FindOne(ctx, repositories.Where("email", email))
	switch {
	case err == nil:
		lgr.Debug().Int64("userID", user.ID).Msg("Seed admin already exists")
	case repositories.IsNotFound(err):
		user, err = createAdminUser(ctx, stores, email, account.Password)
		if err != nil {
			return err
		}
		lgr.Info().Int64("userID", user.ID).Str("email", email).Msg("Seed admin created")
	default:
		return fmt.Errorf("failed to look up seed admin: %w", err)
	}

	if _, err := stores.Admins.FindOne(ctx, repositories.Where("user_id", user.ID)); err == nil {
		return nil
	} else if !repositories.IsNotFound(err) {
		return fmt.Errorf("failed to look up admin profile: %w", err)
	}

	if err := stores.Admins.Create(ctx, &models.AdminProfile{UserID: user.ID}); err != nil {
		return fmt.Errorf("failed to create admin profile: %w", err)
	}
	lgr.Info().Int64("userID", user.ID).Msg("Seed admin profile created")
	return nil
}

func createAdminUser(ctx context.Context, stores *repositories.Stores, email, password string) (*models.User, error) {
	hashed, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing seed admin password: %w", err)
	}

	username := strings.SplitN(email, "@", 2)[0]
	user := &models.User{
		Email:       email,
		Username:    &username,
		Password:    hashed,
		FirstName:   "Platform",
		LastName:    "Admin",
		Role:        models.RoleAdmin,
		IsStaff:     true,
		IsSuperuser: true,
		IsActive:    true,
		IsVerified:  true,
	}
	if err := stores.Users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create seed admin: %w", err)
	}
	return user, nil
}
