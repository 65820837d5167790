package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gameshelf/internal/domain/user"
)

// UserStoreForRegister defines the store interface needed by RegisterUser.
type UserStoreForRegister interface {
	Save(ctx context.Context, u user.User) error
	UsernameExists(ctx context.Context, username, excludeID string) (bool, error)
	EmailExists(ctx context.Context, email, excludeID string) (bool, error)
	List(ctx context.Context) ([]user.User, error)
}

// RegisterUserInput carries input for the orchestrator.
type RegisterUserInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      string
}

// RegisterUserDeps holds dependencies for RegisterUser.
type RegisterUserDeps struct {
	UserStore  UserStoreForRegister
	GenerateID func() string
	Now        func() time.Time
}

// ExecuteRegisterUser coordinates user registration.
// PRE: input fields populated, Role defaults to basic_user when empty
// POST: user created with hashed password
// INVARIANT: username and normalized email are unique
func ExecuteRegisterUser(ctx context.Context, input RegisterUserInput, deps RegisterUserDeps) (user.User, error) {
	if err := user.ValidateUsername(input.Username); err != nil {
		return user.User{}, err
	}
	if err := user.ValidateEmail(input.Email); err != nil {
		return user.User{}, err
	}

	taken, err := deps.UserStore.UsernameExists(ctx, input.Username, "")
	if err != nil {
		return user.User{}, err
	}
	if taken {
		return user.User{}, user.ErrUsernameTaken
	}
	taken, err = deps.UserStore.EmailExists(ctx, input.Email, "")
	if err != nil {
		return user.User{}, err
	}
	if taken {
		return user.User{}, user.ErrEmailTaken
	}

	role := input.Role
	if role == "" {
		role = user.RoleBasicUser
	}

	u := user.User{
		ID:               deps.GenerateID(),
		Username:         input.Username,
		Email:            user.NormalizeEmail(input.Email),
		FirstName:        input.FirstName,
		LastName:         input.LastName,
		RegistrationDate: deps.Now(),
		Role:             role,
	}

	if err := u.Validate(); err != nil {
		return user.User{}, err
	}
	if err := u.SetPassword(input.Password); err != nil {
		return user.User{}, err
	}
	if err := deps.UserStore.Save(ctx, u); err != nil {
		return user.User{}, err
	}

	slog.Info("auth_event", "event", "user_registered", "username", u.Username, "role", u.Role)

	return u, nil
}

// ExecuteSeedAdmin creates a default admin user if no users exist.
// PRE: database is initialized
// POST: admin user created when the user table is empty
func ExecuteSeedAdmin(ctx context.Context, deps RegisterUserDeps, username, email, password string) error {
	users, err := deps.UserStore.List(ctx)
	if err != nil {
		return err
	}
	if len(users) > 0 {
		return nil
	}

	_, err = ExecuteRegisterUser(ctx, RegisterUserInput{
		Username: username,
		Email:    email,
		Password: password,
		Role:     user.RoleAdmin,
	}, deps)
	if err != nil {
		if errors.Is(err, user.ErrUsernameTaken) || errors.Is(err, user.ErrEmailTaken) {
			return nil
		}
		return err
	}

	slog.Info("auth_event", "event", "admin_seeded", "username", username)
	return nil
}
