package auth

import (
	"context"
	"errors"
	"log/slog"

	"movienight/proj/internal/domain/models"
	"movienight/proj/internal/storage"
)

const TokenType = "bearer"

type MailProvider interface {
	Send(recipient string, tmplName string, tmplData any) error
}

type TaskExecutor interface {
	Add(task func()) bool
}

type UsersStorage interface {
	Insert(ctx context.Context, username, email string, passwordHash []byte) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

type AuthService struct {
	log          *slog.Logger
	users        UsersStorage
	tokens       *TokenService
	bcryptCost   int
	mailer       MailProvider
	taskExecutor TaskExecutor
}

// New wires the credential store and token service. mailer and taskExecutor are optional,
// without them no welcome email is sent.
func New(
	log *slog.Logger,
	users UsersStorage,
	tokens *TokenService,
	bcryptCost int,
	mailer MailProvider,
	taskExecutor TaskExecutor,
) *AuthService {
	return &AuthService{
		log:          log,
		users:        users,
		tokens:       tokens,
		bcryptCost:   bcryptCost,
		mailer:       mailer,
		taskExecutor: taskExecutor,
	}
}

func (a *AuthService) sendWelcomeEmail(user *models.User) {
	log := a.log.With("user_id", user.ID)
	log.Info("sending welcome email")
	err := a.mailer.Send(
		user.Email,
		"user_welcome.html",
		map[string]any{
			"username": user.Username,
			"userID":   user.ID,
		})
	if err != nil {
		log.Error("Error sending welcome email", "errMsg", err.Error())
	}
}

func (a *AuthService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	const op = "auth.AuthService.Register"
	log := a.log.With("op", op, "username", username)
	hash, err := HashPassword(password, a.bcryptCost)
	if err != nil {
		if errors.Is(err, ErrPasswordTooLong) {
			return nil, err
		}
		log.Error("Error hashing password", "errMsg", err.Error())
		return nil, err
	}
	user, err := a.users.Insert(ctx, username, email, hash)
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			log.Info("user already exists")
			return nil, ErrUserAlreadyExists
		}
		log.Error(err.Error())
		return nil, err
	}
	if a.mailer != nil && a.taskExecutor != nil {
		if !a.taskExecutor.Add(func() { a.sendWelcomeEmail(user) }) {
			log.Warn("welcome email skipped")
		}
	}
	return user, nil
}

func (a *AuthService) Login(ctx context.Context, username, password string) (*models.AuthToken, error) {
	const op = "auth.AuthService.Login"
	log := a.log.With("op", op, "username", username)
	user, err := a.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("unknown username")
			return nil, ErrInvalidCredentials
		}
		log.Error(err.Error())
		return nil, err
	}
	if !VerifyPassword(user.PasswordHash, password) {
		log.Info("password mismatch")
		return nil, ErrInvalidCredentials
	}
	token, err := a.tokens.NewToken(user.Username)
	if err != nil {
		log.Error("Error signing token", "errMsg", err.Error())
		return nil, err
	}
	return &models.AuthToken{
		AccessToken: token,
		TokenType:   TokenType,
		UserID:      user.ID,
		Username:    user.Username,
	}, nil
}

// Authenticate resolves a bearer token to the user it was issued for.
func (a *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	const op = "auth.AuthService.Authenticate"
	log := a.log.With("op", op)
	username, err := a.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	user, err := a.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Warn("token subject no longer exists", "username", username)
			return nil, ErrUserNotFound
		}
		log.Error(err.Error())
		return nil, err
	}
	return user, nil
}

// AuthorizeSelf is the only access rule: a user may touch nothing but its own resources.
func AuthorizeSelf(user *models.User, userID int64) error {
	if user == nil || user.IsAnonymous() || user.ID != userID {
		return ErrForbidden
	}
	return nil
}
