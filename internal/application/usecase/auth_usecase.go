package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/opticini/opticini-cli/internal/domain/repository"
	"github.com/opticini/opticini-cli/internal/shared/apperrors"
	"github.com/opticini/opticini-cli/internal/shared/types"
)

// AuthUseCase logs in and out.
type AuthUseCase struct {
	auth    repository.AuthRepository
	tokens  repository.TokenRepository
	console types.ConsoleInterface
}

func NewAuthUseCase(auth repository.AuthRepository, tokens repository.TokenRepository, console types.ConsoleInterface) *AuthUseCase {
	return &AuthUseCase{auth: auth, tokens: tokens, console: console}
}

// Login exchanges the credentials for a token pair and stores it.
func (uc *AuthUseCase) Login(ctx context.Context, username, password string) error {
	if strings.TrimSpace(username) == "" || password == "" {
		return apperrors.New(apperrors.TypeValidation, nil, "username and password are required")
	}

	tokens, err := uc.auth.Login(ctx, username, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	if tokens.AccessToken == "" {
		return apperrors.New(apperrors.TypeServer, nil, "login response did not include an access token")
	}
	if err := uc.tokens.Save(tokens); err != nil {
		return fmt.Errorf("failed to store tokens: %w", err)
	}
	uc.console.LogSuccess("Logged in as %s", username)
	return nil
}

// Logout removes the stored tokens.
func (uc *AuthUseCase) Logout() error {
	if err := uc.tokens.Clear(); err != nil {
		return fmt.Errorf("failed to clear tokens: %w", err)
	}
	uc.console.LogSuccess("Logged out")
	return nil
}

// LoggedIn reports whether any token is stored.
func (uc *AuthUseCase) LoggedIn() bool {
	tokens, err := uc.tokens.Load()
	return err == nil && !tokens.IsEmpty()
}
