package usecase

import (
	"context"
	"fmt"

	"github.com/opticini/opticini-cli/internal/domain/entity"
	"github.com/opticini/opticini-cli/internal/domain/repository"
	"github.com/opticini/opticini-cli/internal/shared/types"
)

type ContactUseCase struct {
	contact repository.ContactRepository
	console types.ConsoleInterface
}

func NewContactUseCase(contact repository.ContactRepository, console types.ConsoleInterface) *ContactUseCase {
	return &ContactUseCase{contact: contact, console: console}
}

// Submit validates the message locally before posting it.
func (uc *ContactUseCase) Submit(ctx context.Context, msg entity.ContactMessage) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	if err := uc.contact.SubmitContact(ctx, msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	uc.console.LogSuccess("Message sent. We will get back to %s soon.", msg.Email)
	return nil
}
