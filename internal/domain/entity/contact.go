package entity

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/opticini/opticini-cli/internal/shared/apperrors"
)

// ContactMessage is the body of the public contact form.
type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company,omitempty"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Validate checks required fields and the email address format.
func (m ContactMessage) Validate() error {
	var errs *multierror.Error
	if strings.TrimSpace(m.Name) == "" {
		errs = multierror.Append(errs, fmt.Errorf("name is required"))
	}
	if strings.TrimSpace(m.Email) == "" {
		errs = multierror.Append(errs, fmt.Errorf("email is required"))
	} else if addr, err := mail.ParseAddress(m.Email); err != nil || addr.Address != strings.TrimSpace(m.Email) {
		errs = multierror.Append(errs, fmt.Errorf("email is not a valid address"))
	}
	if strings.TrimSpace(m.Subject) == "" {
		errs = multierror.Append(errs, fmt.Errorf("subject is required"))
	}
	if strings.TrimSpace(m.Message) == "" {
		errs = multierror.Append(errs, fmt.Errorf("message is required"))
	}

	if err := errs.ErrorOrNil(); err != nil {
		return apperrors.New(apperrors.TypeValidation, err, "invalid contact message: %s", joinErrors(errs))
	}
	return nil
}
