package auth

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/orderdesk/go-chatbot-client/internal/apierrors"
)

// Validator performs client-side checks on credentials before any network
// call. Validation failures never reach the network layer.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new Validator instance.
func NewValidator() *Validator {
	return &Validator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

type credentialsInput struct {
	Email    string `validate:"required,email,max=254"`
	Password string `validate:"required,min=6"`
}

type registrationInput struct {
	Email     string `validate:"required,email,max=254"`
	Password  string `validate:"required,min=6"`
	FirstName string `validate:"required"`
	LastName  string `validate:"required"`
}

// ValidateCredentials checks a login email and password.
func (v *Validator) ValidateCredentials(email, password string) error {
	input := credentialsInput{Email: strings.TrimSpace(email), Password: password}
	if err := v.validate.Struct(input); err != nil {
		return validationError(err)
	}
	if msg := emailShapeError(input.Email); msg != "" {
		return apierrors.Validation(msg)
	}
	return nil
}

// ValidateRegistration checks registration inputs.
func (v *Validator) ValidateRegistration(email, password, firstName, lastName string) error {
	input := registrationInput{
		Email:     strings.TrimSpace(email),
		Password:  password,
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
	}
	if err := v.validate.Struct(input); err != nil {
		return validationError(err)
	}
	if msg := emailShapeError(input.Email); msg != "" {
		return apierrors.Validation(msg)
	}
	return nil
}

// emailShapeError catches patterns the email tag accepts but the backend
// rejects: leading/trailing dots and consecutive dots.
func emailShapeError(email string) string {
	if strings.HasPrefix(email, ".") || strings.HasSuffix(email, ".") || strings.Contains(email, "..") {
		return "Please enter a valid email address"
	}
	return ""
}

func validationError(err error) error {
	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(fieldErrors) == 0 {
		return apierrors.Validation("Invalid input")
	}

	fe := fieldErrors[0]
	switch fe.Field() {
	case "Email":
		if fe.Tag() == "required" {
			return apierrors.Validation("Email is required")
		}
		return apierrors.Validation("Please enter a valid email address")
	case "Password":
		if fe.Tag() == "required" {
			return apierrors.Validation("Password is required")
		}
		return apierrors.Validation("Password must be at least 6 characters long")
	case "FirstName":
		return apierrors.Validation("First name is required")
	case "LastName":
		return apierrors.Validation("Last name is required")
	}
	return apierrors.Validation("Invalid input")
}
