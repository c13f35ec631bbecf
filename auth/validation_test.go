package auth_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/orderdesk/go-chatbot-client/auth"
	"github.com/orderdesk/go-chatbot-client/internal/apierrors"
)

func TestValidator_ValidateCredentials(t *testing.T) {
	v := auth.NewValidator()

	t.Run("valid credentials", func(t *testing.T) {
		require.NoError(t, v.ValidateCredentials("john.doe@example.com", "password123"))
	})

	t.Run("trims surrounding whitespace", func(t *testing.T) {
		require.NoError(t, v.ValidateCredentials("  john.doe@example.com  ", "password123"))
	})

	t.Run("missing email", func(t *testing.T) {
		err := v.ValidateCredentials("", "password123")
		require.ErrorIs(t, err, apierrors.ErrValidation)
		require.EqualError(t, err, "Email is required")
	})

	t.Run("invalid email", func(t *testing.T) {
		for _, email := range []string{"plainaddress", "@example.com", "john@"} {
			err := v.ValidateCredentials(email, "password123")
			require.Error(t, err, "email %q should fail", email)
			require.EqualError(t, err, "Please enter a valid email address")
		}
	})

	t.Run("email with consecutive dots", func(t *testing.T) {
		err := v.ValidateCredentials("john..doe@example.com", "password123")
		require.Error(t, err)
		require.EqualError(t, err, "Please enter a valid email address")
	})

	t.Run("missing password", func(t *testing.T) {
		err := v.ValidateCredentials("john.doe@example.com", "")
		require.ErrorIs(t, err, apierrors.ErrValidation)
		require.EqualError(t, err, "Password is required")
	})

	t.Run("short password", func(t *testing.T) {
		err := v.ValidateCredentials("john.doe@example.com", "12345")
		require.EqualError(t, err, "Password must be at least 6 characters long")
	})
}

func TestValidator_ValidateRegistration(t *testing.T) {
	v := auth.NewValidator()

	t.Run("valid registration", func(t *testing.T) {
		require.NoError(t, v.ValidateRegistration("jane@example.com", "password123", "Jane", "Doe"))
	})

	t.Run("missing first name", func(t *testing.T) {
		err := v.ValidateRegistration("jane@example.com", "password123", "", "Doe")
		require.ErrorIs(t, err, apierrors.ErrValidation)
		require.EqualError(t, err, "First name is required")
	})

	t.Run("missing last name", func(t *testing.T) {
		err := v.ValidateRegistration("jane@example.com", "password123", "Jane", "")
		require.EqualError(t, err, "Last name is required")
	})

	t.Run("invalid email still checked", func(t *testing.T) {
		err := v.ValidateRegistration("nope", "password123", "Jane", "Doe")
		require.EqualError(t, err, "Please enter a valid email address")
	})
}
