package validator_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/emailauth/pkg/validator"
)

func TestValidationErrors_Error(t *testing.T) {
	t.Parallel()

	t.Run("returns default message when no errors", func(t *testing.T) {
		t.Parallel()
		var errs validator.ValidationErrors
		assert.Equal(t, "validation failed", errs.Error())
	})

	t.Run("joins field messages", func(t *testing.T) {
		t.Parallel()
		var errs validator.ValidationErrors
		errs.Add(validator.ValidationError{Field: "email", Message: "is required"})
		errs.Add(validator.ValidationError{Field: "password", Message: "too short"})
		assert.Equal(t, "validation failed: email: is required; password: too short", errs.Error())
	})
}

func TestValidationErrors_Accessors(t *testing.T) {
	t.Parallel()

	errs := validator.ValidationErrors{
		{Field: "password", Message: "too short"},
		{Field: "email", Message: "invalid"},
		{Field: "password", Message: "too common"},
	}

	assert.True(t, errs.Has("email"))
	assert.False(t, errs.Has("name"))
	assert.Equal(t, []string{"too short", "too common"}, errs.Get("password"))
	assert.Equal(t, []string{"password", "email"}, errs.Fields())
	assert.Equal(t, map[string][]string{
		"password": {"too short", "too common"},
		"email":    {"invalid"},
	}, errs.Map())
	assert.False(t, errs.IsEmpty())
}

func TestApply(t *testing.T) {
	t.Parallel()

	t.Run("returns nil when all rules pass", func(t *testing.T) {
		t.Parallel()
		err := validator.Apply(
			validator.Required("email", "a@b.co"),
			validator.MinLen("password", "longenough", 8),
		)
		assert.NoError(t, err)
	})

	t.Run("collects every failure", func(t *testing.T) {
		t.Parallel()
		err := validator.Apply(
			validator.Required("email", " "),
			validator.MinLen("password", "short", 8),
		)
		require.Error(t, err)

		verrs := validator.ExtractValidationErrors(err)
		require.Len(t, verrs, 2)
		assert.True(t, verrs.Has("email"))
		assert.True(t, verrs.Has("password"))
	})
}

func TestValidationErrors_ErrorsIs(t *testing.T) {
	t.Parallel()

	err := validator.Apply(validator.Required("email", ""))
	require.Error(t, err)
	assert.ErrorIs(t, err, validator.ErrValidationFailed)

	wrapped := fmt.Errorf("signup: %w", err)
	assert.ErrorIs(t, wrapped, validator.ErrValidationFailed)
	assert.True(t, validator.IsValidationError(wrapped))
	assert.Len(t, validator.ExtractValidationErrors(wrapped), 1)
}

func TestExtractValidationErrors(t *testing.T) {
	t.Parallel()

	assert.Nil(t, validator.ExtractValidationErrors(nil))
	assert.Nil(t, validator.ExtractValidationErrors(errors.New("boom")))
	assert.False(t, validator.IsValidationError(errors.New("boom")))
}
