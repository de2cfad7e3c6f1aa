package validator_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/focusflow/pkg/validator"
)

func TestValidationErrors(t *testing.T) {
	t.Parallel()

	t.Run("returns default message when empty", func(t *testing.T) {
		t.Parallel()
		var errs validator.ValidationErrors
		assert.Equal(t, "validation failed", errs.Error())
		assert.True(t, errs.IsEmpty())
		assert.Nil(t, errs.Map())
	})

	t.Run("formats and groups messages by field", func(t *testing.T) {
		t.Parallel()
		var errs validator.ValidationErrors
		errs.Add(validator.ValidationError{Field: "days", Message: "must be at least 1"})
		errs.Add(validator.ValidationError{Field: "email", Message: "is required"})
		errs.Add(validator.ValidationError{Field: "email", Message: "must be a valid email address"})

		assert.Equal(t, "validation failed: days: must be at least 1; email: is required; email: must be a valid email address", errs.Error())
		assert.True(t, errs.Has("email"))
		assert.False(t, errs.Has("tier"))
		assert.Equal(t, []string{"is required", "must be a valid email address"}, errs.Get("email"))
		assert.Equal(t, []string{"days", "email"}, errs.Fields())
		assert.Equal(t, map[string][]string{
			"days":  {"must be at least 1"},
			"email": {"is required", "must be a valid email address"},
		}, errs.Map())
	})
}

func TestApply(t *testing.T) {
	t.Parallel()

	t.Run("returns nil when every rule passes", func(t *testing.T) {
		t.Parallel()
		err := validator.Apply(
			validator.RequiredString("code", "abc"),
			validator.Min("days", 3, 1),
		)
		assert.NoError(t, err)
	})

	t.Run("collects every failed rule", func(t *testing.T) {
		t.Parallel()
		err := validator.Apply(
			validator.RequiredString("code", " "),
			validator.Min("days", 0, 1),
			validator.ValidEmail("email", "ok@example.com"),
		)
		require.Error(t, err)

		errs := validator.ExtractValidationErrors(err)
		require.Len(t, errs, 2)
		assert.Equal(t, []string{"code", "days"}, errs.Fields())
	})

	t.Run("validation errors survive wrapping", func(t *testing.T) {
		t.Parallel()
		wrapped := fmt.Errorf("upgrade: %w", validator.NewError("tier", "is not for sale"))

		assert.True(t, validator.IsValidationError(wrapped))
		assert.Equal(t, []string{"is not for sale"}, validator.ExtractValidationErrors(wrapped).Get("tier"))
	})

	t.Run("plain errors are not validation errors", func(t *testing.T) {
		t.Parallel()
		assert.False(t, validator.IsValidationError(errors.New("boom")))
		assert.False(t, validator.IsValidationError(nil))
		assert.Nil(t, validator.ExtractValidationErrors(errors.New("boom")))
	})
}
