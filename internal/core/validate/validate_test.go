package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequired(t *testing.T) {
	assert.NoError(t, Required("milk"))
	assert.Error(t, Required(""))
	assert.Error(t, Required("   "))
}

func TestPositive(t *testing.T) {
	assert.NoError(t, Positive(1))
	assert.Error(t, Positive(0))
	assert.Error(t, Positive(-3))
}

func TestFieldValidators(t *testing.T) {
	err := RequiredField("name", " ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name")

	err = PositiveField("quantity", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quantity")

	assert.NoError(t, RequiredField("name", "eggs"))
	assert.NoError(t, PositiveField("quantity", 2))
}

func TestErrorfMatchesErrValidation(t *testing.T) {
	err := Errorf("list %q not found", "Weekly")
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Contains(t, err.Error(), `list "Weekly" not found`)

	assert.NoError(t, Wrap(nil))
	assert.ErrorIs(t, Wrap(errors.New("boom")), ErrValidation)
}
