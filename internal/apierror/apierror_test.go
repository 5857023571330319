package apierror_test

import (
	"errors"
	"testing"

	"github.com/klub-pratel/klub/internal/apierror"
	"github.com/stretchr/testify/assert"
)

func TestNewAPIError(t *testing.T) {
	details := "duplicate variable symbol for money account"
	apiErr := apierror.NewAPIError(apierror.ErrConflict, "Variable symbol already taken", details)

	assert.Equal(t, apierror.ErrConflict, apiErr.Code)
	assert.Equal(t, "Variable symbol already taken", apiErr.Message)
	assert.Equal(t, details, apiErr.Details)
	assert.Equal(t, "CONFLICT: Variable symbol already taken", apiErr.Error())
}

func TestIsValidation(t *testing.T) {
	assert.True(t, apierror.IsValidation(apierror.NewAPIError(apierror.ErrInvalidInput, "OUT OF VS", nil)))
	assert.True(t, apierror.IsValidation(apierror.NewAPIError(apierror.ErrConflict, "duplicate VS", nil)))
	assert.False(t, apierror.IsValidation(apierror.NewAPIError(apierror.ErrInternalServer, "db down", nil)))
	assert.False(t, apierror.IsValidation(errors.New("plain error")))
}
