package testutil

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ryakubu/auto-categorize-app/internal/errors"
)

// AssertAppError stops the test unless err is an *AppError, then checks its code.
func AssertAppError(t *testing.T, err error, code string) {
	t.Helper()

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr, "expected AppError %s", code)
	assert.Equal(t, code, appErr.Code, "message: %s", appErr.Message)
}

// AssertNoError stops the test on err.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	require.NoError(t, err)
}

// AssertAmount compares got with want written to two places, e.g. "12.50".
func AssertAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Equal(t, want, got.StringFixed(2), "amount")
}
