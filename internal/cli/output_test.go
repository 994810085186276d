package cli

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExitErrorMessage(t *testing.T) {
	err := NewExitError(ExitCommandError, "no records found")
	assert.Equal(t, "no records found", err.Error())

	wrapped := WrapExitError(ExitFatal, "session failure", errors.New("auth revoked"))
	assert.Equal(t, "session failure: auth revoked", wrapped.Error())
	assert.Equal(t, "auth revoked", wrapped.Unwrap().Error())
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad path")))
	assert.Equal(t, ExitFatal, GetExitCode(errors.New("anything")))

	// Wrapped ExitErrors still surface their code.
	err := fmt.Errorf("outer: %w", NewExitError(ExitCommandError, "inner"))
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestFormatterJSONSuccess(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}

	require.NoError(t, f.Success(map[string]int{"total": 3}))
	assert.JSONEq(t, `{"status":"ok","data":{"total":3}}`, buf.String())
}

func TestFormatterJSONError(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}

	require.NoError(t, f.Error("fatal", "session failure", nil))
	assert.JSONEq(t, `{"status":"error","error":{"code":"fatal","message":"session failure"}}`, buf.String())
}

func TestFormatterTextModeSuccessIsSilent(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &buf}

	require.NoError(t, f.Success("anything"))
	assert.Empty(t, buf.String())
	assert.False(t, f.JSON())
}

func TestFormatterTextError(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &buf}

	require.NoError(t, f.Error("fatal", "session failure", nil))
	assert.Equal(t, "Error [fatal]: session failure\n", buf.String())
}
