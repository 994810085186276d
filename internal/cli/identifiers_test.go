package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestRecord(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func seedRecords(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeTestRecord(t, dir, "live.md",
		"type: channel\n"+
			"username: `@livechan`\n"+
			"invite: https://t.me/+LiveHash1\n"+
			"status:\n"+
			"- `active`, `2025-01-01 00:00`\n")
	writeTestRecord(t, dir, "gone.md",
		"type: channel\n"+
			"username: `@gonechan`\n"+
			"status:\n"+
			"- `banned`, `2025-01-01 00:00`\n")
	writeTestRecord(t, dir, "grouped.md",
		"type: group\n"+
			"invite: ~~https://t.me/+DeadHash1~~\n"+
			"invite: https://t.me/+GroupHash\n"+
			"status:\n")
	return dir
}

func TestIdentifiersListsLiveOnly(t *testing.T) {
	dir := seedRecords(t)

	out, err := runCommand(t, "identifiers", dir)
	require.NoError(t, err)

	assert.Contains(t, out, "https://t.me/+LiveHash1")
	assert.Contains(t, out, "https://t.me/livechan")
	assert.Contains(t, out, "https://t.me/+GroupHash")
	// Banned record and expired invite stay hidden.
	assert.NotContains(t, out, "gonechan")
	assert.NotContains(t, out, "DeadHash1")
}

func TestIdentifiersNoSkipIncludesHidden(t *testing.T) {
	dir := seedRecords(t)

	out, err := runCommand(t, "identifiers", dir, "--no-skip")
	require.NoError(t, err)
	assert.Contains(t, out, "gonechan")
}

func TestIdentifiersInvitesOnly(t *testing.T) {
	dir := seedRecords(t)

	out, err := runCommand(t, "identifiers", dir, "--invites")
	require.NoError(t, err)

	assert.Contains(t, out, "+LiveHash1")
	assert.NotContains(t, out, "livechan")
}

func TestIdentifiersTypeFilter(t *testing.T) {
	dir := seedRecords(t)

	out, err := runCommand(t, "identifiers", dir, "--type", "group")
	require.NoError(t, err)

	assert.Contains(t, out, "+GroupHash")
	assert.NotContains(t, out, "LiveHash1")
}

func TestIdentifiersTasksFormat(t *testing.T) {
	dir := seedRecords(t)

	out, err := runCommand(t, "identifiers", dir, "--invites", "--tasks")
	require.NoError(t, err)
	assert.Contains(t, out, "- [ ] https://t.me/+LiveHash1")
}

func TestIdentifiersJSONOutput(t *testing.T) {
	dir := seedRecords(t)

	out, err := runCommand(t, "identifiers", dir, "--format", "json", "--invites")
	require.NoError(t, err)

	assert.Contains(t, out, `"status":"ok"`)
	assert.Contains(t, out, `"link":"https://t.me/+LiveHash1"`)
}

func TestIdentifiersMutuallyExclusiveFlags(t *testing.T) {
	dir := seedRecords(t)

	_, err := runCommand(t, "identifiers", dir, "--invites", "--usernames")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestIdentifiersEmptyDirectory(t *testing.T) {
	_, err := runCommand(t, "identifiers", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestInvalidFormatRejected(t *testing.T) {
	_, err := runCommand(t, "identifiers", t.TempDir(), "--format", "xml")
	assert.Error(t, err)
}
