package cli

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DarthJahus/telegram-fraud-network/internal/record"
	"github.com/DarthJahus/telegram-fraud-network/internal/resolve"
)

// seedSession writes a config file and session token wired to the
// given API base URL and returns the config path.
func seedSession(t *testing.T, baseURL string) string {
	t.Helper()
	dir := t.TempDir()
	secrets := filepath.Join(dir, ".secret")
	require.NoError(t, os.Mkdir(secrets, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(secrets, "tester.token"), []byte("tok123\n"), 0o600))

	cfgPath := filepath.Join(dir, "tgstatus.yaml")
	cfg := fmt.Sprintf("api_base_url: %s\nsecrets_dir: %s\nuser: tester\ndelay_seconds: 0\n", baseURL, secrets)
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))
	return cfgPath
}

func TestInfoEmitsRecordSkeleton(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/bottok123/getChat")
		fmt.Fprint(w, `{"ok":true,"result":{"id":4242,"username":"somechan"}}`)
	}))
	defer srv.Close()

	out, err := runCommand(t, "info", "@somechan", "--config", seedSession(t, srv.URL))
	require.NoError(t, err)

	assert.Contains(t, out, "id: `4242`")
	assert.Contains(t, out, "username: `@somechan`")
	assert.Contains(t, out, "status:")
	assert.Contains(t, out, "- `active`, `")

	// The skeleton must itself be a checkable record.
	rec, perr := record.Parse("new.md", []byte(out))
	require.NoError(t, perr)
	assert.Equal(t, int64(4242), rec.NumericID)
	cur, ok := rec.CurrentStatus()
	require.True(t, ok)
	assert.Equal(t, record.StatusActive, cur.Status)
}

func TestInfoInviteIncludesLinkAndRestriction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ok":true,"result":{"id":77,"is_restricted":true,"restriction_reason":[{"platform":"all","reason":"spam","text":"banned for spam"}]}}`)
	}))
	defer srv.Close()

	out, err := runCommand(t, "info", "https://t.me/+AbCd123", "--config", seedSession(t, srv.URL))
	require.NoError(t, err)

	assert.Contains(t, out, "id: `77`")
	assert.Contains(t, out, "invite: https://t.me/+AbCd123")
	assert.Contains(t, out, "- `banned`, `")
	assert.Contains(t, out, "  - reason: `spam`")
	assert.Contains(t, out, "  - text: `banned for spam`")
}

func TestInfoJSONOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ok":true,"result":{"id":4242,"username":"somechan"}}`)
	}))
	defer srv.Close()

	out, err := runCommand(t, "info", "somechan", "--config", seedSession(t, srv.URL), "--format", "json")
	require.NoError(t, err)

	assert.Contains(t, out, `"status":"ok"`)
	assert.Contains(t, out, `"identifier":"@somechan"`)
	assert.Contains(t, out, `"id":4242`)
	assert.Contains(t, out, `"username":"somechan"`)
}

func TestInfoMissingToken(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "tgstatus.yaml")
	require.NoError(t, os.WriteFile(cfgPath,
		[]byte("secrets_dir: "+dir+"\nuser: nobody\n"), 0o644))

	_, err := runCommand(t, "info", "@somechan", "--config", cfgPath)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestParseIdentifierForms(t *testing.T) {
	cases := []struct {
		in   string
		want resolve.Candidate
	}{
		{"https://t.me/+AbC_d-12", resolve.Candidate{Method: resolve.ByInvite, Value: "AbC_d-12"}},
		{"t.me/+AbC_d-12", resolve.Candidate{Method: resolve.ByInvite, Value: "AbC_d-12"}},
		{"+AbC_d-12", resolve.Candidate{Method: resolve.ByInvite, Value: "AbC_d-12"}},
		{"@somechan", resolve.Candidate{Method: resolve.ByUsername, Value: "somechan"}},
		{"somechan", resolve.Candidate{Method: resolve.ByUsername, Value: "somechan"}},
		{"https://t.me/somechan", resolve.Candidate{Method: resolve.ByUsername, Value: "somechan"}},
		{"123456789", resolve.Candidate{Method: resolve.ByID, Value: "123456789"}},
	}
	for _, tc := range cases {
		cand, err := parseIdentifier(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, cand, tc.in)
	}

	_, err := parseIdentifier("")
	assert.Error(t, err)
	_, err = parseIdentifier("+")
	assert.Error(t, err)
}
