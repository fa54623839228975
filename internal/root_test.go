package internal

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timvideos/fwfetch/internal/logger"
	"github.com/timvideos/fwfetch/internal/middleware"
	"github.com/timvideos/fwfetch/internal/service"
	"github.com/timvideos/fwfetch/internal/store"
)

func TestMain(m *testing.M) {
	logger.UseTestMode()
	os.Exit(m.Run())
}

const (
	testRev   = "v0.0.4-44-g0cd842f"
	apiPrefix = "/repos/timvideos/HDMI2USB-firmware-prebuilt/contents/archive/master/"
	rawPrefix = "/timvideos/HDMI2USB-firmware-prebuilt/raw/master/archive/master/"
)

type env struct {
	srv       *httptest.Server
	config    string
	cacheFile string
	stdin     string
	apiHits   atomic.Int32
}

// newEnv starts a fake GitHub and writes a config file pointing at it.
func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{}

	tree := map[string]string{}
	tree[""] = `[{"name":"` + testRev + `","type":"dir"},{"name":"README.md","type":"file"}]`
	tree[testRev+"/"] = `[{"name":"opsis","type":"dir"}]`
	tree[testRev+"/opsis/"] = `[{"name":"hdmi2usb","type":"dir"}]`
	tree[testRev+"/opsis/hdmi2usb/"] = `[{"name":"lm32","type":"dir"}]`
	tree[testRev+"/opsis/hdmi2usb/lm32/"] = `[{"name":"firmware.bin","type":"file"}]`

	e.srv = httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, apiPrefix):
			e.apiHits.Add(1)
			body, ok := tree[strings.TrimPrefix(r.URL.Path, apiPrefix)]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				body = `{"message":"Not Found"}`
			}
			_, _ = w.Write([]byte(body))
		case strings.HasPrefix(r.URL.Path, rawPrefix):
			_, _ = w.Write([]byte("FIRMWARE"))
		case r.URL.Path == "/sheet.csv":
			_, _ = w.Write([]byte("Link,Date,Revision,Name,Config,Notes,More\nGitHub,2018-02-01," + testRev + ",stable,opsis,,\n"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(e.srv.Close)

	orig := newHTTPClient
	newHTTPClient = func(time.Duration) service.HTTPClient { return e.srv.Client() }
	t.Cleanup(func() { newHTTPClient = orig })

	dir := t.TempDir()
	e.config = filepath.Join(dir, "config.yml")
	e.cacheFile = filepath.Join(dir, "state", "listings.json")
	content := fmt.Sprintf(`api_base_url: %[1]s
raw_base_url: %[1]s
registry_url: %[1]s/sheet.csv
retry:
  max_attempts: 2
  initial_wait: 1ms
`, e.srv.URL)
	require.NoError(t, os.WriteFile(e.config, []byte(content), 0o644))

	t.Setenv("HOME", dir)
	return e
}

func (e *env) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(e.stdin))
	root.SetArgs(append([]string{"-s", "--config", e.config, "--cache-file", e.cacheFile}, args...))
	_, err := root.ExecuteC()
	return out.String(), err
}

func TestDownload_WritesFirmware(t *testing.T) {
	e := newEnv(t)
	out := filepath.Join(t.TempDir(), "opsis.bin")

	_, err := e.run(t, "--board", "opsis", "-o", out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "FIRMWARE", string(data))

	fs, err := store.NewFS(e.cacheFile)
	require.NoError(t, err)
	entries, err := fs.Entries()
	require.NoError(t, err)
	assert.Len(t, entries, 5, "every listing is cached")
}

func TestDownload_CacheServesSecondRun(t *testing.T) {
	e := newEnv(t)

	_, err := e.run(t, "--platform", "opsis", "--dry-run")
	require.NoError(t, err)
	hits := e.apiHits.Load()

	_, err = e.run(t, "--platform", "opsis", "--dry-run")
	require.NoError(t, err)
	assert.Equal(t, hits, e.apiHits.Load())

	_, err = e.run(t, "--platform", "opsis", "--dry-run", "--no-cache")
	require.NoError(t, err)
	assert.Equal(t, 2*hits, e.apiHits.Load())
}

func TestDownload_ChannelAlias(t *testing.T) {
	e := newEnv(t)

	_, err := e.run(t, "--platform", "opsis", "--tag", "stable", "--dry-run")
	require.NoError(t, err)

	_, err = e.run(t, "--platform", "opsis", "--tag", "nightly", "--dry-run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did not find channel nightly")
}

func TestDownload_FlagValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing platform", []string{"--target", "hdmi2usb"}},
		{"rev with latest", []string{"--platform", "opsis", "--rev", testRev, "--latest"}},
		{"empty arch", []string{"--platform", "opsis", "--arch", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			_, err := e.run(t, tt.args...)
			require.Error(t, err)
			assert.True(t, errors.Is(err, middleware.ErrLogged), "expected sentinel error, got: %v", err)
			assert.Zero(t, e.apiHits.Load())
		})
	}
}

func TestDownload_UnknownFlagAndArgs(t *testing.T) {
	e := newEnv(t)

	_, err := e.run(t, "--platform", "opsis", "extra")
	require.Error(t, err)

	_, err = e.run(t, "--nope")
	require.Error(t, err)
}

func TestVersionFlag(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, "--version")
	require.NoError(t, err)
	assert.Equal(t, "Version: dev\n", out)
}

func TestCacheCommands(t *testing.T) {
	e := newEnv(t)

	_, err := e.run(t, "revisions")
	require.NoError(t, err)

	fs, err := store.NewFS(e.cacheFile)
	require.NoError(t, err)
	entries, err := fs.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	_, err = e.run(t, "cache", "list")
	require.NoError(t, err)

	e.stdin = "n\n"
	out, err := e.run(t, "cache", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Remove 1 cached listings? [y/N]: ")

	entries, err = fs.Entries()
	require.NoError(t, err)
	assert.Len(t, entries, 1, "declined prompt keeps the cache")

	_, err = e.run(t, "cache", "clear", "--yes")
	require.NoError(t, err)

	entries, err = fs.Entries()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRevisions_NegativeLimit(t *testing.T) {
	e := newEnv(t)

	_, err := e.run(t, "revisions", "--limit", "-1")
	assert.ErrorIs(t, err, middleware.ErrLogged)
}

func TestChannelsCommand(t *testing.T) {
	e := newEnv(t)

	_, err := e.run(t, "channels")
	require.NoError(t, err)
}

func TestConfigShow(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "api_base_url: "+e.srv.URL)
	assert.Contains(t, out, "max_attempts: 2")
	assert.Contains(t, out, "cache_file: ~/state/listings.json")
}

func TestFlagAliases(t *testing.T) {
	root := NewRootCmd()
	require.NoError(t, root.ParseFlags([]string{"--board", "atlys", "--tag", "stable"}))

	platform, err := root.Flags().GetString("platform")
	require.NoError(t, err)
	assert.Equal(t, "atlys", platform)

	channel, err := root.Flags().GetString("channel")
	require.NoError(t, err)
	assert.Equal(t, "stable", channel)
}

func TestConfigDefaultsApplyWhenFlagUnset(t *testing.T) {
	e := newEnv(t)
	extra := "defaults:\n  target: base\n"
	f, err := os.OpenFile(e.config, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(extra)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = e.run(t, "--platform", "opsis", "--dry-run")
	require.Error(t, err, "target base does not exist in the fake archive")

	_, err = e.run(t, "--platform", "opsis", "--target", "hdmi2usb", "--dry-run")
	require.NoError(t, err)
}

func TestCacheFileIsJSON(t *testing.T) {
	e := newEnv(t)
	_, err := e.run(t, "revisions")
	require.NoError(t, err)

	data, err := os.ReadFile(e.cacheFile)
	require.NoError(t, err)
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, e.srv.URL+apiPrefix)
}
