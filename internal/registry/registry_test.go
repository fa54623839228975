package registry

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timvideos/fwfetch/internal/logger"
	"github.com/timvideos/fwfetch/internal/revision"
	"github.com/timvideos/fwfetch/internal/service"
)

func TestMain(m *testing.M) {
	logger.UseTestMode()
	os.Exit(m.Run())
}

const sheet = `Link,Date,Revision,Name,Config,Notes,More notes
GitHub,2018-01-10,v0.0.3-700-g1fd7c34,v0.0.3,opsis,first release,
GitHub,2018-02-01,v0.0.4-44-g0cd842f,stable,opsis,,
GitHub,2018-02-02,,testing,opsis,no revision yet,
GitHub,2018-02-03,v0.0.4-12-gaaaaaaa,broken
`

func mustVersion(t *testing.T, s string) revision.Version {
	t.Helper()
	v, err := revision.Parse(s)
	require.NoError(t, err)
	return v
}

func TestParse(t *testing.T) {
	reg, err := Parse(strings.NewReader(sheet))
	require.NoError(t, err)

	assert.Len(t, reg.Rows, 2)
	assert.Len(t, reg.Channels, 2)

	v, ok := reg.Lookup("stable")
	require.True(t, ok)
	assert.Equal(t, mustVersion(t, "v0.0.4-44-g0cd842f"), v)

	_, ok = reg.Lookup("testing")
	assert.False(t, ok, "row with empty revision is skipped")

	_, ok = reg.Lookup("broken")
	assert.False(t, ok, "row with 4 fields is skipped")

	assert.Equal(t, "first release", reg.Rows[0].Notes)
	assert.Equal(t, "opsis", reg.Rows[0].Config)
}

func TestParse_SixFieldRowIsLogged(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf, "debug")
	t.Cleanup(logger.UseTestMode)

	reg, err := Parse(strings.NewReader("GitHub,2018,v0.0.4-1-gabc,six,opsis,notes\n"))
	require.NoError(t, err)
	assert.Empty(t, reg.Channels)
	assert.Contains(t, buf.String(), "Skipping registry row 1")
}

func TestParse_LastRowWins(t *testing.T) {
	data := `GitHub,d1,v0.0.4-1-gaaa,stable,,,
GitHub,d2,v0.0.4-9-gbbb,stable,,,
`
	reg, err := Parse(strings.NewReader(data))
	require.NoError(t, err)

	v, ok := reg.Lookup("stable")
	require.True(t, ok)
	assert.Equal(t, 9, v.Commits)
	assert.Len(t, reg.Channels, 1)
}

func TestParse_MalformedRevision(t *testing.T) {
	_, err := Parse(strings.NewReader("GitHub,d1,not-a-revision,stable,,,\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, revision.ErrMalformed)
}

func TestFetch(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(sheet))
	}))
	defer srv.Close()

	reg, err := Fetch(context.Background(), service.NewFetcher(srv.Client(), ""), srv.URL+"/pub?output=csv")
	require.NoError(t, err)
	_, ok := reg.Lookup("v0.0.3")
	assert.True(t, ok)
}

func TestFetch_BadStatus(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	_, err := Fetch(context.Background(), service.NewFetcher(srv.Client(), ""), srv.URL)
	require.Error(t, err)
}
