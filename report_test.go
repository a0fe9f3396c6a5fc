package arcade

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestReportRoundTrip(t *testing.T) {
	r := NewReport(fixedNow)
	r.AddResult(BuildResult{Game: "pong", Language: CPP, Binary: "/w/Games/pong/bin/pong", Cloned: true, Duration: 1500 * time.Millisecond})
	r.AddResult(BuildResult{Game: "snake", Language: CSharp, Err: errors.New("dotnet exited 1")})
	r.SetArchive("splashkit-games-20261014-120000.tar.gz")
	r.Finish(fixedNow.Add(time.Minute))

	b, err := r.Bytes()
	require.NoError(t, err)
	assert.Equal(t, int64(2), gjson.GetBytes(b, "games.#").Int())
	assert.Equal(t, "failed", gjson.GetBytes(b, "games.1.status").String())

	path := filepath.Join(t.TempDir(), "Games", ReportFileName)
	require.NoError(t, r.WriteFile(path))
	s, err := ReadReport(path)
	require.NoError(t, err)

	assert.Equal(t, "2026-10-14T12:00:00Z", s.Started)
	assert.Equal(t, "2026-10-14T12:01:00Z", s.Finished)
	assert.Equal(t, "splashkit-games-20261014-120000.tar.gz", s.Archive)
	assert.Equal(t, []ReportGame{
		{Name: "pong", Language: "cpp", Status: StatusBuilt, Binary: "/w/Games/pong/bin/pong", Cloned: true, Duration: 1500 * time.Millisecond},
		{Name: "snake", Language: "csharp", Status: StatusFailed, Error: "dotnet exited 1"},
	}, s.Games)
}

func TestParseReportInvalid(t *testing.T) {
	_, err := ParseReport([]byte("{not json"))
	assert.Error(t, err)
}
