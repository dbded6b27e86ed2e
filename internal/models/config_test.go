package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"otpviewer.org/internal/buildinfo"
	"otpviewer.org/internal/clock"
)

func TestBuildPropertiesJSONTags(t *testing.T) {
	props := BuildProperties{
		Branch:       "main",
		CommitID:     "abc12345",
		BuildVersion: "1.0.0",
		Dirty:        "false",
	}

	data, err := json.Marshal(props)
	require.NoError(t, err)
	jsonString := string(data)

	assert.Contains(t, jsonString, `"git.branch":"main"`)
	assert.Contains(t, jsonString, `"git.commit.id":"abc12345"`)
	assert.Contains(t, jsonString, `"git.build.version":"1.0.0"`)
	assert.NotContains(t, jsonString, "Branch")
}

func TestCurrentBuildProperties(t *testing.T) {
	original := buildinfo.CommitHash
	defer func() { buildinfo.CommitHash = original }()

	buildinfo.CommitHash = "0123456789abcdef"
	props := CurrentBuildProperties()
	assert.Equal(t, "0123456789abcdef", props.CommitID)
	assert.Equal(t, "0123456", props.CommitAbbrev)

	buildinfo.CommitHash = ""
	assert.Equal(t, "unknown", CurrentBuildProperties().CommitAbbrev)
}

func TestEntryResponseEnvelope(t *testing.T) {
	c := clock.NewMockClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	resp := NewEntryResponse(map[string]string{"id": "1:100"}, NewEmptyReferences(), c)

	assert.Equal(t, 200, resp.Code)
	assert.Equal(t, "OK", resp.Text)
	assert.Equal(t, APIVersion, resp.Version)
	assert.Equal(t, c.NowUnixMilli(), resp.CurrentTime)

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"code": 200,
		"currentTime": 1714564800000,
		"text": "OK",
		"version": 2,
		"data": {
			"entry": {"id": "1:100"},
			"references": {"agencies": [], "routes": [], "stops": [], "trips": []}
		}
	}`, string(data))
}

func TestCurrentTimeData(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	data := NewCurrentTimeData(ts)
	assert.Equal(t, ts.UnixMilli(), data.Time)
	assert.Equal(t, "2024-05-01T12:00:00Z", data.ReadableTime)
}
