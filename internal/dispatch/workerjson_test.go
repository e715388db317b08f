package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aureuma/skillregistry/internal/model"
)

func TestParseWorkerResult_StripsLeadingTrailingProse(t *testing.T) {
	raw := "Here is my evaluation:\n" + `{"ratings":{"overall":4.2,"topics":[{"topic":"Security","score":150,"confidence":-5,"reasoning":"ok"}],"flags":[{"flag_type":"malicious_code","severity":"Critical","message":"m"}]},"primary_category":"productivity","secondary_categories":[],"tags":["x"],"has_mcp":true,"has_references":false,"has_assets":false,"estimated_token_usage":100,"summary":"s","strengths":[],"weaknesses":[],"use_cases":[],"compatibility_notes":[],"prerequisites":[]}` + "\nThanks!"

	a, err := ParseWorkerResult(raw)
	require.NoError(t, err)
	assert.Equal(t, 4.2, a.Ratings.Overall)
	require.Len(t, a.Ratings.Topics, 1)
	assert.Equal(t, model.TopicSecurity, a.Ratings.Topics[0].Topic)
	assert.Equal(t, 100, a.Ratings.Topics[0].Score) // clamped from 150
	assert.Equal(t, 0, a.Ratings.Topics[0].Confidence) // clamped from -5

	require.Len(t, a.Ratings.Flags, 1)
	assert.Equal(t, model.FlagMaliciousCode, a.Ratings.Flags[0].Type)
	// Severity match is case-sensitive; "Critical" != "critical" so
	// it falls back to Info.
	assert.Equal(t, model.SeverityInfo, a.Ratings.Flags[0].Severity)
}

func TestParseWorkerResult_UnknownTopicFallsBackToQuality(t *testing.T) {
	raw := `{"ratings":{"overall":1,"topics":[{"topic":"nonsense","score":1,"confidence":1}]},"primary_category":"p","summary":"s"}`
	a, err := ParseWorkerResult(raw)
	require.NoError(t, err)
	assert.Equal(t, model.TopicQuality, a.Ratings.Topics[0].Topic)
}

func TestParseWorkerResult_NoJSONObjectFails(t *testing.T) {
	_, err := ParseWorkerResult("no json here")
	require.Error(t, err)
}
