package sanitize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeSkillContent_CollapsesBlankRuns(t *testing.T) {
	got, err := SanitizeSkillContent("a\n\n\n\n\nb\n")
	require.NoError(t, err)
	assert.Equal(t, "a\n\n\nb\n", got)
}

func TestSanitizeSkillContent_StripsNUL(t *testing.T) {
	got, err := SanitizeSkillContent("a\x00b")
	require.NoError(t, err)
	assert.Equal(t, "ab", got)
}

func TestSanitizeSkillContent_SizeBoundary(t *testing.T) {
	ok := strings.Repeat("a", MaxSkillMdBytes)
	_, err := SanitizeSkillContent(ok)
	require.NoError(t, err)

	tooBig := strings.Repeat("a", MaxSkillMdBytes+1)
	_, err = SanitizeSkillContent(tooBig)
	require.ErrorIs(t, err, ReasonTooLarge)
}

func TestValidatePath(t *testing.T) {
	cases := []struct {
		path    string
		wantErr bool
	}{
		{"foo/bar.md", false},
		{"../bar.md", true},
		{"/bar.md", true},
		{"a/../b.md", true},
		{"", true},
	}
	for _, tc := range cases {
		err := ValidatePath(tc.path)
		if tc.wantErr {
			assert.Error(t, err, tc.path)
		} else {
			assert.NoError(t, err, tc.path)
		}
	}
}

func TestCombinedDigest_PositionIndependent(t *testing.T) {
	a := []FileDigestEntry{{Path: "b.md", Digest: "d2"}, {Path: "a.md", Digest: "d1"}}
	b := []FileDigestEntry{{Path: "a.md", Digest: "d1"}, {Path: "b.md", Digest: "d2"}}
	assert.Equal(t, CombinedDigest(a), CombinedDigest(b))
}

func TestDigest_Deterministic(t *testing.T) {
	assert.Equal(t, Digest("hello"), Digest("hello"))
	assert.NotEqual(t, Digest("hello"), Digest("world"))
	assert.Len(t, Digest("hello"), 64)
}
