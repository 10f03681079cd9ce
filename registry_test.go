package confreport

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chapterOrder(chs []ChapterRecord) []string {
	out := make([]string, 0, len(chs))
	for _, ch := range chs {
		out = append(out, ch.Key().String())
	}
	return out
}

func TestGroup(t *testing.T) {
	parts, err := Group(sampleChapters(), []string{"eng", "hun"}, DefaultSessions(), map[string]string{"hun": "Magyar"})
	require.NoError(t, err)
	require.Len(t, parts, 2)

	assert.Equal(t, "eng", parts[0].Language)
	assert.Equal(t, "English", parts[0].DisplayName)
	assert.Equal(t, []string{
		"eng/sat_am/1",
		"eng/sat_am/2",
		"eng/sat_pm/1",
		"eng/sun_am/1",
	}, chapterOrder(parts[0].Chapters))

	assert.Equal(t, "hun", parts[1].Language)
	assert.Equal(t, "Magyar", parts[1].DisplayName)
	assert.Equal(t, []string{"hun/sat_am/1"}, chapterOrder(parts[1].Chapters))
}

func TestGroupFollowsAllowListOrder(t *testing.T) {
	parts, err := Group(sampleChapters(), []string{"hun", "eng"}, DefaultSessions(), nil)
	require.NoError(t, err)
	require.Len(t, parts, 2)
	assert.Equal(t, "hun", parts[0].Language)
	assert.Equal(t, "Hungarian", parts[0].DisplayName)
	assert.Equal(t, "eng", parts[1].Language)
}

func TestGroupOrdersBySessionRankNotCode(t *testing.T) {
	sessions, err := NewSessionTable([]Session{
		{Code: "morning", Rank: 1},
		{Code: "afternoon", Rank: 2},
	}, nil)
	require.NoError(t, err)

	chapters := []ChapterRecord{
		testChapter("eng", "afternoon", 1, "A", "A", "A"),
		testChapter("eng", "morning", 10, "B", "B", "B"),
		testChapter("eng", "morning", 2, "C", "C", "C"),
	}
	parts, err := Group(chapters, []string{"eng"}, sessions, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"eng/morning/2",
		"eng/morning/10",
		"eng/afternoon/1",
	}, chapterOrder(parts[0].Chapters))
}

func TestGroupEmptyLanguageStillGetsPart(t *testing.T) {
	parts, err := Group(nil, []string{"eng", "hun"}, DefaultSessions(), nil)
	require.NoError(t, err)
	require.Len(t, parts, 2)
	assert.Empty(t, parts[0].Chapters)
	assert.Empty(t, parts[1].Chapters)
}

func TestGroupDropsUnlistedLanguages(t *testing.T) {
	chapters := append(sampleChapters(),
		testChapter("deu", "sat_am", 1, "Eyring", "Henry B. Eyring", "Im Licht wandeln"),
		// An unknown session in a dropped language is never looked at.
		testChapter("fra", "mon_am", 1, "X", "X", "X"),
	)
	langs := []string{"eng"}

	parts, err := Group(chapters, langs, DefaultSessions(), nil)
	require.NoError(t, err)
	require.Len(t, parts, 1)
	assert.Len(t, parts[0].Chapters, 4)
	assert.Equal(t, 3, Dropped(chapters, langs))
}

func TestGroupErrors(t *testing.T) {
	t.Run("no languages", func(t *testing.T) {
		_, err := Group(sampleChapters(), nil, DefaultSessions(), nil)
		assert.ErrorIs(t, err, ErrNoLanguages)
	})

	t.Run("duplicate language", func(t *testing.T) {
		_, err := Group(nil, []string{"eng", "eng"}, DefaultSessions(), nil)
		assert.ErrorIs(t, err, ErrInvalidOptions)
	})

	t.Run("unknown session", func(t *testing.T) {
		chapters := append(sampleChapters(), testChapter("eng", "mon_am", 1, "X", "X", "X"))
		_, err := Group(chapters, []string{"eng", "hun"}, DefaultSessions(), nil)

		var unknown *UnknownSessionError
		require.True(t, errors.As(err, &unknown), "got %v", err)
		assert.Equal(t, "mon_am", unknown.Session)
		assert.Equal(t, "eng", unknown.Language)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("duplicate chapter", func(t *testing.T) {
		dup := testChapter("eng", "sat_am", 2, "Other", "Someone Else", "Another Talk")
		chapters := append(sampleChapters(), dup)
		_, err := Group(chapters, []string{"eng", "hun"}, DefaultSessions(), nil)

		var dupErr *DuplicateChapterError
		require.True(t, errors.As(err, &dupErr), "got %v", err)
		assert.Equal(t, ChapterKey{Language: "eng", Session: "sat_am", Order: 2}, dupErr.Key)
		assert.Equal(t, dup.SourcePath, dupErr.Second)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("empty session table", func(t *testing.T) {
		_, err := Group(sampleChapters(), []string{"eng"}, SessionTable{}, nil)
		var unknown *UnknownSessionError
		assert.True(t, errors.As(err, &unknown), "got %v", err)
	})
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		code  string
		names map[string]string
		want  string
	}{
		{"eng", nil, "English"},
		{"hun", nil, "Hungarian"},
		{"hun", map[string]string{"hun": "Magyar"}, "Magyar"},
		{"hun", map[string]string{"hun": "  "}, "Hungarian"},
		{"not-a-code!", nil, "not-a-code!"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DisplayName(tt.code, tt.names), "DisplayName(%q, %v)", tt.code, tt.names)
	}
}

func TestLanguageTag(t *testing.T) {
	assert.Equal(t, "en", LanguageTag("eng"))
	assert.Equal(t, "hu", LanguageTag("hun"))
	assert.Equal(t, "de", LanguageTag("de"))
	assert.Equal(t, "not-a-code!", LanguageTag("not-a-code!"))
}
