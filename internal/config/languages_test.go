package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveLanguage(t *testing.T) {
	t.Run("By Display Name", func(t *testing.T) {
		lang, err := ResolveLanguage("French")
		require.NoError(t, err)
		assert.Equal(t, "FR", lang.Code)

		lang, err = ResolveLanguage("hebrew")
		require.NoError(t, err)
		assert.Equal(t, "HE", lang.Code)
		assert.True(t, lang.RTL)
	})

	t.Run("By Code", func(t *testing.T) {
		lang, err := ResolveLanguage("sv")
		require.NoError(t, err)
		assert.Equal(t, "Swedish", lang.Name)
		assert.NotEmpty(t, lang.GlossaryID)
	})

	t.Run("By BCP47 Tag", func(t *testing.T) {
		lang, err := ResolveLanguage("fr-FR")
		require.NoError(t, err)
		assert.Equal(t, "French", lang.Name)

		lang, err = ResolveLanguage("zh-Hans")
		require.NoError(t, err)
		assert.Equal(t, "Chinese", lang.Name)
	})

	t.Run("Unknown Language Lists Supported", func(t *testing.T) {
		_, err := ResolveLanguage("Klingon")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "supported:")
		assert.Contains(t, err.Error(), "French")
	})

	t.Run("Typo Gets Suggestion", func(t *testing.T) {
		_, err := ResolveLanguage("Frrench")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "French")
	})

	t.Run("Empty Input", func(t *testing.T) {
		_, err := ResolveLanguage("  ")
		assert.Error(t, err)
	})
}

func TestSourceLanguageCode(t *testing.T) {
	assert.Equal(t, "EN", SourceLanguageCode("English"))
	assert.Equal(t, "EN", SourceLanguageCode("en"))
	assert.Equal(t, "FR", SourceLanguageCode("french"))
	assert.Equal(t, "", SourceLanguageCode(""))
	assert.Equal(t, "", SourceLanguageCode("Klingon"))
}

func TestIsRTLLanguage(t *testing.T) {
	assert.True(t, IsRTLLanguage("Arabic"))
	assert.True(t, IsRTLLanguage("hebrew"))
	assert.True(t, IsRTLLanguage("Farsi"))
	assert.False(t, IsRTLLanguage("French"))
	assert.False(t, IsRTLLanguage(""))
}

func TestGlossaryAssignments(t *testing.T) {
	withGlossary := 0
	for _, l := range SupportedLanguages() {
		if l.GlossaryID != "" {
			withGlossary++
		}
	}
	assert.Equal(t, 2, withGlossary)

	dutch, err := ResolveLanguage("Dutch")
	require.NoError(t, err)
	assert.Equal(t, "c108ea02-1025-4ad4-b702-d10eda123786", dutch.GlossaryID)
}
