package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-pptx-translator/internal/config"
	"github.com/nerdneilsfield/go-pptx-translator/internal/extractor"
	"github.com/nerdneilsfield/go-pptx-translator/internal/pptx"
	fixture "github.com/nerdneilsfield/go-pptx-translator/internal/test"
	"github.com/nerdneilsfield/go-pptx-translator/pkg/presentation"
)

// resetFlags 清空包级标志变量，命令间互不串扰
func resetFlags() {
	cfgFile = ""
	targetLang = ""
	providerName = ""
	outputPath = ""
	outputDir = ""
	glossaryPath = ""
	batchSize = 0
	concurrency = 0
	maxAttempts = 0
	keepFiles = false
	exportReport = false
	quietMode = false
	debugMode = false
	verboseMode = false
}

func writeDeck(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "deck.pptx")
	require.NoError(t, os.WriteFile(path, fixture.Deck(), 0o644))
	return path
}

func runCommand(t *testing.T, args ...string) error {
	t.Helper()
	resetFlags()
	root := NewRootCommand("test", "none", "today")
	root.SetArgs(args)
	root.SetOut(new(bytes.Buffer))
	return root.Execute()
}

func TestExtractCommand(t *testing.T) {
	deckPath := writeDeck(t)
	out := filepath.Join(filepath.Dir(deckPath), "tree.json")

	require.NoError(t, runCommand(t, "extract", deckPath, "-o", out))

	tree, err := presentation.Load(out)
	require.NoError(t, err)
	assert.Equal(t, 2, tree.TotalSlides)
	assert.Equal(t, "Quarterly Review", tree.Slides[0].ElementByShapeID(2).FullText)
}

func TestExtractDefaultArtifactName(t *testing.T) {
	deckPath := writeDeck(t)
	require.NoError(t, runCommand(t, "extract", deckPath))

	expected := filepath.Join(filepath.Dir(deckPath), "deck_extracted.json")
	_, err := os.Stat(expected)
	assert.NoError(t, err)
}

func TestTranslateAndReassembleCommands(t *testing.T) {
	deckPath := writeDeck(t)
	dir := filepath.Dir(deckPath)
	require.NoError(t, runCommand(t, "extract", deckPath))

	extracted := filepath.Join(dir, "deck_extracted.json")
	require.NoError(t, runCommand(t,
		"translate", extracted, "--to", "French", "--provider", "raw", "-q"))

	translatedPath := filepath.Join(dir, "deck_translated.json")
	translated, err := presentation.Load(translatedPath)
	require.NoError(t, err)
	assert.Equal(t, "French", translated.TargetLanguage)

	outPath := filepath.Join(dir, "result.pptx")
	require.NoError(t, runCommand(t,
		"reassemble", deckPath, translatedPath, "-o", outPath))

	pkg, err := pptx.Open(outPath)
	require.NoError(t, err)
	again, err := extractor.New(zap.NewNop()).Extract(pkg, outPath)
	require.NoError(t, err)
	assert.Equal(t, "Quarterly Review", again.Slides[0].ElementByShapeID(2).FullText)
}

func TestPipelineCommandRawProvider(t *testing.T) {
	deckPath := writeDeck(t)
	dir := filepath.Dir(deckPath)

	require.NoError(t, runCommand(t,
		"pipeline", deckPath,
		"--to", "French", "--provider", "raw",
		"--keep-files", "--report", "-q"))

	// 产物命名：{base}_{lang}.pptx 与中间工件
	outPath := filepath.Join(dir, "deck_french.pptx")
	pkg, err := pptx.Open(outPath)
	require.NoError(t, err)
	again, err := extractor.New(zap.NewNop()).Extract(pkg, outPath)
	require.NoError(t, err)
	assert.Equal(t, "Quarterly Review", again.Slides[0].ElementByShapeID(2).FullText)

	for _, artifact := range []string{
		"deck_extracted.json", "deck_translated.json", "deck_report.xlsx",
	} {
		_, err := os.Stat(filepath.Join(dir, artifact))
		assert.NoError(t, err, artifact)
	}
}

func TestPipelineRejectsUnknownLanguage(t *testing.T) {
	deckPath := writeDeck(t)
	err := runCommand(t,
		"pipeline", deckPath, "--to", "Klingon", "--provider", "raw", "-q")
	assert.Error(t, err)
}

func TestLanguagesCommand(t *testing.T) {
	resetFlags()
	root := NewRootCommand("test", "none", "today")
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"languages"})
	require.NoError(t, root.Execute())

	out := buf.String()
	assert.Contains(t, out, "French")
	assert.Contains(t, out, "Arabic")
	assert.Contains(t, out, "AR")
}

func TestBuildRegistry(t *testing.T) {
	cfg := config.NewDefaultConfig()
	lang, err := config.ResolveLanguage("French")
	require.NoError(t, err)

	registry, err := buildRegistry(cfg, lang)
	require.NoError(t, err)
	assert.Equal(t, []string{"deepl", "llm", "raw"}, registry.List())

	p, err := registry.Get("raw")
	require.NoError(t, err)
	assert.Equal(t, "raw", p.Name())
}

func TestArtifactPath(t *testing.T) {
	cfg := &config.Config{}
	assert.Equal(t, filepath.Join("decks", "deck_extracted.json"),
		artifactPath(cfg, filepath.Join("decks", "deck.pptx"), "_extracted.json"))

	// 中间产物链上去掉上一阶段后缀
	assert.Equal(t, filepath.Join("decks", "deck_translated.json"),
		artifactPath(cfg, filepath.Join("decks", "deck_extracted.json"), "_translated.json"))

	cfg.OutputDir = "out"
	assert.Equal(t, filepath.Join("out", "deck_report.xlsx"),
		artifactPath(cfg, filepath.Join("decks", "deck_extracted.json"), "_report.xlsx"))
}

func TestTranslatedPptxPath(t *testing.T) {
	cfg := &config.Config{}
	assert.Equal(t, filepath.Join("decks", "deck_french.pptx"),
		translatedPptxPath(cfg, filepath.Join("decks", "deck.pptx"), "French"))
}
