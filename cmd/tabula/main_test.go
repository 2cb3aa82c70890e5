package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/poiesic/tabula"
	"github.com/poiesic/tabula/ai"
	"github.com/poiesic/tabula/ai/mock"
	"github.com/poiesic/tabula/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

const sessionsCSV = "school,district,sessions\nLincoln,North,12\nAdams,South,7\nMonroe,North,1\n"

// useMockProvider makes every command run against in-process fakes.
func useMockProvider(t *testing.T) *mock.MockProvider {
	t.Helper()
	t.Setenv(ai.APIKeyEnv, "sk-test")

	provider := mock.NewMockProviderWithServices(mock.NewMockEmbedder(), mock.NewMockCompleter())
	prev := openApp
	openApp = func(cfg *config.Config) (*tabula.Tabula, error) {
		return tabula.New(cfg, tabula.WithProvider(provider))
	}
	t.Cleanup(func() { openApp = prev })
	return provider
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	app.Reader = strings.NewReader(stdin)
	app.ExitErrHandler = func(*cli.Context, error) {}
	err := app.Run(append([]string{"tabula", "--log-level", "error"}, args...))
	return out.String(), err
}

func ingestFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	csv := filepath.Join(dir, "sessions.csv")
	require.NoError(t, os.WriteFile(csv, []byte(sessionsCSV), 0644))
	index := filepath.Join(dir, "Embeddings")

	out, err := run(t, "", "ingest", "--index", index, csv)
	require.NoError(t, err)
	assert.Contains(t, out, "sessions.csv: 3 rows, 3 fragments, 1 batches")
	return index
}

func TestSetupLogger(t *testing.T) {
	_, err := run(t, "", "--log-level", "verbose", "inspect", "--index", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestInspectRequiresIndex(t *testing.T) {
	_, err := run(t, "", "inspect")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index")
}

func TestIngest(t *testing.T) {
	useMockProvider(t)
	index := ingestFixture(t)

	out, err := run(t, "", "inspect", "--index", index)
	require.NoError(t, err)
	assert.Contains(t, out, "Embedding model: text-embedding-3-small")
	assert.Contains(t, out, "Dimensions:      384")
	assert.Contains(t, out, "Fragments:       3")
	assert.Contains(t, out, "Stored entries:  3")
}

func TestIngest_Errors(t *testing.T) {
	useMockProvider(t)

	t.Run("no files", func(t *testing.T) {
		_, err := run(t, "", "ingest")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "input file")
	})

	t.Run("missing file is reported", func(t *testing.T) {
		index := filepath.Join(t.TempDir(), "Embeddings")
		out, err := run(t, "", "ingest", "--index", index, filepath.Join(t.TempDir(), "missing.csv"))
		require.Error(t, err)
		assert.Contains(t, out, "missing.csv: FAILED after 0 fragments")
		assert.Contains(t, err.Error(), "1 of 1 files failed")
	})
}

func TestIngest_Append(t *testing.T) {
	useMockProvider(t)
	index := ingestFixture(t)

	extra := filepath.Join(t.TempDir(), "journey.csv")
	require.NoError(t, os.WriteFile(extra, []byte("step,count\nvisit,4\n"), 0644))

	out, err := run(t, "", "ingest", "--append", "--index", index, extra)
	require.NoError(t, err)
	assert.Contains(t, out, "holds 4 fragments")
}

func TestAsk(t *testing.T) {
	provider := useMockProvider(t)
	index := ingestFixture(t)

	out, err := run(t, "", "ask", "--index", index, "Which", "schools", "are", "North?")
	require.NoError(t, err)
	assert.Contains(t, out, "echo: Which schools are North?")
	assert.Contains(t, out, "Sources:")
	assert.Contains(t, out, "sessions.csv row 1")
	assert.Equal(t, 1, provider.GetMockCompleter().CallCount())
}

func TestAsk_Errors(t *testing.T) {
	useMockProvider(t)

	t.Run("no question", func(t *testing.T) {
		_, err := run(t, "", "ask", "--index", t.TempDir())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "question")
	})

	t.Run("no index", func(t *testing.T) {
		_, err := run(t, "", "ask", "--index", filepath.Join(t.TempDir(), "missing"), "hello")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "index not found")
	})
}

func TestChat(t *testing.T) {
	useMockProvider(t)
	index := ingestFixture(t)
	transcript := filepath.Join(t.TempDir(), "chat.txt")

	stdin := "/history\nWho is in the South?\n\n/history\n/reset\nAnd the North?\n/quit\nignored\n"
	out, err := run(t, stdin, "chat", "--index", index, "--transcript", transcript)
	require.NoError(t, err)

	assert.Contains(t, out, "No questions yet.")
	assert.Contains(t, out, "echo: Who is in the South?")
	assert.Contains(t, out, "User: Who is in the South?\nAssistant: echo: Who is in the South?")
	assert.Contains(t, out, "Conversation cleared.")
	assert.NotContains(t, out, "ignored")

	data, err := os.ReadFile(transcript)
	require.NoError(t, err)
	assert.Equal(t, "User: And the North?\nAssistant: echo: And the North?\n\n", string(data))
}

func TestReembed(t *testing.T) {
	useMockProvider(t)
	index := ingestFixture(t)

	out, err := run(t, "", "reembed", "--index", index, "--embedding-model", "nomic-embed-text")
	require.NoError(t, err)
	assert.Contains(t, out, "Reembedded 3 fragments: text-embedding-3-small (384 dimensions) -> nomic-embed-text (384 dimensions)")

	out, err = run(t, "", "inspect", "--index", index)
	require.NoError(t, err)
	assert.Contains(t, out, "Embedding model: nomic-embed-text")

	_, err = run(t, "", "ask", "--index", index, "hello")
	require.Error(t, err, "the old model no longer matches the index")
}

func TestLoadConfig_Overrides(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "tabula.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("top_k: 3\nindex_dir: from-file\n"), 0644))

	var got *config.Config
	app := &cli.App{
		Name: "tabula",
		Commands: []*cli.Command{{
			Name:  "probe",
			Flags: commonFlags(),
			Action: func(c *cli.Context) error {
				var err error
				got, err = loadConfig(c)
				return err
			},
		}},
	}
	require.NoError(t, app.Run([]string{"tabula", "probe", "--config", cfgPath, "--index", "from-flag", "--provider", "ollama"}))

	assert.Equal(t, 3, got.TopK)
	assert.Equal(t, "from-flag", got.IndexDir)
	assert.Equal(t, "ollama", got.AI.Provider)
	assert.Equal(t, "gpt-4o-mini", got.AI.CompletionModel)
}
