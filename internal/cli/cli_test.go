package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/khanglvm/paloma/internal/config"
)

// testEnv isolates a CLI run in a temporary home with sqlite storage.
type testEnv struct {
	t          *testing.T
	dir        string
	configPath string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("PALOMA_STORAGE_DRIVER", "sqlite")
	t.Setenv("PALOMA_STORAGE_PATH", filepath.Join(dir, "learning.db"))
	t.Setenv("PALOMA_LOGGING_LEVEL", "error")

	return &testEnv{t: t, dir: dir, configPath: filepath.Join(dir, "paloma.json")}
}

func (e *testEnv) run(args ...string) (string, error) {
	return e.runWithInput("", args...)
}

func (e *testEnv) runWithInput(input string, args ...string) (string, error) {
	e.t.Helper()

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetIn(strings.NewReader(input))
	cmd.SetArgs(append([]string{"--config", e.configPath}, args...))

	err := cmd.Execute()
	return buf.String(), err
}

func (e *testEnv) mustRun(args ...string) string {
	e.t.Helper()

	out, err := e.run(args...)
	if err != nil {
		e.t.Fatalf("%v failed: %v\n%s", args, err, out)
	}
	return out
}

func TestRootCommands(t *testing.T) {
	cmd := NewRootCmd()

	want := []string{"ask", "feedback", "insights", "profile", "learning", "knowledge", "config", "serve", "version"}
	for _, name := range want {
		found := false
		for _, c := range cmd.Commands() {
			if c.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Root command missing %q", name)
		}
	}
}

func TestAskCreatesConfig(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("ask", "Comment créer une facture d'achat ?")

	if !strings.Contains(out, "/achats/factures/nouvelle") {
		t.Errorf("Expected navigation action in output:\n%s", out)
	}
	if !strings.Contains(out, "Confidence:") {
		t.Errorf("Expected confidence in output:\n%s", out)
	}
	if _, err := os.Stat(env.configPath); err != nil {
		t.Errorf("Expected config to be created: %v", err)
	}
}

func TestAskJSON(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("ask", "tva", "--json")

	var resp struct {
		Message    string  `json:"message"`
		Confidence float64 `json:"confidence"`
		Metadata   struct {
			ResponseID string `json:"responseId"`
		} `json:"metadata"`
	}
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("Invalid JSON output: %v\n%s", err, out)
	}
	if resp.Message == "" {
		t.Error("Expected a message")
	}
	if resp.Confidence < 0 || resp.Confidence > 1 {
		t.Errorf("Confidence out of range: %v", resp.Confidence)
	}
	if resp.Metadata.ResponseID == "" {
		t.Error("Expected a response id")
	}
}

func TestFeedbackPersistsProfile(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("feedback", "Comment créer une facture d'achat ?", "positive", "--user", "amina", "--response-time", "3s")
	if !strings.Contains(out, "satisfaction 1.00") {
		t.Errorf("Expected full satisfaction, got:\n%s", out)
	}

	out = env.mustRun("profile", "amina")
	if !strings.Contains(out, "User: amina") {
		t.Errorf("Expected user in profile output:\n%s", out)
	}
	if !strings.Contains(out, "Expertise: beginner") {
		t.Errorf("Expected persisted profile, got:\n%s", out)
	}
}

func TestFeedbackRejectsUnknownValue(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run("feedback", "tva", "great")
	if err == nil {
		t.Fatal("Expected error for unknown feedback")
	}
	if !strings.Contains(err.Error(), "unknown feedback") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestLearningToggle(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("learning", "disable")
	if !strings.Contains(out, "Learning disabled") {
		t.Errorf("Unexpected output: %s", out)
	}

	cfg, err := config.LoadFile(env.configPath)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if cfg.Learning.Enabled {
		t.Error("Expected learning.enabled=false in file")
	}
	if cfg.Storage.Driver != "sqlite" {
		t.Errorf("Toggle must not persist env overrides, got driver %q", cfg.Storage.Driver)
	}

	out = env.mustRun("learning", "status")
	if !strings.Contains(out, "Enabled:   false") {
		t.Errorf("Expected disabled status:\n%s", out)
	}

	out = env.mustRun("feedback", "tva", "positive")
	if !strings.Contains(out, "Learning is disabled") {
		t.Errorf("Expected feedback to be ignored:\n%s", out)
	}

	env.mustRun("learning", "enable")
	out = env.mustRun("learning", "status")
	if !strings.Contains(out, "Enabled:   true") {
		t.Errorf("Expected enabled status:\n%s", out)
	}
}

func TestLearningReset(t *testing.T) {
	env := newTestEnv(t)

	env.mustRun("feedback", "tva", "negative")

	out, err := env.runWithInput("n\n", "learning", "reset")
	if err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if !strings.Contains(out, "Cancelled") {
		t.Errorf("Expected cancellation:\n%s", out)
	}

	out = env.mustRun("learning", "reset", "--yes")
	if !strings.Contains(out, "cleared") {
		t.Errorf("Expected reset confirmation:\n%s", out)
	}

	out = env.mustRun("learning", "status")
	if !strings.Contains(out, "Patterns:  0") || !strings.Contains(out, "Profiles:  0") {
		t.Errorf("Expected empty learning state:\n%s", out)
	}
}

func TestLearningExport(t *testing.T) {
	env := newTestEnv(t)
	path := filepath.Join(env.dir, "export.json")

	env.mustRun("feedback", "tva", "positive")
	env.mustRun("learning", "export", "-o", path)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	var export map[string]interface{}
	if err := json.Unmarshal(data, &export); err != nil {
		t.Fatalf("Invalid export: %v", err)
	}
	if _, ok := export["patterns"]; !ok {
		t.Errorf("Export missing patterns: %s", data)
	}
}

func TestKnowledgeCommands(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("knowledge", "list", "--category", "fiscalite")
	if !strings.Contains(out, "tva") {
		t.Errorf("Expected tva in fiscalite entries:\n%s", out)
	}

	out = env.mustRun("knowledge", "search", "tva")
	if strings.Contains(out, "No entries found.") || !strings.Contains(out, "tva") {
		t.Errorf("Expected search hit for tva:\n%s", out)
	}

	catalog := filepath.Join(env.dir, "catalog.yaml")
	out = env.mustRun("knowledge", "export", "-o", catalog)
	if !strings.Contains(out, "Exported") {
		t.Errorf("Unexpected export output:\n%s", out)
	}

	out = env.mustRun("knowledge", "validate", catalog)
	if !strings.Contains(out, "entries") {
		t.Errorf("Unexpected validate output:\n%s", out)
	}
	if !strings.Contains(out, `"reouverture-exercice" does not exist`) {
		t.Errorf("Expected a dangling related topic warning:\n%s", out)
	}

	if _, err := env.run("knowledge", "export"); err == nil {
		t.Error("Expected error without --output")
	}
}

func TestConfigCommands(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("config", "init")
	if !strings.Contains(out, env.configPath) {
		t.Errorf("Expected config path in output:\n%s", out)
	}

	if _, err := env.run("config", "init"); err == nil {
		t.Error("Expected error when config exists")
	}
	env.mustRun("config", "init", "--force")

	out = env.mustRun("config", "path")
	if strings.TrimSpace(out) != env.configPath {
		t.Errorf("Expected %q, got %q", env.configPath, out)
	}

	out = env.mustRun("config", "validate")
	if !strings.Contains(out, "✓ Storage: sqlite") {
		t.Errorf("Unexpected validate output:\n%s", out)
	}

	out = env.mustRun("config", "show")
	var cfg config.Config
	if err := json.Unmarshal([]byte(out), &cfg); err != nil {
		t.Fatalf("Invalid config JSON: %v", err)
	}
	if cfg.Learning.StoreKey != "paloma_learning_data" {
		t.Errorf("Unexpected store key %q", cfg.Learning.StoreKey)
	}
}

func TestConfigValidateMissingFile(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run("config", "validate")
	if err == nil {
		t.Fatal("Expected error for missing config")
	}

	var notFound *config.ConfigNotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("Expected ConfigNotFoundError, got %T", err)
	}
}

func TestVersionCommand(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("version")
	for _, expected := range []string{"Version:", "Commit:", "Built:"} {
		if !strings.Contains(out, expected) {
			t.Errorf("Version output missing %q", expected)
		}
	}
}
