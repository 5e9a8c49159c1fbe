package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/seatmap/pkg/errors"
	"github.com/matzehuels/seatmap/pkg/records"
)

// captureOut redirects status output into a buffer for the rest of the test.
func captureOut(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := out
	out = &buf
	t.Cleanup(func() { out = prev })
	return &buf
}

// writeConfig writes a config that keeps every cache under a temp dir.
func writeConfig(t *testing.T, extra string) (path, cacheDir string) {
	t.Helper()
	dir := t.TempDir()
	cacheDir = filepath.Join(dir, "cache")
	path = filepath.Join(dir, "config.toml")
	body := "[cache]\ndir = \"" + filepath.ToSlash(cacheDir) + "\"\n" + extra
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path, cacheDir
}

// execute runs the root command with args against a temp config.
func execute(t *testing.T, args ...string) (*CLI, error) {
	t.Helper()
	cfgPath, _ := writeConfig(t, "")
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs(append([]string{"--config", cfgPath}, args...))
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return c, root.ExecuteContext(context.Background())
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	want := []string{"render", "inspect", "view", "serve", "records", "cache", "completion"}
	for _, name := range want {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("--config flag missing")
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	cfgPath, cacheDir := writeConfig(t, "[render]\nformats = [\"png\"]\ny_axis = \"up\"\n")
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	captureOut(t)
	root.SetArgs([]string{"--config", cfgPath, "cache", "path"})
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	cfg := c.Config()
	if cfg.Render.YAxis != "up" || len(cfg.Render.Formats) != 1 || cfg.Render.Formats[0] != "png" {
		t.Errorf("render config not loaded: %+v", cfg.Render)
	}
	got, err := c.cacheRoot()
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.FromSlash(cacheDir) && got != filepath.ToSlash(cacheDir) {
		t.Errorf("cacheRoot() = %q, want %q", got, cacheDir)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	cfgPath, _ := writeConfig(t, "[render]\ny_axis = \"sideways\"\n")
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs([]string{"--config", cfgPath, "cache", "path"})
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	if err := root.Execute(); err == nil {
		t.Fatal("expected an error for an invalid y axis")
	}
}

func TestCachePathCommand(t *testing.T) {
	buf := captureOut(t)
	c, err := execute(t, "cache", "path")
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	want, _ := c.cacheRoot()
	if strings.TrimSpace(buf.String()) != want {
		t.Errorf("cache path printed %q, want %q", buf.String(), want)
	}
}

func TestRenderCommand(t *testing.T) {
	buf := captureOut(t)
	base := filepath.Join(t.TempDir(), "hall")

	_, err := execute(t, "render", "testdata/hall.json",
		"--records", "testdata/records.yaml",
		"--format", "svg,dot",
		"--select", "12",
		"-o", base)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	svg, err := os.ReadFile(base + ".svg")
	if err != nil {
		t.Fatalf("read svg: %v", err)
	}
	if !bytes.Contains(svg, []byte("<svg")) {
		t.Error("svg artifact does not look like SVG")
	}
	if _, err := os.Stat(base + ".dot"); err != nil {
		t.Errorf("dot artifact missing: %v", err)
	}
	if !strings.Contains(buf.String(), "Test hall") {
		t.Errorf("summary should name the chart, got:\n%s", buf.String())
	}
}

func TestRenderCommandWithoutDiagram(t *testing.T) {
	captureOut(t)
	_, err := execute(t, "render")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("err = %v, want invalid input", err)
	}
}

func TestInspectCommandTable(t *testing.T) {
	buf := captureOut(t)
	if _, err := execute(t, "inspect", "testdata/hall.json", "-r", "testdata/records.yaml"); err != nil {
		t.Fatalf("inspect: %v", err)
	}
	got := buf.String()
	for _, want := range []string{"Test hall", "SECTION", "12", "Unknown", "380", "skipped"} {
		if !strings.Contains(got, want) {
			t.Errorf("inspect output missing %q:\n%s", want, got)
		}
	}
}

func TestInspectCommandJSON(t *testing.T) {
	buf := captureOut(t)
	if _, err := execute(t, "inspect", "testdata/hall.json", "-r", "testdata/records.yaml", "--json"); err != nil {
		t.Fatalf("inspect --json: %v", err)
	}

	var report inspectReport
	if err := json.Unmarshal(buf.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v\n%s", err, buf.String())
	}
	if report.Name != "Test hall" || report.Skipped != 1 {
		t.Errorf("report header = %+v", report)
	}
	if len(report.Sections) != 3 {
		t.Fatalf("sections = %d, want 3", len(report.Sections))
	}
	s := report.Sections[0]
	if s.ID != "12" || len(s.Parts) != 2 {
		t.Errorf("first section = %+v", s)
	}
	if s.Label != [2]float64{-0.5, -0.5} {
		t.Errorf("label = %v, want [-0.5 -0.5]", s.Label)
	}
	if s.Record == nil || s.Record.Price != "380" {
		t.Errorf("record = %+v", s.Record)
	}
	if report.Sections[2].Record != nil {
		t.Error("Unknown section should have no record")
	}
}

func TestInspectCommandSection(t *testing.T) {
	buf := captureOut(t)
	if _, err := execute(t, "inspect", "testdata/hall.json", "-r", "testdata/records.yaml", "--section", "7"); err != nil {
		t.Fatalf("inspect --section: %v", err)
	}
	if !strings.Contains(buf.String(), "Section 7") {
		t.Errorf("detail panel missing title:\n%s", buf.String())
	}

	_, err := execute(t, "inspect", "testdata/hall.json", "--section", "99")
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestRecordsImport(t *testing.T) {
	buf := captureOut(t)
	db := filepath.Join(t.TempDir(), "venue.db")

	if _, err := execute(t, "records", "import", "testdata/records.yaml", "--to", "sqlite:"+db); err != nil {
		t.Fatalf("records import: %v", err)
	}
	if !strings.Contains(buf.String(), "Imported 2 records") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}

	store, err := records.OpenSQLite(db)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	got, err := store.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if rec, ok := got.Get("12"); !ok || rec.Row != "A" || rec.TicketCount != 4 {
		t.Errorf("record 12 = %+v, %v", rec, ok)
	}
}

func TestRecordsImportMissingSource(t *testing.T) {
	captureOut(t)
	db := filepath.Join(t.TempDir(), "venue.db")
	if _, err := execute(t, "records", "import", "testdata/missing.yaml", "--to", "sqlite:"+db); err == nil {
		t.Fatal("expected an error for a missing source")
	}
}

func TestRecordsImportNoTarget(t *testing.T) {
	captureOut(t)
	_, err := execute(t, "records", "import", "testdata/records.yaml")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("err = %v, want invalid input", err)
	}
}

func TestCacheClearCommand(t *testing.T) {
	buf := captureOut(t)
	cfgPath, cacheDir := writeConfig(t, "")
	render := filepath.Join(cacheDir, "render")
	if err := os.MkdirAll(render, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(render, "entry.json"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs([]string{"--config", cfgPath, "cache", "clear"})
	if err := root.Execute(); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if !strings.Contains(buf.String(), "Cleared 1 cached entries") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
	entries, _ := os.ReadDir(render)
	if len(entries) != 0 {
		t.Errorf("render cache still has %d entries", len(entries))
	}
}

func TestCompletionCommand(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var buf bytes.Buffer
	root.SetOut(&buf)
	cfgPath, _ := writeConfig(t, "")
	root.SetArgs([]string{"--config", cfgPath, "completion", "bash"})
	if err := root.Execute(); err != nil {
		t.Fatalf("completion: %v", err)
	}
	if !strings.Contains(buf.String(), "seatmap") {
		t.Error("bash completion should mention the program name")
	}
}
