package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/fluidc/internal/config"
	"github.com/matzehuels/fluidc/pkg/errors"
	"github.com/matzehuels/fluidc/pkg/fluid"
	"github.com/matzehuels/fluidc/pkg/pipeline"
)

// isolate points every fluidc directory at a fresh temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv(config.EnvPath, filepath.Join(dir, "absent.toml"))
	return dir
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestDetectCSVToStdout(t *testing.T) {
	isolate(t)

	out, err := runCLI(t, "detect", "--dataset", "triangles", "-k", "2", "--seed", "3", "--format", "csv")
	if err != nil {
		t.Fatalf("detect error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 7 || lines[0] != "node,community" {
		t.Errorf("csv output = %q", out)
	}
}

func TestDetectToFileAndHistory(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "karate.json")

	if _, err := runCLI(t, "detect", "--dataset", "karate", "--seed", "9", "-o", path); err != nil {
		t.Fatalf("detect error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var rep pipeline.Report
	if err := json.Unmarshal(data, &rep); err != nil {
		t.Fatalf("output is not a JSON report: %v", err)
	}
	if rep.Nodes != 34 || rep.K != 2 || rep.Seed != 9 || rep.RunID == "" {
		t.Errorf("report nodes=%d k=%d seed=%d run=%q", rep.Nodes, rep.K, rep.Seed, rep.RunID)
	}

	out, err := runCLI(t, "history", "list")
	if err != nil {
		t.Fatalf("history list error: %v", err)
	}
	if !strings.Contains(out, rep.RunID) {
		t.Errorf("history list should mention run %s:\n%s", rep.RunID, out)
	}

	out, err = runCLI(t, "history", "show", rep.RunID, "--json")
	if err != nil {
		t.Fatalf("history show error: %v", err)
	}
	if !strings.Contains(out, `"source": "dataset:karate"`) {
		t.Errorf("history show = %s", out)
	}

	// A second identical run is served from the cache.
	path2 := filepath.Join(dir, "again.json")
	if _, err := runCLI(t, "detect", "--dataset", "karate", "--seed", "9", "-o", path2, "--no-history"); err != nil {
		t.Fatal(err)
	}
	data, _ = os.ReadFile(path2)
	var again pipeline.Report
	if err := json.Unmarshal(data, &again); err != nil {
		t.Fatal(err)
	}
	if !again.CacheHit || again.RunID != "" {
		t.Errorf("second run cache_hit=%v run_id=%q", again.CacheHit, again.RunID)
	}
}

func TestDetectConfigDefaults(t *testing.T) {
	dir := isolate(t)
	cfgPath := filepath.Join(dir, "fluidc.toml")
	if err := os.WriteFile(cfgPath, []byte("[defaults]\nk = 2\nvariant = \"fluidc_plus\"\nseed = 5\n"), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, "--config", cfgPath, "detect", "--dataset", "karate", "--format", "yaml", "--no-history")
	if err != nil {
		t.Fatalf("detect error: %v", err)
	}
	for _, want := range []string{"variant: fluidc_plus", "seed: 5", "k: 2"} {
		if !strings.Contains(out, want) {
			t.Errorf("yaml output missing %q", want)
		}
	}

	out, err = runCLI(t, "--config", cfgPath, "detect", "--dataset", "karate", "--variant", "fluidc", "--format", "yaml", "--no-history")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "variant: fluidc\n") {
		t.Error("--variant should override the config file")
	}
}

func TestDetectErrors(t *testing.T) {
	dir := isolate(t)
	edges := filepath.Join(dir, "edges.txt")
	if err := os.WriteFile(edges, []byte("a b\n"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"no input", []string{"detect", "-k", "2"}, errors.ErrCodeInvalidInput},
		{"file and dataset", []string{"detect", edges, "--dataset", "karate", "-k", "2"}, errors.ErrCodeInvalidInput},
		{"k too large", []string{"detect", edges, "-k", "3"}, errors.ErrCodeInvalidCommunityCount},
		{"bad variant", []string{"detect", edges, "-k", "1", "--variant", "louvain"}, errors.ErrCodeInvalidVariant},
		{"bad format", []string{"detect", edges, "-k", "1", "--format", "gif"}, errors.ErrCodeInvalidFormat},
		{"missing file", []string{"detect", filepath.Join(dir, "nope.txt"), "-k", "1"}, errors.ErrCodeFileNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.args...)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestTrialsJSON(t *testing.T) {
	isolate(t)

	out, err := runCLI(t, "trials", "--dataset", "karate", "--trials", "3", "--seed", "10", "--json", "--no-history")
	if err != nil {
		t.Fatalf("trials error: %v", err)
	}
	var res pipeline.TrialsResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode trials: %v", err)
	}
	if len(res.Trials) != 3 {
		t.Errorf("got %d trials, want 3", len(res.Trials))
	}
}

func TestConfigShowAndCachePath(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CACHE_HOME is only honored on linux")
	}
	dir := isolate(t)

	out, err := runCLI(t, "config", "show")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "[server]") {
		t.Errorf("config show = %q", out)
	}

	out, err = runCLI(t, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := strings.TrimSpace(out), filepath.Join(dir, "cache", appName); got != want {
		t.Errorf("cache path = %q, want %q", got, want)
	}
}

func TestHistoryShowInvalidID(t *testing.T) {
	isolate(t)
	if _, err := runCLI(t, "history", "show", "../etc"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

func TestResolveFormat(t *testing.T) {
	tests := []struct {
		name     string
		flag     string
		output   string
		fallback string
		want     string
		wantErr  bool
	}{
		{"fallback", "", "", "yaml", "yaml", false},
		{"empty fallback", "", "", "", "json", false},
		{"from extension", "", "out.svg", "json", "svg", false},
		{"yml extension", "", "out.yml", "json", "yaml", false},
		{"gv extension", "", "out.gv", "json", "dot", false},
		{"unknown extension", "", "out.txt", "csv", "csv", false},
		{"explicit flag", "dot", "out.svg", "json", "dot", false},
		{"invalid flag", "gif", "", "json", "gif", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cobra.Command{}
			var format string
			cmd.Flags().StringVar(&format, "format", "", "")
			if tt.flag != "" {
				_ = cmd.Flags().Set("format", tt.flag)
			}
			got, err := resolveFormat(cmd, format, tt.output, tt.fallback)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("resolveFormat() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatRelativeTime(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{10 * time.Second, "just now"},
		{5 * time.Minute, "5m ago"},
		{3 * time.Hour, "3h ago"},
		{50 * time.Hour, "2d ago"},
		{30 * 24 * time.Hour, "May 16, 2025"},
	}
	for _, tt := range tests {
		if got := formatRelativeTime(now.Add(-tt.ago), now); got != tt.want {
			t.Errorf("formatRelativeTime(-%v) = %q, want %q", tt.ago, got, tt.want)
		}
	}
}

func TestTrialModelNavigation(t *testing.T) {
	trials := make([]pipeline.Trial, 5)
	for i := range trials {
		trials[i] = pipeline.Trial{
			Seed:      uint64(i),
			Partition: fluid.Result{Nodes: []string{"a"}, Labels: []int{0}, K: 1, Stop: fluid.StopConverged},
			Sizes:     []int{1},
		}
	}
	var m tea.Model = TrialModel{Trials: trials, Height: 2}

	key := func(s string) tea.KeyMsg {
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
	for range 3 {
		m, _ = m.Update(key("j"))
	}
	tm := m.(TrialModel)
	if tm.Cursor != 3 || tm.Offset != 2 {
		t.Errorf("after 3×down cursor=%d offset=%d, want 3, 2", tm.Cursor, tm.Offset)
	}

	for range 10 {
		m, _ = m.Update(key("j"))
	}
	if tm := m.(TrialModel); tm.Cursor != 4 {
		t.Errorf("cursor = %d, want clamp at 4", tm.Cursor)
	}

	m, _ = m.Update(key("g"))
	tm = m.(TrialModel)
	if tm.Cursor != 0 || tm.Offset != 0 {
		t.Errorf("after home cursor=%d offset=%d", tm.Cursor, tm.Offset)
	}
	if !strings.Contains(tm.View(), "[1/5]") {
		t.Error("view should show the position")
	}

	if _, cmd := m.Update(key("q")); cmd == nil {
		t.Error("q should quit")
	}
}
