package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"github.com/simonhull/mediameta/internal/config"
)

func TestLoadDefaultsExpandPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("MEDIAMETA_DB", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if want := filepath.Join(tempHome, ".config", "mediameta", "config.toml"); resolved != want {
		t.Fatalf("resolved = %q, want %q", resolved, want)
	}

	wantStore := filepath.Join(tempHome, ".local", "share", "mediameta", "mediameta.db")
	if cfg.Store.Path != wantStore {
		t.Fatalf("unexpected store path: got %q want %q", cfg.Store.Path, wantStore)
	}
	if !cfg.Analysis.ParseID3v1 || !cfg.Analysis.ParseID3v2 {
		t.Fatal("expected both ID3 walkers enabled by default")
	}
	if cfg.Analysis.ID3v1Encoding != "iso-8859-1" {
		t.Fatalf("unexpected ID3v1 encoding: %q", cfg.Analysis.ID3v1Encoding)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "warn" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if cfg.Store.HistoryLimit != 20 {
		t.Fatalf("unexpected history limit: %d", cfg.Store.HistoryLimit)
	}
}

func TestLoadFile(t *testing.T) {
	t.Setenv("MEDIAMETA_DB", "")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[analysis]
parse_id3v1 = false
id3v1_encoding = " Windows-1251 "
workers = 3

[store]
path = "` + filepath.ToSlash(filepath.Join(dir, "results.db")) + `"

[logging]
format = "JSON"
level = "debug"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("resolved = %q exists = %v", resolved, exists)
	}
	if cfg.Analysis.ParseID3v1 {
		t.Fatal("expected parse_id3v1 = false from file")
	}
	if !cfg.Analysis.ParseID3v2 {
		t.Fatal("expected parse_id3v2 to keep its default")
	}
	if cfg.Analysis.ID3v1Encoding != "windows-1251" {
		t.Fatalf("encoding not normalized: %q", cfg.Analysis.ID3v1Encoding)
	}
	if cfg.Analysis.Workers != 3 {
		t.Fatalf("workers = %d", cfg.Analysis.Workers)
	}
	if cfg.Store.Path != filepath.Join(dir, "results.db") {
		t.Fatalf("store path = %q", cfg.Store.Path)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("logging = %+v", cfg.Logging)
	}
}

func TestLoadEnvStorePath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MEDIAMETA_DB", filepath.Join(dir, "env.db"))

	cfg, _, _, err := config.Load(filepath.Join(dir, "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Store.Path != filepath.Join(dir, "env.db") {
		t.Fatalf("store path = %q, want env override", cfg.Store.Path)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("MEDIAMETA_DB", "")
	tests := []struct {
		name string
		body string
		want string
	}{
		{"unknown encoding", "[analysis]\nid3v1_encoding = \"klingon\"\n", "analysis.id3v1_encoding"},
		{"negative workers", "[analysis]\nworkers = -1\n", "analysis.workers"},
		{"negative picture limit", "[analysis]\nmax_picture_bytes = -5\n", "analysis.max_picture_bytes"},
		{"log format", "[logging]\nformat = \"xml\"\n", "logging.format"},
		{"log level", "[logging]\nlevel = \"loud\"\n", "logging.level"},
		{"unknown key", "[analysis]\nbogus = true\n", "parse config"},
		{"bad toml", "[analysis\n", "parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.body), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, _, _, err := config.Load(path)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestSampleConfigMatchesDefaults(t *testing.T) {
	var cfg config.Config
	if err := toml.Unmarshal([]byte(config.SampleConfig()), &cfg); err != nil {
		t.Fatalf("sample config does not parse: %v", err)
	}
	if cfg != config.Default() {
		t.Fatalf("sample config = %+v, want defaults %+v", cfg, config.Default())
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if string(data) != config.SampleConfig() {
		t.Fatal("written sample differs from the embedded one")
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := config.Default()
	cfg.Analysis.Workers = 7
	out, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	var back config.Config
	if err := toml.Unmarshal([]byte(out), &back); err != nil {
		t.Fatalf("encoded config does not parse: %v\n%s", err, out)
	}
	if back != cfg {
		t.Fatalf("round trip = %+v, want %+v", back, cfg)
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := config.ExpandPath("~/a/b")
	if err != nil {
		t.Fatalf("ExpandPath returned error: %v", err)
	}
	if want := filepath.Join(home, "a", "b"); got != want {
		t.Fatalf("ExpandPath = %q, want %q", got, want)
	}
	if got, _ := config.ExpandPath(""); got != "" {
		t.Fatalf("ExpandPath(\"\") = %q", got)
	}
}
