package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.ScoreMin != 60 || c.ScoreMax != 100 {
		t.Fatalf("score defaults = %v..%v", c.ScoreMin, c.ScoreMax)
	}
	if c.ListenAddr != "127.0.0.1:8501" || c.RadarSize != 2400 || c.LogLevel != "info" {
		t.Fatalf("unexpected defaults: %+v", c)
	}
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	c := Default()
	c.DataPath = "/data/suburbs.csv"
	c.ScoreMin = 70
	c.RadarSuburbs = []string{"Ashgrove", "Carlton"}
	if err := Save(c, ""); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(home, ".suburbscope", "config.yaml")); err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	got, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.DataPath != c.DataPath || got.ScoreMin != 70 {
		t.Fatalf("round trip lost values: %+v", got)
	}
	if len(got.RadarSuburbs) != 2 || got.RadarSuburbs[1] != "Carlton" {
		t.Fatalf("radar suburbs = %v", got.RadarSuburbs)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	path := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(path, []byte("listen_addr: 0.0.0.0:9000\ntitle: From file\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SUBURBSCOPE_TITLE", "From env")
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.ListenAddr != "0.0.0.0:9000" {
		t.Fatalf("file value not applied: %q", c.ListenAddr)
	}
	if c.Title != "From env" {
		t.Fatalf("env should win over file, got %q", c.Title)
	}
}

func TestExplicitMissingFileFails(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}
