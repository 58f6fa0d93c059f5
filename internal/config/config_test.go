package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.APIURL != DefaultAPIURL || c.ModelServiceURL != DefaultModelServiceURL {
		t.Fatalf("unexpected urls: %+v", c)
	}
	if c.HTTPTimeoutSec != 0 {
		t.Fatalf("expected no timeout by default, got %d", c.HTTPTimeoutSec)
	}
	if filepath.Base(c.RunsDir) != "runs" {
		t.Fatalf("unexpected runs dir %q", c.RunsDir)
	}
}

func TestSaveThenLoadWithEnvOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.yaml")
	in := &Global{APIURL: "http://api.test/api", DefaultModel: "human", HTTPTimeoutSec: 30, ListenAddr: ":9000"}
	got, err := Save(in, path)
	if err != nil || got != path {
		t.Fatalf("save: %q %v", got, err)
	}

	t.Setenv("MOLSCOPE_LISTEN_ADDR", ":7000")
	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.APIURL != "http://api.test/api" || c.DefaultModel != "human" || c.HTTPTimeoutSec != 30 {
		t.Fatalf("file values not applied: %+v", c)
	}
	if c.ListenAddr != ":7000" {
		t.Fatalf("env must win over file, got %q", c.ListenAddr)
	}
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("api_url: [unterminated\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}
