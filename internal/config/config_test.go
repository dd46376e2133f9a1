package config

import (
	"os"
	"path/filepath"
	"testing"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(old) })
}

func TestFindEnvLocal(t *testing.T) {
	tests := []struct {
		name    string
		envAt   []string // dirs relative to the temp root holding a .env.local
		cwd     string
		wantDir string // "" means not found
	}{
		{"current dir", []string{"."}, ".", "."},
		{"parent dir", []string{"."}, "child", "."},
		{"grandparent dir", []string{"."}, "parent/child", "."},
		{"closest wins", []string{".", "parent"}, "parent/child", "parent"},
		{"not found", nil, ".", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			if err := os.MkdirAll(filepath.Join(root, tt.cwd), 0755); err != nil {
				t.Fatal(err)
			}
			for _, d := range tt.envAt {
				if err := os.WriteFile(filepath.Join(root, d, ".env.local"), []byte("X=1"), 0644); err != nil {
					t.Fatal(err)
				}
			}
			chdir(t, filepath.Join(root, tt.cwd))

			got := findEnvLocal()
			if tt.wantDir == "" {
				if got != "" {
					t.Errorf("expected no .env.local, got %s", got)
				}
				return
			}
			// Resolve symlinks for comparison (macOS /var -> /private/var)
			want, _ := filepath.EvalSymlinks(filepath.Join(root, tt.wantDir, ".env.local"))
			gotResolved, _ := filepath.EvalSymlinks(got)
			if gotResolved != want {
				t.Errorf("findEnvLocal() = %s, want %s", gotResolved, want)
			}
		})
	}
}

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	chdir(t, home)
	for _, k := range []string{
		"FARMLIST_CATALOG", "FARMLIST_DB_PATH", "FARMLIST_DB_PATH_FILE", "FARMLIST_LOG_LEVEL",
		"FARMLIST_OUTPUT", "FARMLIST_DAEMON_ADDR", "FARMLIST_DAEMON_TOKEN", "FARMLIST_DAEMON_TOKEN_FILE",
		"FARMLIST_SELECTED_BUNDLES_ONLY", "FARMLIST_CLICK_THRESHOLD", "FARMLIST_CLICK_LARGE_STEP", "FARMLIST_WEBHOOK_URLS",
	} {
		t.Setenv(k, "")
	}
	return home
}

func TestLoad_Defaults(t *testing.T) {
	home := isolate(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.ClickThreshold != 20 || cfg.ClickLargeStep != 10 || cfg.Output != "table" || cfg.SelectedBundlesOnly {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if want := filepath.Join(home, ".local", "share", "farmlist", "farmlist.db"); cfg.DBPath != want {
		t.Errorf("DBPath = %s, want %s", cfg.DBPath, want)
	}
}

func TestLoad_Precedence(t *testing.T) {
	home := isolate(t)
	dir := filepath.Join(home, ".config", "farmlist")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	yml := "catalog_dir: /from/yaml\nclick_threshold: 30\nselected_bundles_only: true\nlog_level: debug\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yml), 0644); err != nil {
		t.Fatal(err)
	}
	tokenFile := filepath.Join(home, "token")
	if err := os.WriteFile(tokenFile, []byte("s3cret\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FARMLIST_CATALOG", "/from/env")
	t.Setenv("FARMLIST_DAEMON_TOKEN_FILE", tokenFile)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.CatalogDir != "/from/env" {
		t.Errorf("env should override yaml, got %s", cfg.CatalogDir)
	}
	if cfg.ClickThreshold != 30 || !cfg.SelectedBundlesOnly || !cfg.Debug() {
		t.Errorf("yaml values not applied: %+v", cfg)
	}
	if cfg.DaemonToken != "s3cret" {
		t.Errorf("DaemonToken = %q, want trimmed file content", cfg.DaemonToken)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"FARMLIST_OUTPUT", "xml"},
		{"FARMLIST_CLICK_THRESHOLD", "many"},
		{"FARMLIST_CLICK_LARGE_STEP", "0"},
		{"FARMLIST_SELECTED_BUNDLES_ONLY", "maybe"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			isolate(t)
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestLoad_WebhookURLs(t *testing.T) {
	isolate(t)
	t.Setenv("FARMLIST_WEBHOOK_URLS", "http://a.example/hook, ,http://b.example/hook")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(cfg.WebhookURLs) != 2 || cfg.WebhookURLs[1] != "http://b.example/hook" {
		t.Errorf("WebhookURLs = %v", cfg.WebhookURLs)
	}
}
