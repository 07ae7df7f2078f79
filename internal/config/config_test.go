package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

// isolate points HOME and the working directory at fresh temp dirs so no
// developer .env file leaks into a test.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())
	return home
}

func TestLoad_Defaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	wantDB := filepath.Join(home, ".config", "gradebook", "history.db")
	if cfg.DatabasePath != wantDB {
		t.Errorf("DatabasePath = %q, want %q", cfg.DatabasePath, wantDB)
	}
	if cfg.RosterPath != "" {
		t.Errorf("RosterPath = %q, want empty", cfg.RosterPath)
	}
	if cfg.AlertThreshold != defaultAlertThreshold {
		t.Errorf("AlertThreshold = %v, want %v", cfg.AlertThreshold, defaultAlertThreshold)
	}
	if cfg.LogLevel != defaultLogLevel {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, defaultLogLevel)
	}
	if !cfg.AlertsEnabled() {
		t.Error("alerts should be enabled by default")
	}

	if _, err := os.Stat(filepath.Dir(wantDB)); os.IsNotExist(err) {
		t.Error("database directory was not created")
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	isolate(t)
	tmpDir := t.TempDir()

	t.Setenv("GRADEBOOK_DATABASE_PATH", filepath.Join(tmpDir, "db", "history.db"))
	t.Setenv("GRADEBOOK_ROSTER_PATH", filepath.Join(tmpDir, "roster", "grades.json"))
	t.Setenv("GRADEBOOK_ALERT_THRESHOLD", "65.5")
	t.Setenv("GRADEBOOK_LOG_LEVEL", "debug")
	t.Setenv("GRADEBOOK_STUDENT_NAME", "  Ada Lovelace ")

	cfg, err := Load(viper.New())
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.AlertThreshold != 65.5 {
		t.Errorf("AlertThreshold = %v, want 65.5", cfg.AlertThreshold)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.StudentName != "Ada Lovelace" {
		t.Errorf("StudentName = %q, want trimmed name", cfg.StudentName)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, "roster")); os.IsNotExist(err) {
		t.Error("roster directory was not created")
	}
}

func TestLoad_OverrideWinsOverEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("GRADEBOOK_ALERT_THRESHOLD", "50")

	v := viper.New()
	v.Set(KeyAlertThreshold, 80)

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.AlertThreshold != 80 {
		t.Errorf("AlertThreshold = %v, want 80", cfg.AlertThreshold)
	}
}

func TestLoad_WithEnvFile(t *testing.T) {
	isolate(t)
	cwd, _ := os.Getwd()

	content := "GRADEBOOK_STUDENT_NAME=Grace Hopper\nGRADEBOOK_ALERT_THRESHOLD=0\n"
	if err := os.WriteFile(filepath.Join(cwd, ".env"), []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	t.Cleanup(func() {
		os.Unsetenv("GRADEBOOK_STUDENT_NAME")
		os.Unsetenv("GRADEBOOK_ALERT_THRESHOLD")
	})

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.StudentName != "Grace Hopper" {
		t.Errorf("StudentName = %q, want Grace Hopper", cfg.StudentName)
	}
	if cfg.AlertsEnabled() {
		t.Error("a zero threshold should disable alerts")
	}
}

func TestLoad_NegativeThreshold(t *testing.T) {
	isolate(t)
	t.Setenv("GRADEBOOK_ALERT_THRESHOLD", "-1")

	if _, err := Load(nil); err == nil {
		t.Error("Load() should reject a negative alert threshold")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"Valid", Config{DatabasePath: "x.db", AlertThreshold: 70}, false},
		{"ZeroThreshold", Config{DatabasePath: "x.db"}, false},
		{"EmptyDatabase", Config{AlertThreshold: 70}, true},
		{"NegativeThreshold", Config{DatabasePath: "x.db", AlertThreshold: -0.1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestExpandHome(t *testing.T) {
	home := isolate(t)

	if got := expandHome("~/grades.json"); got != filepath.Join(home, "grades.json") {
		t.Errorf("expandHome() = %q", got)
	}
	if got := expandHome("/abs/grades.json"); got != "/abs/grades.json" {
		t.Errorf("expandHome() changed an absolute path: %q", got)
	}
	if got := expandHome(""); got != "" {
		t.Errorf("expandHome(\"\") = %q", got)
	}
}

func TestEnsureDir(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "dir")

	if err := ensureDir(path); err != nil {
		t.Fatalf("ensureDir() failed: %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("directory was not created")
	}

	if err := ensureDir(""); err != nil {
		t.Error("ensureDir(\"\") should not error")
	}
}

func TestGetEnvPaths(t *testing.T) {
	home := isolate(t)
	cwd, _ := os.Getwd()

	paths := getEnvPaths()
	if len(paths) != 2 {
		t.Fatalf("getEnvPaths() returned %d paths, want 2", len(paths))
	}
	if paths[0] != filepath.Join(cwd, ".env") {
		t.Errorf("first path = %q, want current directory .env", paths[0])
	}
	if paths[1] != filepath.Join(home, ".config", "gradebook", ".env") {
		t.Errorf("second path = %q, want config directory .env", paths[1])
	}
}
