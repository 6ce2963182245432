package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadAppliesFileValuesAndDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfigFile(t, `
server:
  port: 8080
  data_dir: `+dir+`
db:
  file: `+filepath.Join(dir, "test.db")+`
model:
  conf_threshold: 0.7
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Values from the file
	if cfg.Server.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Model.ConfThreshold != 0.7 {
		t.Errorf("expected conf_threshold 0.7, got %f", cfg.Model.ConfThreshold)
	}

	// Defaults for everything the file does not mention
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("expected default host, got %q", cfg.Server.Host)
	}
	if cfg.Server.MaxUploadMB != 16 {
		t.Errorf("expected default max_upload_mb 16, got %d", cfg.Server.MaxUploadMB)
	}
	if cfg.Model.DetectionSize != 640 {
		t.Errorf("expected default detection_size 640, got %d", cfg.Model.DetectionSize)
	}
	if cfg.Model.NMSThreshold != 0.4 {
		t.Errorf("expected default nms_threshold 0.4, got %f", cfg.Model.NMSThreshold)
	}
	if cfg.Swap.OutputFormat != "jpg" {
		t.Errorf("expected default output format jpg, got %q", cfg.Swap.OutputFormat)
	}
	if cfg.MQTT.Enabled {
		t.Error("MQTT should be disabled by default")
	}
	if cfg.Cleanup.RetentionDays != 30 {
		t.Errorf("expected default retention 30 days, got %d", cfg.Cleanup.RetentionDays)
	}
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfigFile(t, `
server:
  port: 8080
  data_dir: `+dir+`
db:
  file: `+filepath.Join(dir, "test.db")+`
`)

	t.Setenv("FACESWAP_SERVER_PORT", "9999")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("expected env override 9999, got %d", cfg.Server.Port)
	}
}

func TestLoadCreatesDirectories(t *testing.T) {
	base := t.TempDir()
	dataDir := filepath.Join(base, "data")
	dbFile := filepath.Join(base, "db", "app.db")
	logFile := filepath.Join(base, "logs", "app.log")

	path := writeConfigFile(t, `
server:
  data_dir: `+dataDir+`
db:
  file: `+dbFile+`
log:
  file: `+logFile+`
`)

	if _, err := Load(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, dir := range []string{dataDir, filepath.Dir(dbFile), filepath.Dir(logFile)} {
		if _, err := os.Stat(dir); err != nil {
			t.Errorf("expected directory %s to exist: %v", dir, err)
		}
	}
}
