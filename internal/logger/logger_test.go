package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestInit(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "config")

	if err := Init(Config{ConfigDir: configDir}); err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}
	t.Cleanup(func() { Logger = nil })

	if _, err := os.Stat(filepath.Join(configDir, "logs")); os.IsNotExist(err) {
		t.Errorf("Log directory was not created")
	}
	if Logger == nil {
		t.Fatal("Logger is nil after initialization")
	}

	Warn("habit store unreachable", "op", "list habits")
	data, err := os.ReadFile(Path(configDir))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "habit store unreachable") {
		t.Errorf("log file missing warning:\n%s", data)
	}
}

func TestInitLevels(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
		debugOn bool
	}{
		{name: "default is warn", cfg: Config{}},
		{name: "debug flag", cfg: Config{Debug: true}, debugOn: true},
		{name: "explicit level wins", cfg: Config{Debug: true, Level: "error"}},
		{name: "explicit debug", cfg: Config{Level: "debug"}, debugOn: true},
		{name: "bad level", cfg: Config{Level: "chatty"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.ConfigDir = t.TempDir()
			err := Init(tt.cfg)
			t.Cleanup(func() { Logger = nil })
			if (err != nil) != tt.wantErr {
				t.Fatalf("Init() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			debugOn := Logger.GetLevel() <= log.DebugLevel
			if debugOn != tt.debugOn {
				t.Errorf("debug enabled = %v, want %v (level %v)", debugOn, tt.debugOn, Logger.GetLevel())
			}
		})
	}
}

func TestLogFunctionsWithoutInit(t *testing.T) {
	Logger = nil

	// none of these may panic
	Debug("Test debug message")
	Info("Test info message")
	Warn("Test warning message")
	Error("Test error message")
	if With("component", "watch") != nil {
		t.Error("With() before Init should return nil")
	}
}
