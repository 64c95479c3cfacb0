package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		result := tt.level.String()
		if result != tt.expected {
			t.Errorf("Level(%d).String() = '%s', expected '%s'", tt.level, result, tt.expected)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"ERROR", LevelError},
		{"unknown", LevelInfo}, // Default
		{"", LevelInfo},        // Default
	}

	for _, tt := range tests {
		result := ParseLevel(tt.input)
		if result != tt.expected {
			t.Errorf("ParseLevel('%s') = %d, expected %d", tt.input, result, tt.expected)
		}
	}
}

func TestNew_DefaultOutput(t *testing.T) {
	logger := New(Config{Output: nil})
	if logger.output == nil {
		t.Error("expected default output to be set")
	}
}

func TestLogger_Log(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:  LevelDebug,
		Output: &buf,
		Prefix: "test",
	})

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	output := buf.String()
	for _, want := range []string{"[DEBUG]", "[INFO]", "[WARN]", "[ERROR]", "test:"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %s in output, got: %s", want, output)
		}
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:  LevelWarn,
		Output: &buf,
	})

	logger.Debug("debug")
	logger.Info("info")
	logger.Warn("warn")
	logger.Error("error")

	output := buf.String()
	if strings.Contains(output, "[DEBUG]") {
		t.Error("expected DEBUG to be filtered out")
	}
	if strings.Contains(output, "[INFO]") {
		t.Error("expected INFO to be filtered out")
	}
	if !strings.Contains(output, "[WARN]") {
		t.Error("expected WARN in output")
	}
	if !strings.Contains(output, "[ERROR]") {
		t.Error("expected ERROR in output")
	}
}

func TestLogger_Format(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:  LevelInfo,
		Output: &buf,
	})

	logger.Info("formatted %s %d", "test", 42)

	if !strings.Contains(buf.String(), "formatted test 42") {
		t.Errorf("expected formatted message, got: %s", buf.String())
	}
}

func TestLogger_WithField(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:  LevelInfo,
		Output: &buf,
	})

	logger.WithField("key", "value").Info("test")

	if !strings.Contains(buf.String(), "key=value") {
		t.Errorf("expected field in output, got: %s", buf.String())
	}
}

func TestLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:  LevelInfo,
		Output: &buf,
	})

	logger.WithFields(map[string]any{
		"key1": "value1",
		"key2": 42,
	}).Info("test")

	output := buf.String()
	if !strings.Contains(output, "key1=value1") {
		t.Errorf("expected key1 in output, got: %s", output)
	}
	if !strings.Contains(output, "key2=42") {
		t.Errorf("expected key2 in output, got: %s", output)
	}
}

func TestLogger_WithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:  LevelInfo,
		Output: &buf,
	})

	logger.WithComponent("trigger").Info("test")

	if !strings.Contains(buf.String(), "component=trigger") {
		t.Errorf("expected component in output, got: %s", buf.String())
	}
}

func TestLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:  LevelError,
		Output: &buf,
	})

	logger.Info("should not appear")
	if buf.Len() != 0 {
		t.Error("expected no output at error level")
	}

	logger.SetLevel(LevelInfo)
	logger.Info("should appear")
	if buf.Len() == 0 {
		t.Error("expected output after SetLevel")
	}
}

func TestLogger_DisableEnable(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:  LevelInfo,
		Output: &buf,
	})

	logger.Disable()
	logger.Info("should not appear")
	if buf.Len() != 0 {
		t.Error("expected no output when disabled")
	}

	logger.Enable()
	logger.Info("should appear")
	if buf.Len() == 0 {
		t.Error("expected output when enabled")
	}
}

func TestDiscard(t *testing.T) {
	// Discard should not panic
	Discard.Debug("test")
	Discard.Info("test")
	Discard.Warn("test")
	Discard.Error("test")
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != LevelInfo {
		t.Errorf("expected default level INFO, got %d", cfg.Level)
	}
	if cfg.Output == nil {
		t.Error("expected default output to be set")
	}
	if cfg.Prefix != "autopop" {
		t.Errorf("expected prefix 'autopop', got '%s'", cfg.Prefix)
	}
}
