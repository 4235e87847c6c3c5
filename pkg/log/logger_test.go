package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/YuminosukeSato/treelab/pkg/errors"
)

// TestLoggerInterface tests the TestLogger implementation of Logger
func TestLoggerInterface(t *testing.T) {
	testLogger, buffer := NewTestLogger(LevelDebug)

	testLogger.Debug("debug message", "key1", "value1", "number", 42)
	testLogger.Info("info message", OperationKey, OperationFit)
	testLogger.Warn("warning message", "warning_code", "TEST_WARNING")
	testLogger.Error("error message", fmt.Errorf("test error"), ErrorCodeKey, ErrorInvalidDataset)

	if buffer.String() == "" {
		t.Fatal("Expected log output, got empty string")
	}

	for _, msg := range []string{"debug message", "info message", "warning message", "error message"} {
		if !testLogger.ContainsMessage(msg) {
			t.Errorf("%q not found in output", msg)
		}
	}

	if !testLogger.ContainsField("key1", "value1") {
		t.Error("Expected field key1=value1 not found")
	}
	if !testLogger.ContainsField("number", 42.0) {
		t.Error("Expected field number=42 not found")
	}
	if !testLogger.ContainsField("error", "test error") {
		t.Error("Expected error field not found")
	}
}

// TestLoggerWith tests the With method for context-aware logging
func TestLoggerWith(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelDebug)

	contextLogger := testLogger.With(
		ModelNameKey, "DecisionTreeClassifier",
		ComponentKey, "tree",
	)
	contextLogger.Info("contextual message", DepthKey, 3)

	if !testLogger.ContainsField(ModelNameKey, "DecisionTreeClassifier") {
		t.Error("Model name context not found")
	}
	if !testLogger.ContainsField(DepthKey, 3.0) {
		t.Error("Depth field not found")
	}
}

// TestLoggerEnabled tests the Enabled method
func TestLoggerEnabled(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelInfo)
	ctx := context.Background()

	if !testLogger.Enabled(ctx, LevelInfo) {
		t.Error("Logger should be enabled for Info level")
	}
	if testLogger.Enabled(ctx, LevelDebug) {
		t.Error("Logger should not be enabled for Debug level")
	}

	testLogger.Debug("this should not appear")
	testLogger.Info("this should appear")

	if testLogger.ContainsMessage("this should not appear") {
		t.Error("Debug message should not appear when level is Info")
	}
	if !testLogger.ContainsMessage("this should appear") {
		t.Error("Info message should appear when level is Info")
	}
}

func TestZerologLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, LevelDebug).With(ModelNameKey, "DecisionTreeClassifier")

	logger.Info("fit completed", SamplesKey, 50, LeavesKey, 7)

	var entry map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("output is not a JSON line: %v (%q)", err, buf.String())
	}
	if entry["message"] != "fit completed" {
		t.Errorf("message = %v", entry["message"])
	}
	if entry["level"] != "info" {
		t.Errorf("level = %v", entry["level"])
	}
	if entry[ModelNameKey] != "DecisionTreeClassifier" {
		t.Errorf("%s = %v", ModelNameKey, entry[ModelNameKey])
	}
	if entry[SamplesKey] != 50.0 || entry[LeavesKey] != 7.0 {
		t.Errorf("unexpected fields: %v", entry)
	}
}

func TestZerologLogger_ErrorStack(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, LevelDebug)

	err := errors.NewDimensionError("Predict", 2, 3, 1)
	logger.Error("prediction failed", err, OperationKey, OperationPredict)

	out := buf.String()
	if !strings.Contains(out, `"error":"treelab: Predict: dimension mismatch`) {
		t.Errorf("error field missing: %s", out)
	}
	if !strings.Contains(out, `"stack":`) {
		t.Errorf("stack field missing: %s", out)
	}
	if !strings.Contains(out, `"ml.operation":"predict"`) {
		t.Errorf("operation field missing: %s", out)
	}
}

func TestZerologLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, LevelWarn)

	logger.Info("hidden")
	logger.Warn("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Error("info record should be filtered at warn level")
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Error("warn record missing")
	}
	if logger.Enabled(context.Background(), LevelDebug) {
		t.Error("debug should be disabled")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"error", LevelError, false},
		{"verbose", LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSetupLogger_RoutesWarnings(t *testing.T) {
	prev := GetLogger()
	defer SetLogger(prev)
	defer errors.SetZerologWarnFunc(nil)

	var buf bytes.Buffer
	if err := SetupLogger(&buf, "info"); err != nil {
		t.Fatalf("SetupLogger: %v", err)
	}

	errors.Warn(errors.NewUndefinedMetricWarning("recall", "no samples of class 2", 0))

	out := buf.String()
	if !strings.Contains(out, `"type":"UndefinedMetricWarning"`) {
		t.Errorf("warning not routed through zerolog: %s", out)
	}
}

func TestGlobalProvider(t *testing.T) {
	prev := GetLogger()
	defer SetLogger(prev)

	var buf bytes.Buffer
	SetLogger(NewZerologLogger(&buf, LevelWarn))

	p := GlobalProvider()
	p.GetLoggerWithName("fit").Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info written below warn level: %s", buf.String())
	}

	p.SetLevel(LevelInfo)
	p.GetLoggerWithName("fit").Info("shown")
	out := buf.String()
	if !strings.Contains(out, `"message":"shown"`) || !strings.Contains(out, `"ml.component":"fit"`) {
		t.Errorf("unexpected output after SetLevel: %s", out)
	}
	if !p.GetLogger().Enabled(context.Background(), LevelInfo) {
		t.Error("global logger not re-levelled to info")
	}
}

func TestTestLoggerProvider(t *testing.T) {
	p, buf := NewTestLoggerProvider(LevelWarn)

	p.GetLoggerWithName("cli").Info("hidden")
	p.SetLevel(LevelDebug)
	p.GetLoggerWithName("cli").Debug("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info written below warn level: %s", out)
	}
	if !strings.Contains(out, `"message":"shown"`) || !strings.Contains(out, `"ml.component":"cli"`) {
		t.Errorf("named debug record missing: %s", out)
	}
}
