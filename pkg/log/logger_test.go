package log

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/YuminosukeSato/trafobench/pkg/errors"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("invalid JSON line %q: %v", line, err)
		}
		out = append(out, entry)
	}
	return out
}

func TestZerologLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, LevelInfo)

	logger.Debug("hidden")
	logger.Info("shown", SamplesKey, 392, AccuracyKey, 0.75)

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0]["message"] != "shown" {
		t.Errorf("unexpected message: %v", entries[0]["message"])
	}
	if entries[0][SamplesKey] != float64(392) {
		t.Errorf("expected %s=392, got %v", SamplesKey, entries[0][SamplesKey])
	}
	if entries[0][AccuracyKey] != 0.75 {
		t.Errorf("expected %s=0.75, got %v", AccuracyKey, entries[0][AccuracyKey])
	}

	if logger.Enabled(context.Background(), LevelDebug) {
		t.Error("debug should be disabled at info level")
	}
	if !logger.Enabled(context.Background(), LevelError) {
		t.Error("error should be enabled at info level")
	}
}

func TestZerologLogger_ErrorWithLeadingError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, LevelDebug)

	err := errors.NewRenderError("bars.png", errors.New("boom"))
	logger.Error("render failed", err, ArtifactKey, "bars.png")

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	msg, _ := entries[0][ErrAttrKey].(string)
	if !strings.Contains(msg, "boom") {
		t.Errorf("error field should contain cause, got %q", msg)
	}
	if entries[0][ArtifactKey] != "bars.png" {
		t.Errorf("artifact field missing: %v", entries[0])
	}
}

func TestZerologLogger_With(t *testing.T) {
	var buf bytes.Buffer
	base := NewZerologLogger(&buf, LevelDebug)
	logger := base.With(VariantKey, "scaled data", ComponentKey, "evaluation")

	logger.Info("scored", SensitivityKey, math.NaN())

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0][VariantKey] != "scaled data" {
		t.Errorf("expected variant field, got %v", entries[0])
	}
	if entries[0][ComponentKey] != "evaluation" {
		t.Errorf("expected component field, got %v", entries[0])
	}
}

func TestSetupLogger_RoutesWarnings(t *testing.T) {
	prev := GetLogger()
	defer func() {
		SetLogger(prev)
		errors.SetZerologWarnFunc(nil)
	}()

	var buf bytes.Buffer
	if _, err := SetupLogger("debug", "json", &buf); err != nil {
		t.Fatalf("SetupLogger: %v", err)
	}
	errors.Warn(errors.NewDegenerateColumnWarning("ScaleFeatures", "Outcome", "mapped to 0.5"))

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("expected 1 warning entry, got %d", len(entries))
	}
	if entries[0]["level"] != "warn" {
		t.Errorf("expected warn level, got %v", entries[0]["level"])
	}
	warning, ok := entries[0]["warning"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected structured warning object, got %v", entries[0])
	}
	if warning["column"] != "Outcome" {
		t.Errorf("expected column Outcome, got %v", warning["column"])
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
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"verbose", LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestTestLogger_CapturesFields(t *testing.T) {
	logger, _ := NewTestLogger(LevelInfo)
	child := logger.With(VariantKey, "equilized data")

	child.Debug("ignored")
	child.Info("done", SpecificityKey, math.NaN(), DroppedKey, 3)
	child.Error("failed", errors.New("bad fit"), ClassifierKey, "GaussianNB")

	if logger.ContainsMessage("ignored") {
		t.Error("debug message should not be captured")
	}
	if !logger.ContainsField(VariantKey, "equilized data") {
		t.Error("expected inherited variant field")
	}
	if !logger.ContainsField(SpecificityKey, "NaN") {
		t.Error("NaN should be captured as a string")
	}
	if !logger.ContainsField(ErrAttrKey, "bad fit") {
		t.Error("leading error should be captured under error key")
	}

	entries, err := logger.GetLogEntries()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 entries, got %d", len(entries))
	}

	logger.Clear()
	if logger.ContainsMessage("done") {
		t.Error("Clear should drop captured output")
	}
}

func TestLevel_String(t *testing.T) {
	if LevelWarn.String() != "WARN" || Level(99).String() != "UNKNOWN" {
		t.Error("unexpected level names")
	}
}
