package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/wonny/leadscan/pkg/config"
)

// decodeLines parses one JSON object per output line
func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()

	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("Failed to parse log line %q: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLogLevel(tt.input); got != tt.want {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewWithOutput(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.DebugLevel)

	tests := []struct {
		name     string
		level    string
		format   string
		wantJSON bool
		wantInfo bool
	}{
		{"json at info", "info", "json", true, true},
		{"json at warn", "warn", "json", true, false},
		{"console", "debug", "console", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := NewWithOutput(&config.Config{Env: "test", LogLevel: tt.level, LogFormat: tt.format}, &buf)
			log.Info("table loaded")
			log.Warn("quality issue")

			output := buf.String()
			if got := strings.Contains(output, "table loaded"); got != tt.wantInfo {
				t.Errorf("info line present = %v, want %v: %s", got, tt.wantInfo, output)
			}
			if !strings.Contains(output, "quality issue") {
				t.Errorf("Expected warn line in output, got: %s", output)
			}
			if got := json.Valid([]byte(strings.SplitN(output, "\n", 2)[0])); got != tt.wantJSON {
				t.Errorf("JSON output = %v, want %v: %s", got, tt.wantJSON, output)
			}
		})
	}
}

func TestFieldHelpers(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	var buf bytes.Buffer
	log := NewWithWriter(&buf, &config.Config{Env: "test"})

	log.WithField("symbol", "AAA").Info("signal")
	log.WithFields(map[string]interface{}{"top_n": 2, "rows": 5}).Debug("pipeline")
	log.WithError(errors.New("open Equitydata.csv")).Error("load failed")
	log.Warnf("%d more quality issues not shown", 3)

	entries := decodeLines(t, &buf)
	if len(entries) != 4 {
		t.Fatalf("Expected 4 log lines, got %d: %s", len(entries), buf.String())
	}

	for _, e := range entries {
		if e["service"] != "leadscan" || e["env"] != "test" {
			t.Errorf("Expected service/env fields, got %v", e)
		}
	}
	if entries[0]["symbol"] != "AAA" || entries[0]["level"] != "info" {
		t.Errorf("Unexpected WithField entry: %v", entries[0])
	}
	if entries[1]["top_n"] != float64(2) || entries[1]["rows"] != float64(5) {
		t.Errorf("Unexpected WithFields entry: %v", entries[1])
	}
	if entries[2]["error"] != "open Equitydata.csv" || entries[2]["level"] != "error" {
		t.Errorf("Unexpected WithError entry: %v", entries[2])
	}
	if entries[3]["message"] != "3 more quality issues not shown" || entries[3]["level"] != "warn" {
		t.Errorf("Unexpected Warnf entry: %v", entries[3])
	}
}

func TestWithFieldDoesNotLeak(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	var buf bytes.Buffer
	base := NewWithWriter(&buf, &config.Config{Env: "test"})
	base.WithField("client", "203.0.113.7").Info("scoped")
	base.Info("unscoped")

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("Expected 2 log lines, got %d", len(entries))
	}
	if _, ok := entries[1]["client"]; ok {
		t.Errorf("Expected base logger without client field, got %v", entries[1])
	}
}

func TestNop(t *testing.T) {
	log := Nop()
	log.Info("discarded")
	log.WithFields(map[string]interface{}{"k": "v"}).Warn("discarded")
	log.WithError(errors.New("boom")).Error("discarded")
}
