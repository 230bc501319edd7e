package logging

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEmitWritesNDJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, closer, err := New(buf, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if closer != nil {
		t.Fatal("no closer expected without log file")
	}

	logger.Emit(Event{Event: "generate_ok", Module: "Orders", Feature: "Refund", Cases: 3, LatencyMS: 42})
	logger.Emit(Event{Level: "error", Event: "generate_failed", Module: "Orders", Error: "boom"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	var first Event
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("line 1 is not JSON: %v", err)
	}
	if first.Level != "info" || first.Event != "generate_ok" || first.Cases != 3 {
		t.Fatalf("event mismatch: %+v", first)
	}
	if first.TS == "" {
		t.Fatal("timestamp should be filled in")
	}
	var second Event
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("line 2 is not JSON: %v", err)
	}
	if second.Level != "error" || second.Error != "boom" {
		t.Fatalf("event mismatch: %+v", second)
	}
}

func TestEmitToFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.ndjson")
	buf := &bytes.Buffer{}
	logger, closer, err := New(buf, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	logger.Emit(Event{Event: "startup"})
	if err := closer.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer f.Close()
	s := bufio.NewScanner(f)
	if !s.Scan() {
		t.Fatal("log file should have one line")
	}
	if !strings.Contains(s.Text(), `"event":"startup"`) {
		t.Fatalf("unexpected line: %s", s.Text())
	}
	if !strings.Contains(buf.String(), `"event":"startup"`) {
		t.Fatal("stdout should receive the same event")
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var l *Logger
	l.Emit(Event{Event: "noop"})
}
