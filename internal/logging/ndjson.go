package logging

import (
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"
)

type Logger struct {
	mu sync.Mutex
	w  io.Writer
}

type Event struct {
	TS         string `json:"ts"`
	Level      string `json:"level"`
	Event      string `json:"event"`
	Module     string `json:"module,omitempty"`
	Feature    string `json:"feature,omitempty"`
	Attempt    int    `json:"attempt,omitempty"`
	Cases      int    `json:"cases,omitempty"`
	LatencyMS  int64  `json:"latency_ms,omitempty"`
	Input      string `json:"input,omitempty"`
	OutputFile string `json:"output_file,omitempty"`
	Error      string `json:"error,omitempty"`
}

// New 组装 NDJSON 日志输出。stdout 为 nil 时只写文件；logFile 为空时只写 stdout。
func New(stdout io.Writer, logFile string) (*Logger, io.Closer, error) {
	if logFile == "" {
		return &Logger{w: stdout}, nil, nil
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	if stdout == nil {
		return &Logger{w: f}, f, nil
	}
	return &Logger{w: io.MultiWriter(stdout, f)}, f, nil
}

func (l *Logger) Emit(ev Event) {
	if l == nil || l.w == nil {
		return
	}
	if ev.TS == "" {
		ev.TS = time.Now().Format(time.RFC3339Nano)
	}
	if ev.Level == "" {
		ev.Level = "info"
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.w.Write(append(b, '\n'))
}
