// Package eventlog provides the structured evaluation, error, and system
// event streams. Evaluation and error events are append-only JSON lines;
// the system log is a size-rotated plain-text file fed through slog.
package eventlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	evaluationsFile = "evaluations.jsonl"
	errorsFile      = "errors.jsonl"
	systemFile      = "system.log"

	systemLogMaxBytes = 10 * 1024 * 1024
	systemLogBackups  = 5
)

// Logger owns the three event streams. Safe for concurrent use.
type Logger struct {
	dir string

	mu       sync.Mutex
	evalFile *os.File
	errFile  *os.File

	system *slog.Logger
}

// New opens (or creates) the event streams under logDir.
func New(logDir string) (*Logger, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", logDir, err)
	}

	evalFile, err := os.OpenFile(filepath.Join(logDir, evaluationsFile),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open evaluation log: %w", err)
	}
	errFile, err := os.OpenFile(filepath.Join(logDir, errorsFile),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		_ = evalFile.Close()
		return nil, fmt.Errorf("failed to open error log: %w", err)
	}

	sysWriter := &rotatingWriter{
		path:     filepath.Join(logDir, systemFile),
		maxBytes: systemLogMaxBytes,
		backups:  systemLogBackups,
	}
	system := slog.New(slog.NewTextHandler(sysWriter, &slog.HandlerOptions{Level: slog.LevelInfo}))

	return &Logger{
		dir:      logDir,
		evalFile: evalFile,
		errFile:  errFile,
		system:   system,
	}, nil
}

// Close flushes and closes the JSONL streams.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	err1 := l.evalFile.Close()
	err2 := l.errFile.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

// System returns the system log sink.
func (l *Logger) System() *slog.Logger { return l.system }

// Timestamp returns the stream timestamp format: UTC ISO-8601 with a
// terminal Z.
func Timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// LogEvaluation appends one event to the evaluation stream. The timestamp
// is stamped here if the caller left it empty.
func (l *Logger) LogEvaluation(e EvaluationEvent) {
	if e.Timestamp == "" {
		e.Timestamp = Timestamp()
	}
	l.appendJSON(l.evalFile, e)
}

// LogProviderEvent appends a structured gateway provider event to the
// evaluation stream and mirrors it to the system log. errMsg is empty for
// the success event types.
func (l *Logger) LogProviderEvent(eventType, provider, phase, errMsg string) {
	success := eventType == EventPrimarySuccess || eventType == EventFallbackSuccess
	l.LogEvaluation(EvaluationEvent{
		EventType:    eventType,
		PhaseName:    phase,
		Provider:     provider,
		Success:      success,
		ErrorMessage: errMsg,
	})
	if success {
		l.system.Info("LLM provider succeeded",
			"event", eventType, "provider", provider, "phase", phase)
	} else {
		l.system.Warn("LLM provider issue",
			"event", eventType, "provider", provider, "phase", phase, "error", errMsg)
	}
}

// LogError appends one event to the error stream and mirrors it to the
// system log.
func (l *Logger) LogError(component, kind, message string, metadata map[string]any) {
	e := ErrorEvent{
		Timestamp: Timestamp(),
		Component: component,
		Kind:      kind,
		Message:   message,
		Metadata:  metadata,
	}
	l.appendJSON(l.errFile, e)
	l.system.Error(message, "component", component, "kind", kind)
}

func (l *Logger) appendJSON(f *os.File, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		l.system.Error("Failed to marshal event log entry", "error", err)
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := f.Write(append(data, '\n')); err != nil {
		l.system.Error("Failed to append event log entry", "error", err)
	}
}

// Prune drops JSONL entries older than maxAge from both streams. Entries
// that fail to parse are kept.
func (l *Logger) Prune(maxAge time.Duration) error {
	cutoff := time.Now().UTC().Add(-maxAge).Format(time.RFC3339)
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, name := range []string{evaluationsFile, errorsFile} {
		if err := pruneFile(filepath.Join(l.dir, name), cutoff); err != nil {
			return err
		}
	}
	// The rewrites replaced both inodes; reopen so appends land in the new files.
	_ = l.evalFile.Close()
	_ = l.errFile.Close()
	var err error
	l.evalFile, err = os.OpenFile(filepath.Join(l.dir, evaluationsFile),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	l.errFile, err = os.OpenFile(filepath.Join(l.dir, errorsFile),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	return err
}

// pruneFile rewrites one JSONL file keeping entries at or after the cutoff.
// RFC3339 UTC timestamps compare correctly as strings.
func pruneFile(path, cutoff string) error {
	in, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer in.Close()

	tmpPath := path + ".tmp"
	out, err := os.Create(tmpPath)
	if err != nil {
		return err
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	writer := bufio.NewWriter(out)
	for scanner.Scan() {
		line := scanner.Bytes()
		var entry struct {
			Timestamp string `json:"timestamp"`
		}
		if err := json.Unmarshal(line, &entry); err == nil && entry.Timestamp != "" && entry.Timestamp < cutoff {
			continue
		}
		if _, err := writer.Write(append(line, '\n')); err != nil {
			_ = out.Close()
			_ = os.Remove(tmpPath)
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		_ = out.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := writer.Flush(); err != nil {
		_ = out.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}
