package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Operations and phases the install pipeline records.
const (
	OpInstall      = "install"
	OpUpdate       = "update"
	OpGenerateLock = "generate-lock"

	PhaseVerify = "verify"
	PhaseCommit = "commit"
)

// Logger appends JSON-lines events to a single audit file. A nil logger
// and logging failures are both silent: auditing never fails a command.
type Logger struct {
	path string
	mu   sync.Mutex
}

type Event struct {
	Timestamp string            `json:"timestamp"`
	Operation string            `json:"operation"`
	Phase     string            `json:"phase"`
	Status    string            `json:"status"`
	Code      string            `json:"code,omitempty"`
	Message   string            `json:"message,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
}

func New(path string) *Logger {
	return &Logger{path: path}
}

// Phase records one phase transition of a pipeline operation.
func (l *Logger) Phase(operation, phase, status, message string) error {
	return l.Log(Event{Operation: operation, Phase: phase, Status: status, Message: message})
}

func (l *Logger) Log(ev Event) error {
	if l == nil || l.path == "" {
		return nil
	}
	ev.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)
	line, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return l.append(append(line, '\n'))
}

func (l *Logger) append(line []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write(line)
	return err
}
