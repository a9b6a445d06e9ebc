// Package txlog implements the transaction logging pipeline: a
// per-request correlation id threaded through context, a structured
// event logger with a console stream and a daily log file, and a
// method interceptor that surrounds wrapped operations with
// start/progress/outcome events.
package txlog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// State describes the lifecycle stage of a logged operation.
type State string

const (
	StateStarted    State = "STARTED"
	StateInProgress State = "IN_PROGRESS"
	StateCompleted  State = "COMPLETED"
	StateWarning    State = "WARNING"
	StateError      State = "ERROR"
	StateTerminated State = "TERMINATED"
)

var stateLabels = map[State]string{
	StateStarted:    "Starting",
	StateInProgress: "In progress",
	StateCompleted:  "Completed",
	StateWarning:    "Warning",
	StateError:      "Error",
	StateTerminated: "Terminated",
}

// AlertSender is notified of ERROR-state events. Implementations must
// be safe for concurrent use.
type AlertSender interface {
	SendErrorAlert(transactionID, component, operation, message string) error
}

// Logger emits transaction events to a console stream and to a daily
// rotated log file. Construct one at startup with New and pass it to
// consumers; there is no shared instance.
type Logger struct {
	log    *logrus.Logger
	dir    string
	cron   *cron.Cron
	alerts AlertSender

	mu      sync.Mutex
	file    *os.File
	fileDay string
}

// New opens today's transaction log file under dir and schedules a
// midnight rotation. The returned Logger must be closed on shutdown.
func New(log *logrus.Logger, dir string) (*Logger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	l := &Logger{log: log, dir: dir}
	if err := l.openFile(time.Now()); err != nil {
		return nil, err
	}

	l.cron = cron.New()
	if _, err := l.cron.AddFunc("0 0 * * *", l.rotate); err != nil {
		l.file.Close()
		return nil, fmt.Errorf("failed to schedule log rotation: %w", err)
	}
	l.cron.Start()
	return l, nil
}

// SetAlertSender enables alert notifications for ERROR events.
func (l *Logger) SetAlertSender(s AlertSender) {
	l.alerts = s
}

// Close stops the rotation schedule and closes the log file.
func (l *Logger) Close() error {
	if l.cron != nil {
		l.cron.Stop()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// Event records one transaction event. The id is taken from ctx; a
// fresh one is minted for calls outside any request scope. All states
// reach the console stream; IN_PROGRESS and TERMINATED stay off the
// file to keep it readable.
func (l *Logger) Event(ctx context.Context, state State, component, operation, contextInfo string, details any) {
	id := TransactionIDFromContext(ctx)
	if id == "" {
		id = NewTransactionID()
	}
	sanitized := Sanitize(details)

	entry := l.log.WithFields(logrus.Fields{
		"transaction_id": id,
		"state":          string(state),
		"component":      component,
		"operation":      operation,
	})
	if contextInfo != "" {
		entry = entry.WithField("context", contextInfo)
	}
	if sanitized != nil {
		entry = entry.WithField("details", sanitized)
	}
	message := fmt.Sprintf("%s: %s.%s", stateLabels[state], component, operation)
	switch state {
	case StateError:
		entry.Error(message)
	case StateWarning:
		entry.Warn(message)
	default:
		entry.Info(message)
	}

	if state == StateStarted || state == StateCompleted || state == StateWarning || state == StateError {
		l.appendToFile(id, state, component, operation, contextInfo, sanitized)
	}

	if state == StateError && l.alerts != nil {
		go l.sendAlert(id, component, operation, sanitized)
	}
}

func (l *Logger) sendAlert(id string, component, operation string, details any) {
	message := fmt.Sprintf("%v", details)
	if err := l.alerts.SendErrorAlert(id, component, operation, message); err != nil {
		l.log.Warnf("Failed to send error alert for %s: %v", id, err)
	}
}

// appendToFile writes one formatted line. Failures degrade to a
// console warning and never propagate to the request.
func (l *Logger) appendToFile(id string, state State, component, operation, contextInfo string, details any) {
	line := fmt.Sprintf("TXN[%s] | %s: %s.%s | %s",
		id, stateLabels[state], component, operation, time.Now().Format(time.RFC3339))
	if contextInfo != "" {
		line += " | " + contextInfo
	}
	if details != nil {
		if encoded, err := json.Marshal(details); err == nil {
			line += " | Details: " + string(encoded)
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return
	}
	if _, err := l.file.WriteString(line + "\n"); err != nil {
		l.log.Warnf("Failed to write transaction log file: %v", err)
	}
}

// rotate reopens the file under the new day's name.
func (l *Logger) rotate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}
	if err := l.openFileLocked(time.Now()); err != nil {
		l.log.Warnf("Failed to rotate transaction log file: %v", err)
	}
}

func (l *Logger) openFile(now time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.openFileLocked(now)
}

func (l *Logger) openFileLocked(now time.Time) error {
	day := now.Format("2006-01-02")
	path := filepath.Join(l.dir, fmt.Sprintf("transactions-%s.log", day))
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open transaction log file: %w", err)
	}
	l.file = f
	l.fileDay = day
	return nil
}

// FilePath returns the path of the currently open log file.
func (l *Logger) FilePath() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return filepath.Join(l.dir, fmt.Sprintf("transactions-%s.log", l.fileDay))
}
