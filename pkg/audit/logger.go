package audit

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Structured data IDs (RFC5424) for the audit line.
const (
	SDIDActor   = "actor@32473"
	SDIDSubject = "subject@32473"
	SDIDClient  = "client@32473"
)

// Syslog facility/severity for audit lines: security messages, informational.
const (
	facilityAuthPriv = 10
	severityInfo     = 6
)

// LineLogger emits one RFC5424 syslog line per audit entry, alongside the
// database persistence, so entries can be shipped to a collector that never
// touches the store.
type LineLogger struct {
	writer   io.Writer
	hostname string
	appName  string
	pid      int
}

// NewLineLogger creates a line logger writing to stdout.
func NewLineLogger() *LineLogger {
	hostname, _ := os.Hostname()
	return &LineLogger{
		writer:   os.Stdout,
		hostname: hostname,
		appName:  "padron",
		pid:      os.Getpid(),
	}
}

// SetWriter sets the output writer.
func (l *LineLogger) SetWriter(w io.Writer) {
	l.writer = w
}

// Log writes the entry in RFC5424 format:
// <PRI>VERSION TIMESTAMP HOSTNAME APP-NAME PROCID MSGID SD MSG
func (l *LineLogger) Log(entry Entry) {
	pri := facilityAuthPriv*8 + severityInfo

	occurredAt := entry.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}
	timestamp := occurredAt.UTC().Format("2006-01-02T15:04:05.000Z")

	hostname := l.hostname
	if hostname == "" {
		hostname = "-"
	}

	sd := formatStructuredData(entry)
	if sd == "" {
		sd = "-"
	}

	logLine := fmt.Sprintf("<%d>1 %s %s %s %d %s %s %s\n",
		pri,
		timestamp,
		hostname,
		l.appName,
		l.pid,
		strings.ToLower(string(entry.Action)),
		sd,
		message(entry),
	)

	_, _ = l.writer.Write([]byte(logLine))
}

func message(entry Entry) string {
	actor := entry.ActorEmail
	if actor == "" {
		actor = "anonymous"
	}
	switch entry.Action {
	case ActionCreate:
		return fmt.Sprintf("%s created %s/%s", actor, entry.TableName, entry.RecordID)
	case ActionUpdate:
		return fmt.Sprintf("%s updated %s/%s", actor, entry.TableName, entry.RecordID)
	case ActionDelete:
		return fmt.Sprintf("%s deleted %s/%s", actor, entry.TableName, entry.RecordID)
	default:
		return fmt.Sprintf("%s touched %s/%s", actor, entry.TableName, entry.RecordID)
	}
}

// formatStructuredData renders the entry's context as RFC5424 structured
// data in a fixed element order so the output is stable.
func formatStructuredData(entry Entry) string {
	var parts []string

	actorParams := []string{SDIDActor}
	if entry.ActorID != "" {
		actorParams = append(actorParams, "id="+escapeSDValue(entry.ActorID))
	}
	if entry.ActorEmail != "" {
		actorParams = append(actorParams, "email="+escapeSDValue(entry.ActorEmail))
	}
	if len(actorParams) > 1 {
		parts = append(parts, "["+strings.Join(actorParams, " ")+"]")
	}

	subjectParams := []string{
		SDIDSubject,
		"table=" + escapeSDValue(entry.TableName),
		"record=" + escapeSDValue(entry.RecordID),
		"action=" + escapeSDValue(string(entry.Action)),
	}
	parts = append(parts, "["+strings.Join(subjectParams, " ")+"]")

	clientParams := []string{SDIDClient}
	if entry.SourceIP != "" {
		clientParams = append(clientParams, "ip="+escapeSDValue(entry.SourceIP))
	}
	if entry.UserAgent != "" {
		clientParams = append(clientParams, "agent="+escapeSDValue(entry.UserAgent))
	}
	if len(clientParams) > 1 {
		parts = append(parts, "["+strings.Join(clientParams, " ")+"]")
	}

	return strings.Join(parts, "")
}

// escapeSDValue escapes special characters in structured data values per
// RFC5424 section 6.3.3.
func escapeSDValue(value string) string {
	value = strings.ReplaceAll(value, "\\", "\\\\")
	value = strings.ReplaceAll(value, "\"", "\\\"")
	value = strings.ReplaceAll(value, "]", "\\]")
	return "\"" + value + "\""
}
