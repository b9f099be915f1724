package audit

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func testLineLogger(out *bytes.Buffer) *LineLogger {
	return &LineLogger{writer: out, hostname: "host1", appName: "padron", pid: 123}
}

func TestLog(t *testing.T) {
	var out bytes.Buffer
	logger := testLineLogger(&out)

	logger.Log(Entry{
		ActorID:    "u1",
		ActorEmail: "op@example.test",
		Action:     ActionUpdate,
		TableName:  "socios",
		RecordID:   "100",
		OccurredAt: time.Date(2024, 5, 2, 10, 30, 0, 0, time.UTC),
		SourceIP:   "10.0.0.7",
	})

	line := out.String()
	if !strings.HasPrefix(line, "<86>1 2024-05-02T10:30:00.000Z host1 padron 123 update ") {
		t.Errorf("unexpected header: %q", line)
	}
	for _, want := range []string{
		`[actor@32473 id="u1" email="op@example.test"]`,
		`[subject@32473 table="socios" record="100" action="UPDATE"]`,
		`[client@32473 ip="10.0.0.7"]`,
		"op@example.test updated socios/100",
	} {
		if !strings.Contains(line, want) {
			t.Errorf("line missing %q: %q", want, line)
		}
	}
	if !strings.HasSuffix(line, "\n") {
		t.Error("line must end with newline")
	}
}

func TestLogAnonymousActor(t *testing.T) {
	var out bytes.Buffer
	logger := testLineLogger(&out)

	logger.Log(Entry{
		Action:     ActionDelete,
		TableName:  "socios",
		RecordID:   "100",
		OccurredAt: time.Date(2024, 5, 2, 10, 30, 0, 0, time.UTC),
	})

	line := out.String()
	if strings.Contains(line, "actor@32473") {
		t.Errorf("anonymous entry must not emit an actor element: %q", line)
	}
	if !strings.Contains(line, "anonymous deleted socios/100") {
		t.Errorf("unexpected message: %q", line)
	}
}

func TestLogStampsMissingTimestamp(t *testing.T) {
	var out bytes.Buffer
	logger := testLineLogger(&out)

	logger.Log(Entry{
		Action:    ActionCreate,
		TableName: "socios",
		RecordID:  "1",
		After:     map[string]interface{}{"Legajo": "1"},
	})

	if strings.Contains(out.String(), " - host1") {
		t.Errorf("zero OccurredAt must be replaced, not emitted as nil: %q", out.String())
	}
}
