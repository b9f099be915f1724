package audit

import (
	"fmt"
	"time"
)

// Action identifies the kind of mutation an entry records.
type Action string

const (
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
)

// Entry is one immutable audit record. It is created exactly once per
// mutating operation, immediately before the operation's response is
// returned, and is never updated or deleted by the system itself.
type Entry struct {
	// ID is assigned by the store on insert.
	ID int64

	ActorID          string
	ActorEmail       string
	ActorDisplayName string

	Action    Action
	TableName string
	RecordID  string

	// Before is the pre-image row snapshot: nil for CREATE.
	Before map[string]interface{}
	// After is the post-image row snapshot: nil for DELETE.
	After map[string]interface{}

	OccurredAt     time.Time
	SourceIP       string
	UserAgent      string
	SessionContext string
}

// Validate checks the snapshot invariants: CREATE carries only an after
// image, DELETE only a before image, UPDATE both.
func (e *Entry) Validate() error {
	switch e.Action {
	case ActionCreate:
		if e.Before != nil {
			return fmt.Errorf("CREATE entry must not carry a before snapshot")
		}
		if e.After == nil {
			return fmt.Errorf("CREATE entry must carry an after snapshot")
		}
	case ActionUpdate:
		if e.Before == nil || e.After == nil {
			return fmt.Errorf("UPDATE entry must carry both snapshots")
		}
	case ActionDelete:
		if e.Before == nil {
			return fmt.Errorf("DELETE entry must carry a before snapshot")
		}
		if e.After != nil {
			return fmt.Errorf("DELETE entry must not carry an after snapshot")
		}
	default:
		return fmt.Errorf("unknown audit action %q", e.Action)
	}
	if e.TableName == "" {
		return fmt.Errorf("audit entry requires a table name")
	}
	return nil
}
