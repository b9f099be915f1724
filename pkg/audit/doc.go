// Package audit records a tamper-evident history of every mutation the
// engine performs.
//
// Each mutating operation produces exactly one immutable Entry holding the
// acting principal, the affected table and record, and before/after row
// snapshots. Entries are persisted to the append-only audit_log table and
// also emitted as an RFC5424-formatted line for log shipping.
//
// A failure to write an audit entry never fails the triggering mutation: by
// the time the recorder runs, the mutation's outcome is already decided, so
// the failure is logged and swallowed. This is a deliberate
// availability-over-completeness trade-off.
package audit
