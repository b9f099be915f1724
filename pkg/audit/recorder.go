package audit

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Recorder normalizes and persists audit entries. A Record call never
// returns an error: the mutation that triggered it has already committed,
// so a failed write is logged and swallowed.
type Recorder struct {
	store     *Store
	line      *LineLogger
	normalize NormalizeFunc
	log       *zap.Logger
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithNormalizer replaces the default diacritic-folding field-name
// normalizer. Pass nil to disable normalization entirely.
func WithNormalizer(fn NormalizeFunc) RecorderOption {
	return func(r *Recorder) { r.normalize = fn }
}

// WithLineLogger replaces the default RFC5424 line logger. Pass nil to
// disable the line output.
func WithLineLogger(l *LineLogger) RecorderOption {
	return func(r *Recorder) { r.line = l }
}

// NewRecorder creates a Recorder writing to the given store. The store may
// be nil, in which case only the log line is emitted.
func NewRecorder(store *Store, log *zap.Logger, opts ...RecorderOption) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Recorder{
		store:     store,
		line:      NewLineLogger(),
		normalize: FoldDiacritics,
		log:       log,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record normalizes the entry's snapshot field names, stamps the time if
// unset, emits the audit line, and persists the entry.
func (r *Recorder) Record(ctx context.Context, entry Entry) {
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = time.Now().UTC()
	}
	entry.Before = normalizeSnapshot(entry.Before, r.normalize)
	entry.After = normalizeSnapshot(entry.After, r.normalize)

	if err := entry.Validate(); err != nil {
		r.log.Error("dropping malformed audit entry",
			zap.String("table", entry.TableName),
			zap.String("action", string(entry.Action)),
			zap.Error(err),
		)
		return
	}

	if r.line != nil {
		r.line.Log(entry)
	}

	if r.store != nil {
		if err := r.store.Save(ctx, &entry); err != nil {
			r.log.Error("audit write failed",
				zap.String("table", entry.TableName),
				zap.String("record", entry.RecordID),
				zap.String("action", string(entry.Action)),
				zap.Error(err),
			)
		}
	}
}
