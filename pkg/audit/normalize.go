package audit

import (
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeFunc folds a snapshot field name to its canonical form before
// serialization, so the same logical field is queryable under one spelling
// across historical entries. It applies to snapshot keys only, never values.
type NormalizeFunc func(string) string

// FoldDiacritics is the default normalizer: it strips combining marks so
// accent-variant spellings of a field name ("Número", "Numero") collapse to
// one key. Legacy schemas in this domain carry both spellings across
// deployments.
func FoldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// normalizeSnapshot returns a copy of the snapshot with every key passed
// through fn. A nil snapshot stays nil so the CREATE/DELETE invariants are
// preserved. When two keys fold to the same canonical form the later one
// wins; the collision is the inconsistency the fold exists to repair.
func normalizeSnapshot(snapshot map[string]interface{}, fn NormalizeFunc) map[string]interface{} {
	if snapshot == nil || fn == nil {
		return snapshot
	}
	out := make(map[string]interface{}, len(snapshot))
	for k, v := range snapshot {
		out[fn(k)] = v
	}
	return out
}
