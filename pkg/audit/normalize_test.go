package audit

import (
	"testing"
)

func TestFoldDiacritics(t *testing.T) {
	testCases := []struct {
		in, want string
	}{
		{"Número", "Numero"},
		{"Numero", "Numero"},
		{"Teléfono", "Telefono"},
		{"razón_social", "razon_social"},
		{"Año", "Ano"},
		{"", ""},
		{"Legajo", "Legajo"},
	}
	for _, tc := range testCases {
		if got := FoldDiacritics(tc.in); got != tc.want {
			t.Errorf("FoldDiacritics(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeSnapshot(t *testing.T) {
	snapshot := map[string]interface{}{
		"Número":  int64(7),
		"Legajo":  "100",
		"Teléfono": "341-5550100",
	}

	out := normalizeSnapshot(snapshot, FoldDiacritics)

	if _, ok := out["Número"]; ok {
		t.Error("accented key survived normalization")
	}
	if out["Numero"] != int64(7) {
		t.Errorf("Numero = %v, want 7", out["Numero"])
	}
	if out["Legajo"] != "100" {
		t.Errorf("Legajo = %v, want 100", out["Legajo"])
	}

	// Values are never touched.
	if out["Telefono"] != "341-5550100" {
		t.Errorf("Telefono = %v", out["Telefono"])
	}
}

func TestNormalizeSnapshotNil(t *testing.T) {
	if normalizeSnapshot(nil, FoldDiacritics) != nil {
		t.Error("nil snapshot must stay nil")
	}
	snapshot := map[string]interface{}{"Número": 1}
	out := normalizeSnapshot(snapshot, nil)
	if _, ok := out["Número"]; !ok {
		t.Error("nil normalizer must leave keys untouched")
	}
}

func TestFoldDiacriticsConcurrent(t *testing.T) {
	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				if got := FoldDiacritics("Número"); got != "Numero" {
					t.Errorf("FoldDiacritics = %q", got)
					return
				}
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
