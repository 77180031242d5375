package template

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRegistrySaveAndGet(t *testing.T) {
	r := NewRegistry()

	if err := r.Save(musterbank()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if r.Len() != 1 {
		t.Fatalf("Expected 1 template, got %d", r.Len())
	}
	if got := r.Get("musterbank-depot"); got == nil || got.ID != "musterbank-depot" {
		t.Errorf("Get returned %v", got)
	}
	if r.Get("unknown") != nil {
		t.Error("Expected nil for unknown ID")
	}
}

func TestRegistryRejectsInvalid(t *testing.T) {
	r := NewRegistry()

	bad := musterbank()
	bad.ID = ""
	if err := r.Save(bad); err == nil {
		t.Error("Expected save of invalid template to fail")
	}
	if err := r.Save(nil); err == nil {
		t.Error("Expected save of nil template to fail")
	}
	if r.Len() != 0 {
		t.Errorf("Expected empty registry after failed saves, got %d", r.Len())
	}
}

func TestRegistryOverwriteKeepsPosition(t *testing.T) {
	r := NewRegistry()

	first := musterbank()
	first.ID = "alpha"
	second := musterbank()
	second.ID = "beta"

	if err := r.Save(first); err != nil {
		t.Fatal(err)
	}
	if err := r.Save(second); err != nil {
		t.Fatal(err)
	}

	replacement := musterbank()
	replacement.ID = "alpha"
	replacement.ConfidenceThreshold = 0.9
	if err := r.Save(replacement); err != nil {
		t.Fatal(err)
	}

	all := r.All()
	if len(all) != 2 {
		t.Fatalf("Expected 2 templates after overwrite, got %d", len(all))
	}
	if all[0].ID != "alpha" || all[1].ID != "beta" {
		t.Errorf("Expected order [alpha beta], got [%s %s]", all[0].ID, all[1].ID)
	}
	if all[0].ConfidenceThreshold != 0.9 {
		t.Error("Expected overwrite to replace the stored template")
	}
}

func TestWriteFileLoadFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "musterbank.yml")

	orig := musterbank()
	orig.ValueDivisor = 100
	orig.ValidationRules = []string{"value = quantity * price / 100"}
	if err := WriteFile(orig, path); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	r := NewRegistry()
	if err := r.LoadFile(path); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	got := r.Get(orig.ID)
	if got == nil {
		t.Fatal("Template not found after round trip")
	}
	if got.NumberFormat != orig.NumberFormat {
		t.Errorf("Number format lost: got %s", got.NumberFormat)
	}
	if got.Divisor() != 100 {
		t.Errorf("Value divisor lost: got %f", got.Divisor())
	}
	if len(got.Fields) != len(orig.Fields) {
		t.Fatalf("Expected %d fields, got %d", len(orig.Fields), len(got.Fields))
	}
	for i, m := range got.Fields {
		if m != orig.Fields[i] {
			t.Errorf("Field %d changed in round trip: %+v vs %+v", i, m, orig.Fields[i])
		}
	}
}

func TestLoadDirOrderAndFiltering(t *testing.T) {
	dir := t.TempDir()

	b := musterbank()
	b.ID = "beta"
	a := musterbank()
	a.ID = "alpha"

	// Written out of order; LoadDir sorts by file name.
	if err := WriteFile(b, filepath.Join(dir, "02-beta.yaml")); err != nil {
		t.Fatal(err)
	}
	if err := WriteFile(a, filepath.Join(dir, "01-alpha.yml")); err != nil {
		t.Fatal(err)
	}
	// Non-template files are ignored.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := LoadRegistry(dir)
	if err != nil {
		t.Fatalf("LoadRegistry failed: %v", err)
	}

	all := r.All()
	if len(all) != 2 {
		t.Fatalf("Expected 2 templates, got %d", len(all))
	}
	if all[0].ID != "alpha" || all[1].ID != "beta" {
		t.Errorf("Expected file-name order [alpha beta], got [%s %s]", all[0].ID, all[1].ID)
	}
}

func TestLoadFileRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.yml")
	if err := os.WriteFile(path, []byte("id: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewRegistry()
	if err := r.LoadFile(path); err == nil {
		t.Error("Expected parse error for malformed YAML")
	}
}
