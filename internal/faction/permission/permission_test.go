package permission

import (
	"errors"
	"testing"

	apperrors "github.com/louisbranch/ironhold/internal/platform/errors"
)

func TestNewSetNormalizes(t *testing.T) {
	s := NewSet("  Roster ", "INVITE", "", "invite")
	if !s.Equal(NewSet("roster", "invite")) {
		t.Fatalf("expected normalized deduplicated set, got %v", s.Tokens())
	}
}

func TestParseSplitsOnWhitespace(t *testing.T) {
	s := Parse(" roster\tinvite\ndiscipline ")
	if s.String() != "discipline invite roster" {
		t.Fatalf("unexpected parse result: %q", s.String())
	}
}

func TestSetAlgebra(t *testing.T) {
	a := NewSet("roster", "invite")
	b := NewSet("invite", "discipline")

	if got := a.Union(b).String(); got != "discipline invite roster" {
		t.Fatalf("union: %q", got)
	}
	if got := a.Intersect(b).String(); got != "invite" {
		t.Fatalf("intersect: %q", got)
	}
	if !a.Contains("Roster") {
		t.Fatalf("expected case-insensitive contains")
	}
	if a.Contains("discipline") {
		t.Fatalf("unexpected contains")
	}
}

func TestValidateResolvesPrefixes(t *testing.T) {
	universe := NewSet("roster", "invite", "discipline")

	got, err := Validate(universe, "ros INV discipline")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !got.Equal(universe) {
		t.Fatalf("expected full universe, got %v", got.Tokens())
	}
}

func TestValidateRejectsUnknownToken(t *testing.T) {
	universe := NewSet("roster", "invite", "discipline")

	_, err := Validate(universe, "roster banner")
	if !errors.Is(err, apperrors.New(apperrors.CodePermissionUnknown, "")) {
		t.Fatalf("expected PERMISSION_UNKNOWN, got %v", err)
	}
	meta := apperrors.GetMetadata(err)
	if meta["token"] != "banner" {
		t.Fatalf("expected offending token in metadata, got %v", meta)
	}
	if meta["choices"] != "discipline invite roster" {
		t.Fatalf("expected valid choices in metadata, got %v", meta)
	}
}

func TestValidateRejectsAmbiguousToken(t *testing.T) {
	universe := NewSet("roster", "rotation", "invite")

	if _, err := Validate(universe, "ro"); !apperrors.IsCode(err, apperrors.CodePermissionUnknown) {
		t.Fatalf("expected ambiguous token rejection, got %v", err)
	}
}

func TestValidateRequiresTokens(t *testing.T) {
	if _, err := Validate(NewSet("roster"), "   "); !apperrors.IsCode(err, apperrors.CodePermissionsRequired) {
		t.Fatalf("expected PERMISSIONS_REQUIRED, got %v", err)
	}
}
