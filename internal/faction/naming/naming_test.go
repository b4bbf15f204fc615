package naming

import "testing"

func TestMatchPrefix(t *testing.T) {
	candidates := []string{"roster", "rosterers", "invite", "discipline"}

	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"unique prefix", "inv", "invite", true},
		{"exact beats longer candidate", "roster", "roster", true},
		{"ambiguous prefix", "ros", "", false},
		{"no match", "banner", "", false},
		{"empty input", "   ", "", false},
		{"case insensitive", "DISC", "discipline", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MatchPrefix(tt.input, candidates)
			if ok != tt.ok || got != tt.want {
				t.Fatalf("MatchPrefix(%q) = %q, %v; want %q, %v", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestMatchPrefixPreservesCandidateCasing(t *testing.T) {
	got, ok := MatchPrefix("cri", []string{"Crimson Band", "Azure Pact"})
	if !ok || got != "Crimson Band" {
		t.Fatalf("expected original casing back, got %q, %v", got, ok)
	}
}
