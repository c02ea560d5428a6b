package domain

import "testing"

func TestNormalizeQuery(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercase", "How Do I Reset My Password", "how do i reset my password"},
		{"trim", "  vpn access  ", "vpn access"},
		{"collapse whitespace", "vpn\t\taccess\n policy", "vpn access policy"},
		{"empty", "", ""},
		{"only whitespace", "   \t\n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeQuery(tt.input); got != tt.want {
				t.Errorf("NormalizeQuery(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestQueryFingerprint(t *testing.T) {
	// Variants of the same question must share a fingerprint
	a := QueryFingerprint("How do I reset my password?")
	b := QueryFingerprint("  how do i reset my password?  ")
	c := QueryFingerprint("HOW DO I RESET MY PASSWORD?")

	if a != b || a != c {
		t.Errorf("expected identical fingerprints, got %q %q %q", a, b, c)
	}

	// Different questions must not collide (for any reasonable input)
	d := QueryFingerprint("what is the vpn policy")
	if a == d {
		t.Errorf("distinct queries produced the same fingerprint %q", a)
	}

	// Deterministic across calls
	if a != QueryFingerprint("How do I reset my password?") {
		t.Error("fingerprint is not deterministic")
	}
}

func TestAnswerCacheable(t *testing.T) {
	if (&Answer{ResponseType: ResponseTypeNoDocuments}).Cacheable() {
		t.Error("no_documents_found answers must not be cacheable")
	}
	if (&Answer{ResponseType: ResponseTypeDegraded}).Cacheable() {
		t.Error("degraded answers must not be cacheable")
	}
	if !(&Answer{ResponseType: ResponseTypeAnswer}).Cacheable() {
		t.Error("normal answers should be cacheable")
	}
	var nilAnswer *Answer
	if nilAnswer.Cacheable() {
		t.Error("nil answer must not be cacheable")
	}
}
