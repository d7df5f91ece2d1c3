package domain

import "testing"

func TestValidAddress(t *testing.T) {
	tests := []struct {
		addr  string
		valid bool
	}{
		{"0x742d35Cc6634C0532925a3b8D4C9db96c4b4d8b6", true},
		{"0xabc", false},
		{"742d35Cc6634C0532925a3b8D4C9db96c4b4d8b6ab", false},
		{"", false},
		{"0x", false},
	}

	for _, tt := range tests {
		if got := ValidAddress(tt.addr); got != tt.valid {
			t.Errorf("ValidAddress(%q) = %v, want %v", tt.addr, got, tt.valid)
		}
	}
}

func TestFilterAddresses(t *testing.T) {
	in := []string{
		"0x742d35Cc6634C0532925a3b8D4C9db96c4b4d8b6",
		"0xabc",
		"0x8C89a6bf53346A146192C0bE2f32b8C5f4F269C0",
	}

	valid, invalid := FilterAddresses(in)
	if invalid != 1 {
		t.Errorf("invalid = %d, want 1", invalid)
	}
	if len(valid) != 2 {
		t.Fatalf("len(valid) = %d, want 2", len(valid))
	}
	// Order preserved
	if valid[0] != in[0] || valid[1] != in[2] {
		t.Errorf("valid order changed: %v", valid)
	}
}
