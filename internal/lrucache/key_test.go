package lrucache

import (
	"errors"
	"testing"
)

func TestNewKey_Injective(t *testing.T) {
	pairs := [][2]string{
		{"a:b", "c"},
		{"a", "b:c"},
		{"a:", "bc"},
		{"ab", "c"},
		{"a", "bc"},
		{"1:a", ""},
		{"", "1:a"},
	}

	seen := make(map[Key][2]string)
	for _, p := range pairs {
		k := NewKey(p[0], p[1])
		if prev, dup := seen[k]; dup {
			t.Errorf("NewKey(%q, %q) collides with %q", p[0], p[1], prev)
		}
		seen[k] = p
	}
}

func TestNewKey_Deterministic(t *testing.T) {
	if NewKey("u1", "r1") != NewKey("u1", "r1") {
		t.Error("NewKey() should be deterministic")
	}
}

func TestParseKey(t *testing.T) {
	tests := []struct {
		tenant string
		record string
	}{
		{"u1", "r1"},
		{"tenant:with:colons", "rec:1"},
		{"", ""},
		{"12", "34"},
	}

	for _, tt := range tests {
		gotTenant, gotRecord, err := ParseKey(NewKey(tt.tenant, tt.record))
		if err != nil {
			t.Fatalf("ParseKey() error = %v", err)
		}
		if gotTenant != tt.tenant || gotRecord != tt.record {
			t.Errorf("ParseKey() = (%q, %q), want (%q, %q)", gotTenant, gotRecord, tt.tenant, tt.record)
		}
	}
}

func TestParseKey_Malformed(t *testing.T) {
	for _, k := range []Key{"", "abc", ":x", "9:short", "-1:x"} {
		if _, _, err := ParseKey(k); !errors.Is(err, ErrMalformedKey) {
			t.Errorf("ParseKey(%q) error = %v, want ErrMalformedKey", k, err)
		}
	}
}
