package main

import "testing"

func TestParseBearer(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc123", "abc123"},
		{"bearer abc123", "abc123"},
		{"Bearer  abc123", "abc123"},
		{"Basic abc123", ""},
		{"abc123", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := parseBearer(tt.header); got != tt.want {
			t.Errorf("parseBearer(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}
