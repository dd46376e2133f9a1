package id

import (
	"testing"
)

func TestFormatNote(t *testing.T) {
	tests := []struct {
		seq  int
		want string
	}{
		{1, "N-00001"},
		{42, "N-00042"},
		{12345, "N-12345"},
		{123456, "N-123456"},
	}
	for _, tt := range tests {
		if got := FormatNote(tt.seq); got != tt.want {
			t.Errorf("FormatNote(%d) = %s, want %s", tt.seq, got, tt.want)
		}
	}
}

func TestParseNote(t *testing.T) {
	tests := []struct {
		ref     string
		want    int
		wantErr bool
	}{
		{ref: "N-00001", want: 1},
		{ref: "n-3", want: 3},
		{ref: "  N-00042 ", want: 42},
		{ref: "7", want: 7},
		{ref: "0007", want: 7},
		{ref: "N-0", wantErr: true},
		{ref: "IMP-00001", wantErr: true},
		{ref: "N-", wantErr: true},
		{ref: "note", wantErr: true},
		{ref: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := ParseNote(tt.ref)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseNote(%q) = %d, want error", tt.ref, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseNote(%q) error: %v", tt.ref, err)
			}
			if got != tt.want {
				t.Errorf("ParseNote(%q) = %d, want %d", tt.ref, got, tt.want)
			}
		})
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	for _, seq := range []int{1, 99, 10000} {
		got, err := ParseNote(FormatNote(seq))
		if err != nil || got != seq {
			t.Errorf("round trip of %d gave %d, %v", seq, got, err)
		}
	}
}

func TestIsUUID(t *testing.T) {
	tests := []struct {
		s    string
		want bool
	}{
		{"6ba7b810-9dad-11d1-80b4-00c04fd430c8", true},
		{"6BA7B810-9DAD-11D1-80B4-00C04FD430C8", true},
		{"N-00001", false},
		{"6ba7b810-9dad-11d1-80b4", false},
	}
	for _, tt := range tests {
		if got := IsUUID(tt.s); got != tt.want {
			t.Errorf("IsUUID(%q) = %v, want %v", tt.s, got, tt.want)
		}
	}
}
