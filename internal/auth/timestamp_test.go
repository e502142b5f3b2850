package auth

import (
	"testing"
	"time"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    int64
		wantErr bool
	}{
		{name: "valid", header: "1700000000000", want: 1700000000000},
		{name: "zero", header: "0", want: 0},
		{name: "empty", header: "", wantErr: true},
		{name: "negative", header: "-1", wantErr: true},
		{name: "fractional", header: "1700000000000.5", wantErr: true},
		{name: "non-numeric", header: "yesterday", wantErr: true},
		{name: "hex-looking", header: "0x1234", wantErr: true},
		{name: "overflow", header: "99999999999999999999999999", wantErr: true},
		{name: "embedded space", header: "1700000000000 ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.header)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTimestamp(%q) error = %v, wantErr %v", tt.header, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseTimestamp(%q) = %d, want %d", tt.header, got, tt.want)
			}
		})
	}
}

func TestFreshWindowBoundary(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	maxSkew := 5 * time.Minute
	skewMS := maxSkew.Milliseconds()

	tests := []struct {
		name string
		ts   int64
		want bool
	}{
		{name: "exactly now", ts: now.UnixMilli(), want: true},
		{name: "at past boundary", ts: now.UnixMilli() - skewMS, want: true},
		{name: "one ms beyond past boundary", ts: now.UnixMilli() - skewMS - 1, want: false},
		{name: "at future boundary", ts: now.UnixMilli() + skewMS, want: true},
		{name: "one ms beyond future boundary", ts: now.UnixMilli() + skewMS + 1, want: false},
		{name: "ten minutes stale", ts: now.UnixMilli() - 600000, want: false},
		{name: "ten minutes ahead", ts: now.UnixMilli() + 600000, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fresh(tt.ts, now, maxSkew); got != tt.want {
				t.Errorf("fresh(%d) = %v, want %v", tt.ts, got, tt.want)
			}
		})
	}
}
