package api

import (
	"encoding/json"
	"testing"
)

func TestFacingPayloadValidate(t *testing.T) {
	tests := []struct {
		raw     string
		wantErr bool
	}{
		{`{"facing":"sw"}`, false},
		{`{"facing":"NE"}`, false},
		{`{"facing":""}`, true},
		{`{}`, true},
		{`{"facing":"n"}`, true},
		{`{"facing":"north-west"}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var p FacingPayload
			if err := json.Unmarshal([]byte(tt.raw), &p); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			err := p.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestJoinPayloadValidate(t *testing.T) {
	if err := (JoinPayload{Name: "Путник"}).Validate(); err != nil {
		t.Errorf("cyrillic name rejected: %v", err)
	}
	if err := (JoinPayload{}).Validate(); err != nil {
		t.Errorf("empty name must fall back to default, got %v", err)
	}
	long := JoinPayload{Name: "abcdefghijklmnopqrstuvwxyz0123456789"}
	if err := long.Validate(); err == nil {
		t.Error("expected error for a 36-rune name")
	}
}
