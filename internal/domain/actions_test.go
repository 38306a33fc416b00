package domain

import "testing"

func TestParseAction(t *testing.T) {
	tests := []struct {
		input    string
		expected ActionType
	}{
		{"MOVE", ActionMove},
		{"move", ActionMove},
		{"Stop", ActionStop},
		{"INIT", ActionInit},
		{"JOIN", ActionJoin},
		{"ATTACK", ActionUnknown},
		{"", ActionUnknown},
	}

	for _, tt := range tests {
		result := ParseAction(tt.input)
		if result != tt.expected {
			t.Errorf("ParseAction(%q) = %v, want %v", tt.input, result, tt.expected)
		}
	}
}

func TestActionType_String(t *testing.T) {
	tests := []struct {
		action   ActionType
		expected string
	}{
		{ActionMove, "MOVE"},
		{ActionLeave, "LEAVE"},
		{ActionUnknown, "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.action.String(); got != tt.expected {
			t.Errorf("ActionType(%d).String() = %q, want %q", tt.action, got, tt.expected)
		}
	}
}

func TestActionType_Flags(t *testing.T) {
	tests := []struct {
		action    ActionType
		journaled bool
		client    bool
	}{
		{ActionInit, false, true},
		{ActionMove, true, true},
		{ActionStop, true, true},
		{ActionJoin, true, false},
		{ActionLeave, true, false},
		{ActionUnknown, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.action.String(), func(t *testing.T) {
			if got := tt.action.Journaled(); got != tt.journaled {
				t.Errorf("Journaled() = %v, want %v", got, tt.journaled)
			}
			if got := tt.action.ClientFacing(); got != tt.client {
				t.Errorf("ClientFacing() = %v, want %v", got, tt.client)
			}
		})
	}
}
