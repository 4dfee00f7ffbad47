package errors

import "testing"

func TestValidateBasename(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "fabric", false},
		{"with dir", "out/fabric", false},
		{"empty", "", true},
		{"blank", "   ", true},
		{"control char", "fab\x00ric", true},
		{"directory", "out/", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBasename(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateBasename(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("expected INVALID_PATH, got %v", GetCode(err))
			}
		})
	}
}

func TestValidateHost(t *testing.T) {
	tests := []struct {
		host    string
		wantErr bool
	}{
		{"", false},
		{"node07", false},
		{"07", false},
		{"node 07", true},
		{`node"07`, true},
	}

	for _, tt := range tests {
		err := ValidateHost(tt.host)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateHost(%q) error = %v, wantErr %v", tt.host, err, tt.wantErr)
		}
	}
}

func TestValidateLID(t *testing.T) {
	for _, lid := range []int{1, 3, 0xBFFF} {
		if err := ValidateLID(lid); err != nil {
			t.Errorf("ValidateLID(%d) unexpected error: %v", lid, err)
		}
	}
	for _, lid := range []int{0, -1, 0xC000} {
		if err := ValidateLID(lid); err == nil {
			t.Errorf("ValidateLID(%d) expected error", lid)
		}
	}
}
