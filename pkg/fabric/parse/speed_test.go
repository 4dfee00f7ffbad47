package parse

import "testing"

func TestNormalizeSpeed(t *testing.T) {
	tests := []struct {
		name  string
		token string
		speed float64
		down  bool
	}{
		{"parenthesized", "4X QDR ... (40.0) ...", 160, false},
		{"gbps", " 4X      10.0 Gbps Active/  LinkUp", 40, false},
		{"fractional", " 4X 14.0625 Gbps Active/  LinkUp", 56.25, false},
		{"sdr", "4X 2.5 Gbps", 10, false},
		{"down", "                Down/ Polling", 0, true},
		{"unused", "unused", 0, true},
		{"rate name", "4xQDR", 40, false},
		{"bare rate name", "EDR", 103.125, false},
		{"nothing", "Active/ LinkUp", 0, false},
		{"width only", "4X", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			speed, down := NormalizeSpeed(tt.token, DefaultLanes)
			if speed != tt.speed || down != tt.down {
				t.Errorf("NormalizeSpeed(%q) = (%v, %v), want (%v, %v)", tt.token, speed, down, tt.speed, tt.down)
			}
		})
	}
}

func TestRateByName(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"QDR", 10, true},
		{"4xFDR", 14.0625, true},
		{"fdr10", 10.3125, true},
		{"1xSDR", 2.5, true},
		{"GbE", 0, false},
	}
	for _, tt := range tests {
		got, ok := RateByName(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("RateByName(%q) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
