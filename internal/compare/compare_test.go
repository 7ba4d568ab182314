package compare

import "testing"

func TestBase(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"alpha", "Alpha", 0},
		{"café", "cafe", 0},
		{"apple", "banana", -1},
		{"Zebra", "apple", 1},
	}
	for _, tt := range tests {
		got := Base(tt.a, tt.b)
		if sign(got) != tt.want {
			t.Errorf("Base(%q, %q) = %d, want sign %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestLabel(t *testing.T) {
	if got := Label("AI", "ai"); got != 0 {
		t.Errorf("Label(AI, ai) = %d, want 0", got)
	}
	if got := Label("Bio", "AI"); sign(got) != 1 {
		t.Errorf("Label(Bio, AI) = %d, want > 0", got)
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}
