package rt

import (
	"testing"
)

func TestSprintf(t *testing.T) {
	tests := []struct {
		name   string
		format string
		args   []Value
		want   string
	}{
		{"plain", "no directives", nil, "no directives"},
		{"decimal", "%d mm", []Value{Num(35)}, "35 mm"},
		{"decimal truncates", "%d", []Value{Num(2.9)}, "2"},
		{"width", "%5d", []Value{Num(42)}, "   42"},
		{"zero pad", "%03d", []Value{Num(7)}, "007"},
		{"float precision", "%.1f", []Value{Num(2.789)}, "2.8"},
		{"hex", "0x%x", []Value{Num(255)}, "0xff"},
		{"upper hex", "%X", []Value{Num(255)}, "FF"},
		{"octal", "%o", []Value{Num(8)}, "10"},
		{"binary", "%b", []Value{Num(5)}, "101"},
		{"string", "[%s]", []Value{Str("x")}, "[x]"},
		{"string width", "%-4s|", []Value{Str("ab")}, "ab  |"},
		{"char", "%c", []Value{Num(65)}, "A"},
		{"percent", "100%%", nil, "100%"},
		{"two args", "%d x %d", []Value{Num(4), Num(3)}, "4 x 3"},
		{"missing arg", "%d", nil, "0"},
		{"list flattens", "%d-%d", []Value{List(Num(1), Num(2))}, "1-2"},
		{"scientific", "%.2e", []Value{Num(12345)}, "1.23e+04"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sprintf(Str(tt.format), tt.args...).AsStr()
			if got != tt.want {
				t.Errorf("sprintf(%q) = %q, want %q", tt.format, got, tt.want)
			}
		})
	}
}

func TestSprintfConcatRepeat(t *testing.T) {
	got := SprintfConcatRepeat("%d", " %d", 2, Num(1), Num(2), Num(3)).AsStr()
	if got != "1 2 3" {
		t.Errorf("got %q, want %q", got, "1 2 3")
	}

	got = SprintfConcatRepeat("%.3f", " x %.3f", 1, Num(1.5), Num(2.25)).AsStr()
	if got != "1.500 x 2.250" {
		t.Errorf("got %q, want %q", got, "1.500 x 2.250")
	}
}
