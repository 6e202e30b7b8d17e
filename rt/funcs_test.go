package rt

import (
	"testing"
)

func TestLength(t *testing.T) {
	if got := Length(Str("hello")).AsNum(); got != 5 {
		t.Errorf("length(\"hello\") = %v, want 5", got)
	}
	if got := Length(Num(1234)).AsNum(); got != 4 {
		t.Errorf("length(1234) = %v, want 4", got)
	}
	if !Length(Undef()).IsUndef() {
		t.Error("length(undef) should be undef")
	}
}

func TestNumericBuiltins(t *testing.T) {
	tests := []struct {
		name string
		got  Value
		want float64
	}{
		{"int truncates", Int(Num(2.9)), 2},
		{"int negative", Int(Num(-2.9)), -2},
		{"abs", Abs(Num(-5)), 5},
		{"sqrt", Sqrt(Num(16)), 4},
		{"hex", Hex(Str("ff")), 255},
		{"hex prefixed", Hex(Str("0xff")), 255},
		{"oct", Oct(Str("17")), 15},
		{"oct hex", Oct(Str("0x1f")), 31},
		{"oct binary", Oct(Str("0b101")), 5},
		{"ord", Ord(Str("A")), 65},
		{"ord empty", Ord(Str("")), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got.AsNum() != tt.want {
				t.Errorf("got %v, want %v", tt.got.AsNum(), tt.want)
			}
		})
	}
}

func TestStringBuiltins(t *testing.T) {
	tests := []struct {
		name string
		got  Value
		want string
	}{
		{"chr", Chr(Num(65)), "A"},
		{"uc", Uc(Str("nikon")), "NIKON"},
		{"lc", Lc(Str("NIKON")), "nikon"},
		{"ucfirst", Ucfirst(Str("canon")), "Canon"},
		{"ucfirst empty", Ucfirst(Str("")), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got.AsStr() != tt.want {
				t.Errorf("got %q, want %q", tt.got.AsStr(), tt.want)
			}
		})
	}
}

func TestSubstr(t *testing.T) {
	tests := []struct {
		name string
		args []Value
		want string
	}{
		{"offset only", []Value{Num(2)}, "llo world"},
		{"offset and length", []Value{Num(0), Num(5)}, "hello"},
		{"negative offset", []Value{Num(-5)}, "world"},
		{"negative length", []Value{Num(0), Num(-6)}, "hello"},
		{"offset past end", []Value{Num(99)}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Substr(Str("hello world"), tt.args...).AsStr()
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIndexOf(t *testing.T) {
	if got := IndexOf(Str("hello"), Str("ll")).AsNum(); got != 2 {
		t.Errorf("index = %v, want 2", got)
	}
	if got := IndexOf(Str("hello"), Str("x")).AsNum(); got != -1 {
		t.Errorf("index of missing = %v, want -1", got)
	}
}

func TestJoinSplit(t *testing.T) {
	parts := Split(Str(" "), Str("  1  2  3 "))
	if got := len(parts.Items()); got != 3 {
		t.Fatalf("split on space yielded %d fields, want 3", got)
	}
	if got := Join(Str("-"), parts).AsStr(); got != "1-2-3" {
		t.Errorf("join = %q, want %q", got, "1-2-3")
	}

	parts = Split(Str(","), Str("a,b,,c"))
	if got := len(parts.Items()); got != 4 {
		t.Errorf("split on comma yielded %d fields, want 4", got)
	}

	// Split fields behave numerically.
	fields := Split(Str(" "), Str("2 4")).Items()
	if got := fields[0].AsNum(); got != 2 {
		t.Errorf("split field AsNum = %v, want 2", got)
	}
}

func TestTr(t *testing.T) {
	if got := Tr(Str("hello"), "el", "ip").AsStr(); got != "hippo" {
		t.Errorf("tr/el/ip/ = %q, want %q", got, "hippo")
	}
	if got := Tr(Str("abc"), "a-c", "A-C").AsStr(); got != "ABC" {
		t.Errorf("tr/a-c/A-C/ = %q, want %q", got, "ABC")
	}
	// Short replacement set repeats its last character.
	if got := Tr(Str("abc"), "abc", "x").AsStr(); got != "xxx" {
		t.Errorf("tr/abc/x/ = %q, want %q", got, "xxx")
	}
}
