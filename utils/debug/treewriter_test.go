package debug

import (
	"testing"
)

func TestNewTreeWriter(t *testing.T) {
	tw := NewTreeWriter()
	if tw == nil {
		t.Fatal("NewTreeWriter() returned nil")
	}
	if tw.String() != "" {
		t.Error("Expected empty string from new TreeWriter")
	}
}

func TestTreeWriter_Line(t *testing.T) {
	tests := []struct {
		name   string
		depth  int
		format string
		args   []any
		want   string
	}{
		{"no depth", 0, "test", nil, "test\n"},
		{"depth 1", 1, "indented", nil, "  indented\n"},
		{"depth 2", 2, "double indent", nil, "    double indent\n"},
		{"negative depth", -1, "clamped", nil, "clamped\n"},
		{"with formatting", 1, "[%d] %s", []any{3, "a_if_x_3.m"}, "  [3] a_if_x_3.m\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := NewTreeWriter()
			tw.Line(tt.depth, tt.format, tt.args...)
			if got := tw.String(); got != tt.want {
				t.Errorf("Line() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTreeWriter_Tree(t *testing.T) {
	tw := NewTreeWriter()
	tw.Line(0, "[0] a_gen.m")
	tw.Line(1, "[1] a_section_a_1.m")
	tw.Line(2, "[2] a_if_y_1_2.m")
	tw.Line(1, "[3] a_section_b_3.m")

	want := "[0] a_gen.m\n" +
		"  [1] a_section_a_1.m\n" +
		"    [2] a_if_y_1_2.m\n" +
		"  [3] a_section_b_3.m\n"
	if got := tw.String(); got != want {
		t.Errorf("tree = %q, want %q", got, want)
	}
}
