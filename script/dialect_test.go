package script

import "testing"

func TestDialect_Classify(t *testing.T) {
	d := Matlab()

	tests := []struct {
		text string
		want Category
	}{
		{"x = 1;", Plain},
		{"", Plain},
		{"%% section a", CellBreak},
		{"    %%", CellBreak},
		{"% just a comment", Plain},
		{"end", Terminator},
		{"    end", Terminator},
		{"end;", Plain},
		{"endpoint = 3;", Plain},
		{"for i = 1:10", Opener},
		{"parfor k = 1:n", Opener},
		{"while true", Opener},
		{"if(x)", Opener},
		{"try", Opener},
		{"format long", Plain},
		{"iffy = 1;", Plain},
		{"else", Reentry},
		{"elseif y > 2", Reentry},
		{"catch err", Reentry},
		{"elsewhere = 1;", Plain},
		{"switch mode", Unsupported},
		{"switcher = 2;", Plain},
		// cell break takes precedence over everything else
		{"%%if", CellBreak},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := d.Classify(Line{Text: tt.text, EOL: "\n"}); got != tt.want {
				t.Errorf("Classify(%q) = %s, want %s", tt.text, got, tt.want)
			}
		})
	}
}

func TestDialect_CellTitle(t *testing.T) {
	d := Matlab()
	if got := d.CellTitle(Line{Text: "  %% Section A"}); got != " Section A" {
		t.Errorf("CellTitle() = %q, want %q", got, " Section A")
	}
	if got := d.CellTitle(Line{Text: "%%%"}); got != "" {
		t.Errorf("CellTitle() = %q, want empty", got)
	}
}

func TestCategory_String(t *testing.T) {
	if got := Reentry.String(); got != "reentry" {
		t.Errorf("String() = %q, want %q", got, "reentry")
	}
	if got := Category(42).String(); got != "unknown" {
		t.Errorf("String() = %q, want %q", got, "unknown")
	}
}
