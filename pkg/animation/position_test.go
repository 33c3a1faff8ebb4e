package animation

import "testing"

func TestParsePosition(t *testing.T) {
	tests := []struct {
		in   string
		want Position
	}{
		{"", Position{}},
		{"1.5", At(1.5)},
		{"-2", At(-2)},
		{"+=1", Position{Kind: PosRelativeToEnd, Offset: 1}},
		{"-=0.5", Position{Kind: PosRelativeToEnd, Offset: -0.5}},
		{"+=50%", Position{Kind: PosRelativeToEnd, Offset: 50, Percent: true, OfChild: true}},
		{"<", Position{Kind: PosPrevStart}},
		{">", Position{Kind: PosPrevEnd}},
		{"<0.5", Position{Kind: PosPrevStart, Offset: 0.5}},
		{">-25%", Position{Kind: PosPrevEnd, Offset: -25, Percent: true}},
		{"<+=50%", Position{Kind: PosPrevStart, Offset: 50, Percent: true, OfChild: true}},
		{"intro", AtLabel("intro", 0)},
		{"intro+=1", AtLabel("intro", 1)},
		{"intro-=0.5", AtLabel("intro", -0.5)},
		{"intro+=50%", Position{Kind: PosLabel, Label: "intro", Offset: 50, Percent: true, OfChild: true}},
		{"50%", AtLabel("50%", 0)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePosition(tt.in)
			if err != nil {
				t.Fatalf("ParsePosition(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParsePosition(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParsePositionMalformed(t *testing.T) {
	for _, in := range []string{"=5", "a*=2", "<abc", "intro+=x", ">1px"} {
		got, err := ParsePosition(in)
		if err == nil {
			t.Errorf("ParsePosition(%q) error = nil", in)
		}
		if got.Kind != PosEnd {
			t.Errorf("ParsePosition(%q) kind = %v, want PosEnd", in, got.Kind)
		}
		if Pos(in).Err() == nil {
			t.Errorf("Pos(%q).Err() = nil", in)
		}
	}
}

func TestPositionString(t *testing.T) {
	for _, in := range []string{"1.5", "+=1", "-=0.5", "+=50%", "<", ">", "<0.5", ">-25%", "<+=50%", "intro", "intro+=1", "intro-=0.5"} {
		if got := Pos(in).String(); got != in {
			t.Errorf("Pos(%q).String() = %q", in, got)
		}
	}
	if got := (Position{}).String(); got != "" {
		t.Errorf("PosEnd String() = %q, want empty", got)
	}
}
