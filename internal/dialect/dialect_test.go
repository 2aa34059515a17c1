package dialect

import (
	"testing"

	"netxlate/internal/source"
)

func detect(t *testing.T, text string) (Kind, Classification) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("input.sp", []byte(text))
	return Detect(fs, id)
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Kind
	}{
		{
			name: "hspice",
			text: "* amp\n.OPTION post\nR1 a b 'r0*2' $ load\n.ALTER\n.END\n",
			want: HSpice,
		},
		{
			name: "pspice",
			text: "* amp\n.STIMULUS vin PWL (0 0 1n 1)\nX1 a b cell PARAMS: w={2*l}\n.END\n",
			want: PSpice,
		},
		{
			name: "xyce",
			text: "* amp\n.PREPROCESS REPLACEGROUND TRUE\n.OPTIONS DEVICE TEMP=25\nB1 a 0 V={v(b)*2}\n.END\n",
			want: Xyce,
		},
		{
			name: "simulator line wins",
			text: "* amp\nsimulator lang=xyce\n.ALTER\n",
			want: Xyce,
		},
		{
			name: "plain netlist",
			text: "* amp\nR1 a b 1k\nC1 b 0 1p\n.END\n",
			want: Unknown,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, c := detect(t, tt.text)
			if got != tt.want {
				t.Errorf("Detect = %v (score %d of %d), want %v", got, c.Score, c.TotalScore, tt.want)
			}
		})
	}
}

func TestTitleIsNotEvidence(t *testing.T) {
	got, c := detect(t, ".PREPROCESS looks like a directive\nR1 a b 1k\n")
	if got != Unknown || c.ObservedSignals != 0 {
		t.Errorf("title scored: %v, %d signals", got, c.ObservedSignals)
	}
}

func TestClassifierRunnerUp(t *testing.T) {
	e := NewEvidence()
	e.Add(Hint{Dialect: HSpice, Score: 5})
	e.Add(Hint{Dialect: PSpice, Score: 3})
	e.Add(Hint{Dialect: Xyce, Score: 2})
	c := Classifier{}.Classify(e)
	if c.Kind != HSpice || c.RunnerUp != PSpice || c.TotalScore != 10 {
		t.Fatalf("classification = %+v", c)
	}
	if c.Confidence != 0.5 {
		t.Errorf("confidence = %v", c.Confidence)
	}
}

func TestParse(t *testing.T) {
	for in, want := range map[string]Kind{"HSPICE": HSpice, "'pspice'": PSpice, "xyce": Xyce, "spectre": Unknown} {
		if got := Parse(in); got != want {
			t.Errorf("Parse(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestClassifierReasons(t *testing.T) {
	e := NewEvidence()
	e.Add(Hint{Dialect: Xyce, Score: 6, Reason: ".OPTIONS package NONLIN"})
	e.Add(Hint{Dialect: Xyce, Score: 2, Reason: "B source"})
	e.Add(Hint{Dialect: Xyce, Score: 2, Reason: "B source"})
	e.Add(Hint{Dialect: PSpice, Score: 1, Reason: "braced expression"})
	c := Classifier{}.Classify(e)
	if c.Kind != Xyce || c.Score != 10 {
		t.Fatalf("classification = %+v", c)
	}
	want := []string{".OPTIONS package NONLIN", "B source"}
	if len(c.Reasons) != len(want) || c.Reasons[0] != want[0] || c.Reasons[1] != want[1] {
		t.Errorf("reasons = %v, want %v", c.Reasons, want)
	}
}
