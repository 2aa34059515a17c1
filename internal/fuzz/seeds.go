package fuzztests

import (
	"testing"
)

const maxFuzzInput = 1 << 16 // 64 KiB

// netlistSeeds cover each line family the reader builds statements for.
var netlistSeeds = []string{
	"* title\nR1 a 0 1k\n.END\n",
	"* subckt\n.SUBCKT inv in out w=1\nM1 out in 0 0 nch W='w*2'\n.ENDS inv\nX1 a b inv w=3\n.END\n",
	"* models\n.MODEL nch NMOS LEVEL=54 VTH0=0.4\n.MODEL d1 D IS=1e-14\nD1 a 0 d1\n",
	"* sources\nV1 in 0 PWL(0 0 1n 1 2n 0)\nI1 a 0 SIN(0 1m 1MEG)\n.TRAN 1n 10n\n",
	"* params\n.PARAM a=1 b='a*2'\n.FUNC f(x) 'x+b'\nR1 n1 n2 'f(a)'\n",
	"* options\n.OPTIONS GMIN=1e-12 RELTOL=1e-4\n.TEMP 27 50\n.PRINT TRAN V(a) I(R1)\n",
	"* controlled\nE1 o 0 a b 2\nG1 o 0 POLY(2) a 0 b 0 0 1 1\nF1 o 0 V1 3\nB1 o 0 V={V(a)*2}\n",
	"* lib\n.LIB typ\n.MODEL m1 NMOS\n.ENDL typ\n",
	"* continuation\nR1 a\n+ b\n+ 1k $ trailing\n",
	"* measure\n.MEASURE TRAN tdelay TRIG V(a) VAL=0.5 RISE=1 TARG V(b) VAL=0.5 RISE=1\n",
	"simulator lang=spectre\n* switch\n",
	"* broken\nR1\n.SUBCKT\n.ENDS\n+ dangling\n.PARAM x='(1\n",
}

func addSeeds(f *testing.F) {
	for _, s := range netlistSeeds {
		f.Add([]byte(s))
	}
}

func clip(input []byte) []byte {
	if len(input) > maxFuzzInput {
		input = input[:maxFuzzInput]
	}
	return append([]byte(nil), input...)
}
