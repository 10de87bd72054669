package apu

// pulseTable and tndTable are the two non-linear mixer lookup tables
// documented by NESDev for the APU's output stage. RNG999-gones computes
// the same formulas with a division per sample; precomputing them once
// here matches spec.md's "two non-linear mixer lookup tables" wording
// and avoids a float division in the hot per-cycle path.
var pulseTable [31]float32
var tndTable [203]float32

func init() {
	for i := range pulseTable {
		if i == 0 {
			continue
		}
		pulseTable[i] = 95.52 / (8128.0/float32(i) + 100)
	}
	for i := range tndTable {
		if i == 0 {
			continue
		}
		tndTable[i] = 163.67 / (24329.0/float32(i) + 100)
	}
}

func (a *APU) mix() float32 {
	p1 := a.pulseOutput(&a.pulse1)
	p2 := a.pulseOutput(&a.pulse2)
	t := a.triangleOutput()
	n := a.noiseOutput()
	d := a.dmcOutput()

	pulseOut := pulseTable[p1+p2]
	tndOut := tndTable[3*t+2*n+d]
	return pulseOut + tndOut
}
