package flow

// estimationBufferSize is the number of samples retained per buffer. A sample
// for index i lives in slot i % estimationBufferSize, so a newer measurement
// of a distant index overwrites the older one.
const estimationBufferSize = 100

// estimationBuffer keeps index-keyed samples and their running total.
type estimationBuffer struct {
	values   [estimationBufferSize]float64
	occupied [estimationBufferSize]bool
	total    float64
	samples  int
}

// record stores value for index and returns true when the slot was empty.
func (b *estimationBuffer) record(index int, value float64) bool {
	slot := index % estimationBufferSize
	fresh := !b.occupied[slot]
	if fresh {
		b.occupied[slot] = true
		b.samples++
	}
	b.total += value - b.values[slot]
	b.values[slot] = value
	return fresh
}

// average returns total / samples, or 0 without samples.
func (b *estimationBuffer) average() float64 {
	if b.samples == 0 {
		return 0
	}
	return b.total / float64(b.samples)
}

func (b *estimationBuffer) reset() {
	*b = estimationBuffer{}
}
