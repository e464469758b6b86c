package random

// Script is a Source that replays fixed values. Floats feed Float64 and Uniform,
// ints feed IntRange and Intn. Once a queue runs dry the fallback source is used,
// or zero values when there is none.
type Script struct {
	floats   []float64
	ints     []int
	fallback Source

	floatDraws int
	intDraws   int
}

// NewScript creates a scripted source. Values are consumed in order.
func NewScript(floats []float64, ints []int) *Script {
	return &Script{
		floats: append([]float64(nil), floats...),
		ints:   append([]int(nil), ints...),
	}
}

// WithFallback sets the source used once the scripted values are exhausted
func (s *Script) WithFallback(src Source) *Script {
	s.fallback = src
	return s
}

// PushFloats appends values to the float queue
func (s *Script) PushFloats(values ...float64) {
	s.floats = append(s.floats, values...)
}

// PushInts appends values to the int queue
func (s *Script) PushInts(values ...int) {
	s.ints = append(s.ints, values...)
}

// FloatDraws reports how many Float64/Uniform draws were made.
func (s *Script) FloatDraws() int {
	return s.floatDraws
}

// IntDraws reports how many IntRange/Intn draws were made.
func (s *Script) IntDraws() int {
	return s.intDraws
}

// Remaining reports how many scripted values are still queued.
func (s *Script) Remaining() (floats, ints int) {
	return len(s.floats), len(s.ints)
}

func (s *Script) Float64() float64 {
	s.floatDraws++
	if len(s.floats) == 0 {
		if s.fallback != nil {
			return s.fallback.Float64()
		}
		return 0
	}
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

func (s *Script) Uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*s.Float64()
}

func (s *Script) IntRange(lo, hi int) int {
	s.intDraws++
	if len(s.ints) == 0 {
		if s.fallback != nil {
			return s.fallback.IntRange(lo, hi)
		}
		return lo
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	return v
}

func (s *Script) Intn(n int) int {
	s.intDraws++
	if len(s.ints) == 0 {
		if s.fallback != nil {
			return s.fallback.Intn(n)
		}
		return 0
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	return v
}
