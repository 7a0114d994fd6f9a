package tap

// Edge reports the TCK transitions seen in one domain tick. Rising and
// Falling are never both set.
type Edge struct {
	Rising  bool
	Falling bool
}

// None reports whether neither edge was detected.
func (e Edge) None() bool {
	return !e.Rising && !e.Falling
}

func (e Edge) String() string {
	switch {
	case e.Rising:
		return "rise"
	case e.Falling:
		return "fall"
	default:
		return "-"
	}
}

// DetectEdges compares two consecutive synchronized TCK samples.
func DetectEdges(previous, current bool) Edge {
	return Edge{
		Rising:  !previous && current,
		Falling: previous && !current,
	}
}

// EdgeDetector turns a sampled level into edge events by remembering the
// previous sample.
type EdgeDetector struct {
	last bool
}

// Sample records level and returns the edge relative to the previous sample.
func (d *EdgeDetector) Sample(level bool) Edge {
	e := DetectEdges(d.last, level)
	d.last = level
	return e
}

// Last returns the most recently sampled level.
func (d *EdgeDetector) Last() bool {
	return d.last
}

// Reset forgets the previous sample.
func (d *EdgeDetector) Reset() {
	d.last = false
}
