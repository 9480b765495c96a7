package nitro

// ResolveFrame maps elapsed ticks to a frame index in [0, len(s.Frames)-1]
// according to the sequence's play mode. An empty sequence resolves to 0.
//
// Reverse modes mirror the timeline around the end of the sequence, using
// the durations of the boundary frames to decide where the turn happens.
func ResolveFrame(s *Sequence, elapsed int) int {
	n := len(s.Frames)
	if n == 0 {
		return 0
	}
	t := s.StartFrame + elapsed
	if t < 0 {
		t = 0
	}
	last := s.Frames[n-1].Duration
	var r int
	switch s.Mode {
	case PlayLoop:
		r = t % n
	case PlayReverse:
		r = t
		if t >= n {
			r = 2*n - last - t
		}
	case PlayReverseLoop:
		cycle := 2*n - last - s.Frames[0].Duration
		if cycle <= 0 {
			return 0
		}
		r = t % cycle
		if r >= n {
			r = 2*n - last - r
		}
	default:
		// forward, and anything unrecognized
		r = t
	}
	return clampFrame(r, n)
}

// FrameIndexFromElapsed walks the sequence's durations and returns the
// record active after t ticks. Past the end it returns the last record.
func FrameIndexFromElapsed(s *Sequence, t int) int {
	acc := 0
	for i, f := range s.Frames {
		acc += f.Duration
		if t < acc {
			return i
		}
	}
	if len(s.Frames) == 0 {
		return 0
	}
	return len(s.Frames) - 1
}

// FrameAt returns the frame shown after elapsed ticks along with its index.
func (s *Sequence) FrameAt(elapsed int) (Frame, int) {
	if len(s.Frames) == 0 {
		return Frame{ScaleX: 1 << 12, ScaleY: 1 << 12}, 0
	}
	i := FrameIndexFromElapsed(s, ResolveFrame(s, elapsed))
	return s.Frames[i], i
}

// Period returns the number of ticks after which playback repeats or comes
// to rest.
func (s *Sequence) Period() int {
	n := len(s.Frames)
	switch {
	case n == 0:
		return 1
	case s.Mode == PlayLoop:
		return n
	case s.Mode == PlayReverseLoop:
		if cycle := 2*n - s.Frames[n-1].Duration - s.Frames[0].Duration; cycle > 0 {
			return cycle
		}
		return 1
	case s.Mode == PlayReverse:
		return 2 * n
	}
	return n
}

// PlayOrder lists the frame records of one pass through s in the order they
// are shown. Reverse modes come back down after the last record: Reverse to
// the first record, ReverseLoop to just after LoopStart, where the next pass
// picks up.
func (s *Sequence) PlayOrder() []int {
	n := len(s.Frames)
	order := make([]int, 0, 2*n)
	for i := 0; i < n; i++ {
		order = append(order, i)
	}
	switch s.Mode {
	case PlayReverse:
		for i := n - 2; i >= 0; i-- {
			order = append(order, i)
		}
	case PlayReverseLoop:
		low := s.LoopStart
		if low < 0 || low >= n {
			low = 0
		}
		for i := n - 2; i > low; i-- {
			order = append(order, i)
		}
	}
	return order
}

// Duration returns the sum of the frame durations.
func (s *Sequence) Duration() int {
	total := 0
	for _, f := range s.Frames {
		total += f.Duration
	}
	return total
}

func clampFrame(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
