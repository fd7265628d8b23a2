package series

// Deltas derives the increase/decrease series from an ordered level
// series. The first point has no predecessor and is always (0, 0); for
// every later point the signed difference from its predecessor is split
// into a non-negative Increase and a non-positive Decrease. Summing both
// columns over the whole output telescopes to last.Value - first.Value.
func Deltas(levels []LevelPoint) []DeltaPoint {
	out := make([]DeltaPoint, 0, len(levels))
	for i, level := range levels {
		point := DeltaPoint{Time: level.Time}
		if i > 0 {
			diff := level.Value - levels[i-1].Value
			if diff > 0 {
				point.Increase = diff
			} else {
				point.Decrease = diff
			}
		}
		out = append(out, point)
	}
	return out
}
