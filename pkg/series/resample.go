package series

import "sort"

// shape tells the generic resampler how to read a point's timestamp and
// how to build an interpolated point between two neighbours. blend must
// interpolate primitive fields only and recompute every derived field
// from the blended primitives, so invariants such as ratio = long/short
// hold at inserted points as well as observed ones.
type shape[P any] struct {
	at    func(P) int64
	blend func(a, b P, ratio float64, ts int64) P
}

// resample densifies points to approximately the target interval via
// linear interpolation. Consecutive input points are always emitted
// unchanged; when the gap between a pair exceeds the target, evenly
// spaced intermediate points fill it. Resampling a series at its own
// native interval is therefore the identity. A non-positive or
// non-finite target returns an unmodified copy of the input.
func resample[P any](points []P, targetMs int64, s shape[P]) []P {
	out := make([]P, len(points))
	copy(out, points)
	sort.Slice(out, func(i, j int) bool { return s.at(out[i]) < s.at(out[j]) })

	if len(out) < 2 || targetMs <= 0 || !isFinite(float64(targetMs)) {
		return out
	}

	dense := make([]P, 0, len(out))
	for i := 0; i < len(out)-1; i++ {
		cur, next := out[i], out[i+1]
		dense = append(dense, cur)

		gap := s.at(next) - s.at(cur)
		if gap <= targetMs {
			continue
		}
		steps := gap / targetMs
		for step := int64(1); step < steps; step++ {
			ratio := float64(step*targetMs) / float64(gap)
			dense = append(dense, s.blend(cur, next, ratio, s.at(cur)+step*targetMs))
		}
	}
	dense = append(dense, out[len(out)-1])

	sort.Slice(dense, func(i, j int) bool { return s.at(dense[i]) < s.at(dense[j]) })
	return dense
}

func lerp(a, b, ratio float64) float64 {
	return a + (b-a)*ratio
}

var levelShape = shape[LevelPoint]{
	at: func(p LevelPoint) int64 { return p.Time },
	blend: func(a, b LevelPoint, r float64, ts int64) LevelPoint {
		return LevelPoint{
			Time:     ts,
			Value:    lerp(a.Value, b.Value, r),
			Notional: lerp(a.Notional, b.Notional, r),
		}
	},
}

var ratioShape = shape[RatioPoint]{
	at: func(p RatioPoint) int64 { return p.Time },
	blend: func(a, b RatioPoint, r float64, ts int64) RatioPoint {
		long := lerp(a.Long, b.Long, r)
		short := lerp(a.Short, b.Short, r)
		return RatioPoint{Time: ts, Long: long, Short: short, Ratio: ratioOf(long, short)}
	},
}

var volumeShape = shape[VolumePoint]{
	at: func(p VolumePoint) int64 { return p.Time },
	blend: func(a, b VolumePoint, r float64, ts int64) VolumePoint {
		buy := lerp(a.Buy, b.Buy, r)
		sell := lerp(a.Sell, b.Sell, r)
		return VolumePoint{Time: ts, Buy: buy, Sell: sell, Ratio: ratioOf(buy, sell)}
	},
}

var basisShape = shape[BasisPoint]{
	at: func(p BasisPoint) int64 { return p.Time },
	blend: func(a, b BasisPoint, r float64, ts int64) BasisPoint {
		mark := lerp(a.Mark, b.Mark, r)
		index := lerp(a.Index, b.Index, r)
		return BasisPoint{Time: ts, Mark: mark, Index: index, Basis: mark - index}
	},
}

// ResampleLevels densifies an open-interest level series to the target
// interval. The matching delta series is never resampled directly;
// recompute it with Deltas over the resampled levels.
func ResampleLevels(points []LevelPoint, target int64) []LevelPoint {
	return resample(points, target, levelShape)
}

// ResampleRatios densifies a long/short ratio series to the target
// interval, recomputing Ratio at every inserted point.
func ResampleRatios(points []RatioPoint, target int64) []RatioPoint {
	return resample(points, target, ratioShape)
}

// ResampleVolumes densifies a taker volume series to the target interval.
func ResampleVolumes(points []VolumePoint, target int64) []VolumePoint {
	return resample(points, target, volumeShape)
}

// ResampleBasis densifies a mark/index basis series to the target interval.
func ResampleBasis(points []BasisPoint, target int64) []BasisPoint {
	return resample(points, target, basisShape)
}
