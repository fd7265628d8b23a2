package series

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResampleLevelsInsertsBlendedPoints(t *testing.T) {
	points := []LevelPoint{
		{Time: 0, Value: 0, Notional: 0},
		{Time: 120, Value: 12, Notional: 240},
	}

	out := ResampleLevels(points, 60)
	require.Len(t, out, 3)
	require.Equal(t, int64(60), out[1].Time)
	require.InDelta(t, 6.0, out[1].Value, 1e-9)
	require.InDelta(t, 120.0, out[1].Notional, 1e-9)
	require.Equal(t, points[0], out[0])
	require.Equal(t, points[1], out[2])
}

func TestResampleNativeIntervalIsIdentity(t *testing.T) {
	points := []LevelPoint{
		{Time: 0, Value: 1},
		{Time: 300, Value: 2},
		{Time: 600, Value: 3},
	}
	out := ResampleLevels(points, 300)
	require.Equal(t, points, out)
}

func TestResampleEmptyAndInvalidTarget(t *testing.T) {
	require.Empty(t, ResampleLevels(nil, 60))

	points := []LevelPoint{{Time: 0, Value: 1}, {Time: 500, Value: 2}}
	require.Equal(t, points, ResampleLevels(points, 0))
	require.Equal(t, points, ResampleLevels(points, -10))
}

func TestResampleSortsUnorderedInput(t *testing.T) {
	points := []LevelPoint{
		{Time: 600, Value: 6},
		{Time: 0, Value: 0},
		{Time: 300, Value: 3},
	}
	out := ResampleLevels(points, 300)
	require.Len(t, out, 3)
	require.Equal(t, int64(0), out[0].Time)
	require.Equal(t, int64(600), out[2].Time)
}

func TestResampleDoesNotMutateInput(t *testing.T) {
	points := []LevelPoint{
		{Time: 120, Value: 12},
		{Time: 0, Value: 0},
	}
	_ = ResampleLevels(points, 60)
	require.Equal(t, int64(120), points[0].Time)
}

func TestResampleRatiosRecomputesRatio(t *testing.T) {
	points := []RatioPoint{
		{Time: 0, Long: 40, Short: 60, Ratio: 40.0 / 60.0},
		{Time: 300, Long: 70, Short: 30, Ratio: 70.0 / 30.0},
	}

	out := ResampleRatios(points, 100)
	require.Len(t, out, 4)
	for _, p := range out {
		want := 0.0
		if p.Short != 0 {
			want = p.Long / p.Short
		}
		require.InDelta(t, want, p.Ratio, 1e-9, "ratio invariant at t=%d", p.Time)
	}
	// The inserted points interpolate the primitives linearly.
	require.InDelta(t, 50.0, out[1].Long, 1e-9)
	require.InDelta(t, 50.0, out[1].Short, 1e-9)
}

func TestResampleVolumesRecomputesRatio(t *testing.T) {
	points := []VolumePoint{
		{Time: 0, Buy: 10, Sell: 0, Ratio: 0},
		{Time: 200, Buy: 30, Sell: 20, Ratio: 1.5},
	}
	out := ResampleVolumes(points, 100)
	require.Len(t, out, 3)
	require.InDelta(t, 20.0, out[1].Buy, 1e-9)
	require.InDelta(t, 10.0, out[1].Sell, 1e-9)
	require.InDelta(t, 2.0, out[1].Ratio, 1e-9)
}

func TestResampleBasisRecomputesBasis(t *testing.T) {
	points := []BasisPoint{
		{Time: 0, Mark: 100, Index: 99, Basis: 1},
		{Time: 300, Mark: 103, Index: 105, Basis: -2},
	}
	out := ResampleBasis(points, 100)
	require.Len(t, out, 4)
	for _, p := range out {
		require.InDelta(t, p.Mark-p.Index, p.Basis, 1e-9, "basis invariant at t=%d", p.Time)
	}
}

func TestResampleUnevenGap(t *testing.T) {
	// gap=250 with target=100 yields floor(250/100)=2 steps, inserting a
	// single blended point at t=100.
	points := []LevelPoint{
		{Time: 0, Value: 0},
		{Time: 250, Value: 25},
	}
	out := ResampleLevels(points, 100)
	require.Len(t, out, 3)
	require.Equal(t, int64(100), out[1].Time)
	require.InDelta(t, 10.0, out[1].Value, 1e-9)
	require.Equal(t, int64(250), out[2].Time)
}
