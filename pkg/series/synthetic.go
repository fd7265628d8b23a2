package series

import (
	"math"
	"math/rand"
	"time"
)

// Synthetic is the deterministic placeholder bundle shown before the
// first upstream response arrives and whenever a refresh fails.
type Synthetic struct {
	Candles            []Bar
	OpenInterest       []LevelPoint
	TopAccountRatio    []RatioPoint
	TopPositionRatio   []RatioPoint
	GlobalAccountRatio []RatioPoint
	TakerVolume        []VolumePoint
	Basis              []BasisPoint
}

// SymbolSeed derives an integer seed from a symbol by summing each
// character code weighted by its 1-based position. The same symbol
// always maps to the same seed, so placeholder series keep their shape
// across refresh cycles.
func SymbolSeed(symbol string) int64 {
	var seed int64
	for i, r := range symbol {
		seed += int64(i+1) * int64(r)
	}
	return seed
}

// Synthesize produces a plausible-looking analytics bundle of limit
// points spaced by step, walking backward from the anchor. Output is a
// pure function of (symbol, limit, step, anchor): the anchor shifts
// absolute timestamps but never the relative shape of any series.
func Synthesize(symbol string, limit int, step time.Duration, anchor time.Time) Synthetic {
	if limit <= 0 || step <= 0 {
		return Synthetic{
			Candles:            []Bar{},
			OpenInterest:       []LevelPoint{},
			TopAccountRatio:    []RatioPoint{},
			TopPositionRatio:   []RatioPoint{},
			GlobalAccountRatio: []RatioPoint{},
			TakerVolume:        []VolumePoint{},
			Basis:              []BasisPoint{},
		}
	}

	seed := SymbolSeed(symbol)
	rng := rand.New(rand.NewSource(seed))
	stepMs := step.Milliseconds()
	anchorMs := anchor.UnixMilli()

	times := make([]int64, limit)
	for i := 0; i < limit; i++ {
		times[i] = anchorMs - int64(limit-1-i)*stepMs
	}

	out := Synthetic{
		Candles:            make([]Bar, 0, limit),
		OpenInterest:       make([]LevelPoint, 0, limit),
		TopAccountRatio:    make([]RatioPoint, 0, limit),
		TopPositionRatio:   make([]RatioPoint, 0, limit),
		GlobalAccountRatio: make([]RatioPoint, 0, limit),
		TakerVolume:        make([]VolumePoint, 0, limit),
		Basis:              make([]BasisPoint, 0, limit),
	}

	basePrice := 20 + float64(seed%880)
	phase := float64(seed%628) / 100

	// Candle walk: close follows a drifting sinusoid with bounded noise.
	price := basePrice
	for i := 0; i < limit; i++ {
		drift := 0.002 * basePrice * math.Sin(float64(i)/9+phase)
		noise := (rng.Float64() - 0.5) * 0.004 * basePrice
		open := price
		price = math.Max(0.2*basePrice, price+drift+noise)
		high := math.Max(open, price) * (1 + 0.0008*rng.Float64())
		low := math.Min(open, price) * (1 - 0.0008*rng.Float64())
		volume := roundVolume(8 + 4*math.Sin(float64(i)/5+phase) + 3*rng.Float64())
		out.Candles = append(out.Candles, Bar{
			Time: times[i], Open: open, High: high, Low: low, Close: price, Volume: volume,
		})
	}

	// Open interest: smoothed walk of a seasonal sinusoid and a sawtooth
	// momentum term, floored at a plausible minimum.
	baseOI := 40_000 + float64(seed%9000)*12
	level := baseOI
	for i := 0; i < limit; i++ {
		seasonal := 0.015 * baseOI * math.Sin(2*math.Pi*float64(i)/48+phase)
		momentum := 0.006 * baseOI * sawtooth(float64(i+int(seed%24))/24)
		wobble := (rng.Float64() - 0.5) * 0.01 * baseOI
		level = math.Max(0.3*baseOI, level+0.25*seasonal+momentum+wobble)
		notional := level * basePrice * (1 + 0.02*math.Sin(float64(i)/11+phase))
		out.OpenInterest = append(out.OpenInterest, LevelPoint{
			Time: times[i], Value: level, Notional: notional,
		})
	}

	// Three complementary percentage pairs driven by phase-shifted
	// sinusoids so the ratio boards never move in lockstep.
	ratioPhases := []float64{phase, phase + 2.1, phase + 4.2}
	ratioSeries := []*[]RatioPoint{&out.TopAccountRatio, &out.TopPositionRatio, &out.GlobalAccountRatio}
	for k, target := range ratioSeries {
		for i := 0; i < limit; i++ {
			long := clamp(50+12*math.Sin(2*math.Pi*float64(i)/36+ratioPhases[k]), 5, 95)
			short := 100 - long
			*target = append(*target, RatioPoint{
				Time: times[i], Long: long, Short: short, Ratio: ratioOf(long, short),
			})
		}
	}

	// Taker volume: two independent noisy, trending series floored at
	// zero. The denominator floor of 1 avoids ratio blowups near zero.
	baseVol := 400 + float64(seed%700)
	for i := 0; i < limit; i++ {
		trend := 0.4 * float64(i)
		buy := math.Max(0, baseVol+trend+90*math.Sin(float64(i)/7+phase)+40*(rng.Float64()-0.5))
		sell := math.Max(0, baseVol+trend+90*math.Sin(float64(i)/7+phase+1.3)+40*(rng.Float64()-0.5))
		out.TakerVolume = append(out.TakerVolume, VolumePoint{
			Time: times[i], Buy: buy, Sell: sell, Ratio: buy / math.Max(1, sell),
		})
	}

	// Basis: mark and index oscillate around a shared trending base.
	for i := 0; i < limit; i++ {
		shared := basePrice * (1 + 0.0004*float64(i) + 0.003*math.Sin(float64(i)/13+phase))
		mark := shared * (1 + 0.0006*math.Sin(float64(i)/6+phase+0.7))
		index := shared
		out.Basis = append(out.Basis, BasisPoint{
			Time: times[i], Mark: mark, Index: index, Basis: mark - index,
		})
	}

	return out
}

// sawtooth maps x onto a [-0.5, 0.5) ramp with period 1.
func sawtooth(x float64) float64 {
	return x - math.Floor(x) - 0.5
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
