package scoring

import "math"

// NeutralScore is substituted wherever a metric cannot be computed.
const NeutralScore = 50.0

func ptr(v float64) *float64 {
	return &v
}

// safeDiv returns a/b, or nil when either side is missing or b is zero.
func safeDiv(a, b *float64) *float64 {
	if a == nil || b == nil || *b == 0 {
		return nil
	}
	return ptr(*a / *b)
}

// change returns latest-prev when both are present.
func change(prev, latest *float64) *float64 {
	if prev == nil || latest == nil {
		return nil
	}
	return ptr(*latest - *prev)
}

// volatilityProxy is |latest-prev| divided by the mean magnitude of the two.
// A zero mean is treated as no signal.
func volatilityProxy(prev, latest *float64) *float64 {
	if prev == nil || latest == nil {
		return nil
	}
	avg := (math.Abs(*prev) + math.Abs(*latest)) / 2.0
	if avg == 0 {
		return nil
	}
	return ptr(math.Abs(*latest-*prev) / avg)
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

func clampScore(x float64) float64 {
	return clamp(x, 0, 100)
}

// round2 rounds half away from zero to two decimals.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// lerp maps x in [x0, x1] linearly onto [y0, y1].
func lerp(x, x0, x1, y0, y1 float64) float64 {
	return y0 + ((x-x0)/(x1-x0))*(y1-y0)
}
