package sim

import "math"

// normalizeAngle wraps angle to [-pi, pi]. Mod keeps the wrap exact even
// for magnitudes where float32 steps exceed 2*pi.
func normalizeAngle(a float32) float32 {
	r := math.Mod(float64(a), 2*math.Pi)
	if r > math.Pi {
		r -= 2 * math.Pi
	} else if r < -math.Pi {
		r += 2 * math.Pi
	}
	return float32(r)
}

// finite32 reports whether v is neither NaN nor infinite.
func finite32(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func clamp32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func sqrt32(v float32) float32 {
	return float32(math.Sqrt(float64(v)))
}

func atan232(y, x float32) float32 {
	return float32(math.Atan2(float64(y), float64(x)))
}
