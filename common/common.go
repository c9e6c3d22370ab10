package common

const (
	BaseWidth  = 1280
	BaseHeight = 720

	TileSize = 32
	Gravity  = 900.0
)

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
