package imageutil

// Luma returns BT.601 luma of an sRGB pixel scaled to [0,1]:
// Y = 0.299*R + 0.587*G + 0.114*B. The weights are kept as integers so
// pure white is exactly 1 and pure black exactly 0.
func Luma(r, g, b uint8) float64 {
	return float64(299*int(r)+587*int(g)+114*int(b)) / (1000 * 255)
}
