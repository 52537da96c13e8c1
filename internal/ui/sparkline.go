package ui

// sparkRunes are the eight block heights, lowest first.
var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// Sparkline renders samples as exactly width block characters scaled to the
// largest sample. Only the newest width samples are drawn; fewer samples are
// padded on the left with the lowest block.
func Sparkline(data []float64, width int) string {
	if width <= 0 {
		return ""
	}

	samples := make([]float64, width)
	if len(data) >= width {
		copy(samples, data[len(data)-width:])
	} else {
		copy(samples[width-len(data):], data)
	}

	peak := 0.0
	for _, v := range samples {
		peak = max(peak, v)
	}

	out := make([]rune, width)
	top := len(sparkRunes) - 1
	for i, v := range samples {
		if peak <= 0 || v <= 0 {
			out[i] = sparkRunes[0]
			continue
		}
		out[i] = sparkRunes[min(int(v/peak*float64(top)), top)]
	}
	return string(out)
}
