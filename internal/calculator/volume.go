package calculator

import "CryptoSentinel/internal/model"

// VolumeStats summarises today's volume against the trailing 20-sample average.
type VolumeStats struct {
	Avg         float64
	Current     float64
	SpikeFactor float64
	Signal      model.VolumeSignal
}

// AnalyzeVolume classifies the most recent volume sample. A spike factor above
// 1.8 reads as capitulation/breakout volume, below 0.7 as thin participation.
func AnalyzeVolume(volumes []float64) VolumeStats {
	if len(volumes) < 5 {
		return VolumeStats{SpikeFactor: 1.0, Signal: model.VolumeInsufficient}
	}

	current := volumes[len(volumes)-1]
	var avg float64
	if len(volumes) > 20 {
		sum := 0.0
		for _, v := range volumes[len(volumes)-21 : len(volumes)-1] {
			sum += v
		}
		avg = sum / 20
	} else {
		sum := 0.0
		for _, v := range volumes {
			sum += v
		}
		avg = sum / float64(len(volumes))
	}

	spike := 1.0
	if avg > 0 {
		spike = current / avg
	}

	signal := model.VolumeLow
	switch {
	case spike > 1.8:
		signal = model.VolumeExtremeSpike
	case spike > 1.3:
		signal = model.VolumeHighSpike
	case spike > 0.7:
		signal = model.VolumeNormal
	}
	return VolumeStats{Avg: avg, Current: current, SpikeFactor: spike, Signal: signal}
}
