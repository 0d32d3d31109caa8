package pnl

// Progress places the current price between the stop loss (0%) and the
// profit target (100%).
type Progress struct {
	Percent          float64 `json:"percent"`
	DistanceToStop   float64 `json:"distance_to_stop"`
	DistanceToTarget float64 `json:"distance_to_target"`
}

func CalculateProgress(current, stop, target float64) Progress {
	p := Progress{
		DistanceToStop:   current - stop,
		DistanceToTarget: target - current,
	}
	if target == stop {
		return p
	}
	pct := (current - stop) / (target - stop) * 100
	switch {
	case pct < 0:
		pct = 0
	case pct > 100:
		pct = 100
	}
	p.Percent = pct
	return p
}
