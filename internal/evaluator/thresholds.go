package evaluator

// Thresholds alert trigger thresholds
type Thresholds struct {
	ResCritical  float64 `json:"resCritical"`
	ResHigh      float64 `json:"resHigh"`
	PM25Critical float64 `json:"pm25Critical"`
	PM25High     float64 `json:"pm25High"`
	PM25Medium   float64 `json:"pm25Medium"`
}

// DefaultThresholds critical RES<40 or PM2.5>150, high RES<60 or PM2.5>100, medium PM2.5>50
func DefaultThresholds() Thresholds {
	return Thresholds{
		ResCritical:  40,
		ResHigh:      60,
		PM25Critical: 150,
		PM25High:     100,
		PM25Medium:   50,
	}
}

func orDefault(t *Thresholds) Thresholds {
	if t == nil {
		return DefaultThresholds()
	}
	return *t
}
