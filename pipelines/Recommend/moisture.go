package recommend

// EstimateMoisture derives a soil moisture estimate from relative
// humidity via a fixed step function. It stands in for a soil moisture
// sensor reading.
func EstimateMoisture(humidityPct float64) float64 {
	switch {
	case humidityPct > 80:
		return 70
	case humidityPct > 60:
		return 60
	case humidityPct > 40:
		return 50
	case humidityPct > 20:
		return 40
	default:
		return 30
	}
}
