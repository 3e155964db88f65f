package notifier

// ConfidenceBand maps a conviction score to the label shown in messages.
func ConfidenceBand(conviction int) string {
	switch {
	case conviction < 15:
		return "Very Low"
	case conviction < 30:
		return "Low"
	case conviction < 50:
		return "Medium-Low"
	case conviction < 65:
		return "Medium"
	case conviction < 80:
		return "High"
	default:
		return "Very High"
	}
}
