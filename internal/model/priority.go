package model

// Note priorities. The order field doubles as the priority enum.
const (
	PriorityNone   = 1
	PriorityLow    = 2
	PriorityMedium = 3
	PriorityHigh   = 4
)

// NormalizePriority maps anything outside 1..4 to PriorityNone.
func NormalizePriority(order int) int {
	if order < PriorityNone || order > PriorityHigh {
		return PriorityNone
	}
	return order
}

// PriorityLabel returns the display name for an order value.
func PriorityLabel(order int) string {
	switch NormalizePriority(order) {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	default:
		return "none"
	}
}
