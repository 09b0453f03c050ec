package service

// GenerateSlots returns every candidate appointment start, in minutes since
// midnight, stepping through the half-open working window [winStart, winEnd).
// A start is only emitted when the full service duration fits before the
// window closes. Pure and deterministic.
func GenerateSlots(winStart, winEnd, durationMinutes, stepMinutes int) []int {
	if stepMinutes <= 0 || durationMinutes <= 0 {
		return nil
	}

	var slots []int
	for start := winStart; start+durationMinutes <= winEnd; start += stepMinutes {
		slots = append(slots, start)
	}

	return slots
}
