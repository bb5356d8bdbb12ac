package delta

// Diff computes the symmetric difference between the previous and next
// entity-id sets. toSubscribe preserves next's order, toUnsubscribe
// preserves prev's order, so control messages are issued in the order the
// set changed.
func Diff(prev, next []int64) (toSubscribe, toUnsubscribe []int64) {
	prevSet := make(map[int64]struct{}, len(prev))
	for _, id := range prev {
		prevSet[id] = struct{}{}
	}
	nextSet := make(map[int64]struct{}, len(next))
	for _, id := range next {
		nextSet[id] = struct{}{}
	}

	for _, id := range next {
		if _, ok := prevSet[id]; !ok {
			toSubscribe = append(toSubscribe, id)
		}
	}
	for _, id := range prev {
		if _, ok := nextSet[id]; !ok {
			toUnsubscribe = append(toUnsubscribe, id)
		}
	}
	return toSubscribe, toUnsubscribe
}
