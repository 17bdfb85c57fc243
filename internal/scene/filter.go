package scene

import "sort"

// Filter returns the ordered subset of scenes eligible for composition.
// Input order is preserved by Sequence; the filter itself is pure and has no
// side effects.
func Filter(scenes []Scene) []Scene {
	eligible := make([]Scene, 0, len(scenes))
	for _, s := range scenes {
		if s.Eligible() {
			eligible = append(eligible, s)
		}
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].Sequence < eligible[j].Sequence
	})
	return eligible
}
