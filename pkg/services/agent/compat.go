package agent

// CanFuseWith is a fixed allow-list membership check on the other
// agent's id.
func (a *Agent) CanFuseWith(otherID string) bool {
	for _, id := range a.identity.FuseAllowList {
		if id == otherID {
			return true
		}
	}
	return false
}

// CompatibilityScore is the Jaccard similarity of the two agents'
// capability sets, or 0 when the other agent is not fusable at all.
func (a *Agent) CompatibilityScore(other *Agent) float64 {
	if other == nil || !a.CanFuseWith(other.ID()) {
		return 0
	}

	mine := map[string]struct{}{}
	for _, c := range a.identity.Capabilities {
		mine[c] = struct{}{}
	}
	theirs := map[string]struct{}{}
	for _, c := range other.identity.Capabilities {
		theirs[c] = struct{}{}
	}

	intersection := 0
	for c := range mine {
		if _, ok := theirs[c]; ok {
			intersection++
		}
	}
	union := len(mine) + len(theirs) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
