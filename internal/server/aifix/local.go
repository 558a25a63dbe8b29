package aifix

import "fmt"

// snapshotLimit bounds how much of the raw problem text is echoed back into
// the generated plan.
const snapshotLimit = 180

// LocalTemplate produces the deterministic fallback plan. It is pure: no
// I/O, no randomness, same input same output. The first snapshotLimit
// characters of the problem text are embedded verbatim in the snapshot line.
func LocalTemplate(problemText string) string {
	snapshot := problemText
	if r := []rune(snapshot); len(r) > snapshotLimit {
		snapshot = string(r[:snapshotLimit])
	}

	return fmt.Sprintf(
		"Situation Snapshot:\n"+
			"- %s\n\n"+
			"Immediate Actions (next 10 minutes):\n"+
			"- Take 4 slow breaths (4-4-6 pattern)\n"+
			"- Drink water, wash your face, fix your posture\n"+
			"- Pick one small task and set a 10-minute timer\n"+
			"- Write a short neutral note about the issue (facts only)\n\n"+
			"Motivation:\n"+
			"- Today may be rough, but the next 60 minutes are yours to control.\n\n"+
			"Next 2-3 Hour Micro Plan:\n"+
			"- 0-20 min: Quick recovery + priority list\n"+
			"- 20-80 min: Deep work sprint on top priority\n"+
			"- 80-100 min: Break + stretch\n"+
			"- 100-150 min: Second focused sprint\n",
		snapshot)
}
