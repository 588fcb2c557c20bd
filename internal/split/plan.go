package split

import "github.com/handiism/splitmix/internal/model"

// Plan turns sorted track requests into export ranges over a source of
// durationMs milliseconds.
//
// Each track ends where the next one starts and the last one ends with the
// source. End times are clamped to the source, so a plan can be degenerate;
// Valid tells those apart.
func Plan(tracks []model.TrackRequest, durationMs int64) []model.TrackPlan {
	plans := make([]model.TrackPlan, len(tracks))
	for i, t := range tracks {
		end := durationMs
		if i+1 < len(tracks) {
			end = min(tracks[i+1].StartMs, durationMs)
		}
		plans[i] = model.TrackPlan{
			Index:   i + 1,
			StartMs: t.StartMs,
			EndMs:   end,
			Title:   t.Title,
		}
	}
	return plans
}

// Valid reports whether p selects at least one millisecond of a source of
// durationMs milliseconds.
func Valid(p model.TrackPlan, durationMs int64) bool {
	return p.StartMs >= 0 && p.StartMs < durationMs && p.EndMs > p.StartMs && p.EndMs <= durationMs
}
