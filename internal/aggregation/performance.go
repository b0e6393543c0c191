package aggregation

import (
	"handicapper/internal/models"
)

var recentWindows = []int{5, 10, 30}

// WinRate is the percentage of wins among picks with a terminal result.
// Pending and void picks are left out of the denominator.
func WinRate(picks []*models.Pick) float64 {
	wins, completed := 0, 0
	for _, p := range picks {
		if !p.HasResult() {
			continue
		}
		completed++
		if p.Outcome() == models.PickResultWin {
			wins++
		}
	}
	return percentage(wins, completed)
}

// RecentRecord tallies the first n picks of a list ordered newest first,
// skipping the ones without a result.
func RecentRecord(picks []*models.Pick, n int) models.Record {
	if n > len(picks) {
		n = len(picks)
	}
	if n < 0 {
		n = 0
	}
	return tally(picks[:n])
}

// BySport groups picks on the exact sport string. Picks counts every pick in
// the sport; WinRate uses the same denominator rule as WinRate.
func BySport(picks []*models.Pick) map[string]models.SportStats {
	type acc struct{ picks, wins, completed int }
	groups := make(map[string]*acc)

	for _, p := range picks {
		g, ok := groups[p.Sport]
		if !ok {
			g = &acc{}
			groups[p.Sport] = g
		}
		g.picks++
		if p.HasResult() {
			g.completed++
			if p.Outcome() == models.PickResultWin {
				g.wins++
			}
		}
	}

	out := make(map[string]models.SportStats, len(groups))
	for sport, g := range groups {
		out[sport] = models.SportStats{
			Picks:   g.picks,
			Wins:    g.wins,
			WinRate: percentage(g.wins, g.completed),
		}
	}
	return out
}

// ComputePerformance builds the profile statistics block. picks must be
// ordered by creation time, newest first.
func ComputePerformance(handicapperID string, picks []*models.Pick) *models.HandicapperPerformance {
	overall := tally(picks)
	perf := &models.HandicapperPerformance{
		HandicapperID:  handicapperID,
		TotalPicks:     len(picks),
		CompletedPicks: overall.Wins + overall.Losses + overall.Pushes,
		Wins:           overall.Wins,
		Losses:         overall.Losses,
		Pushes:         overall.Pushes,
		WinRate:        WinRate(picks),
		BySport:        BySport(picks),
	}

	for _, p := range picks {
		if p.Status == models.PickStatusPending || p.Status == "" {
			perf.ActivePicks++
		}
	}

	records := make([]models.Record, len(recentWindows))
	for i, n := range recentWindows {
		records[i] = RecentRecord(picks, n)
	}
	perf.Recent5, perf.Recent10, perf.Recent30 = records[0], records[1], records[2]

	return perf
}

func tally(picks []*models.Pick) models.Record {
	var r models.Record
	for _, p := range picks {
		switch p.Outcome() {
		case models.PickResultWin:
			r.Wins++
		case models.PickResultLoss:
			r.Losses++
		case models.PickResultPush:
			r.Pushes++
		}
	}
	return r
}

func percentage(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
