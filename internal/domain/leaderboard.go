package domain

import "sort"

// SortLeaderboard orders entries by score descending, then by who reached their score
// earlier, then by player ID so equal timestamps still sort deterministically.
func SortLeaderboard(entries []ScoreEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].TotalScore != entries[j].TotalScore {
			return entries[i].TotalScore > entries[j].TotalScore
		}
		if !entries[i].UpdatedAt.Equal(entries[j].UpdatedAt) {
			return entries[i].UpdatedAt.Before(entries[j].UpdatedAt)
		}
		return entries[i].PlayerID < entries[j].PlayerID
	})
}
