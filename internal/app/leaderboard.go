package app

import (
	"slices"

	"quiz-live-service/internal/domain"
)

// Standing is a participant's running total, as fed to BuildLeaderboard.
type Standing struct {
	ParticipantID string
	Name          string
	Score         int
}

// BuildLeaderboard orders standings by score, highest first, and assigns
// competition ranks: tied scores share a rank and the next distinct score
// ranks at its 1-based position. Equal scores keep their input order.
// RankChange is previous rank minus current rank, 0 for participants
// missing from previous.
func BuildLeaderboard(standings []Standing, previous map[string]int) []domain.LeaderboardEntry {
	sorted := slices.Clone(standings)
	slices.SortStableFunc(sorted, func(a, b Standing) int {
		return b.Score - a.Score
	})

	entries := make([]domain.LeaderboardEntry, len(sorted))
	rank := 1
	for i, s := range sorted {
		if i > 0 && s.Score < sorted[i-1].Score {
			rank = i + 1
		}
		change := 0
		if prev, ok := previous[s.ParticipantID]; ok {
			change = prev - rank
		}
		entries[i] = domain.LeaderboardEntry{
			ParticipantID: s.ParticipantID,
			Name:          s.Name,
			Score:         s.Score,
			Rank:          rank,
			RankChange:    change,
		}
	}
	return entries
}

// Ranks indexes a leaderboard by participant.
func Ranks(entries []domain.LeaderboardEntry) map[string]int {
	ranks := make(map[string]int, len(entries))
	for _, e := range entries {
		ranks[e.ParticipantID] = e.Rank
	}
	return ranks
}
