package app

import (
	"math"

	"quiz-live-service/internal/domain"
)

const (
	pointsPerTier = 100
	maxSpeedBonus = 0.5
)

// Score returns the points earned by choosing answerIndex for q after
// latencyMs milliseconds. Wrong answers earn nothing; a correct answer earns
// tier*100 plus a speed bonus of up to 50% that decays linearly to zero at
// the time limit.
func Score(q domain.Question, answerIndex int, latencyMs int64) int {
	if answerIndex != q.CorrectIndex {
		return 0
	}
	base := q.Points * pointsPerTier
	limitMs := float64(q.TimeLimit) * 1000
	ratio := 0.0
	if limitMs > 0 {
		ratio = math.Max(0, 1-float64(latencyMs)/limitMs)
	}
	bonus := int(math.Round(float64(base) * maxSpeedBonus * ratio))
	return base + bonus
}
