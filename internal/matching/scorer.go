// Package matching implements the job/worker compatibility engine: the
// scorer, the match finder and the application tracker.
package matching

import (
	"math"

	"github.com/faenaapp/faena-backend/internal/domain"
	"github.com/faenaapp/faena-backend/internal/geo"
)

// Score weights. The scorer is an additive point system, deterministic and
// auditable; the four buckets sum to at most 100.
const (
	// WeightCategoryMatch is granted when the job's category is among the
	// worker's declared categories. Binary gate, no partial credit.
	WeightCategoryMatch = 40

	// Proximity buckets. Step function rather than linear decay.
	WeightDistanceUnder2Km  = 30
	WeightDistanceUnder5Km  = 25
	WeightDistanceUnder10Km = 20
	WeightDistanceUnder20Km = 10

	// WeightAvailability is granted only when the worker is both active
	// today and verified. All-or-nothing.
	WeightAvailability = 15

	// Rating contributes ratingAverage × RatingMultiplier, capped at
	// RatingCap. A 5.0-star worker earns the full 15.
	RatingMultiplier = 3.0
	RatingCap        = 15.0
)

// ScoreResult is the scorer's output for one (job, worker) pair.
type ScoreResult struct {
	// Score is an integer in [0, 100].
	Score int

	// DistanceKm is the full-precision great-circle distance. Only
	// meaningful when Located is true.
	DistanceKm float64

	// Located is false when the worker has no stored coordinates; the
	// proximity bucket then contributes nothing.
	Located bool
}

// Score computes the compatibility score between a job and a worker profile.
// It never fails: every pair gets a value, and filtering by a minimum score
// is the finder's concern.
func Score(job *domain.Job, w *domain.WorkerProfile) ScoreResult {
	res := ScoreResult{}

	if w.Latitude != nil && w.Longitude != nil {
		res.Located = true
		res.DistanceKm = geo.DistanceKm(job.Latitude, job.Longitude, *w.Latitude, *w.Longitude)
	}

	points := 0.0

	if w.HasCategory(job.ServiceCategoryID) {
		points += WeightCategoryMatch
	}

	if res.Located {
		switch {
		case res.DistanceKm <= 2:
			points += WeightDistanceUnder2Km
		case res.DistanceKm <= 5:
			points += WeightDistanceUnder5Km
		case res.DistanceKm <= 10:
			points += WeightDistanceUnder10Km
		case res.DistanceKm <= 20:
			points += WeightDistanceUnder20Km
		}
	}

	if w.IsActiveToday && w.IsVerified {
		points += WeightAvailability
	}

	points += math.Min(w.RatingAverage*RatingMultiplier, RatingCap)

	res.Score = int(math.Round(points))
	return res
}
