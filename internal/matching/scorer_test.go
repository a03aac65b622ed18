package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/faenaapp/faena-backend/internal/domain"
)

const (
	testCategoryID = "cat-plumbing"
	baseLat        = -33.4489
	baseLng        = -70.6693
)

func scoredJob() *domain.Job {
	return &domain.Job{
		ID:                "job-1",
		ServiceCategoryID: testCategoryID,
		Latitude:          baseLat,
		Longitude:         baseLng,
		Status:            domain.JobStatusPending,
	}
}

func scoredWorker(lat, lng float64) *domain.WorkerProfile {
	return &domain.WorkerProfile{
		ID:            "wp-1",
		UserID:        "worker-1",
		IsVerified:    true,
		IsActiveToday: true,
		RatingAverage: 5.0,
		Latitude:      &lat,
		Longitude:     &lng,
		Categories:    []domain.ServiceCategory{{ID: testCategoryID}},
	}
}

func TestScore_PerfectMatch(t *testing.T) {
	// Category 40 + under-2km 30 + availability 15 + rating 15 = 100.
	res := Score(scoredJob(), scoredWorker(baseLat, baseLng))

	assert.Equal(t, 100, res.Score)
	assert.True(t, res.Located)
	assert.InDelta(t, 0.0, res.DistanceKm, 0.001)
}

func TestScore_RatingContribution(t *testing.T) {
	// Category 40 + under-2km 30 + availability 15 + rating 4.0×3 = 97.
	w := scoredWorker(baseLat, baseLng)
	w.RatingAverage = 4.0

	res := Score(scoredJob(), w)
	assert.Equal(t, 97, res.Score)
}

func TestScore_DistanceBuckets(t *testing.T) {
	// One degree of latitude is ~111.2 km; offsets pick each bucket.
	tests := []struct {
		name      string
		latOffset float64
		want      int
	}{
		{"under 2km", 0.01, 100},
		{"under 5km", 0.03, 95},
		{"under 10km", 0.06, 90},
		{"under 20km", 0.15, 80},
		{"beyond 20km", 0.30, 70},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Score(scoredJob(), scoredWorker(baseLat+tt.latOffset, baseLng))
			assert.Equal(t, tt.want, res.Score)
		})
	}
}

func TestScore_UnlocatedWorker(t *testing.T) {
	w := scoredWorker(0, 0)
	w.Latitude = nil
	w.Longitude = nil

	// Category 40 + availability 15 + rating 15; no proximity points.
	res := Score(scoredJob(), w)
	assert.Equal(t, 70, res.Score)
	assert.False(t, res.Located)
}

func TestScore_CategoryMismatch(t *testing.T) {
	w := scoredWorker(baseLat, baseLng)
	w.Categories = []domain.ServiceCategory{{ID: "cat-electrical"}}

	res := Score(scoredJob(), w)
	assert.Equal(t, 60, res.Score)
}

func TestScore_AvailabilityRequiresBothFlags(t *testing.T) {
	tests := []struct {
		name      string
		active    bool
		verified  bool
		wantBonus bool
	}{
		{"active and verified", true, true, true},
		{"active only", true, false, false},
		{"verified only", false, true, false},
		{"neither", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := scoredWorker(baseLat, baseLng)
			w.IsActiveToday = tt.active
			w.IsVerified = tt.verified

			res := Score(scoredJob(), w)
			want := 85 // category 40 + under-2km 30 + rating 15
			if tt.wantBonus {
				want += WeightAvailability
			}
			assert.Equal(t, want, res.Score)
		})
	}
}

func TestScore_RatingCapped(t *testing.T) {
	// Ratings are bounded at 5.0 upstream, but the cap holds regardless.
	w := scoredWorker(baseLat, baseLng)
	w.RatingAverage = 9.9

	res := Score(scoredJob(), w)
	assert.Equal(t, 100, res.Score)
}

func TestScore_Bounded(t *testing.T) {
	empty := &domain.WorkerProfile{}
	res := Score(scoredJob(), empty)
	assert.GreaterOrEqual(t, res.Score, 0)
	assert.LessOrEqual(t, res.Score, 100)
	assert.Equal(t, 0, res.Score)
}
