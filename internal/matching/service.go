package matching

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/faenaapp/faena-backend/internal/domain"
	"github.com/faenaapp/faena-backend/internal/geo"
)

// Defaults applied when the caller omits a query parameter.
const (
	DefaultRadiusKm = 10.0
	DefaultMinScore = 60
	DefaultLimit    = 20
)

// overFetchFactor compensates for post-filter attrition: the storage query
// returns more candidates than the caller asked for, because scoring drops
// those below the minimum.
const overFetchFactor = 2

// JobStore is the job lookup surface the finder needs.
type JobStore interface {
	GetJob(ctx context.Context, jobID string) (*domain.Job, error)
	ListOpenJobs(ctx context.Context, q OpenJobsQuery) ([]domain.Job, error)
}

// OpenJobsQuery selects candidate jobs for a browsing worker.
type OpenJobsQuery struct {
	Status        domain.JobStatus
	CategoryIDs   []string
	ExcludeUserID string
	Limit         int
}

// WorkerStore is the worker-profile lookup surface the finder needs.
type WorkerStore interface {
	GetProfileByUserID(ctx context.Context, userID string) (*domain.WorkerProfile, error)
	ListCandidates(ctx context.Context, q CandidateQuery) ([]Candidate, error)
}

// CandidateQuery selects candidate workers for a job. The radius filter is
// pushed into the storage layer so only located workers within range are
// returned.
type CandidateQuery struct {
	CategoryID    string
	Latitude      float64
	Longitude     float64
	RadiusKm      float64
	ExcludeUserID string
	Limit         int
}

// Candidate pairs a worker profile with its directory record.
type Candidate struct {
	Profile domain.WorkerProfile
	User    domain.User
}

// MatchStore persists application records, unique on (job, worker).
type MatchStore interface {
	// GetMatch returns (nil, nil) when no record exists for the pair.
	GetMatch(ctx context.Context, jobID, workerID string) (*domain.JobMatch, error)
	CreateMatch(ctx context.Context, m *domain.JobMatch) error
	MarkApplied(ctx context.Context, m *domain.JobMatch) error
}

// UserStore resolves directory records for match results.
type UserStore interface {
	GetUser(ctx context.Context, userID string) (*domain.User, error)
}

// Match is one scored (job, worker) pairing returned by the finder.
type Match struct {
	Job        domain.Job  `json:"job"`
	Worker     domain.User `json:"worker"`
	Score      int         `json:"score"`
	DistanceKm float64     `json:"distanceKm"`
	IsApplied  bool        `json:"isApplied"`
	AppliedAt  *time.Time  `json:"appliedAt,omitempty"`
}

// FindOptions tune a finder call. Zero values take the package defaults.
type FindOptions struct {
	RadiusKm  float64
	MinScore  int
	Limit     int
	JobStatus domain.JobStatus
}

func (o FindOptions) normalized() FindOptions {
	if o.RadiusKm <= 0 {
		o.RadiusKm = DefaultRadiusKm
	}
	if o.MinScore <= 0 {
		o.MinScore = DefaultMinScore
	}
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	if o.JobStatus == "" {
		o.JobStatus = domain.JobStatusPending
	}
	return o
}

// ApplyInput carries a worker's explicit application to a job.
type ApplyInput struct {
	Message        *string
	ProposedBudget *float64
}

// Config holds the finder's dependencies. Cache is optional; when set,
// per-job match lists are cached for CacheTTL.
type Config struct {
	Jobs     JobStore
	Workers  WorkerStore
	Matches  MatchStore
	Users    UserStore
	Cache    *redis.Client
	CacheTTL time.Duration
	Logger   *slog.Logger
}

// Service is the match finder and application tracker.
type Service struct {
	jobs     JobStore
	workers  WorkerStore
	matches  MatchStore
	users    UserStore
	cache    *redis.Client
	cacheTTL time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a matching service.
func NewService(cfg Config) *Service {
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Service{
		jobs:     cfg.Jobs,
		workers:  cfg.Workers,
		matches:  cfg.Matches,
		users:    cfg.Users,
		cache:    cfg.Cache,
		cacheTTL: ttl,
		logger:   cfg.Logger,
		now:      time.Now,
	}
}

// FindForWorker returns ranked job matches for a browsing worker. A worker
// with no declared categories has no possible matches and gets an empty list.
func (s *Service) FindForWorker(ctx context.Context, workerID string, opts FindOptions) ([]Match, error) {
	opts = opts.normalized()

	user, err := s.users.GetUser(ctx, workerID)
	if err != nil {
		return nil, err
	}

	profile, err := s.workers.GetProfileByUserID(ctx, workerID)
	if err != nil {
		return nil, err
	}

	if len(profile.Categories) == 0 {
		return []Match{}, nil
	}

	categoryIDs := make([]string, 0, len(profile.Categories))
	for _, c := range profile.Categories {
		categoryIDs = append(categoryIDs, c.ID)
	}

	jobs, err := s.jobs.ListOpenJobs(ctx, OpenJobsQuery{
		Status:        opts.JobStatus,
		CategoryIDs:   categoryIDs,
		ExcludeUserID: workerID,
		Limit:         opts.Limit * overFetchFactor,
	})
	if err != nil {
		return nil, fmt.Errorf("list open jobs: %w", err)
	}

	matches := make([]Match, 0, len(jobs))
	for i := range jobs {
		job := jobs[i]
		res := Score(&job, profile)
		if res.Score < opts.MinScore {
			continue
		}

		m := Match{
			Job:        job,
			Worker:     *user,
			Score:      res.Score,
			DistanceKm: roundedDistance(res),
		}

		existing, err := s.matches.GetMatch(ctx, job.ID, workerID)
		if err != nil {
			return nil, fmt.Errorf("lookup match record: %w", err)
		}
		if existing != nil {
			m.IsApplied = existing.IsApplied
			m.AppliedAt = existing.AppliedAt
		}

		matches = append(matches, m)
	}

	rankMatches(matches)
	return truncate(matches, opts.Limit), nil
}

// FindForJob returns ranked worker candidates for a job. The category and
// radius pre-filters run in the storage query; scoring and the minimum-score
// cut happen here.
func (s *Service) FindForJob(ctx context.Context, jobID string, opts FindOptions) ([]Match, error) {
	opts = opts.normalized()

	if cached, ok := s.cachedMatches(ctx, jobID, opts); ok {
		return cached, nil
	}

	job, err := s.jobs.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	candidates, err := s.workers.ListCandidates(ctx, CandidateQuery{
		CategoryID:    job.ServiceCategoryID,
		Latitude:      job.Latitude,
		Longitude:     job.Longitude,
		RadiusKm:      opts.RadiusKm,
		ExcludeUserID: job.UserID,
		Limit:         opts.Limit * overFetchFactor,
	})
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}

	matches := make([]Match, 0, len(candidates))
	for i := range candidates {
		cand := candidates[i]
		res := Score(job, &cand.Profile)
		if res.Score < opts.MinScore {
			continue
		}

		m := Match{
			Job:        *job,
			Worker:     cand.User,
			Score:      res.Score,
			DistanceKm: roundedDistance(res),
		}

		existing, err := s.matches.GetMatch(ctx, jobID, cand.User.ID)
		if err != nil {
			return nil, fmt.Errorf("lookup match record: %w", err)
		}
		if existing != nil {
			m.IsApplied = existing.IsApplied
			m.AppliedAt = existing.AppliedAt
		}

		matches = append(matches, m)
	}

	rankMatches(matches)
	matches = truncate(matches, opts.Limit)

	s.storeCachedMatches(ctx, jobID, opts, matches)
	return matches, nil
}

// ApplyToJob records a worker's explicit application. Calling it twice for
// the same pair never creates a second row: an existing candidate record is
// promoted in place, and an existing application fails with
// ErrDuplicateApplication.
func (s *Service) ApplyToJob(ctx context.Context, workerID, jobID string, in ApplyInput) (*domain.JobMatch, error) {
	if _, err := s.users.GetUser(ctx, workerID); err != nil {
		return nil, err
	}

	job, err := s.jobs.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if job.Status != domain.JobStatusPending {
		return nil, fmt.Errorf("%w: job is %s", domain.ErrInvalidState, job.Status)
	}

	if job.UserID == workerID {
		return nil, domain.ErrOwnJob
	}

	existing, err := s.matches.GetMatch(ctx, jobID, workerID)
	if err != nil {
		return nil, fmt.Errorf("lookup match record: %w", err)
	}

	now := s.now()

	if existing != nil {
		if existing.IsApplied {
			return nil, domain.ErrDuplicateApplication
		}
		existing.IsApplied = true
		existing.AppliedAt = &now
		existing.ApplicationMessage = in.Message
		existing.ProposedBudget = in.ProposedBudget
		if err := s.matches.MarkApplied(ctx, existing); err != nil {
			return nil, fmt.Errorf("mark applied: %w", err)
		}
		return existing, nil
	}

	profile, err := s.workers.GetProfileByUserID(ctx, workerID)
	if err != nil {
		return nil, err
	}

	res := Score(job, profile)
	match := &domain.JobMatch{
		ID:                 uuid.New().String(),
		JobID:              jobID,
		WorkerID:           workerID,
		Score:              res.Score,
		DistanceKm:         roundedDistance(res),
		IsApplied:          true,
		AppliedAt:          &now,
		ApplicationMessage: in.Message,
		ProposedBudget:     in.ProposedBudget,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.matches.CreateMatch(ctx, match); err != nil {
		return nil, fmt.Errorf("create match: %w", err)
	}
	return match, nil
}

// rankMatches orders by score descending, then distance ascending, then job
// and worker id ascending. The secondary keys make equal-score ordering
// deterministic instead of storage-dependent.
func rankMatches(matches []Match) {
	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.DistanceKm != b.DistanceKm {
			return a.DistanceKm < b.DistanceKm
		}
		if a.Job.ID != b.Job.ID {
			return a.Job.ID < b.Job.ID
		}
		return a.Worker.ID < b.Worker.ID
	})
}

func truncate(matches []Match, limit int) []Match {
	if len(matches) > limit {
		return matches[:limit]
	}
	return matches
}

// roundedDistance is the 2-decimal storage/display form; an unlocated worker
// snapshots a zero distance.
func roundedDistance(res ScoreResult) float64 {
	if !res.Located {
		return 0
	}
	return geo.RoundKm(res.DistanceKm)
}

func (s *Service) cacheKey(jobID string, opts FindOptions) string {
	return fmt.Sprintf("matches:job:%s:r%.0f:s%d:l%d", jobID, opts.RadiusKm, opts.MinScore, opts.Limit)
}

func (s *Service) cachedMatches(ctx context.Context, jobID string, opts FindOptions) ([]Match, bool) {
	if s.cache == nil {
		return nil, false
	}

	raw, err := s.cache.Get(ctx, s.cacheKey(jobID, opts)).Bytes()
	if err != nil {
		if err != redis.Nil && s.logger != nil {
			s.logger.Warn("match cache read failed",
				slog.String("job_id", jobID),
				slog.Any("error", err),
			)
		}
		return nil, false
	}

	var matches []Match
	if err := json.Unmarshal(raw, &matches); err != nil {
		return nil, false
	}
	return matches, true
}

func (s *Service) storeCachedMatches(ctx context.Context, jobID string, opts FindOptions, matches []Match) {
	if s.cache == nil {
		return
	}

	raw, err := json.Marshal(matches)
	if err != nil {
		return
	}

	if err := s.cache.Set(ctx, s.cacheKey(jobID, opts), raw, s.cacheTTL).Err(); err != nil && s.logger != nil {
		s.logger.Warn("match cache write failed",
			slog.String("job_id", jobID),
			slog.Any("error", err),
		)
	}
}
