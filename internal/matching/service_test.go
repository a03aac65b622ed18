package matching

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faenaapp/faena-backend/internal/domain"
)

type fakeStore struct {
	jobs       map[string]*domain.Job
	profiles   map[string]*domain.WorkerProfile
	users      map[string]*domain.User
	matches    map[string]*domain.JobMatch // keyed jobID+"/"+workerID
	candidates []Candidate
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		jobs:     map[string]*domain.Job{},
		profiles: map[string]*domain.WorkerProfile{},
		users:    map[string]*domain.User{},
		matches:  map[string]*domain.JobMatch{},
	}
}

func (f *fakeStore) GetJob(_ context.Context, jobID string) (*domain.Job, error) {
	j, ok := f.jobs[jobID]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	cp := *j
	return &cp, nil
}

func (f *fakeStore) ListOpenJobs(_ context.Context, q OpenJobsQuery) ([]domain.Job, error) {
	var out []domain.Job
	for _, j := range f.jobs {
		if j.Status != q.Status || j.UserID == q.ExcludeUserID {
			continue
		}
		for _, cid := range q.CategoryIDs {
			if j.ServiceCategoryID == cid {
				out = append(out, *j)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeStore) GetProfileByUserID(_ context.Context, userID string) (*domain.WorkerProfile, error) {
	p, ok := f.profiles[userID]
	if !ok {
		return nil, domain.ErrWorkerNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) ListCandidates(_ context.Context, _ CandidateQuery) ([]Candidate, error) {
	return f.candidates, nil
}

func (f *fakeStore) GetUser(_ context.Context, userID string) (*domain.User, error) {
	u, ok := f.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStore) GetMatch(_ context.Context, jobID, workerID string) (*domain.JobMatch, error) {
	m, ok := f.matches[jobID+"/"+workerID]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (f *fakeStore) CreateMatch(_ context.Context, m *domain.JobMatch) error {
	cp := *m
	f.matches[m.JobID+"/"+m.WorkerID] = &cp
	return nil
}

func (f *fakeStore) MarkApplied(_ context.Context, m *domain.JobMatch) error {
	cp := *m
	f.matches[m.JobID+"/"+m.WorkerID] = &cp
	return nil
}

func newTestService(store *fakeStore) *Service {
	return NewService(Config{
		Jobs:    store,
		Workers: store,
		Matches: store,
		Users:   store,
	})
}

func addWorker(store *fakeStore, userID string, lat, lng float64, rating float64) {
	store.users[userID] = &domain.User{ID: userID, Email: userID + "@test.local", Role: domain.RoleWorker, Status: domain.UserStatusActive}
	profile := &domain.WorkerProfile{
		ID:            "wp-" + userID,
		UserID:        userID,
		IsVerified:    true,
		IsActiveToday: true,
		RatingAverage: rating,
		Latitude:      &lat,
		Longitude:     &lng,
		Categories:    []domain.ServiceCategory{{ID: testCategoryID}},
	}
	store.profiles[userID] = profile
	store.candidates = append(store.candidates, Candidate{
		Profile: *profile,
		User:    *store.users[userID],
	})
}

func TestFindForJob_RanksByScore(t *testing.T) {
	store := newFakeStore()
	store.jobs["job-1"] = scoredJob()
	store.jobs["job-1"].UserID = "client-1"

	addWorker(store, "worker-near", baseLat, baseLng, 5.0)        // 100
	addWorker(store, "worker-far", baseLat+0.15, baseLng, 5.0)    // 80
	addWorker(store, "worker-mid", baseLat+0.03, baseLng, 5.0)    // 95
	addWorker(store, "worker-weak", baseLat+0.30, baseLng, 0.0)   // 55, cut by minScore

	matches, err := newTestService(store).FindForJob(context.Background(), "job-1", FindOptions{})
	require.NoError(t, err)

	require.Len(t, matches, 3)
	assert.Equal(t, "worker-near", matches[0].Worker.ID)
	assert.Equal(t, "worker-mid", matches[1].Worker.ID)
	assert.Equal(t, "worker-far", matches[2].Worker.ID)
	assert.Equal(t, 100, matches[0].Score)
}

func TestFindForJob_HonorsLimit(t *testing.T) {
	store := newFakeStore()
	store.jobs["job-1"] = scoredJob()

	addWorker(store, "w1", baseLat, baseLng, 5.0)
	addWorker(store, "w2", baseLat, baseLng, 4.0)
	addWorker(store, "w3", baseLat, baseLng, 3.0)

	matches, err := newTestService(store).FindForJob(context.Background(), "job-1", FindOptions{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestFindForJob_EqualScoreTieBreakDeterministic(t *testing.T) {
	store := newFakeStore()
	store.jobs["job-1"] = scoredJob()

	addWorker(store, "worker-b", baseLat, baseLng, 5.0)
	addWorker(store, "worker-a", baseLat, baseLng, 5.0)

	matches, err := newTestService(store).FindForJob(context.Background(), "job-1", FindOptions{})
	require.NoError(t, err)

	require.Len(t, matches, 2)
	assert.Equal(t, "worker-a", matches[0].Worker.ID)
	assert.Equal(t, "worker-b", matches[1].Worker.ID)
}

func TestFindForJob_UnknownJob(t *testing.T) {
	_, err := newTestService(newFakeStore()).FindForJob(context.Background(), "missing", FindOptions{})
	assert.ErrorIs(t, err, domain.ErrJobNotFound)
}

func TestFindForWorker_NoCategoriesMeansNoMatches(t *testing.T) {
	store := newFakeStore()
	addWorker(store, "worker-1", baseLat, baseLng, 5.0)
	store.profiles["worker-1"].Categories = nil

	matches, err := newTestService(store).FindForWorker(context.Background(), "worker-1", FindOptions{})
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestFindForWorker_ExcludesOwnJobs(t *testing.T) {
	store := newFakeStore()
	addWorker(store, "worker-1", baseLat, baseLng, 5.0)

	own := scoredJob()
	own.ID = "job-own"
	own.UserID = "worker-1"
	store.jobs["job-own"] = own

	other := scoredJob()
	other.ID = "job-other"
	other.UserID = "client-1"
	store.jobs["job-other"] = other

	matches, err := newTestService(store).FindForWorker(context.Background(), "worker-1", FindOptions{})
	require.NoError(t, err)

	require.Len(t, matches, 1)
	assert.Equal(t, "job-other", matches[0].Job.ID)
}

func TestApplyToJob_CreatesFreshRecord(t *testing.T) {
	store := newFakeStore()
	addWorker(store, "worker-1", baseLat, baseLng, 4.0)
	job := scoredJob()
	job.UserID = "client-1"
	store.jobs[job.ID] = job

	msg := "I can start tomorrow"
	budget := 120.0
	svc := newTestService(store)

	m, err := svc.ApplyToJob(context.Background(), "worker-1", job.ID, ApplyInput{
		Message:        &msg,
		ProposedBudget: &budget,
	})
	require.NoError(t, err)

	assert.True(t, m.IsApplied)
	require.NotNil(t, m.AppliedAt)
	assert.Equal(t, 97, m.Score)
	assert.Equal(t, &msg, m.ApplicationMessage)
}

func TestApplyToJob_PromotesExistingCandidateRecord(t *testing.T) {
	store := newFakeStore()
	addWorker(store, "worker-1", baseLat, baseLng, 4.0)
	job := scoredJob()
	job.UserID = "client-1"
	store.jobs[job.ID] = job

	// Pre-existing system-computed record, not yet applied.
	store.matches[job.ID+"/worker-1"] = &domain.JobMatch{
		ID:       "match-1",
		JobID:    job.ID,
		WorkerID: "worker-1",
		Score:    97,
	}

	m, err := newTestService(store).ApplyToJob(context.Background(), "worker-1", job.ID, ApplyInput{})
	require.NoError(t, err)

	// Upsert in place: same record, now applied.
	assert.Equal(t, "match-1", m.ID)
	assert.True(t, m.IsApplied)
	assert.Len(t, store.matches, 1)
}

func TestApplyToJob_DuplicateApplication(t *testing.T) {
	store := newFakeStore()
	addWorker(store, "worker-1", baseLat, baseLng, 4.0)
	job := scoredJob()
	job.UserID = "client-1"
	store.jobs[job.ID] = job

	now := time.Now()
	store.matches[job.ID+"/worker-1"] = &domain.JobMatch{
		ID:        "match-1",
		JobID:     job.ID,
		WorkerID:  "worker-1",
		IsApplied: true,
		AppliedAt: &now,
	}

	_, err := newTestService(store).ApplyToJob(context.Background(), "worker-1", job.ID, ApplyInput{})
	assert.ErrorIs(t, err, domain.ErrDuplicateApplication)
}

func TestApplyToJob_Guards(t *testing.T) {
	store := newFakeStore()
	addWorker(store, "worker-1", baseLat, baseLng, 4.0)

	pending := scoredJob()
	pending.UserID = "client-1"
	store.jobs[pending.ID] = pending

	assigned := scoredJob()
	assigned.ID = "job-assigned"
	assigned.UserID = "client-1"
	assigned.Status = domain.JobStatusAssigned
	store.jobs["job-assigned"] = assigned

	own := scoredJob()
	own.ID = "job-own"
	own.UserID = "worker-1"
	store.jobs["job-own"] = own

	svc := newTestService(store)

	tests := []struct {
		name     string
		workerID string
		jobID    string
		wantErr  error
	}{
		{"unknown worker", "ghost", pending.ID, domain.ErrUserNotFound},
		{"unknown job", "worker-1", "missing", domain.ErrJobNotFound},
		{"job not pending", "worker-1", "job-assigned", domain.ErrInvalidState},
		{"own job", "worker-1", "job-own", domain.ErrOwnJob},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ApplyToJob(context.Background(), tt.workerID, tt.jobID, ApplyInput{})
			assert.True(t, errors.Is(err, tt.wantErr), "got %v, want %v", err, tt.wantErr)
		})
	}
}
