package workers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faenaapp/faena-backend/internal/domain"
)

type fakeProfileStore struct {
	profiles map[string]*domain.WorkerProfile // keyed by user id
}

func (f *fakeProfileStore) GetProfileByUserID(_ context.Context, userID string) (*domain.WorkerProfile, error) {
	p, ok := f.profiles[userID]
	if !ok {
		return nil, domain.ErrWorkerNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfileStore) SetAvailability(_ context.Context, profileID string, active bool, lat, lng *float64) error {
	for _, p := range f.profiles {
		if p.ID != profileID {
			continue
		}
		p.IsActiveToday = active
		if lat != nil {
			p.Latitude = lat
		}
		if lng != nil {
			p.Longitude = lng
		}
		return nil
	}
	return domain.ErrWorkerNotFound
}

type fakeJobLister struct {
	pending []string
}

func (f *fakeJobLister) ListJobIDsByStatus(_ context.Context, status domain.JobStatus) ([]string, error) {
	if status != domain.JobStatusPending {
		return nil, nil
	}
	return f.pending, nil
}

type fakeDispatcher struct {
	dispatched []string
}

func (f *fakeDispatcher) CreateAutomaticOffer(_ context.Context, jobID string) (*domain.Offer, error) {
	f.dispatched = append(f.dispatched, jobID)
	return nil, nil
}

type workerFixture struct {
	store      *fakeProfileStore
	jobs       *fakeJobLister
	dispatcher *fakeDispatcher
	svc        *Service
}

func newWorkerFixture(t *testing.T, activeToday bool) *workerFixture {
	t.Helper()

	fx := &workerFixture{
		store:      &fakeProfileStore{profiles: map[string]*domain.WorkerProfile{}},
		jobs:       &fakeJobLister{},
		dispatcher: &fakeDispatcher{},
	}
	fx.store.profiles["worker-1"] = &domain.WorkerProfile{
		ID:            "wp-1",
		UserID:        "worker-1",
		IsActiveToday: activeToday,
	}
	fx.svc = NewService(fx.store, fx.jobs, fx.dispatcher, nil)
	return fx
}

func ptr(v float64) *float64 { return &v }

func TestToggleActiveToday_ActivateStoresLocation(t *testing.T) {
	fx := newWorkerFixture(t, false)

	profile, err := fx.svc.ToggleActiveToday(context.Background(), "worker-1", ptr(-33.4489), ptr(-70.6693))
	require.NoError(t, err)

	assert.True(t, profile.IsActiveToday)
	require.NotNil(t, profile.Latitude)
	assert.Equal(t, -33.4489, *profile.Latitude)
}

func TestToggleActiveToday_ActivateWithoutLocation(t *testing.T) {
	fx := newWorkerFixture(t, false)

	_, err := fx.svc.ToggleActiveToday(context.Background(), "worker-1", nil, nil)
	assert.ErrorIs(t, err, domain.ErrLocationRequired)
	assert.False(t, fx.store.profiles["worker-1"].IsActiveToday)
}

func TestToggleActiveToday_ActivateWithPartialLocation(t *testing.T) {
	fx := newWorkerFixture(t, false)

	_, err := fx.svc.ToggleActiveToday(context.Background(), "worker-1", ptr(-33.4489), nil)
	assert.ErrorIs(t, err, domain.ErrLocationRequired)
}

func TestToggleActiveToday_DeactivateNeedsNoLocation(t *testing.T) {
	fx := newWorkerFixture(t, true)

	profile, err := fx.svc.ToggleActiveToday(context.Background(), "worker-1", nil, nil)
	require.NoError(t, err)
	assert.False(t, profile.IsActiveToday)
}

func TestToggleActiveToday_ActivationDispatchesPendingJobs(t *testing.T) {
	fx := newWorkerFixture(t, false)
	fx.jobs.pending = []string{"job-1", "job-2"}

	_, err := fx.svc.ToggleActiveToday(context.Background(), "worker-1", ptr(-33.4489), ptr(-70.6693))
	require.NoError(t, err)

	assert.Equal(t, []string{"job-1", "job-2"}, fx.dispatcher.dispatched)
}

func TestToggleActiveToday_DeactivationDispatchesNothing(t *testing.T) {
	fx := newWorkerFixture(t, true)
	fx.jobs.pending = []string{"job-1"}

	_, err := fx.svc.ToggleActiveToday(context.Background(), "worker-1", nil, nil)
	require.NoError(t, err)
	assert.Empty(t, fx.dispatcher.dispatched)
}

func TestToggleActiveToday_UnknownWorker(t *testing.T) {
	fx := newWorkerFixture(t, false)

	_, err := fx.svc.ToggleActiveToday(context.Background(), "ghost", nil, nil)
	assert.ErrorIs(t, err, domain.ErrWorkerNotFound)
}

func TestProfile(t *testing.T) {
	fx := newWorkerFixture(t, true)

	profile, err := fx.svc.Profile(context.Background(), "worker-1")
	require.NoError(t, err)
	assert.Equal(t, "wp-1", profile.ID)

	_, err = fx.svc.Profile(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrWorkerNotFound)
}
