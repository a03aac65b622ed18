package offers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faenaapp/faena-backend/internal/domain"
	"github.com/faenaapp/faena-backend/internal/matching"
)

type fakeOfferStore struct {
	offers map[string]*domain.Offer
}

func newFakeOfferStore() *fakeOfferStore {
	return &fakeOfferStore{offers: map[string]*domain.Offer{}}
}

func (f *fakeOfferStore) GetOffer(_ context.Context, offerID string) (*domain.Offer, error) {
	o, ok := f.offers[offerID]
	if !ok {
		return nil, domain.ErrOfferNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOfferStore) GetPendingOfferForJob(_ context.Context, jobID string) (*domain.Offer, error) {
	for _, o := range f.offers {
		if o.JobID == jobID && o.Status == domain.OfferStatusPending {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeOfferStore) CreateOffer(_ context.Context, o *domain.Offer) error {
	for _, existing := range f.offers {
		if existing.JobID == o.JobID && existing.Status == domain.OfferStatusPending {
			return ErrPendingOfferExists
		}
	}
	cp := *o
	f.offers[o.ID] = &cp
	return nil
}

func (f *fakeOfferStore) ListWorkerOffers(_ context.Context, workerID string, status domain.OfferStatus) ([]domain.Offer, error) {
	var out []domain.Offer
	for _, o := range f.offers {
		if o.WorkerID != workerID {
			continue
		}
		if status != "" && o.Status != status {
			continue
		}
		out = append(out, *o)
	}
	return out, nil
}

func (f *fakeOfferStore) ListContactedWorkerIDs(_ context.Context, jobID string) ([]string, error) {
	var out []string
	for _, o := range f.offers {
		if o.JobID != jobID {
			continue
		}
		if o.Status == domain.OfferStatusRejected || o.Status == domain.OfferStatusExpired {
			out = append(out, o.WorkerID)
		}
	}
	return out, nil
}

func (f *fakeOfferStore) ListExpiredPendingOffers(_ context.Context, now time.Time, limit int) ([]domain.Offer, error) {
	var out []domain.Offer
	for _, o := range f.offers {
		if o.Status == domain.OfferStatusPending && now.After(o.ExpiresAt) {
			out = append(out, *o)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (f *fakeOfferStore) transition(offerID string, from, to domain.OfferStatus, at time.Time) bool {
	o, ok := f.offers[offerID]
	if !ok || o.Status != from {
		return false
	}
	o.Status = to
	o.RespondedAt = &at
	o.UpdatedAt = at
	return true
}

func (f *fakeOfferStore) AcceptOffer(_ context.Context, offerID string, message *string, at time.Time) (bool, error) {
	ok := f.transition(offerID, domain.OfferStatusPending, domain.OfferStatusAccepted, at)
	if ok && message != nil {
		f.offers[offerID].Message = message
	}
	return ok, nil
}

func (f *fakeOfferStore) RejectOffer(_ context.Context, offerID string, reason *string, at time.Time) (bool, error) {
	ok := f.transition(offerID, domain.OfferStatusPending, domain.OfferStatusRejected, at)
	if ok {
		f.offers[offerID].RejectionReason = reason
	}
	return ok, nil
}

func (f *fakeOfferStore) ExpireOffer(_ context.Context, offerID string, at time.Time) (bool, error) {
	return f.transition(offerID, domain.OfferStatusPending, domain.OfferStatusExpired, at), nil
}

func (f *fakeOfferStore) CompleteOffer(_ context.Context, offerID string, at time.Time) (bool, error) {
	return f.transition(offerID, domain.OfferStatusAccepted, domain.OfferStatusCompleted, at), nil
}

func (f *fakeOfferStore) pendingFor(jobID string) *domain.Offer {
	o, _ := f.GetPendingOfferForJob(context.Background(), jobID)
	return o
}

type fakeJobDirectory struct {
	jobs  map[string]*domain.Job
	users map[string]*domain.User
}

func (f *fakeJobDirectory) GetJob(_ context.Context, jobID string) (*domain.Job, error) {
	j, ok := f.jobs[jobID]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	cp := *j
	return &cp, nil
}

func (f *fakeJobDirectory) GetUser(_ context.Context, userID string) (*domain.User, error) {
	u, ok := f.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

type fakeMatcher struct {
	matches []matching.Match
	calls   int
}

func (f *fakeMatcher) FindForJob(_ context.Context, _ string, _ matching.FindOptions) ([]matching.Match, error) {
	f.calls++
	return f.matches, nil
}

type sentAlert struct {
	to      string
	subject string
}

type fakeNotifier struct {
	alerts []sentAlert
}

func (f *fakeNotifier) SendAlert(_ context.Context, to, subject, _ string) {
	f.alerts = append(f.alerts, sentAlert{to: to, subject: subject})
}

type offerFixture struct {
	store    *fakeOfferStore
	dir      *fakeJobDirectory
	matcher  *fakeMatcher
	notifier *fakeNotifier
	svc      *Service
	now      time.Time
}

func newOfferFixture(t *testing.T) *offerFixture {
	t.Helper()

	fx := &offerFixture{
		store: newFakeOfferStore(),
		dir: &fakeJobDirectory{
			jobs:  map[string]*domain.Job{},
			users: map[string]*domain.User{},
		},
		matcher:  &fakeMatcher{},
		notifier: &fakeNotifier{},
		now:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	fx.svc = NewService(Config{
		Offers:   fx.store,
		Jobs:     fx.dir,
		Users:    fx.dir,
		Matcher:  fx.matcher,
		Notifier: fx.notifier,
	})
	fx.svc.now = func() time.Time { return fx.now }

	fx.dir.users["client-1"] = &domain.User{ID: "client-1", Email: "client@test.local"}
	fx.dir.jobs["job-1"] = &domain.Job{
		ID:                "job-1",
		UserID:            "client-1",
		ServiceCategoryID: "cat-1",
		Title:             "Fix kitchen sink",
		Status:            domain.JobStatusPending,
	}

	return fx
}

func (fx *offerFixture) candidate(workerID string, score int) matching.Match {
	return matching.Match{
		Worker: domain.User{ID: workerID, Email: workerID + "@test.local"},
		Score:  score,
	}
}

func (fx *offerFixture) seedPendingOffer(offerID, workerID string) *domain.Offer {
	offer := &domain.Offer{
		ID:        offerID,
		JobID:     "job-1",
		WorkerID:  workerID,
		Status:    domain.OfferStatusPending,
		ExpiresAt: fx.now.Add(OfferTTL),
		CreatedAt: fx.now,
		UpdatedAt: fx.now,
	}
	fx.store.offers[offerID] = offer
	return offer
}

func TestCreateAutomaticOffer_PicksBestCandidate(t *testing.T) {
	fx := newOfferFixture(t)
	fx.matcher.matches = []matching.Match{
		fx.candidate("worker-best", 95),
		fx.candidate("worker-second", 80),
	}

	offer, err := fx.svc.CreateAutomaticOffer(context.Background(), "job-1")
	require.NoError(t, err)
	require.NotNil(t, offer)

	assert.Equal(t, "worker-best", offer.WorkerID)
	assert.Equal(t, domain.OfferStatusPending, offer.Status)
	assert.Equal(t, 95, offer.MatchingScore)
	assert.Equal(t, fx.now.Add(OfferTTL), offer.ExpiresAt)

	require.Len(t, fx.notifier.alerts, 1)
	assert.Equal(t, "worker-best@test.local", fx.notifier.alerts[0].to)
}

func TestCreateAutomaticOffer_NoCandidates(t *testing.T) {
	fx := newOfferFixture(t)

	offer, err := fx.svc.CreateAutomaticOffer(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Nil(t, offer)
	assert.Empty(t, fx.notifier.alerts)
}

func TestCreateAutomaticOffer_IdempotentOnPendingOffer(t *testing.T) {
	fx := newOfferFixture(t)
	existing := fx.seedPendingOffer("offer-1", "worker-1")
	fx.matcher.matches = []matching.Match{fx.candidate("worker-2", 90)}

	offer, err := fx.svc.CreateAutomaticOffer(context.Background(), "job-1")
	require.NoError(t, err)

	assert.Equal(t, existing.ID, offer.ID)
	assert.Zero(t, fx.matcher.calls, "ranking should be skipped when a pending offer exists")
}

func TestCreateAutomaticOffer_UnknownJob(t *testing.T) {
	fx := newOfferFixture(t)

	_, err := fx.svc.CreateAutomaticOffer(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrJobNotFound)
}

func TestAccept(t *testing.T) {
	fx := newOfferFixture(t)
	fx.seedPendingOffer("offer-1", "worker-1")

	msg := "On my way"
	offer, err := fx.svc.Accept(context.Background(), "offer-1", "worker-1", &msg)
	require.NoError(t, err)

	assert.Equal(t, domain.OfferStatusAccepted, offer.Status)
	require.NotNil(t, offer.RespondedAt)

	// The job owner is alerted.
	require.Len(t, fx.notifier.alerts, 1)
	assert.Equal(t, "client@test.local", fx.notifier.alerts[0].to)
	assert.Equal(t, "Offer accepted", fx.notifier.alerts[0].subject)
}

func TestAccept_WrongWorker(t *testing.T) {
	fx := newOfferFixture(t)
	fx.seedPendingOffer("offer-1", "worker-1")

	_, err := fx.svc.Accept(context.Background(), "offer-1", "worker-other", nil)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestAccept_NotPending(t *testing.T) {
	fx := newOfferFixture(t)
	offer := fx.seedPendingOffer("offer-1", "worker-1")
	offer.Status = domain.OfferStatusRejected

	_, err := fx.svc.Accept(context.Background(), "offer-1", "worker-1", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestAccept_StaleOfferExpiresAndRedispatches(t *testing.T) {
	fx := newOfferFixture(t)
	stale := fx.seedPendingOffer("offer-1", "worker-1")
	stale.ExpiresAt = fx.now.Add(-time.Minute)
	fx.matcher.matches = []matching.Match{
		fx.candidate("worker-1", 90),
		fx.candidate("worker-2", 85),
	}

	_, err := fx.svc.Accept(context.Background(), "offer-1", "worker-1", nil)
	assert.ErrorIs(t, err, domain.ErrOfferExpired)

	assert.Equal(t, domain.OfferStatusExpired, fx.store.offers["offer-1"].Status)

	// The next candidate gets the job; worker-1 was just contacted.
	next := fx.store.pendingFor("job-1")
	require.NotNil(t, next)
	assert.Equal(t, "worker-2", next.WorkerID)
}

func TestAccept_LostRace(t *testing.T) {
	fx := newOfferFixture(t)
	fx.seedPendingOffer("offer-1", "worker-1")

	// Another transition lands between the read and the update.
	fx.svc.now = func() time.Time {
		fx.store.offers["offer-1"].Status = domain.OfferStatusExpired
		return fx.now
	}

	_, err := fx.svc.Accept(context.Background(), "offer-1", "worker-1", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestReject_DispatchesNextCandidate(t *testing.T) {
	fx := newOfferFixture(t)
	fx.seedPendingOffer("offer-1", "worker-1")
	fx.matcher.matches = []matching.Match{
		fx.candidate("worker-1", 90),
		fx.candidate("worker-2", 85),
	}

	reason := "Too far away"
	offer, err := fx.svc.Reject(context.Background(), "offer-1", "worker-1", &reason)
	require.NoError(t, err)

	assert.Equal(t, domain.OfferStatusRejected, offer.Status)
	assert.Equal(t, &reason, offer.RejectionReason)

	next := fx.store.pendingFor("job-1")
	require.NotNil(t, next)
	assert.Equal(t, "worker-2", next.WorkerID)
}

func TestReject_ExhaustedPool(t *testing.T) {
	fx := newOfferFixture(t)
	fx.seedPendingOffer("offer-1", "worker-1")
	// Only the rejecting worker ranks; nobody is left to contact.
	fx.matcher.matches = []matching.Match{fx.candidate("worker-1", 90)}

	_, err := fx.svc.Reject(context.Background(), "offer-1", "worker-1", nil)
	require.NoError(t, err)

	assert.Nil(t, fx.store.pendingFor("job-1"))
}

func TestComplete(t *testing.T) {
	fx := newOfferFixture(t)
	offer := fx.seedPendingOffer("offer-1", "worker-1")
	offer.Status = domain.OfferStatusAccepted

	done, err := fx.svc.Complete(context.Background(), "offer-1")
	require.NoError(t, err)
	assert.Equal(t, domain.OfferStatusCompleted, done.Status)
}

func TestComplete_NotAccepted(t *testing.T) {
	fx := newOfferFixture(t)
	fx.seedPendingOffer("offer-1", "worker-1")

	_, err := fx.svc.Complete(context.Background(), "offer-1")
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestWorkerOffers_StatusFilter(t *testing.T) {
	fx := newOfferFixture(t)
	fx.seedPendingOffer("offer-1", "worker-1")
	rejected := fx.seedPendingOffer("offer-2", "worker-1")
	rejected.Status = domain.OfferStatusRejected
	rejected.JobID = "job-other"

	all, err := fx.svc.WorkerOffers(context.Background(), "worker-1", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pending, err := fx.svc.WorkerOffers(context.Background(), "worker-1", "PENDING")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "offer-1", pending[0].ID)

	_, err = fx.svc.WorkerOffers(context.Background(), "worker-1", "BOGUS")
	assert.Error(t, err)
}

func TestExpireDueOffers(t *testing.T) {
	fx := newOfferFixture(t)
	stale := fx.seedPendingOffer("offer-1", "worker-1")
	stale.ExpiresAt = fx.now.Add(-time.Hour)
	fx.matcher.matches = []matching.Match{
		fx.candidate("worker-1", 90),
		fx.candidate("worker-2", 85),
	}

	expired, err := fx.svc.ExpireDueOffers(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, 1, expired)

	assert.Equal(t, domain.OfferStatusExpired, fx.store.offers["offer-1"].Status)

	next := fx.store.pendingFor("job-1")
	require.NotNil(t, next)
	assert.Equal(t, "worker-2", next.WorkerID)
}

func TestExpireDueOffers_NothingDue(t *testing.T) {
	fx := newOfferFixture(t)
	fx.seedPendingOffer("offer-1", "worker-1")

	expired, err := fx.svc.ExpireDueOffers(context.Background(), 100)
	require.NoError(t, err)
	assert.Zero(t, expired)
	assert.Equal(t, domain.OfferStatusPending, fx.store.offers["offer-1"].Status)
}
