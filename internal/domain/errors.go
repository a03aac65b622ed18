package domain

import "errors"

var (
	// ErrJobNotFound is returned when a job does not exist.
	ErrJobNotFound = errors.New("job not found")

	// ErrWorkerNotFound is returned when a worker profile does not exist.
	ErrWorkerNotFound = errors.New("worker profile not found")

	// ErrOfferNotFound is returned when an offer does not exist.
	ErrOfferNotFound = errors.New("offer not found")

	// ErrUserNotFound is returned when a user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrCategoryNotFound is returned when a service category does not exist.
	ErrCategoryNotFound = errors.New("service category not found")

	// ErrInvalidState is returned when an operation is not legal for the
	// entity's current lifecycle state.
	ErrInvalidState = errors.New("operation not allowed in current state")

	// ErrForbidden is returned when the caller is not the resource's
	// authorized party.
	ErrForbidden = errors.New("forbidden")

	// ErrDuplicateApplication is returned when a worker applies twice to the
	// same job.
	ErrDuplicateApplication = errors.New("already applied to this job")

	// ErrOfferExpired is returned when an offer's expiry is detected on
	// access. The offer has been transitioned to EXPIRED as a side effect.
	ErrOfferExpired = errors.New("offer has expired")

	// ErrOwnJob is returned when a worker tries to apply to a job they posted.
	ErrOwnJob = errors.New("cannot apply to your own job")

	// ErrLocationRequired is returned when a worker activates availability
	// without providing coordinates.
	ErrLocationRequired = errors.New("location is required to activate availability")
)
