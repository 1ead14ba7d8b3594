package domain

import "errors"

// ErrInvalidArgument is returned when a required collaborator or station
// reference is missing. It is caller misuse and never retried.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrJourneyConflict is returned by StartJourney when the card already has a
// journey in progress. Card state is left unchanged.
// Handlers should map this to HTTP 409 Conflict.
var ErrJourneyConflict = errors.New("journey already in progress")

// ErrNoJourneyInProgress is returned by EndJourney when the card has no open
// journey to close. Card state is left unchanged.
// Handlers should map this to HTTP 409 Conflict.
var ErrNoJourneyInProgress = errors.New("no journey in progress")

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. a negative tariff, a station with no zone).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")
