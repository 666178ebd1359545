package main

import (
	"errors"

	"github.com/fyrsmithlabs/leaderlog/internal/journal"
)

const (
	exitFailure    = 1
	exitValidation = 2
)

// errUsage marks command-line mistakes that should exit like validation errors.
var errUsage = errors.New("usage error")

// exitCode maps an error to the process exit status. Rejected input exits 2
// so scripts can tell it apart from I/O and service failures.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage),
		errors.Is(err, journal.ErrEmptyField),
		errors.Is(err, journal.ErrIntensityRange),
		errors.Is(err, journal.ErrUnknownCategory),
		errors.Is(err, journal.ErrUnknownKind),
		errors.Is(err, journal.ErrDuplicateID):
		return exitValidation
	default:
		return exitFailure
	}
}
