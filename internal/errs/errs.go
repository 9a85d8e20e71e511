// Package errs defines the error kinds surfaced by the analysis engine.
// Callers discriminate with errors.Is; messages wrapped around a sentinel
// carry the human-readable detail.
package errs

import "errors"

var (
	// ErrFetch covers network/transport failures and upstream non-success
	// responses from the market-data provider.
	ErrFetch = errors.New("fetch failed")

	// ErrParse covers malformed upstream payloads.
	ErrParse = errors.New("malformed market data")

	// ErrBadFingerprint is returned for an unrecognized range or interval.
	ErrBadFingerprint = errors.New("invalid fingerprint")

	// ErrNotComputable signals insufficient or invalid data points for a
	// requested statistic.
	ErrNotComputable = errors.New("statistic not computable")

	// ErrExport covers unwritable export destinations.
	ErrExport = errors.New("export failed")
)
