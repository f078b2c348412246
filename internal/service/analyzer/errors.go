package analyzer

import "errors"

// ErrInvalidInput marks a boundary-contract violation (empty submission id
// or partition key). It is the only condition this package surfaces as a
// hard failure; data-quality problems are absorbed into zero-score or
// skipped-item outcomes instead.
var ErrInvalidInput = errors.New("invalid input")
