// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.3
//

package sp3

import (
	"errors"
	"fmt"
)

// Error kinds. Use errors.Is to test for them.
var (
	ErrUnsupportedRevision           = errors.New("unsupported SP3 revision")
	ErrUnsupportedDataType           = errors.New("unsupported data type")
	ErrTruncatedHeaderLine           = errors.New("truncated header line")
	ErrSatelliteCount                = errors.New("satellite count mismatch")
	ErrAccuracyCount                 = errors.New("accuracy count mismatch")
	ErrUnknownTimescale              = errors.New("unknown timescale")
	ErrNonMonotonicEpoch             = errors.New("epochs not strictly increasing")
	ErrUnknownSatellite              = errors.New("satellite not declared in header")
	ErrInvalidFlag                   = errors.New("invalid record flag")
	ErrMalformedRecord               = errors.New("malformed record")
	ErrMissingTerminator             = errors.New("missing EOF terminator")
	ErrEpochCountMismatch            = errors.New("epoch count mismatch")
	ErrSatelliteNotObserved          = errors.New("declared satellite not observed")
	ErrTrailingContent               = errors.New("content after EOF")
	ErrInconsistentHeader            = errors.New("inconsistent header")
	ErrUnsupportedInterpolationOrder = errors.New("unsupported interpolation order")
	ErrIncompatibleHeaders           = errors.New("incompatible headers")
	ErrConflictingSamples            = errors.New("conflicting samples")
	ErrIncompatibleSamplingInterval  = errors.New("incompatible sampling interval")
	ErrCorrectionTableCoverage       = errors.New("correction table does not cover the epochs")
	ErrNoCorrectionProvider          = errors.New("no correction provider")
)

// Error of a line of an SP3 file
type ParseError struct {
	Line  int    // Line number (1-based)
	Field string // Expected field
	Text  string // Offending line
	Err   error  // Error kind
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s (field=%s, line=%q)", e.Line, e.Err.Error(), e.Field, e.Text)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Non-fatal anomaly found while parsing
type Warning struct {
	Line int // 0 if not tied to a line
	Kind error
	Msg  string
}

func (w Warning) String() string {
	if w.Line > 0 {
		return fmt.Sprintf("line %d: %s: %s", w.Line, w.Kind.Error(), w.Msg)
	}
	return fmt.Sprintf("%s: %s", w.Kind.Error(), w.Msg)
}
