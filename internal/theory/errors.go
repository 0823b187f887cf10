package theory

import "errors"

var (
	ErrNoInterval         = errors.New("no interval for degree and semitone combination")
	ErrShiftOutOfRange    = errors.New("accidental shift out of range")
	ErrScaleSize          = errors.New("scale must have exactly 7 intervals")
	ErrScaleNotUnison     = errors.New("scale degree I must be P1")
	ErrColorShiftMismatch = errors.New("color shift source does not match scale")
	ErrVariantUnsupported = errors.New("variant not supported by mode")
	ErrChordMissingRoot   = errors.New("chord composition must contain degree I")
	ErrChordTooSmall      = errors.New("chord composition needs at least two degrees")
	ErrUnknownQuality     = errors.New("intervals do not match any chord quality")
	ErrInvalidDissonance  = errors.New("invalid dissonance relation")
	ErrUnknownName        = errors.New("unknown name")
)
