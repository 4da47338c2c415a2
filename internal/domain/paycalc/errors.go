package paycalc

import "errors"

var (
	ErrInvalidRate      = errors.New("pay rate must be positive")
	ErrUnknownPayType   = errors.New("unknown pay type")
	ErrUnknownFrequency = errors.New("unknown pay frequency")
)
