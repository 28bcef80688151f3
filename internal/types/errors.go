package types

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is the root of every error this module returns.
// Callers that only care whether their options were bad can test for it with errors.Is.
var ErrInvalidConfig = errors.New("invalid configuration")

var (
	ErrInvalidPlatform  = fmt.Errorf("%w: invalid platform", ErrInvalidConfig)
	ErrInvalidVersion   = fmt.Errorf("%w: invalid chrome version", ErrInvalidConfig)
	ErrInvalidOSVersion = fmt.Errorf("%w: invalid os version", ErrInvalidConfig)
	ErrInvalidHeader    = fmt.Errorf("%w: invalid header", ErrInvalidConfig)
	ErrInvalidTable     = fmt.Errorf("%w: invalid table", ErrInvalidConfig)
	ErrNoMatch          = fmt.Errorf("%w: no matching user-agent found", ErrInvalidConfig)
	ErrNoAgents         = fmt.Errorf("%w: agent table is empty", ErrInvalidConfig)
)
