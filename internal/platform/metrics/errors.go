package metrics

import "errors"

// ErrRegisterFailed is returned when a collector cannot be registered.
var ErrRegisterFailed = errors.New("metrics register failed")
