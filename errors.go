package kernix

import "errors"

// ErrIdleProcess indicates an attempt to destroy or suspend the reserved
// idle process.
var ErrIdleProcess = errors.New("idle process is protected")
