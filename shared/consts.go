package shared

import (
	"os"
)

const (
	OwnerReadWrite = os.FileMode(0o600)

	// MaxBufferSize bounds the buffers the CLI allocates, in bytes.
	MaxBufferSize = 1 << 30
)
