package uid

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// Uid returns a unique id. These ids are random (version 4) UUIDs rendered
// as 32 lower-case hexadecimal characters without dashes, which keeps them
// safe to use as a path segment and as part of a file name.
func Uid() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}
