package utils

import (
	"github.com/google/uuid"
)

// GenerateThreadID returns a fresh random thread identifier with the given
// prefix. The random part is a full UUID because threads outlive sessions in
// the checkpoint store.
func GenerateThreadID(prefix string) string {
	id := uuid.NewString()
	if prefix == "" {
		return id
	}
	return prefix + "-" + id
}
