package shared

import "github.com/google/uuid"

// NewRowKey returns a client row key for dynamically added form rows. Keys are
// time-ordered UUIDv7 values so two rows added within the same millisecond still
// differ. They identify rows only inside one editing session and are never sent
// to the backend.
func NewRowKey() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// NewRowKeys returns n distinct row keys.
func NewRowKeys(n int) []string {
	if n <= 0 {
		return nil
	}
	keys := make([]string, n)
	for i := range keys {
		keys[i] = NewRowKey()
	}
	return keys
}
