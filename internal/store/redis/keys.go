package redis

const (
	// KeyPrefixLock is the prefix for per-id submission reservations
	KeyPrefixLock = "plugmarket:lock:"
	// KeyIndex is the key holding the cached index document
	KeyIndex = "plugmarket:index"
)

// LockKey returns the reservation key for a plugin id
func LockKey(id string) string {
	return KeyPrefixLock + id
}

// IndexKey returns the key of the cached index document
func IndexKey() string {
	return KeyIndex
}
