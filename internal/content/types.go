package content

// Store persists raw object bytes under their hash. Implementations do not
// hash or verify content; that is the caller's job.
type Store interface {
	// Put writes data under hash. Writing an existing hash is a no-op.
	Put(hash string, data []byte) error

	// Get returns the bytes stored under hash, or an OBJECT_NOT_FOUND error.
	Get(hash string) ([]byte, error)

	Exists(hash string) (bool, error)

	// List returns every stored hash.
	List() ([]string, error)

	Close() error
}
