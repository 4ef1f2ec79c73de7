package store

import "sync"

// The preferred pattern is an explicitly constructed *Store passed
// into query components. Shared exists for CLI-style callers that want
// "load once, query many" without plumbing: the first caller loads the
// corpus, later callers get the same snapshot. Construction is guarded
// so concurrent first-callers race safely; after that the store is
// read-only and needs no coordination.

var (
	sharedMu  sync.Mutex
	shared    *Store
	sharedErr error
	sharedSet bool
)

// Shared returns the process-wide store, loading it from path on the
// first call. Subsequent calls return the same snapshot (or the same
// load error) regardless of path; use ResetShared to force a rebuild.
func Shared(path string) (*Store, error) {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if sharedSet {
		return shared, sharedErr
	}
	shared, sharedErr = Open(path)
	sharedSet = true
	return shared, sharedErr
}

// ResetShared discards the shared store so the next Shared call
// rebuilds it. Test-only.
func ResetShared() {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	shared = nil
	sharedErr = nil
	sharedSet = false
}
