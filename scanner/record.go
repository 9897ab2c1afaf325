package scanner

import "fmt"

// lockReadLimit is how far a source must support reading past its mark
// while a state lock is held.
const lockReadLimit = 1 << 20

// A StateRecord is a transactional checkpoint over a Scanner: while one
// is held no other checkpoint may be opened, and releasing it either
// commits (Free) or rewinds scanner state and source position together
// (Restore). At most one may be outstanding per scanner.
type StateRecord struct {
	scanner *Scanner
	backup  *state
}

// Lock opens a checkpoint. Locking an already locked scanner, or a
// scanner with no characters left, is a caller bug and panics with a
// ContractError.
func (s *Scanner) Lock() *StateRecord {
	if s.state.locked {
		contractViolation("cannot acquire scanner lock: state lock acquired")
	}
	if !s.HaveNext() {
		contractViolation("cannot acquire scanner lock: end of source data")
	}
	record := &StateRecord{scanner: s, backup: s.state.clone()}
	s.source.Mark(lockReadLimit)
	s.state.locked = true
	return record
}

// Restore rewinds the scanner to the checkpoint, resetting the source
// to its mark and reinstating the backed-up state, then releases the
// lock. Restoring a released record is a no-op.
func (r *StateRecord) Restore() error {
	if r.scanner == nil {
		return nil
	}
	defer r.Free()
	if err := r.scanner.source.ResetToMark(); err != nil {
		return fmt.Errorf("restoring scanner state for %s: %w", r.scanner.Path(), err)
	}
	r.scanner.state = r.backup
	return nil
}

// Free commits the checkpoint: the mark is released and the scanner
// keeps its current position. Freeing twice is a no-op.
func (r *StateRecord) Free() {
	if r.scanner == nil {
		return
	}
	r.scanner.source.Mark(1)
	r.scanner.state.locked = false
	r.scanner = nil
	r.backup = nil
}
