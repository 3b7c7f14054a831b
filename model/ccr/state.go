package ccr

// VerificationCardState guards at-most-once execution of the cryptographic
// steps for one verification card. Both flags start false and only ever move
// from false to true. Version increases with every committed update and is
// used for compare-and-set writes.
type VerificationCardState struct {
	PartiallyDecrypted bool
	LCCShareCreated    bool
	Version            uint64
}

// IsValidTransition reports whether next may replace current: no flag may be
// reset and at least one flag must change.
func (s VerificationCardState) IsValidTransition(next VerificationCardState) bool {
	if s.PartiallyDecrypted && !next.PartiallyDecrypted {
		return false
	}
	if s.LCCShareCreated && !next.LCCShareCreated {
		return false
	}
	return s.PartiallyDecrypted != next.PartiallyDecrypted || s.LCCShareCreated != next.LCCShareCreated
}
