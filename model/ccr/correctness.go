package ccr

// CombinedCorrectnessInformation describes the selectable options of a
// verification card set: psi is the total number of selections a voter makes,
// and every selection index maps to the correctness identifier of its question.
// It is immutable once the card set is finalized.
type CombinedCorrectnessInformation struct {
	correctnessIDs []string
}

// NewCombinedCorrectnessInformation returns the correctness information for
// the given per-selection correctness identifiers.
func NewCombinedCorrectnessInformation(correctnessIDs []string) (CombinedCorrectnessInformation, error) {
	if len(correctnessIDs) == 0 {
		return CombinedCorrectnessInformation{}, NewValidationErrorf("correctness information must cover at least one selection")
	}
	for i, id := range correctnessIDs {
		if id == "" {
			return CombinedCorrectnessInformation{}, NewValidationErrorf("correctness id of selection %d is empty", i)
		}
	}
	return CombinedCorrectnessInformation{correctnessIDs: append([]string(nil), correctnessIDs...)}, nil
}

// Psi returns the total number of selections.
func (c CombinedCorrectnessInformation) Psi() int {
	return len(c.correctnessIDs)
}

// CorrectnessID returns the correctness identifier of selection i.
func (c CombinedCorrectnessInformation) CorrectnessID(i int) (string, error) {
	if i < 0 || i >= len(c.correctnessIDs) {
		return "", NewValidationErrorf("selection index %d out of range [0, %d)", i, len(c.correctnessIDs))
	}
	return c.correctnessIDs[i], nil
}

// CorrectnessIDs returns a copy of all correctness identifiers by selection index.
func (c CombinedCorrectnessInformation) CorrectnessIDs() []string {
	return append([]string(nil), c.correctnessIDs...)
}
