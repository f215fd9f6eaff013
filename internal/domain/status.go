package domain

// QuotationStatus is the lifecycle state of a quotation
type QuotationStatus string

const (
	QuotationStatusInProcess QuotationStatus = "in_process"
	QuotationStatusRevised   QuotationStatus = "revised"
	QuotationStatusComplete  QuotationStatus = "complete"
	QuotationStatusFailed    QuotationStatus = "failed"
)

// IsValid checks the value against the known states
func (s QuotationStatus) IsValid() bool {
	switch s {
	case QuotationStatusInProcess, QuotationStatusRevised, QuotationStatusComplete, QuotationStatusFailed:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition may leave s
func (s QuotationStatus) IsTerminal() bool {
	return s == QuotationStatusComplete || s == QuotationStatusFailed
}

// AcceptsEdits reports whether content updates are allowed in s
func (s QuotationStatus) AcceptsEdits() bool {
	return s == QuotationStatusInProcess || s == QuotationStatusRevised
}

// IsRequestable reports whether a principal may ask for s explicitly.
// revised is entered only by the revision engine.
func (s QuotationStatus) IsRequestable() bool {
	return s.IsTerminal()
}

// CanTransitionTo validates a single move of the status machine:
//
//	in_process -> revised | complete | failed
//	revised    -> revised | complete | failed
//	complete, failed -> (none)
func (s QuotationStatus) CanTransitionTo(next QuotationStatus) bool {
	if !s.AcceptsEdits() {
		return false
	}
	switch next {
	case QuotationStatusRevised, QuotationStatusComplete, QuotationStatusFailed:
		return true
	}
	return false
}
