package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/qes/quotation-api/internal/auth"
	"github.com/qes/quotation-api/internal/domain"
	"github.com/qes/quotation-api/internal/pricing"
	"github.com/qes/quotation-api/internal/snapshot"
	"gorm.io/datatypes"
)

// revision is the outcome of running one update through the revision engine
type revision struct {
	changedFields []string
	itemsChanged  bool
	// record is nil when the update changed nothing substantive
	record *domain.QuotationStatusHistory
}

// checkEditable rejects principals that do not own the quotation and
// quotations that reached a terminal status, in that order
func checkEditable(q *domain.Quotation, p *auth.Principal) error {
	if !p.CanAccess(q.CreatedByID) {
		return ErrForbidden
	}
	if q.Status.IsTerminal() {
		return ErrQuotationLocked
	}
	return nil
}

// validateUpdate checks the parts of an update that struct tags cannot
func validateUpdate(req *domain.UpdateQuotationRequest) error {
	if req.Items != nil && len(req.Items) == 0 {
		return fmt.Errorf("%w: at least one item is required", ErrInvalidInput)
	}
	if req.CustomerName != nil && strings.TrimSpace(*req.CustomerName) == "" {
		return fmt.Errorf("%w: customer name must not be empty", ErrInvalidInput)
	}
	if req.CustomerEmail != nil && strings.TrimSpace(*req.CustomerEmail) == "" {
		return fmt.Errorf("%w: customer email must not be empty", ErrInvalidInput)
	}
	if req.Status != nil && !req.Status.IsRequestable() {
		return fmt.Errorf("%w: status may only be set to complete or failed", ErrInvalidInput)
	}
	return nil
}

// revise applies req to q and decides what the update means:
//
//   - a requested terminal status is applied with the current revision and a
//     record without snapshots;
//   - otherwise a changed fingerprint bumps the revision, moves the status to
//     revised and produces a record holding both snapshots;
//   - otherwise nothing is recorded.
//
// priced carries the re-priced items and is nil when req has no items.
func revise(q *domain.Quotation, req *domain.UpdateQuotationRequest, priced *pricing.Result, p *auth.Principal, at time.Time) (*revision, error) {
	if err := checkEditable(q, p); err != nil {
		return nil, err
	}

	before, err := snapshot.Capture(q)
	if err != nil {
		return nil, err
	}
	applyUpdate(q, req, priced)
	after, err := snapshot.Capture(q)
	if err != nil {
		return nil, err
	}

	changed := snapshot.ChangedFields(before, after)
	rev := &revision{changedFields: changed}
	for _, f := range changed {
		if f == "items" {
			rev.itemsChanged = true
		}
	}

	if req.Status != nil {
		if !q.Status.CanTransitionTo(*req.Status) {
			return nil, fmt.Errorf("%w: cannot move from %s to %s", ErrInvalidState, q.Status, *req.Status)
		}
		q.Status = *req.Status
		rev.record = newHistoryRecord(q, p, at, changed, nil, nil)
		return rev, nil
	}

	if before.Hash == after.Hash {
		return rev, nil
	}

	beforeJSON, err := snapshot.Marshal(before)
	if err != nil {
		return nil, err
	}
	afterJSON, err := snapshot.Marshal(after)
	if err != nil {
		return nil, err
	}

	q.Revision++
	q.Status = domain.QuotationStatusRevised
	rev.record = newHistoryRecord(q, p, at, changed, beforeJSON, afterJSON)
	return rev, nil
}

// applyUpdate copies the provided fields of req onto q
func applyUpdate(q *domain.Quotation, req *domain.UpdateQuotationRequest, priced *pricing.Result) {
	if priced != nil {
		q.Items = itemsFromLines(priced.Lines)
		q.Subtotal = priced.Subtotal
		q.Tax = priced.Tax
		q.Total = priced.Total
	}
	if req.CustomerID != nil {
		id := *req.CustomerID
		q.CustomerID = &id
	}
	setString(&q.CustomerName, req.CustomerName)
	setString(&q.CustomerEmail, req.CustomerEmail)
	setString(&q.CustomerPhone, req.CustomerPhone)
	setString(&q.CustomerAddress, req.CustomerAddress)
	setString(&q.CustomerCompanyName, req.CustomerCompanyName)
	setString(&q.ShippingDetails, req.ShippingDetails)
	setString(&q.Notes, req.Notes)
	if req.TermsAndConditions != nil {
		q.Terms = req.TermsAndConditions.ApplyTo(q.Terms).WithDefaults()
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

// itemsFromLines turns priced lines into quotation items in request order
func itemsFromLines(lines []pricing.Line) []domain.QuotationItem {
	items := make([]domain.QuotationItem, len(lines))
	for i, line := range lines {
		items[i] = domain.QuotationItem{
			Position:              i,
			ProductID:             line.ProductID,
			ProductName:           line.ProductName,
			UnitOfMeasure:         line.UnitOfMeasure,
			Description:           line.Description,
			Parameters:            datatypes.JSONSlice[domain.ProductParameter](line.Parameters),
			GeneralSpecifications: datatypes.JSONSlice[domain.GeneralSpecification](line.GeneralSpecifications),
			Quantity:              line.Quantity,
			Rate:                  line.Rate,
			TaxRate:               line.TaxRate,
			Amount:                line.Amount,
		}
	}
	return items
}

func newHistoryRecord(q *domain.Quotation, p *auth.Principal, at time.Time, changed []string, before, after []byte) *domain.QuotationStatusHistory {
	record := &domain.QuotationStatusHistory{
		QuotationID:   q.ID,
		Status:        q.Status,
		Revision:      q.Revision,
		ActorID:       p.ID,
		ActorName:     p.Name,
		Role:          p.Role,
		ChangedFields: datatypes.JSONSlice[string](changed),
		At:            at,
	}
	if before != nil {
		record.BeforeSnapshot = datatypes.JSON(before)
	}
	if after != nil {
		record.AfterSnapshot = datatypes.JSON(after)
	}
	return record
}
