package service

import (
	"errors"
	"fmt"
)

// Service errors. Handlers map them to HTTP statuses with errors.Is.
var (
	// ErrQuotationNotFound is returned when no live quotation has the given id
	ErrQuotationNotFound = errors.New("quotation not found")

	// ErrProductNotFound is returned when a requested line references an unknown or inactive product
	ErrProductNotFound = errors.New("product not found")

	// ErrForbidden is returned when the principal may not act on the quotation
	ErrForbidden = errors.New("access denied")

	// ErrInvalidState is returned when the current status does not allow the operation
	ErrInvalidState = errors.New("invalid state")

	// ErrQuotationLocked is returned on any attempt to edit a completed or failed quotation
	ErrQuotationLocked = fmt.Errorf("%w: completed / failed quotation cannot be edited", ErrInvalidState)

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when a quotation number could not be allocated
	ErrConflict = errors.New("resource conflict")
)
