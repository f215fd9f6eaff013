package domain

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

// QuotationItemRequest asks for one priced line. Rate and Tax override the
// catalog values when present.
type QuotationItemRequest struct {
	ProductID uuid.UUID        `json:"productId" validate:"required"`
	Quantity  int              `json:"quantity" validate:"required,gte=1"`
	Rate      *decimal.Decimal `json:"rate,omitempty"`
	Tax       *decimal.Decimal `json:"tax,omitempty"`
}

// TermsAndConditionsInput carries a partial terms block; nil fields are left as they are
type TermsAndConditionsInput struct {
	PriceValidity *string `json:"priceValidity,omitempty" validate:"omitempty,max=255"`
	PaymentTerms  *string `json:"paymentTerms,omitempty" validate:"omitempty,max=255"`
	Freight       *string `json:"freight,omitempty" validate:"omitempty,max=255"`
	Delivery      *string `json:"delivery,omitempty" validate:"omitempty,max=255"`
	Packing       *string `json:"packing,omitempty" validate:"omitempty,max=255"`
	Forwarding    *string `json:"forwarding,omitempty" validate:"omitempty,max=255"`
	Warranty      *string `json:"warranty,omitempty" validate:"omitempty,max=255"`
	Installation  *string `json:"installation,omitempty" validate:"omitempty,max=255"`
	Documents     *string `json:"documents,omitempty" validate:"omitempty,max=255"`
}

// ApplyTo merges the provided terms into t
func (in *TermsAndConditionsInput) ApplyTo(t TermsAndConditions) TermsAndConditions {
	if in == nil {
		return t
	}
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&t.PriceValidity, in.PriceValidity)
	set(&t.PaymentTerms, in.PaymentTerms)
	set(&t.Freight, in.Freight)
	set(&t.Delivery, in.Delivery)
	set(&t.Packing, in.Packing)
	set(&t.Forwarding, in.Forwarding)
	set(&t.Warranty, in.Warranty)
	set(&t.Installation, in.Installation)
	set(&t.Documents, in.Documents)
	return t
}

type CreateQuotationRequest struct {
	CompanyName    string `json:"companyName" validate:"max=200"`
	ContactName    string `json:"contactName" validate:"max=200"`
	CompanyPhone   string `json:"companyPhone" validate:"max=50"`
	CompanyAddress string `json:"companyAddress" validate:"max=500"`

	CustomerID          *uuid.UUID `json:"customerId,omitempty"`
	CustomerName        string     `json:"customerName" validate:"required,max=200"`
	CustomerEmail       string     `json:"customerEmail" validate:"required,email"`
	CustomerPhone       string     `json:"customerPhone" validate:"max=50"`
	CustomerAddress     string     `json:"customerAddress" validate:"max=500"`
	CustomerCompanyName string     `json:"customerCompanyName" validate:"max=200"`
	ShippingDetails     string     `json:"shippingDetails"`

	Notes              string                   `json:"notes"`
	TermsAndConditions *TermsAndConditionsInput `json:"termsAndConditions,omitempty"`
	Items              []QuotationItemRequest   `json:"items" validate:"required,min=1,dive"`
}

// UpdateQuotationRequest is a partial update; nil fields are not touched
type UpdateQuotationRequest struct {
	Items []QuotationItemRequest `json:"items,omitempty" validate:"omitempty,dive"`

	CustomerID          *uuid.UUID `json:"customerId,omitempty"`
	CustomerName        *string    `json:"customerName,omitempty" validate:"omitempty,max=200"`
	CustomerEmail       *string    `json:"customerEmail,omitempty" validate:"omitempty,email"`
	CustomerPhone       *string    `json:"customerPhone,omitempty" validate:"omitempty,max=50"`
	CustomerAddress     *string    `json:"customerAddress,omitempty" validate:"omitempty,max=500"`
	CustomerCompanyName *string    `json:"customerCompanyName,omitempty" validate:"omitempty,max=200"`
	ShippingDetails     *string    `json:"shippingDetails,omitempty"`

	Notes              *string                  `json:"notes,omitempty"`
	TermsAndConditions *TermsAndConditionsInput `json:"termsAndConditions,omitempty"`
	Status             *QuotationStatus         `json:"status,omitempty" validate:"omitempty,oneof=complete failed"`
}

// ListQuotationsFilter holds the list query parameters
type ListQuotationsFilter struct {
	Page   int
	Limit  int
	Search string
	// Status is nil for "all"
	Status *QuotationStatus
}

// Response DTOs

type UserSummaryDTO struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email,omitempty"`
	Phone string    `json:"phone,omitempty"`
	Role  Role      `json:"role,omitempty"`
}

type QuotationItemDTO struct {
	ProductID             uuid.UUID              `json:"productId"`
	ProductName           string                 `json:"productName"`
	UnitOfMeasure         string                 `json:"unitOfMeasure"`
	Description           string                 `json:"description"`
	Quantity              int                    `json:"quantity"`
	Rate                  decimal.Decimal        `json:"rate"`
	Tax                   decimal.Decimal        `json:"tax"`
	Amount                decimal.Decimal        `json:"amount"`
	Parameters            []ProductParameter     `json:"parameters"`
	GeneralSpecifications []GeneralSpecification `json:"generalSpecifications"`
}

type SnapshotPairDTO struct {
	Before json.RawMessage `json:"before"`
	After  json.RawMessage `json:"after"`
}

type StatusHistoryDTO struct {
	Status        QuotationStatus  `json:"status"`
	Revision      int              `json:"revision"`
	UpdatedBy     UserSummaryDTO   `json:"updatedBy"`
	Role          Role             `json:"role"`
	ChangedFields []string         `json:"changedFields"`
	Snapshot      *SnapshotPairDTO `json:"snapshot"`
	At            string           `json:"at"` // ISO 8601
}

type QuotationDTO struct {
	ID     uuid.UUID `json:"id"`
	Number string    `json:"quotationNumber"`

	CompanyName    string `json:"companyName"`
	ContactName    string `json:"contactName"`
	CompanyPhone   string `json:"companyPhone"`
	CompanyAddress string `json:"companyAddress"`

	CustomerID          *uuid.UUID `json:"customerId"`
	CustomerName        string     `json:"customerName"`
	CustomerEmail       string     `json:"customerEmail"`
	CustomerPhone       string     `json:"customerPhone"`
	CustomerAddress     string     `json:"customerAddress"`
	CustomerCompanyName string     `json:"customerCompanyName"`
	ShippingDetails     string     `json:"shippingDetails"`

	Notes              string             `json:"notes"`
	TermsAndConditions TermsAndConditions `json:"termsAndConditions"`

	Items    []QuotationItemDTO `json:"items"`
	Subtotal decimal.Decimal    `json:"subtotal"`
	Tax      decimal.Decimal    `json:"tax"`
	Total    decimal.Decimal    `json:"total"`

	Status        QuotationStatus    `json:"status"`
	Revision      int                `json:"revision"`
	StatusHistory []StatusHistoryDTO `json:"statusHistory"`

	IsDeleted bool    `json:"isDeleted"`
	DeletedAt *string `json:"deletedAt"`

	CreatedBy UserSummaryDTO `json:"createdBy"`
	CreatedAt string         `json:"createdAt"` // ISO 8601
	UpdatedAt string         `json:"updatedAt"` // ISO 8601
}

// QuotationSummaryDTO is the row shape of list responses
type QuotationSummaryDTO struct {
	ID                  uuid.UUID       `json:"id"`
	Number              string          `json:"quotationNumber"`
	CustomerName        string          `json:"customerName"`
	CustomerEmail       string          `json:"customerEmail"`
	CustomerCompanyName string          `json:"customerCompanyName"`
	Total               decimal.Decimal `json:"total"`
	Status              QuotationStatus `json:"status"`
	Revision            int             `json:"revision"`
	IsDeleted           bool            `json:"isDeleted"`
	DeletedAt           *string         `json:"deletedAt,omitempty"`
	CreatedBy           UserSummaryDTO  `json:"createdBy"`
	CreatedAt           string          `json:"createdAt"`
}

// PaginatedResponse wraps a page of results
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// MessageResponse is returned by operations without a resource body
type MessageResponse struct {
	Message string `json:"message"`
}
