package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// BaseModel carries the storage identity and timestamps shared by all tables
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null;index"`
	UpdatedAt time.Time `gorm:"not null"`
}

// BeforeCreate assigns a UUID when the caller did not set one
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Role is the coarse role of a principal
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// User is the account record the auth middleware resolves tokens against.
// Accounts are managed elsewhere; this service only reads them.
type User struct {
	BaseModel
	Name        string         `gorm:"type:varchar(200);not null"`
	Email       string         `gorm:"type:varchar(255);not null;uniqueIndex"`
	Phone       string         `gorm:"type:varchar(50)"`
	Role        Role           `gorm:"type:varchar(20);not null;default:'user'"`
	Permissions datatypes.JSON `gorm:"type:jsonb"`
	IsActive    bool           `gorm:"not null"`
}

// ProductParameter is a titled group of technical specs, e.g. "Wind Speed"
type ProductParameter struct {
	Title string        `json:"title"`
	Specs []ProductSpec `json:"specs"`
}

// ProductSpec is one label/value row of a parameter group
type ProductSpec struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// GeneralSpecification is a free-text specification line
type GeneralSpecification struct {
	Text string `json:"text"`
}

// Product is the catalog entry quotation items are priced from
type Product struct {
	BaseModel
	ProductName           string                                   `gorm:"type:varchar(200);not null;index"`
	Price                 decimal.Decimal                          `gorm:"type:decimal(15,2);not null"`
	UnitOfMeasure         string                                   `gorm:"type:varchar(20);not null"`
	Tax                   decimal.Decimal                          `gorm:"type:decimal(5,2);not null;default:0"`
	Description           string                                   `gorm:"type:text"`
	Parameters            datatypes.JSONSlice[ProductParameter]     `gorm:"type:jsonb"`
	GeneralSpecifications datatypes.JSONSlice[GeneralSpecification] `gorm:"type:jsonb"`
	IsActive              bool                                     `gorm:"not null"`
}

// TermsAndConditions is the commercial terms block printed on a quotation
type TermsAndConditions struct {
	PriceValidity string `gorm:"type:varchar(255)" json:"priceValidity"`
	PaymentTerms  string `gorm:"type:varchar(255)" json:"paymentTerms"`
	Freight       string `gorm:"type:varchar(255)" json:"freight"`
	Delivery      string `gorm:"type:varchar(255)" json:"delivery"`
	Packing       string `gorm:"type:varchar(255)" json:"packing"`
	Forwarding    string `gorm:"type:varchar(255)" json:"forwarding"`
	Warranty      string `gorm:"type:varchar(255)" json:"warranty"`
	Installation  string `gorm:"type:varchar(255)" json:"installation"`
	Documents     string `gorm:"type:varchar(255)" json:"documents"`
}

// DefaultTermsAndConditions returns the terms applied when a quotation is
// created without them
func DefaultTermsAndConditions() TermsAndConditions {
	return TermsAndConditions{
		PriceValidity: "30 Days from the date of Offer",
		PaymentTerms:  "100 % advance",
		Freight:       "Excluded",
		Delivery:      "10-13 days as per Instruments from date of receipt",
		Packing:       "Actual",
		Forwarding:    "Actual",
		Warranty:      "1 year from date of delivery On manufacturing defects",
		Installation:  "Excluded",
		Documents:     "Billing Address, Shipping Address, Road Permit, GST No.",
	}
}

// WithDefaults fills empty terms from DefaultTermsAndConditions
func (t TermsAndConditions) WithDefaults() TermsAndConditions {
	d := DefaultTermsAndConditions()
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&t.PriceValidity, d.PriceValidity)
	fill(&t.PaymentTerms, d.PaymentTerms)
	fill(&t.Freight, d.Freight)
	fill(&t.Delivery, d.Delivery)
	fill(&t.Packing, d.Packing)
	fill(&t.Forwarding, d.Forwarding)
	fill(&t.Warranty, d.Warranty)
	fill(&t.Installation, d.Installation)
	fill(&t.Documents, d.Documents)
	return t
}

// Quotation is the aggregate root of the quotation domain
type Quotation struct {
	BaseModel
	Number string `gorm:"type:varchar(50);not null;uniqueIndex"`

	// Issuer details copied from the creating user's company
	CompanyName    string `gorm:"type:varchar(200)"`
	ContactName    string `gorm:"type:varchar(200)"`
	CompanyPhone   string `gorm:"type:varchar(50)"`
	CompanyAddress string `gorm:"type:varchar(500)"`

	CustomerID          *uuid.UUID `gorm:"type:uuid;index"`
	CustomerName        string     `gorm:"type:varchar(200);not null"`
	CustomerEmail       string     `gorm:"type:varchar(255);not null"`
	CustomerPhone       string     `gorm:"type:varchar(50)"`
	CustomerAddress     string     `gorm:"type:varchar(500)"`
	CustomerCompanyName string     `gorm:"type:varchar(200)"`
	ShippingDetails     string     `gorm:"type:text"`

	Notes string             `gorm:"type:text"`
	Terms TermsAndConditions `gorm:"embedded;embeddedPrefix:terms_"`

	Items    []QuotationItem `gorm:"foreignKey:QuotationID;constraint:OnDelete:CASCADE"`
	Subtotal decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	Tax      decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	Total    decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`

	Status   QuotationStatus `gorm:"type:varchar(20);not null;default:'in_process';index"`
	Revision int             `gorm:"not null;default:0"`

	IsDeleted bool       `gorm:"not null;default:false;index"`
	DeletedAt *time.Time `gorm:"index"`

	CreatedByID uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedBy   *User     `gorm:"foreignKey:CreatedByID"`
}

// QuotationItem is a priced line owned by a quotation. Product data is copied
// in at pricing time so later catalog edits leave the quotation untouched.
type QuotationItem struct {
	ID                    uuid.UUID                                `gorm:"type:uuid;primaryKey"`
	QuotationID           uuid.UUID                                `gorm:"type:uuid;not null;index"`
	Position              int                                      `gorm:"not null"`
	ProductID             uuid.UUID                                `gorm:"type:uuid;not null"`
	ProductName           string                                   `gorm:"type:varchar(200);not null"`
	UnitOfMeasure         string                                   `gorm:"type:varchar(20)"`
	Description           string                                   `gorm:"type:text"`
	Parameters            datatypes.JSONSlice[ProductParameter]     `gorm:"type:jsonb"`
	GeneralSpecifications datatypes.JSONSlice[GeneralSpecification] `gorm:"type:jsonb"`
	Quantity              int                                      `gorm:"not null"`
	Rate                  decimal.Decimal                          `gorm:"type:decimal(15,2);not null"`
	TaxRate               decimal.Decimal                          `gorm:"type:decimal(5,2);not null;default:0"`
	Amount                decimal.Decimal                          `gorm:"type:decimal(15,2);not null"`
}

// BeforeCreate assigns a UUID when the caller did not set one
func (i *QuotationItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// QuotationStatusHistory is one append-only provenance record of a quotation.
// Rows are only ever inserted; the repository exposes no update path.
type QuotationStatusHistory struct {
	ID             uuid.UUID                 `gorm:"type:uuid;primaryKey"`
	QuotationID    uuid.UUID                 `gorm:"type:uuid;not null;index;uniqueIndex:idx_quotation_history_seq"`
	Sequence       int                       `gorm:"not null;uniqueIndex:idx_quotation_history_seq"`
	Status         QuotationStatus           `gorm:"type:varchar(20);not null"`
	Revision       int                       `gorm:"not null"`
	ActorID        uuid.UUID                 `gorm:"type:uuid;not null"`
	ActorName      string                    `gorm:"type:varchar(200)"`
	Role           Role                      `gorm:"type:varchar(20)"`
	ChangedFields  datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	BeforeSnapshot datatypes.JSON            `gorm:"type:jsonb"`
	AfterSnapshot  datatypes.JSON            `gorm:"type:jsonb"`
	At             time.Time                 `gorm:"not null"`
	Actor          *User                     `gorm:"foreignKey:ActorID"`
}

// TableName pins the history table name
func (QuotationStatusHistory) TableName() string {
	return "quotation_status_history"
}

// BeforeCreate assigns a UUID when the caller did not set one
func (h *QuotationStatusHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

// NumberSequence tracks the last issued quotation sequence per month
type NumberSequence struct {
	Period       string    `gorm:"type:varchar(7);primaryKey"` // e.g. 2026-10
	LastSequence int       `gorm:"not null;default:0"`
	UpdatedAt    time.Time `gorm:"not null"`
}
