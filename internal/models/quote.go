package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// QuoteStatus defines the possible statuses for a quote.
type QuoteStatus string

const (
	QuoteDraft    QuoteStatus = "draft"
	QuoteSent     QuoteStatus = "sent"
	QuoteAccepted QuoteStatus = "accepted"
	QuoteRejected QuoteStatus = "rejected"
)

type ItemType string

const (
	ItemHardware ItemType = "hardware"
	ItemService  ItemType = "service"
)

// QuoteItem is one priced line of a quotation.
type QuoteItem struct {
	ProductID string   `json:"product_id,omitempty"`
	Name      string   `json:"name"`
	Type      ItemType `json:"type"`
	CostPrice float64  `json:"cost_price"`
	UnitPrice float64  `json:"unit_price"`
	Quantity  int      `json:"quantity"`
	Total     float64  `json:"total"`
}

// QuoteItems is stored as a single JSONB column.
type QuoteItems []QuoteItem

func (it QuoteItems) Value() (driver.Value, error) {
	if it == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(it)
}

func (it *QuoteItems) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*it = QuoteItems{}
		return nil
	case []byte:
		return json.Unmarshal(v, it)
	case string:
		return json.Unmarshal([]byte(v), it)
	default:
		return errors.New("quote items: unsupported column type")
	}
}

type Quote struct {
	ID              uuid.UUID   `json:"id"`
	CustomerName    string      `json:"customer_name"`
	CustomerPhone   string      `json:"customer_phone"`
	ProjectType     string      `json:"project_type"`
	Items           QuoteItems  `json:"items"`
	TotalCost       float64     `json:"total_cost"`
	TotalProfit     float64     `json:"total_profit"`
	VATAmount       float64     `json:"vat_amount"`
	GrandTotal      float64     `json:"grand_total"`
	Status          QuoteStatus `json:"status"`
	ExpiryDate      *time.Time  `json:"expiry_date,omitempty"`
	RejectionReason *string     `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// IsExpired reports whether the quote passed its expiry date without being accepted.
func (q *Quote) IsExpired(now time.Time) bool {
	return q.ExpiryDate != nil && q.ExpiryDate.Before(now) && q.Status != QuoteAccepted
}

// QuoteScope narrows a listing by lifecycle: active quotes are everything not yet accepted.
type QuoteScope string

const (
	QuoteScopeAll      QuoteScope = ""
	QuoteScopeActive   QuoteScope = "active"
	QuoteScopeArchived QuoteScope = "archived"
)

// QuoteFilter defines the available parameters for listing quotes.
type QuoteFilter struct {
	Status *QuoteStatus
	Scope  QuoteScope
	// NotExpiredAt hides quotes whose expiry date is before this moment.
	NotExpiredAt *time.Time
	Phones       []string
	Limit        int
	Offset       int
}
