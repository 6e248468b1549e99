package models

import (
	"time"

	"github.com/google/uuid"
)

type InvoiceType string

const (
	InvoiceDownPayment  InvoiceType = "down_payment"
	InvoiceInstallation InvoiceType = "installation"
	InvoiceHandover     InvoiceType = "handover"
	InvoiceCustom       InvoiceType = "custom"
)

type InvoiceStatus string

const (
	InvoiceUnpaid  InvoiceStatus = "unpaid"
	InvoicePartial InvoiceStatus = "partial"
	InvoicePaid    InvoiceStatus = "paid"
)

// Invoice amounts are whole SAR.
type Invoice struct {
	ID         uuid.UUID     `json:"id"`
	ProjectID  uuid.UUID     `json:"project_id"`
	InvoiceRef string        `json:"invoice_ref"`
	Type       InvoiceType   `json:"type"`
	Amount     int64         `json:"amount"`
	AmountPaid int64         `json:"amount_paid"`
	Status     InvoiceStatus `json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
}

func (i *Invoice) Balance() int64 {
	return i.Amount - i.AmountPaid
}

// PaymentStatus derives the status from the amounts.
func PaymentStatus(amount, paid int64) InvoiceStatus {
	switch {
	case paid >= amount:
		return InvoicePaid
	case paid > 0:
		return InvoicePartial
	default:
		return InvoiceUnpaid
	}
}
