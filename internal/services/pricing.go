package services

import (
	"fmt"
	"math"
	"strings"

	"casasmart/internal/models"
)

const (
	VATRate = 0.15

	warrantyBuffer = 1.05 // +5% гарантийный резерв
	profitMarkup   = 1.40 // +40% наценка
)

// SellingPrice is the catalogue price of a hardware item bought at cost.
func SellingPrice(cost float64) float64 {
	if cost <= 0 {
		return 0
	}
	return math.Round(cost * warrantyBuffer * profitMarkup)
}

// SoftwareFee returns the configuration fee for a project type.
func SoftwareFee(projectType string) float64 {
	switch strings.ToLower(strings.TrimSpace(projectType)) {
	case "villa":
		return 2500
	case "mansion":
		return 5000
	case "apartment":
		return 1500
	default: // commercial и всё остальное
		return 3000
	}
}

func softwareFeeName(projectType string) string {
	return fmt.Sprintf("Software Configuration (%s)", strings.ToUpper(strings.TrimSpace(projectType)))
}

// ApplySoftwareFee updates the existing software line in place or appends a new one.
func ApplySoftwareFee(items models.QuoteItems, projectType string) models.QuoteItems {
	fee := SoftwareFee(projectType)
	for i := range items {
		if strings.Contains(strings.ToLower(items[i].Name), "software") {
			items[i].Name = softwareFeeName(projectType)
			items[i].UnitPrice = fee
			if items[i].Quantity <= 0 {
				items[i].Quantity = 1
			}
			items[i].Total = fee * float64(items[i].Quantity)
			return items
		}
	}
	return append(items, models.QuoteItem{
		Name:      softwareFeeName(projectType),
		Type:      models.ItemService,
		UnitPrice: fee,
		Quantity:  1,
		Total:     fee,
	})
}

// Totals is the money summary stored on a quote.
type Totals struct {
	Subtotal    float64
	TotalCost   float64
	TotalProfit float64
	VATAmount   float64
	GrandTotal  float64
}

// PriceItems fills unit prices and line totals, and validates every line.
func PriceItems(items models.QuoteItems) (models.QuoteItems, error) {
	out := make(models.QuoteItems, 0, len(items))
	for i, it := range items {
		it.Name = strings.TrimSpace(it.Name)
		if it.Name == "" {
			return nil, invalid(fmt.Sprintf("items[%d].name", i), "is required")
		}
		if it.Type == "" {
			it.Type = models.ItemService
		}
		if it.Type != models.ItemHardware && it.Type != models.ItemService {
			return nil, invalid(fmt.Sprintf("items[%d].type", i), "must be hardware or service")
		}
		if it.Quantity <= 0 {
			return nil, invalid(fmt.Sprintf("items[%d].quantity", i), "must be positive")
		}
		if it.CostPrice < 0 || it.UnitPrice < 0 {
			return nil, invalid(fmt.Sprintf("items[%d].price", i), "must not be negative")
		}
		if it.Type == models.ItemHardware && it.UnitPrice == 0 {
			it.UnitPrice = SellingPrice(it.CostPrice)
		}
		it.Total = it.UnitPrice * float64(it.Quantity)
		out = append(out, it)
	}
	return out, nil
}

func ComputeTotals(items models.QuoteItems) Totals {
	var t Totals
	for _, it := range items {
		t.Subtotal += it.Total
		t.TotalCost += it.CostPrice * float64(it.Quantity)
	}
	t.VATAmount = t.Subtotal * VATRate
	t.GrandTotal = t.Subtotal + t.VATAmount
	t.TotalProfit = t.Subtotal - t.TotalCost
	return t
}

// Breakdown splits a VAT-inclusive grand total back into subtotal and VAT.
func Breakdown(grandTotal float64) (subtotal, vat float64) {
	subtotal = grandTotal / (1 + VATRate)
	return subtotal, grandTotal - subtotal
}
