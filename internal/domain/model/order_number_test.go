package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrderNumberPrefix_UsesUTCDate(t *testing.T) {
	jst := time.FixedZone("JST", 9*60*60)
	// JSTでは16日だがUTCでは15日
	at := time.Date(2026, 1, 16, 8, 0, 0, 0, jst)
	assert.Equal(t, "ORD-20260115-", OrderNumberPrefix(at))
}

func TestNextOrderNumber(t *testing.T) {
	prefix := "ORD-20260115-"

	tests := []struct {
		name     string
		existing []string
		want     string
	}{
		{name: "first of the day", existing: nil, want: "ORD-20260115-00001"},
		{name: "continues from max", existing: []string{"ORD-20260115-00001", "ORD-20260115-00002"}, want: "ORD-20260115-00003"},
		{name: "numeric not lexicographic", existing: []string{"ORD-20260115-00009", "ORD-20260115-00010"}, want: "ORD-20260115-00011"},
		{name: "skips malformed suffix", existing: []string{"ORD-20260115-00004", "ORD-20260115-ABCDE"}, want: "ORD-20260115-00005"},
		{name: "ignores other days", existing: []string{"ORD-20260114-00042"}, want: "ORD-20260115-00001"},
		{name: "grows past five digits", existing: []string{"ORD-20260115-99999"}, want: "ORD-20260115-100000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextOrderNumber(prefix, tt.existing))
		})
	}
}

func TestSnapshotCartLine(t *testing.T) {
	ci := CartItem{
		ProductID: 3,
		Quantity:  3,
		Product:   Product{ID: 3, Name: "Drip Bag", Price: decimal.RequireFromString("1.20")},
	}

	it := SnapshotCartLine(ci)
	assert.Equal(t, int64(3), it.ProductID)
	assert.Equal(t, "Drip Bag", it.ProductName)
	assert.True(t, it.UnitPrice.Equal(decimal.RequireFromString("1.20")))
	assert.True(t, it.Subtotal.Equal(decimal.RequireFromString("3.60")))

	// 後から商品価格が変わっても明細は変わらない
	ci.Product.Price = decimal.RequireFromString("9.99")
	assert.True(t, it.UnitPrice.Equal(decimal.RequireFromString("1.20")))
}

func TestOrderStatus(t *testing.T) {
	assert.True(t, OrderStatusPending.Valid())
	assert.False(t, OrderStatus("Shipped").Valid())
	assert.True(t, OrderStatusCompleted.Terminal())
	assert.True(t, OrderStatusCancelled.Terminal())
	assert.False(t, OrderStatusProcessing.Terminal())

	assert.Equal(t, []OrderStatus{OrderStatusPending, OrderStatusProcessing}, OpenOrderStatuses())
}
