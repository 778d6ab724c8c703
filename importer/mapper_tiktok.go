package importer

import "shopdash/sales"

// TikTokMapper reads TikTok Shop order exports. The export carries a second
// row with Thai column descriptions, so two leading rows are headers.
type TikTokMapper struct{}

var tiktokColumns = orderColumns{
	orderID:    []string{"Order ID"},
	status:     []string{"Order Status", "Order Substatus"},
	createdAt:  []string{"Created Time", "Paid Time"},
	product:    []string{"Product Name"},
	sku:        []string{"Seller SKU", "SKU ID"},
	quantity:   []string{"Quantity"},
	revenue:    []string{"SKU Subtotal After Discount", "Order Amount"},
	fees:       [][]string{{"Transaction Fee"}, {"Commission Fee"}},
	settlement: []string{"Settlement Amount"},
}

func (m *TikTokMapper) Name() string {
	return sales.PlatformTikTok
}

func (m *TikTokMapper) HeaderRowCount() int {
	return 2
}

func (m *TikTokMapper) RequiredColumns() []string {
	return []string{"Order ID", "Order Status", "Created Time"}
}

func (m *TikTokMapper) Map(record Record, ctx MapContext) (*sales.Order, bool, error) {
	return mapOrder(sales.PlatformTikTok, tiktokColumns, record, ctx)
}
