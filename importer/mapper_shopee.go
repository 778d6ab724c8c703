package importer

import "shopdash/sales"

type ShopeeMapper struct{}

var shopeeColumns = orderColumns{
	orderID:   []string{"Order ID"},
	status:    []string{"Order Status"},
	createdAt: []string{"Order Creation Date", "Order Paid Time"},
	product:   []string{"Product Name"},
	sku:       []string{"SKU Reference No.", "Parent SKU Reference No."},
	quantity:  []string{"Quantity"},
	revenue:   []string{"Product Subtotal", "Total Amount", "Grand Total"},
	fees:      [][]string{{"Commission Fee"}, {"Service Fee"}, {"Transaction Fee"}},
}

func (m *ShopeeMapper) Name() string {
	return sales.PlatformShopee
}

func (m *ShopeeMapper) HeaderRowCount() int {
	return 1
}

func (m *ShopeeMapper) RequiredColumns() []string {
	return []string{"Order ID", "Order Status", "Order Creation Date"}
}

func (m *ShopeeMapper) Map(record Record, ctx MapContext) (*sales.Order, bool, error) {
	return mapOrder(sales.PlatformShopee, shopeeColumns, record, ctx)
}
