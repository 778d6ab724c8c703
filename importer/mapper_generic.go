package importer

import "shopdash/sales"

// GenericMapper reads the single-header layout produced by `shopdash export`.
type GenericMapper struct{}

var genericColumns = orderColumns{
	orderID:    []string{"Order ID"},
	status:     []string{"Status"},
	createdAt:  []string{"Order Date", "Created Time"},
	product:    []string{"Product", "Product Name"},
	sku:        []string{"SKU"},
	quantity:   []string{"Quantity"},
	revenue:    []string{"Revenue"},
	fees:       [][]string{{"Platform Fee", "Fee"}},
	settlement: []string{"Settlement"},
}

func (m *GenericMapper) Name() string {
	return sales.PlatformGeneric
}

func (m *GenericMapper) HeaderRowCount() int {
	return 1
}

func (m *GenericMapper) RequiredColumns() []string {
	return []string{"Order ID", "Order Date", "Revenue"}
}

func (m *GenericMapper) Map(record Record, ctx MapContext) (*sales.Order, bool, error) {
	order, ok, err := mapOrder(sales.PlatformGeneric, genericColumns, record, ctx)
	if err != nil || !ok {
		return order, ok, err
	}
	if platform := record.Text("Platform"); platform != "" {
		order.Platform = platform
	}
	return order, true, nil
}
