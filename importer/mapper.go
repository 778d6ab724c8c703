package importer

import (
	"fmt"
	"strings"
	"time"

	"shopdash/sales"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// MapContext carries per-file values a mapper stamps onto every order.
type MapContext struct {
	OwnerID     string
	SourceFile  string
	ImportBatch string
	Location    *time.Location
}

// Mapper converts canonical records of one export layout into orders. The
// second return value is false for rows that carry no order.
type Mapper interface {
	Name() string
	HeaderRowCount() int
	RequiredColumns() []string
	Map(record Record, ctx MapContext) (*sales.Order, bool, error)
}

var orderValidate = validator.New()

func SupportedMapperNames() []string {
	return []string{sales.PlatformTikTok, sales.PlatformShopee, sales.PlatformGeneric}
}

func MapperByName(name string) (Mapper, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case sales.PlatformTikTok:
		return &TikTokMapper{}, nil
	case sales.PlatformShopee:
		return &ShopeeMapper{}, nil
	case sales.PlatformGeneric:
		return &GenericMapper{}, nil
	default:
		return nil, fmt.Errorf("unsupported mapper: %s", name)
	}
}

// orderColumns names the cells a mapper reads for one order line.
type orderColumns struct {
	orderID    []string
	status     []string
	createdAt  []string
	product    []string
	sku        []string
	quantity   []string
	revenue    []string
	fees       [][]string
	settlement []string
}

func mapOrder(platform string, columns orderColumns, record Record, ctx MapContext) (*sales.Order, bool, error) {
	if record.Blank() {
		return nil, false, nil
	}

	orderID := record.Text(columns.orderID...)
	if orderID == "" {
		return nil, false, fmt.Errorf("row %d: missing order id", record.RowNumber)
	}

	createdAt, err := parseDateTime(record.Get(columns.createdAt...), ctx.Location)
	if err != nil {
		return nil, false, fmt.Errorf("row %d: parse created time: %w", record.RowNumber, err)
	}
	quantity, err := parseQuantity(record.Get(columns.quantity...))
	if err != nil {
		return nil, false, fmt.Errorf("row %d: %w", record.RowNumber, err)
	}
	revenue, err := parseAmount(record.Get(columns.revenue...))
	if err != nil {
		return nil, false, fmt.Errorf("row %d: revenue: %w", record.RowNumber, err)
	}

	fee := decimal.Zero
	for _, feeColumn := range columns.fees {
		amount, err := parseAmount(record.Get(feeColumn...))
		if err != nil {
			return nil, false, fmt.Errorf("row %d: fee: %w", record.RowNumber, err)
		}
		fee = fee.Add(amount.Abs())
	}

	settlement := revenue.Sub(fee)
	if len(columns.settlement) > 0 && record.Has(columns.settlement...) && record.Text(columns.settlement...) != "" {
		settlement, err = parseAmount(record.Get(columns.settlement...))
		if err != nil {
			return nil, false, fmt.Errorf("row %d: settlement: %w", record.RowNumber, err)
		}
	}

	order := &sales.Order{
		OwnerID:     ctx.OwnerID,
		Platform:    platform,
		OrderID:     orderID,
		Status:      record.Text(columns.status...),
		CreatedAt:   createdAt,
		ProductName: record.Text(columns.product...),
		SKU:         record.Text(columns.sku...),
		Quantity:    quantity,
		Revenue:     revenue,
		PlatformFee: fee,
		Settlement:  settlement,
		SourceFile:  ctx.SourceFile,
		ImportBatch: ctx.ImportBatch,
	}
	if err := orderValidate.Struct(order); err != nil {
		return nil, false, fmt.Errorf("row %d: invalid order: %w", record.RowNumber, err)
	}
	return order, true, nil
}
