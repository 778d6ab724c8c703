package importer

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func testContext() MapContext {
	return MapContext{
		OwnerID:     "shop-a",
		SourceFile:  "orders.xlsx",
		ImportBatch: "batch-1",
		Location:    time.FixedZone("ICT", 7*60*60),
	}
}

func TestTikTokMapper_MapsOrderLine(t *testing.T) {
	t.Parallel()

	headers, records, err := Ingest(RawSheet{
		{"Order ID", "Order Status", "Created Time", "Product Name", "Seller SKU", "Quantity", "SKU Subtotal After Discount", "Order Amount"},
		{"รหัสคำสั่งซื้อ", "สถานะ", "เวลาที่สร้าง", "ชื่อสินค้า", "SKU", "จำนวน", "ยอดรวม", "ยอดคำสั่งซื้อ"},
		{"\t578123456789", "Completed", "15/01/2026 13:30:00", "Serum", "SR-01", 2.0, "฿398.00", "฿450.00"},
	}, (&TikTokMapper{}).HeaderRowCount())
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if err := RequireColumns(headers, (&TikTokMapper{}).RequiredColumns()); err != nil {
		t.Fatalf("require columns: %v", err)
	}

	order, ok, err := (&TikTokMapper{}).Map(records[0], testContext())
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	if !ok {
		t.Fatalf("expected mapped order")
	}
	if order.OrderID != "578123456789" {
		t.Fatalf("unexpected order id %q", order.OrderID)
	}
	if order.Platform != "tiktok" || order.OwnerID != "shop-a" || order.ImportBatch != "batch-1" {
		t.Fatalf("unexpected provenance: %+v", order)
	}
	if !order.Revenue.Equal(decimal.RequireFromString("398")) {
		t.Fatalf("expected line subtotal as revenue, got %s", order.Revenue)
	}
	if !order.Settlement.Equal(order.Revenue) {
		t.Fatalf("expected settlement to equal revenue without fees, got %s", order.Settlement)
	}
	if order.Quantity != 2 || order.SKU != "SR-01" {
		t.Fatalf("unexpected line values: %+v", order)
	}
	if order.Day() != "2026-01-15" {
		t.Fatalf("unexpected day %s", order.Day())
	}
}

func TestShopeeMapper_SubtractsFees(t *testing.T) {
	t.Parallel()

	_, records, err := Ingest(RawSheet{
		{"Order ID", "Order Status", "Order Creation Date", "Product Name", "Quantity", "Product Subtotal", "Commission Fee", "Service Fee", "Transaction Fee"},
		{"2601150ABC", "Completed", "2026-01-15 09:10", "Toner", "1", "500", "25.00", "-10.00", 5.0},
	}, (&ShopeeMapper{}).HeaderRowCount())
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}

	order, ok, err := (&ShopeeMapper{}).Map(records[0], testContext())
	if err != nil || !ok {
		t.Fatalf("map: ok=%v err=%v", ok, err)
	}
	if !order.PlatformFee.Equal(decimal.RequireFromString("40")) {
		t.Fatalf("expected fee 40, got %s", order.PlatformFee)
	}
	if !order.Settlement.Equal(decimal.RequireFromString("460")) {
		t.Fatalf("expected settlement 460, got %s", order.Settlement)
	}
}

func TestMapper_SkipsBlankRows(t *testing.T) {
	t.Parallel()

	_, records, err := Ingest(RawSheet{{"Order ID", "Order Status", "Order Creation Date"}, {nil, "", nil}}, 1)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	order, ok, err := (&ShopeeMapper{}).Map(records[0], testContext())
	if err != nil || ok || order != nil {
		t.Fatalf("expected skipped row, got order=%v ok=%v err=%v", order, ok, err)
	}
}

func TestMapper_MissingOrderIDFails(t *testing.T) {
	t.Parallel()

	_, records, err := Ingest(RawSheet{{"Order ID", "Order Status", "Order Creation Date"}, {nil, "Completed", "2026-01-15"}}, 1)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if _, _, err := (&ShopeeMapper{}).Map(records[0], testContext()); err == nil {
		t.Fatalf("expected error for missing order id")
	}
}

func TestMapper_MissingOwnerFailsValidation(t *testing.T) {
	t.Parallel()

	_, records, err := Ingest(RawSheet{{"Order ID", "Order Date", "Revenue"}, {"G-1", "2026-01-15", "100"}}, 1)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	ctx := testContext()
	ctx.OwnerID = ""
	if _, _, err := (&GenericMapper{}).Map(records[0], ctx); err == nil {
		t.Fatalf("expected validation error without owner")
	}
}

func TestGenericMapper_UsesPlatformColumn(t *testing.T) {
	t.Parallel()

	_, records, err := Ingest(RawSheet{
		{"Platform", "Order ID", "Status", "Order Date", "Revenue", "Platform Fee", "Settlement"},
		{"shopee", "G-1", "Completed", "2026-01-15", "100", "12", "90"},
	}, 1)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	order, ok, err := (&GenericMapper{}).Map(records[0], testContext())
	if err != nil || !ok {
		t.Fatalf("map: ok=%v err=%v", ok, err)
	}
	if order.Platform != "shopee" {
		t.Fatalf("expected platform from column, got %q", order.Platform)
	}
	if !order.Settlement.Equal(decimal.NewFromInt(90)) {
		t.Fatalf("expected explicit settlement 90, got %s", order.Settlement)
	}
}

func TestRequireColumns_ListsEveryMissingColumn(t *testing.T) {
	t.Parallel()

	err := RequireColumns([]string{"Order ID", ""}, []string{"Order ID", "Order Status", "Created Time"})
	var missing *MissingColumnsError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingColumnsError, got %v", err)
	}
	if len(missing.Columns) != 2 || missing.Columns[0] != "Order Status" || missing.Columns[1] != "Created Time" {
		t.Fatalf("unexpected missing columns: %v", missing.Columns)
	}
}

func TestRequireColumns_ExactMatchOnly(t *testing.T) {
	t.Parallel()

	if err := RequireColumns([]string{"order id"}, []string{"Order ID"}); err == nil {
		t.Fatalf("expected case-sensitive mismatch to fail")
	}
	if err := RequireColumns([]string{"Order ID"}, []string{" Order  ID "}); err != nil {
		t.Fatalf("expected whitespace variants to match: %v", err)
	}
}

func TestMapperByName(t *testing.T) {
	t.Parallel()

	for _, name := range SupportedMapperNames() {
		mapper, err := MapperByName(name)
		if err != nil {
			t.Fatalf("mapper %q: %v", name, err)
		}
		if mapper.Name() != name {
			t.Fatalf("expected name %q, got %q", name, mapper.Name())
		}
	}
	if _, err := MapperByName("lazada"); err == nil {
		t.Fatalf("expected error for unknown mapper")
	}
}
