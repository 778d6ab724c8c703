package importer

import (
	"fmt"
	"path/filepath"
	"strings"

	"shopdash/config"
	"shopdash/sales"

	"github.com/google/uuid"
)

type Result struct {
	BatchID        string
	FilesProcessed int
	RowsRead       int
	RowsMapped     int
	RowsSkipped    int
	Orders         []sales.Order
}

type RunOptions struct {
	OwnerID    string
	MapperName string
	Format     string
	// SourceName replaces the file name used for rule matching and
	// provenance, for uploads stored under a temporary path.
	SourceName string
}

// Run reads every file, maps its rows into orders and returns them without
// persisting anything. All files of one run share a batch ID.
func Run(paths []string, cfg config.Config, options RunOptions) (*Result, error) {
	ownerID := firstNonEmpty(options.OwnerID, cfg.Owner.ID)
	if ownerID == "" {
		return nil, fmt.Errorf("owner id is required for import")
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	result := &Result{
		BatchID: uuid.New().String(),
		Orders:  make([]sales.Order, 0, 256),
	}
	for _, path := range paths {
		name := filepath.Base(path)
		if strings.TrimSpace(options.SourceName) != "" {
			name = filepath.Base(strings.TrimSpace(options.SourceName))
		}
		mapper, err := resolveMapper(name, options.MapperName, cfg.Rules)
		if err != nil {
			return nil, err
		}
		sourceFormat, err := inferFormat(path, options.Format)
		if err != nil {
			return nil, err
		}
		reader, err := ReaderForFormat(sourceFormat)
		if err != nil {
			return nil, err
		}

		sheet, err := reader.Read(path)
		if err != nil {
			return nil, err
		}
		if err := checkSheetSize(path, sheet, mapper.HeaderRowCount(), cfg.Import.MaxRows); err != nil {
			return nil, err
		}

		ctx := MapContext{
			OwnerID:     ownerID,
			SourceFile:  name,
			ImportBatch: result.BatchID,
			Location:    loc,
		}
		if err := runSheet(result, sheet, mapper, ctx); err != nil {
			return nil, fmt.Errorf("import %s: %w", path, err)
		}
	}

	return result, nil
}

func runSheet(result *Result, sheet RawSheet, mapper Mapper, ctx MapContext) error {
	headers, records, err := Ingest(sheet, mapper.HeaderRowCount())
	if err != nil {
		return err
	}
	if err := RequireColumns(headers, mapper.RequiredColumns()); err != nil {
		return fmt.Errorf("%s export: %w", mapper.Name(), err)
	}

	result.FilesProcessed++
	result.RowsRead += len(records)
	for _, record := range records {
		order, ok, err := mapper.Map(record, ctx)
		if err != nil {
			return err
		}
		if !ok || order == nil {
			result.RowsSkipped++
			continue
		}
		result.RowsMapped++
		result.Orders = append(result.Orders, *order)
	}
	return nil
}

func checkSheetSize(path string, sheet RawSheet, headerRows, maxRows int) error {
	if maxRows <= 0 {
		return nil
	}
	dataRows := len(sheet) - headerRows
	if dataRows > maxRows {
		return fmt.Errorf("%s has %d data rows, limit is %d (import.max_rows)", path, dataRows, maxRows)
	}
	return nil
}

func resolveMapper(path, explicit string, rules []config.Rule) (Mapper, error) {
	if strings.TrimSpace(explicit) != "" {
		return MapperByName(explicit)
	}
	rule := MatchRuleByTemplate(path, rules)
	if rule.FileTemplate == "" {
		return nil, fmt.Errorf("no mapper for %s: pass --mapper (%s) or add a matching rule", path, strings.Join(SupportedMapperNames(), "|"))
	}
	return MapperByName(rule.Mapper)
}

func inferFormat(path string, format string) (string, error) {
	if strings.TrimSpace(format) != "" {
		return format, nil
	}

	extension := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch extension {
	case "csv":
		return "csv", nil
	case "xlsx", "xlsm":
		return "excel", nil
	case "xls":
		return "xls", nil
	default:
		return "", fmt.Errorf("unsupported file extension for %s", path)
	}
}

func MatchRuleByTemplate(path string, rules []config.Rule) config.Rule {
	baseName := filepath.Base(path)
	for _, rule := range rules {
		template := strings.TrimSpace(rule.FileTemplate)
		if template == "" {
			continue
		}
		matchesBase, err := filepath.Match(template, baseName)
		if err == nil && matchesBase {
			return rule
		}
		matchesFull, err := filepath.Match(template, path)
		if err == nil && matchesFull {
			return rule
		}
	}
	return config.Rule{}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
