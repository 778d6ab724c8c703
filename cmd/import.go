package cmd

import (
	"fmt"
	"strings"

	"shopdash/config"
	"shopdash/importer"

	"github.com/spf13/cobra"
)

var (
	importInputs []string
	importFormat string
	importMapper string
	importStore  storeFlags
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import TikTok Shop, Shopee or generic order exports into SQLite",
	Long: `Read export files, normalize each row via the selected mapper, and persist orders in SQLite.

The mapper is chosen by --mapper or, when omitted, by the first config rule whose
file_template matches the file name. TikTok Shop exports carry a description row
below the header; the tiktok mapper skips it.
When --format is omitted, format is inferred from each input file extension.

All files of one run share an import batch ID, printed after the import. The batch
can be removed again through the API (DELETE /api/imports/{batch}). Re-importing
the same orders is a no-op.`,
	Example: `
  # Import using config rules to pick the mapper
  shopdash import -i TikTok_orders_202603.xlsx -i Order.all.20260301_20260331.xlsx

  # Import a generic CSV
  shopdash import -i ./manual_orders.csv --mapper generic

  # Import a legacy .xls export for a specific owner
  shopdash import -i ./Order.all.xls --mapper shopee --owner shop-b --db ./shopdash.db
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		owner := importStore.owner(cfg)
		result, err := importer.Run(importInputs, *cfg, importer.RunOptions{
			OwnerID:    owner,
			MapperName: importMapper,
			Format:     importFormat,
		})
		if err != nil {
			return err
		}

		store, err := importStore.open(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		inserted, err := store.InsertOrders(owner, result.Orders)
		if err != nil {
			return err
		}

		fmt.Printf("Import completed. Batch: %s, Files: %d, Rows read: %d, Rows mapped: %d, Rows skipped: %d, Rows persisted: %d\n",
			result.BatchID,
			result.FilesProcessed,
			result.RowsRead,
			result.RowsMapped,
			result.RowsSkipped,
			inserted,
		)
		if duplicates := len(result.Orders) - inserted; duplicates > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %d orders were already stored and were skipped\n", duplicates)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringArrayVarP(&importInputs, "input", "i", nil, "Input file path (repeatable)")
	importCmd.Flags().StringVarP(&importFormat, "format", "f", "", "Input format: csv|excel|xls (optional, inferred from extension when omitted)")
	importCmd.Flags().StringVarP(&importMapper, "mapper", "m", "", "Mapper: "+strings.Join(importer.SupportedMapperNames(), "|")+" (optional, resolved from config rules)")
	importStore.bind(importCmd)

	_ = importCmd.MarkFlagRequired("input")
}
