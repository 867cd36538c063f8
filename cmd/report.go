package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"stocktake/core/config"
	"stocktake/core/database"
	"stocktake/feature/stocktake"

	"github.com/spf13/cobra"
)

// reportCmd prints a discrepancy report for one count session.
var reportCmd = &cobra.Command{
	Use:   "report <inventory-id>",
	Short: "Print a discrepancy report for a count session",
	Long: `Loads one count session straight from the record store and prints its
line items, per-item differences and aggregate statistics.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		db, err := database.Connect(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}

		repo := stocktake.NewRepository(db)
		inv, err := repo.GetByID(context.Background(), args[0])
		if err != nil {
			return err
		}

		snapshot := stocktake.NewInventorySnapshot(inv)

		fmt.Printf("%s (%s) [%s]\n", snapshot.Name, snapshot.Number, snapshot.Status)
		if snapshot.Description != "" {
			fmt.Println(snapshot.Description)
		}
		fmt.Println()

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "PRODUCT\tSKU\tEXPECTED\tCOUNTED\tDIFF\tSTATE")
		for _, it := range snapshot.Items {
			counted := "-"
			if it.Counted {
				counted = fmt.Sprintf("%g", it.CountedQty)
			}
			fmt.Fprintf(w, "%s\t%s\t%g\t%s\t%g\t%s\n",
				it.ProductName, it.SKU, it.ExpectedQty, counted, it.Difference, it.State)
		}
		w.Flush()

		stats := snapshot.Stats
		fmt.Println()
		fmt.Printf("items: %d  counted: %d  discrepancies: %d  total difference: %g  progress: %.1f%%\n",
			stats.TotalItems, stats.CountedItems, stats.ItemsWithDiscrepancy, stats.TotalDiscrepancy, stats.Progress)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(reportCmd)
}
