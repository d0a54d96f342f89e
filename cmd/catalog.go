package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/nearbite/nearbite/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog <merchant name>",
	Short: "Look up a merchant's discount programs in the catalog",
	Long:  "Resolves a merchant display name (brand, optionally followed by a branch) against the discount catalog and prints the currently applicable programs.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cat, _, err := initCatalog(ctx)
		if err != nil {
			return err
		}
		if cat == nil {
			return eris.New("catalog database not configured")
		}
		defer cat.Close()

		brandName, branchName := catalog.SplitBrandBranch(args[0])

		brand, err := cat.FindBrand(ctx, brandName)
		if err != nil {
			return eris.Wrap(err, "find brand")
		}
		if brand == nil {
			fmt.Fprintf(os.Stderr, "brand %q not found\n", brandName)
			return nil
		}

		var branchID *string
		if branchName != "" {
			branch, err := cat.FindBranch(ctx, brand.BrandID, branchName)
			if err != nil {
				return eris.Wrap(err, "find branch")
			}
			if branch == nil {
				fmt.Fprintf(os.Stderr, "branch %q not found, showing brand-level programs\n", branchName)
			} else {
				branchID = &branch.BranchID
			}
		}

		programs, err := cat.FindApplicableDiscounts(ctx, brand.BrandID, branchID, time.Now())
		if err != nil {
			return eris.Wrap(err, "find discounts")
		}
		for i := range programs {
			rc, err := cat.LoadRequiredConditions(ctx, programs[i].DiscountID)
			if err != nil {
				return eris.Wrap(err, "load conditions")
			}
			programs[i].RequiredConditions = rc
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"brand":    brand,
			"programs": programs,
		})
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
}
