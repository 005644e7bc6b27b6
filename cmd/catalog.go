package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edulabs-io/planctl/pkg/catalog"
	"github.com/edulabs-io/planctl/pkg/plan"
)

// catalogCmd represents the catalog command
var catalogCmd = &cobra.Command{
	Use:   "catalog <book|workbook|test>",
	Short: "List catalog items eligible for bundling",
	Long: `Lists one content catalog, normalized to a uniform shape. "test" lists the
objective and subjective test catalogs together, each fetched and tagged
independently.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newCatalogClient(cmd)
		if err != nil {
			return err
		}

		filter := filterFromFlags(cmd)
		outputFlags, _ := cmd.Flags().GetString("output")
		delimiter, _ := cmd.Flags().GetString("delimiter")
		excludePlan, _ := cmd.Flags().GetString("exclude-plan")

		// In edit mode the already-bundled items must not be pickable again.
		var bundled []plan.LineItem
		if excludePlan != "" {
			planClient, err := newPlanClient(cmd)
			if err != nil {
				return err
			}
			p, err := planClient.Get(excludePlan)
			if err != nil {
				return err
			}
			bundled = p.Items
		}

		list := func(key catalog.CategoryKey, prefix string) error {
			items, err := client.FetchCategory(key)
			if err != nil {
				return err
			}
			visible := filter.Apply(items, plan.ExcludedIDs(bundled, key))
			catalog.PrintItems(visible, prefix, outputFlags, delimiter)
			return nil
		}

		switch args[0] {
		case "book":
			return list(catalog.KeyBook, "")
		case "workbook":
			return list(catalog.KeyWorkbook, "")
		case "test":
			if err := list(catalog.KeyTestObjective, "[objective] "); err != nil {
				return err
			}
			return list(catalog.KeyTestSubjective, "[subjective] ")
		default:
			return fmt.Errorf("unknown catalog %q (available: book, workbook, test)", args[0])
		}
	},
}

// subcategoriesCmd represents the catalog subcategories command
var subcategoriesCmd = &cobra.Command{
	Use:   "subcategories <book|workbook|test>",
	Short: "List the subcategory options for the current main category",
	Long: `Derives the subcategory filter options: the statically known subcategories
for the selected main category, unioned with subcategories observed among
the currently visible items (so custom labels show up too).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newCatalogClient(cmd)
		if err != nil {
			return err
		}

		filter := filterFromFlags(cmd)

		var items []catalog.Item
		switch args[0] {
		case "book":
			items, err = client.FetchCategory(catalog.KeyBook)
		case "workbook":
			items, err = client.FetchCategory(catalog.KeyWorkbook)
		case "test":
			var objective, subjective []catalog.Item
			objective, subjective, err = client.FetchTests()
			items = append(objective, subjective...)
		default:
			return fmt.Errorf("unknown catalog %q (available: book, workbook, test)", args[0])
		}
		if err != nil {
			return err
		}

		mapping, err := client.FetchCategoryMapping()
		if err != nil {
			return err
		}

		visible := filter.Apply(items, nil)
		for _, sub := range catalog.AvailableSubCategories(mapping, filter.Category, visible) {
			fmt.Println(sub)
		}
		return nil
	},
}

// filterFromFlags builds the filter state, applying the main-category flag
// before the subcategory flag so the reset rule holds.
func filterFromFlags(cmd *cobra.Command) catalog.Filter {
	search, _ := cmd.Flags().GetString("search")
	mainCategory, _ := cmd.Flags().GetString("category")
	subCategory, _ := cmd.Flags().GetString("subcategory")

	f := catalog.NewFilter()
	f.Query = search
	f.SetCategory(mainCategory)
	f.SetSubCategory(subCategory)
	return f
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(subcategoriesCmd)

	for _, c := range []*cobra.Command{catalogCmd, subcategoriesCmd} {
		c.Flags().StringP("search", "s", "", "Only show items whose name contains this text (case-insensitive)")
		c.Flags().StringP("category", "c", catalog.FilterAll, "Main category filter")
		c.Flags().StringP("subcategory", "", catalog.FilterAll, "Subcategory filter")
	}
	catalogCmd.Flags().StringP("exclude-plan", "", "", "Hide items already bundled in this plan id (edit mode)")
	catalogCmd.Flags().StringP("output", "o", "in", "Output flags: i=id, n=name, c=category, s=subcategory, u=image URL")
	catalogCmd.Flags().StringP("delimiter", "d", " ", "Field delimiter")
}
