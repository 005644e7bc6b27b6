package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/edulabs-io/planctl/pkg/catalog"
	"github.com/edulabs-io/planctl/pkg/plan"
	"github.com/edulabs-io/planctl/pkg/storage"
)

// draftCmd represents the draft command
var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Work on the local plan draft (scalars and item selections)",
}

// draftSetCmd represents the draft set command
var draftSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set scalar fields on the draft",
	Long: `Updates only the fields whose flags are passed; everything else keeps its
stored value. Duration and credits may stay blank, they coerce to 0 at
plan creation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := storage.Open(draftDBPath(cmd))
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := context.Background()
		draft, err := db.LoadDraft(ctx)
		if err != nil {
			return err
		}

		setString := func(flag string, dst *string) {
			if cmd.Flags().Changed(flag) {
				*dst, _ = cmd.Flags().GetString(flag)
			}
		}
		setString("name", &draft.Name)
		setString("description", &draft.Description)
		setString("duration", &draft.Duration)
		setString("credits", &draft.Credits)
		setString("category", &draft.Category)
		setString("plan", &draft.PlanID)
		if cmd.Flags().Changed("mrp") {
			draft.MRP, _ = cmd.Flags().GetFloat64("mrp")
		}
		if cmd.Flags().Changed("offer-price") {
			draft.OfferPrice, _ = cmd.Flags().GetFloat64("offer-price")
		}

		draft.Normalize()
		return db.SaveDraft(ctx, draft)
	},
}

// draftShowCmd represents the draft show command
var draftShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the draft scalars and selection counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := storage.Open(draftDBPath(cmd))
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := context.Background()
		draft, err := db.LoadDraft(ctx)
		if err != nil {
			return err
		}
		sel, err := db.LoadSelections(ctx)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintf(w, "name\t%s\n", draft.Name)
		fmt.Fprintf(w, "description\t%s\n", draft.Description)
		fmt.Fprintf(w, "duration\t%s\n", orUnset(draft.Duration))
		fmt.Fprintf(w, "credits\t%s\n", orUnset(draft.Credits))
		fmt.Fprintf(w, "mrp\t%.2f\n", draft.MRP)
		fmt.Fprintf(w, "offerPrice\t%.2f\n", draft.OfferPrice)
		fmt.Fprintf(w, "category\t%s\n", draft.Category)
		if draft.PlanID != "" {
			fmt.Fprintf(w, "plan (edit mode)\t%s\n", draft.PlanID)
		}
		for _, key := range catalog.Keys() {
			fmt.Fprintf(w, "selected %s\t%d\n", key, sel.Count(key))
		}
		fmt.Fprintf(w, "selected total\t%d\n", sel.TotalCount())
		return w.Flush()
	},
}

// draftClearCmd represents the draft clear command
var draftClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Discard the draft and all selections",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := storage.Open(draftDBPath(cmd))
		if err != nil {
			return err
		}
		defer db.Close()
		return db.ClearDraft(context.Background())
	},
}

// draftSelectCmd represents the draft select command
var draftSelectCmd = &cobra.Command{
	Use:   "select <categoryKey> <id>...",
	Short: "Toggle catalog items in the draft selection",
	Long: `Flips membership per id: an unselected id becomes selected, a selected one
is dropped. Category keys: book, workbook, testObjective, testSubjective.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, ok := catalog.ParseKey(args[0])
		if !ok {
			return fmt.Errorf("unknown category key %q", args[0])
		}

		db, err := storage.Open(draftDBPath(cmd))
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := context.Background()
		for _, id := range args[1:] {
			selected, err := db.ToggleSelection(ctx, key, id)
			if err != nil {
				return err
			}
			if selected {
				fmt.Printf("selected %s %s\n", key, id)
			} else {
				fmt.Printf("deselected %s %s\n", key, id)
			}
		}
		return nil
	},
}

// draftSelectAllCmd represents the draft select-all command
var draftSelectAllCmd = &cobra.Command{
	Use:   "select-all <categoryKey>",
	Short: "Select every currently visible item in one category",
	Long: `Fetches the category, applies the same filters as the catalog command, and
unions the visible ids into the selection. Ids selected earlier under a
different filter stay selected.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, ok := catalog.ParseKey(args[0])
		if !ok {
			return fmt.Errorf("unknown category key %q", args[0])
		}

		client, err := newCatalogClient(cmd)
		if err != nil {
			return err
		}
		filter := filterFromFlags(cmd)

		items, err := client.FetchCategory(key)
		if err != nil {
			return err
		}

		// Edit mode: never offer items the plan already holds.
		excludePlan, _ := cmd.Flags().GetString("exclude-plan")
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

		visible := filter.Apply(items, plan.ExcludedIDs(bundled, key))
		ids := make([]string, 0, len(visible))
		for _, it := range visible {
			ids = append(ids, it.ID)
		}

		db, err := storage.Open(draftDBPath(cmd))
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.AddSelections(context.Background(), key, ids); err != nil {
			return err
		}
		fmt.Printf("selected %d visible %s items\n", len(ids), key)
		return nil
	},
}

// draftClearSelectionCmd represents the draft clear-selection command
var draftClearSelectionCmd = &cobra.Command{
	Use:   "clear-selection [categoryKey]",
	Short: "Clear the selection for one category, or all of them",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := storage.Open(draftDBPath(cmd))
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := context.Background()
		if len(args) == 0 {
			return db.ClearAllSelections(ctx)
		}
		key, ok := catalog.ParseKey(args[0])
		if !ok {
			return fmt.Errorf("unknown category key %q", args[0])
		}
		return db.ClearSelections(ctx, key)
	},
}

func orUnset(s string) string {
	if s == "" {
		return "(unset, coerces to 0)"
	}
	return s
}

func init() {
	rootCmd.AddCommand(draftCmd)
	draftCmd.AddCommand(draftSetCmd)
	draftCmd.AddCommand(draftShowCmd)
	draftCmd.AddCommand(draftClearCmd)
	draftCmd.AddCommand(draftSelectCmd)
	draftCmd.AddCommand(draftSelectAllCmd)
	draftCmd.AddCommand(draftClearSelectionCmd)

	draftSetCmd.Flags().StringP("name", "", "", "Plan name")
	draftSetCmd.Flags().StringP("description", "", "", "Plan description")
	draftSetCmd.Flags().StringP("duration", "", "", "Duration in days (blank coerces to 0)")
	draftSetCmd.Flags().StringP("credits", "", "", "Credits granted (blank coerces to 0)")
	draftSetCmd.Flags().Float64P("mrp", "", 0, "Maximum retail price")
	draftSetCmd.Flags().Float64P("offer-price", "", 0, "Offer price")
	draftSetCmd.Flags().StringP("category", "", "", "Plan category: Basic, Premium or Enterprise")
	draftSetCmd.Flags().StringP("plan", "", "", "Existing plan id to edit (enables edit mode)")

	draftSelectAllCmd.Flags().StringP("search", "s", "", "Only select items whose name contains this text (case-insensitive)")
	draftSelectAllCmd.Flags().StringP("category", "c", catalog.FilterAll, "Main category filter")
	draftSelectAllCmd.Flags().StringP("subcategory", "", catalog.FilterAll, "Subcategory filter")
	draftSelectAllCmd.Flags().StringP("exclude-plan", "", "", "Hide items already bundled in this plan id (edit mode)")
}
