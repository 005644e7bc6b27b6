package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/edulabs-io/planctl/internal/utils"
	"github.com/edulabs-io/planctl/pkg/catalog"
	"github.com/edulabs-io/planctl/pkg/plan"
	"github.com/edulabs-io/planctl/pkg/selection"
	"github.com/edulabs-io/planctl/pkg/storage"
)

// planCmd represents the plan command
var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Create and edit persisted recharge plans",
}

// planShowCmd represents the plan show command
var planShowCmd = &cobra.Command{
	Use:   "show <planID>",
	Short: "Show one persisted plan with its line items",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newPlanClient(cmd)
		if err != nil {
			return err
		}
		p, err := client.Get(args[0])
		if err != nil {
			return err
		}
		printPlan(p)
		return nil
	},
}

// planCreateCmd represents the plan create command
var planCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a plan from the local draft",
	Long: `Validates the draft scalars, materializes the selected catalog items into
line items (names resolved against a fresh catalog fetch), and POSTs the
plan. On success the local draft is discarded; on failure it is kept so
nothing is retyped.`,
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

		draft.Normalize()
		if err := draft.Validate(); err != nil {
			return err
		}

		idx, err := indexForSelections(cmd, sel)
		if err != nil {
			return err
		}

		client, err := newPlanClient(cmd)
		if err != nil {
			return err
		}
		created, err := client.Create(draft, plan.AssembleItems(sel, idx))
		if err != nil {
			return err
		}

		fmt.Printf("created plan %s (%d items, duration %d days, %d credits)\n",
			created.ID, len(created.Items), created.Duration, created.Credits)
		return db.ClearDraft(ctx)
	},
}

// planUpdateCmd represents the plan update command
var planUpdateCmd = &cobra.Command{
	Use:   "update [planID]",
	Short: "Update a plan's scalar fields from the local draft",
	Long: `PUTs the scalar fields only; line items are never part of this write. Use
"plan add" and "plan remove" for item changes.`,
	Args: cobra.MaximumNArgs(1),
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

		planID := draft.PlanID
		if len(args) > 0 {
			planID = args[0]
		}
		if planID == "" {
			return errors.New("no plan id: pass one or set it with 'draft set --plan'")
		}

		draft.Normalize()
		if err := draft.Validate(); err != nil {
			return err
		}

		client, err := newPlanClient(cmd)
		if err != nil {
			return err
		}
		updated, err := client.UpdateScalars(planID, draft)
		if err != nil {
			return err
		}
		fmt.Printf("updated plan %s\n", updated.ID)
		return nil
	},
}

// planAddCmd represents the plan add command
var planAddCmd = &cobra.Command{
	Use:   "add [planID]",
	Short: "Add every selected item to a persisted plan",
	Long: `Issues one add call per selected item, sequentially, folding each response's
authoritative item list into local state before the next call. A failure
partway keeps the items already added and keeps the selection, so the
remainder can be retried; the selection is cleared only on full success.`,
	Args: cobra.MaximumNArgs(1),
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

		planID := draft.PlanID
		if len(args) > 0 {
			planID = args[0]
		}
		if planID == "" {
			return errors.New("no plan id: pass one or set it with 'draft set --plan'")
		}
		if sel.TotalCount() == 0 {
			return errors.New("nothing selected")
		}

		client, err := newPlanClient(cmd)
		if err != nil {
			return err
		}
		current, err := client.Get(planID)
		if err != nil {
			return err
		}

		idx, err := indexForSelections(cmd, sel)
		if err != nil {
			return err
		}

		items, added, err := client.AddSelected(planID, sel, idx, current.Items)
		if err != nil {
			utils.Log.Warnf("added %d of %d items before failing; selection kept for retry", added, sel.TotalCount())
			return err
		}

		fmt.Printf("added %d items, plan now holds %d\n", added, len(items))
		return db.ClearAllSelections(ctx)
	},
}

// planRemoveCmd represents the plan remove command
var planRemoveCmd = &cobra.Command{
	Use:   "remove <planID> <lineItemID>",
	Short: "Remove one line item from a persisted plan",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			return errors.New("removing a line item is destructive; re-run with --yes to confirm")
		}

		client, err := newPlanClient(cmd)
		if err != nil {
			return err
		}
		items, err := client.RemoveItem(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("removed item, plan now holds %d\n", len(items))
		return nil
	},
}

// indexForSelections fetches the catalogs that actually have selections, so
// line-item names resolve from fresh data.
func indexForSelections(cmd *cobra.Command, sel selection.Set) (catalog.Index, error) {
	client, err := newCatalogClient(cmd)
	if err != nil {
		return nil, err
	}

	idx := make(catalog.Index)
	var needed []catalog.CategoryKey
	for _, key := range catalog.Keys() {
		if sel.Count(key) > 0 {
			needed = append(needed, key)
		}
	}
	if err := client.LoadInto(idx, needed...); err != nil {
		return nil, err
	}
	return idx, nil
}

func printPlan(p plan.Plan) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintf(w, "id\t%s\n", p.ID)
	fmt.Fprintf(w, "name\t%s\n", p.Name)
	fmt.Fprintf(w, "description\t%s\n", p.Description)
	fmt.Fprintf(w, "duration\t%d\n", p.Duration)
	fmt.Fprintf(w, "credits\t%d\n", p.Credits)
	fmt.Fprintf(w, "mrp\t%.2f\n", p.MRP)
	fmt.Fprintf(w, "offerPrice\t%.2f\n", p.OfferPrice)
	fmt.Fprintf(w, "category\t%s\n", p.Category)
	w.Flush()

	if len(p.Items) == 0 {
		return
	}
	fmt.Println()
	iw := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(iw, "ITEM ID\tTYPE\tREFERENCE\tNAME")
	for _, li := range p.Items {
		fmt.Fprintf(iw, "%s\t%s\t%s\t%s\n", li.ID, li.ItemType, li.ReferenceID, li.Name)
	}
	iw.Flush()
}

func init() {
	rootCmd.AddCommand(planCmd)
	planCmd.AddCommand(planShowCmd)
	planCmd.AddCommand(planCreateCmd)
	planCmd.AddCommand(planUpdateCmd)
	planCmd.AddCommand(planAddCmd)
	planCmd.AddCommand(planRemoveCmd)

	planRemoveCmd.Flags().BoolP("yes", "y", false, "Confirm the removal")
}
