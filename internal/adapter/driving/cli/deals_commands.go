package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/opticini/opticini-cli/internal/domain/entity"
)

func (a *CLIApp) dealsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deals",
		Short: "Manage promotional deals (admin)",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List deals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := a.wire.Deals.ListDeals(cmd.Context())
			return err
		},
	}

	plans := &cobra.Command{
		Use:   "plans",
		Short: "List the subscription plans a deal can apply to",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := a.wire.Deals.ListPlans(cmd.Context())
			return err
		},
	}

	var form entity.DealForm
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a deal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := a.wire.Deals.CreateDeal(cmd.Context(), form)
			return err
		},
	}
	bindDealFlags(create, &form)

	var edits entity.DealForm
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a deal; fields that are not given keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return err
			}
			current, err := a.wire.Deals.LoadForm(cmd.Context(), id)
			if err != nil {
				return err
			}
			_, err = a.wire.Deals.UpdateDeal(cmd.Context(), id, mergeDealForm(cmd, current, edits))
			return err
		},
	}
	bindDealFlags(update, &edits)

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a deal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return err
			}
			return a.wire.Deals.DeleteDeal(cmd.Context(), id)
		},
	}

	cmd.AddCommand(list, plans, create, update, del)
	return cmd
}

func bindDealFlags(cmd *cobra.Command, f *entity.DealForm) {
	flags := cmd.Flags()
	flags.StringVar(&f.Title, "title", "", "deal title")
	flags.StringVar(&f.Description, "description", "", "deal description")
	flags.StringVar(&f.PlanID, "plan", "", "subscription plan id")
	flags.StringVar(&f.OriginalPrice, "price", "", "original price")
	flags.StringVar(&f.DiscountPercentage, "discount", "", "discount percentage (0-100)")
	flags.StringVar(&f.StartDate, "start", "", "start date (YYYY-MM-DD)")
	flags.StringVar(&f.EndDate, "end", "", "end date (YYYY-MM-DD)")
	flags.BoolVar(&f.IsActive, "active", true, "whether the deal is active")
	flags.StringVar(&f.BadgeText, "badge", "", "badge text shown with the deal")
}

// mergeDealForm overlays only the flags the user actually set.
func mergeDealForm(cmd *cobra.Command, current, edits entity.DealForm) entity.DealForm {
	changed := cmd.Flags().Changed
	out := current
	if changed("title") {
		out.Title = edits.Title
	}
	if changed("description") {
		out.Description = edits.Description
	}
	if changed("plan") {
		out.PlanID = edits.PlanID
	}
	if changed("price") {
		out.OriginalPrice = edits.OriginalPrice
	}
	if changed("discount") {
		out.DiscountPercentage = edits.DiscountPercentage
	}
	if changed("start") {
		out.StartDate = edits.StartDate
	}
	if changed("end") {
		out.EndDate = edits.EndDate
	}
	if changed("active") {
		out.IsActive = edits.IsActive
	}
	if changed("badge") {
		out.BadgeText = edits.BadgeText
	}
	return out
}
