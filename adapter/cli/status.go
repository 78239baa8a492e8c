package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Gzeu/tarot-reading-app/internal/billing/application/queries"
	"github.com/Gzeu/tarot-reading-app/internal/billing/domain"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show your plan, quota and streak",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		view, err := app.Container.GetEntitlementHandler.Handle(cmd.Context(), queries.GetEntitlementQuery{
			UserID: app.CurrentUserID,
		})
		if err != nil {
			return err
		}

		if view.Unlimited {
			plan := view.PlanName
			if plan == "" {
				plan = string(view.Status)
			}
			fmt.Printf("Plan: %s (unlimited readings)\n", plan)
			if view.CurrentPeriodEnd != nil {
				fmt.Printf("Renews: %s\n", view.CurrentPeriodEnd.Format("2006-01-02"))
			}
		} else {
			fmt.Printf("Plan: free (%d of %d readings used this month)\n",
				view.QuotaUsed, view.QuotaLimit)
		}
		fmt.Printf("Streak: %d day(s)\n", view.ReadingStreak)
		return nil
	},
}

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List available plans and one-time readings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, product := range domain.ListProducts() {
			price := fmt.Sprintf("%.2f %s", float64(product.AmountCents)/100, product.Currency)
			if product.IsRecurring() {
				price += "/" + product.Interval
			}
			fmt.Printf("%-18s %-10s %s\n", product.ID, price, product.Description)
		}
		return nil
	},
}
