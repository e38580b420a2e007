package main

import (
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/captiveadvisors/directory/internal/model"
	"github.com/captiveadvisors/directory/internal/store"
)

var crmLimit int

var crmCmd = &cobra.Command{
	Use:   "crm",
	Short: "CRM synchronization",
}

var crmPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Push unsynced leads to Salesforce",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		sf, err := initSalesforce()
		if err != nil {
			return err
		}

		leads, err := st.ListLeads(ctx, store.LeadFilter{Unsynced: true, Limit: crmLimit})
		if err != nil {
			return err
		}
		if len(leads) == 0 {
			fmt.Println("no unsynced leads")
			return nil
		}

		var pushed, failed int
		for _, lead := range leads {
			advisor, err := st.GetAdvisor(ctx, lead.AdvisorID)
			if err != nil {
				zap.L().Warn("crm: advisor lookup failed",
					zap.String("lead_id", lead.ID), zap.Error(err))
				failed++
				continue
			}

			sfID, err := sf.InsertOne(ctx, "Lead", leadRecord(lead, advisor))
			if err != nil {
				zap.L().Warn("crm: push failed",
					zap.String("lead_id", lead.ID), zap.Error(err))
				failed++
				continue
			}

			if err := st.MarkLeadSynced(ctx, lead.ID, time.Now().UTC()); err != nil {
				zap.L().Error("crm: mark synced failed",
					zap.String("lead_id", lead.ID),
					zap.String("sf_id", sfID), zap.Error(err))
				failed++
				continue
			}
			pushed++
		}

		fmt.Printf("pushed %d leads, %d failed\n", pushed, failed)
		return nil
	},
}

// leadRecord maps a lead onto standard Salesforce Lead fields, with the
// qualification answers folded into the description.
func leadRecord(lead model.Lead, advisor *model.Advisor) map[string]any {
	return map[string]any{
		"LastName":    lead.Name,
		"Email":       lead.Email,
		"Company":     advisor.FirmName,
		"LeadSource":  "Directory - " + string(lead.SourceType),
		"Description": fmt.Sprintf("Advisor: %s (%s)\nRevenue bracket: %s\nCaptive interest: %t\nHas CPA: %t\n\n%s", advisor.Name, advisor.Slug, lead.RevenueBracket, lead.CaptiveInterest, lead.HasCPA, lead.Message),
	}
}

func init() {
	crmPushCmd.Flags().IntVar(&crmLimit, "limit", 200, "max leads to push")
	crmCmd.AddCommand(crmPushCmd)
	rootCmd.AddCommand(crmCmd)
}
