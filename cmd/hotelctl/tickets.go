package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hotelmend/ticket-service/internal/app"
	"github.com/hotelmend/ticket-service/internal/domain"
	"github.com/hotelmend/ticket-service/internal/service"
)

var ticketsCmd = &cobra.Command{
	Use:   "tickets",
	Short: "Inspect tickets",
}

var ticketsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print tickets in board order",
	Long:  `Print tickets ordered by importance, status and age. Closed tickets are hidden unless --status is given; --status "" shows every status.`,
	Args:  cobra.NoArgs,
	RunE: withContainer(func(cmd *cobra.Command, _ []string, c *app.Container) error {
		filter, err := ticketFilterFromFlags(cmd)
		if err != nil {
			return err
		}
		printTickets(cmd.OutOrStdout(), c.Engine.View(filter))
		return nil
	}),
}

func ticketFilterFromFlags(cmd *cobra.Command) (service.TicketFilter, error) {
	flags := cmd.Flags()
	locations, _ := flags.GetStringArray("location")
	repairTypes, _ := flags.GetStringArray("repair-type")
	statuses, _ := flags.GetStringSlice("status")
	importances, _ := flags.GetStringSlice("importance")

	filter := service.TicketFilter{Locations: nonEmpty(locations), RepairTypes: nonEmpty(repairTypes)}
	if !flags.Changed("status") {
		filter.Statuses = service.DefaultTicketFilter().Statuses
	}
	for _, s := range nonEmpty(statuses) {
		status := domain.TicketStatus(strings.ToUpper(s))
		if !status.IsValid() {
			return filter, fmt.Errorf("unknown status %q", s)
		}
		filter.Statuses = append(filter.Statuses, status)
	}
	for _, s := range nonEmpty(importances) {
		importance := domain.Importance(strings.ToUpper(s))
		if !importance.IsValid() {
			return filter, fmt.Errorf("unknown importance %q", s)
		}
		filter.Importances = append(filter.Importances, importance)
	}
	return filter, nil
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func printTickets(w io.Writer, tickets []domain.Ticket) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tIMPORTANCE\tSTATUS\tLOCATION\tREPAIR TYPE\tCREATED\tDESCRIPTION")
	for _, t := range tickets {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.Importance, t.Status, labelText(t.Location), labelText(t.RepairType),
			t.CreatedAt.Local().Format("2006-01-02 15:04"), t.Description)
	}
	_ = tw.Flush()
}

func labelText(l domain.Label) string {
	if l.Custom {
		return l.Name + "*"
	}
	return l.Name
}

func init() {
	ticketsListCmd.Flags().StringSlice("status", nil, "statuses to show (OPEN, IN_PROGRESS, CLOSED)")
	ticketsListCmd.Flags().StringSlice("importance", nil, "importance levels to show")
	ticketsListCmd.Flags().StringArray("location", nil, "location to show, repeatable")
	ticketsListCmd.Flags().StringArray("repair-type", nil, "repair type to show, repeatable")
	ticketsCmd.AddCommand(ticketsListCmd)
}
