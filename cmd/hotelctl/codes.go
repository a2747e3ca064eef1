package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hotelmend/ticket-service/internal/app"
)

var codesCmd = &cobra.Command{
	Use:   "codes",
	Short: "Manage access codes",
}

var codesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List issued access codes",
	Args:  cobra.NoArgs,
	RunE: withContainer(func(cmd *cobra.Command, _ []string, c *app.Container) error {
		codes, err := c.Access.ListCodes(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(codes) == 0 {
			fmt.Fprintln(out, "no access codes issued")
			return nil
		}
		for _, code := range codes {
			fmt.Fprintln(out, code)
		}
		return nil
	}),
}

var codesIssueCmd = &cobra.Command{
	Use:   "issue [code]",
	Short: "Issue an access code, generating one when none is given",
	Args:  cobra.MaximumNArgs(1),
	RunE: withContainer(func(cmd *cobra.Command, args []string, c *app.Container) error {
		var explicit string
		if len(args) == 1 {
			explicit = args[0]
		}
		code, generated, err := c.Access.IssueCode(cmd.Context(), explicit)
		if err != nil {
			return err
		}
		if generated {
			fmt.Fprintf(cmd.OutOrStdout(), "generated access code %s\n", code)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "issued access code %s\n", code)
		}
		return nil
	}),
}

var codesRevokeCmd = &cobra.Command{
	Use:   "revoke <code>",
	Short: "Revoke an access code",
	Args:  cobra.ExactArgs(1),
	RunE: withContainer(func(cmd *cobra.Command, args []string, c *app.Container) error {
		if err := c.Access.RevokeCode(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "revoked access code %s\n", args[0])
		return nil
	}),
}

func init() {
	codesCmd.AddCommand(codesListCmd)
	codesCmd.AddCommand(codesIssueCmd)
	codesCmd.AddCommand(codesRevokeCmd)
}
