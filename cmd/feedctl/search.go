package main

import (
	"fmt"

	"github.com/pomegranateis/webfinalserver/internal/client"
	"github.com/spf13/cobra"
)

func newSearchCmd(a *app) *cobra.Command {
	var query string
	var page client.Page
	cmd := &cobra.Command{
		Use:   "search [username]",
		Short: "Look up a user, or search usernames with --query",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case query != "":
				users, err := a.api.SearchUsers(cmd.Context(), query, page)
				if err != nil {
					return err
				}
				return a.print.users(users)
			case len(args) == 1:
				activity, err := a.api.SearchUser(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return a.print.activity(activity)
			default:
				return fmt.Errorf("give a username or --query")
			}
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "Match usernames containing this text")
	addPageFlags(cmd, &page)
	return cmd
}
