package main

import (
	"github.com/pomegranateis/webfinalserver/internal/client"
	"github.com/spf13/cobra"
)

// usernameArg returns args[0], or the logged-in username when no argument was given
func (a *app) usernameArg(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	creds, err := a.requireLogin()
	if err != nil {
		return "", err
	}
	return creds.Username, nil
}

func newProfileCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "profile [username]",
		Short: "Show a profile (yours by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username, err := a.usernameArg(args)
			if err != nil {
				return err
			}

			profile, err := a.api.Profile(cmd.Context(), username)
			if err != nil {
				return err
			}
			return a.print.profile(profile)
		},
	}
}

type userLister func(a *app, cmd *cobra.Command, username string, page client.Page) ([]client.User, error)

func newEdgeListCmd(a *app, use, short string, list userLister) *cobra.Command {
	var page client.Page
	cmd := &cobra.Command{
		Use:   use + " [username]",
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username, err := a.usernameArg(args)
			if err != nil {
				return err
			}

			users, err := list(a, cmd, username, page)
			if err != nil {
				return err
			}
			return a.print.users(users)
		},
	}
	addPageFlags(cmd, &page)
	return cmd
}

func newFollowersCmd(a *app) *cobra.Command {
	return newEdgeListCmd(a, "followers", "List who follows a user",
		func(a *app, cmd *cobra.Command, username string, page client.Page) ([]client.User, error) {
			return a.api.Followers(cmd.Context(), username, page)
		})
}

func newFollowingCmd(a *app) *cobra.Command {
	return newEdgeListCmd(a, "following", "List who a user follows",
		func(a *app, cmd *cobra.Command, username string, page client.Page) ([]client.User, error) {
			return a.api.Following(cmd.Context(), username, page)
		})
}

func newFollowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "follow <username>",
		Short: "Follow a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireLogin(); err != nil {
				return err
			}
			if err := a.api.Follow(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.print.success("Following %s", args[0])
			return nil
		},
	}
}

func newUnfollowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "unfollow <username>",
		Short: "Stop following a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireLogin(); err != nil {
				return err
			}
			if err := a.api.Unfollow(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.print.success("Unfollowed %s", args[0])
			return nil
		},
	}
}

func newEditProfileCmd(a *app) *cobra.Command {
	var username, fullName, bio string
	cmd := &cobra.Command{
		Use:   "editpf",
		Short: "Show or change your profile fields",
		Long:  "Without flags, prints your editable fields. Only the flags you pass are changed.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			creds, err := a.requireLogin()
			if err != nil {
				return err
			}

			var update client.ProfileUpdate
			if cmd.Flags().Changed("username") {
				update.Username = &username
			}
			if cmd.Flags().Changed("full-name") {
				update.FullName = &fullName
			}
			if cmd.Flags().Changed("bio") {
				update.Bio = &bio
			}

			if update == (client.ProfileUpdate{}) {
				profile, err := a.api.EditableProfile(cmd.Context(), creds.Username)
				if err != nil {
					return err
				}
				return a.print.editable(profile)
			}

			profile, err := a.api.UpdateProfile(cmd.Context(), creds.Username, update)
			if err != nil {
				return err
			}

			// The saved token keeps working after a rename; only the cached name changes
			if profile.Username != creds.Username {
				creds.Username = profile.Username
				if err := creds.Save(a.settings.CredentialsPath); err != nil {
					return err
				}
			}

			if a.print.jsonMode() {
				return a.print.printJSON(profile)
			}
			a.print.success("Profile updated")
			return a.print.editable(profile)
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "New username")
	cmd.Flags().StringVar(&fullName, "full-name", "", "New display name")
	cmd.Flags().StringVar(&bio, "bio", "", "New bio")
	return cmd
}
