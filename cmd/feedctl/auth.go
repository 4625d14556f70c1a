package main

import (
	"fmt"
	"os"

	"github.com/pomegranateis/webfinalserver/internal/client"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// passwordFrom returns the flag value, then FEEDCTL_PASSWORD, then a hidden
// prompt when stdin is a terminal
func passwordFrom(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if env := os.Getenv("FEEDCTL_PASSWORD"); env != "" {
		return env, nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("password required (--password or FEEDCTL_PASSWORD)")
	}

	fmt.Fprint(os.Stderr, "Password: ")
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

func newSignupCmd(a *app) *cobra.Command {
	var req client.SignupRequest
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := passwordFrom(req.Password)
			if err != nil {
				return err
			}
			req.Password = password

			user, err := a.api.Signup(cmd.Context(), req)
			if err != nil {
				return err
			}
			if a.print.jsonMode() {
				return a.print.printJSON(user)
			}
			a.print.success("Account %s created. Log in with `feedctl login --email %s`", user.Username, user.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&req.Username, "username", "", "Username")
	cmd.Flags().StringVar(&req.Password, "password", "", "Password")
	cmd.Flags().StringVar(&req.FullName, "full-name", "", "Display name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func newLoginCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and save the access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := passwordFrom(password)
			if err != nil {
				return err
			}

			result, err := a.api.Login(cmd.Context(), email, pw)
			if err != nil {
				return err
			}

			creds := &client.Credentials{
				Token:     result.Token,
				Username:  result.Username,
				ExpiresAt: result.ExpiresAt,
			}
			if err := creds.Save(a.settings.CredentialsPath); err != nil {
				return fmt.Errorf("saving credentials: %w", err)
			}
			a.log.Info("Logged in", "username", result.Username)

			if a.print.jsonMode() {
				return a.print.printJSON(result)
			}
			a.print.success("Logged in as %s (token valid until %s)", result.Username, result.ExpiresAt.Local().Format("15:04"))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.DeleteCredentials(a.settings.CredentialsPath); err != nil {
				return err
			}
			a.api.ClearToken()
			a.print.success("Logged out")
			return nil
		},
	}
}

func newHealthCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the server and its database are up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := a.api.Health(cmd.Context())
			if err != nil {
				return err
			}
			if a.print.jsonMode() {
				return a.print.printJSON(h)
			}
			a.print.success("%s is %s (database %s)", h.Service, h.Status, h.Database)
			return nil
		},
	}
}
