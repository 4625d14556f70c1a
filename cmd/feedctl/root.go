package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pomegranateis/webfinalserver/internal/client"
	"github.com/spf13/cobra"
)

// app is the state shared by every command, built in PersistentPreRunE
type app struct {
	configPath string
	apiURL     string
	outputFmt  string
	verbose    bool

	out      io.Writer
	logOut   io.Writer // nil opens the configured log file
	settings *client.Settings
	api      *client.Client
	log      *log.Logger
	print    *printer
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "feedctl",
		Short: "feedctl - command-line client for the webfinal social feed",
		Long: `feedctl talks to a webfinal server: sign up, log in, read the feed,
post, like, comment, follow people and edit your profile from the terminal.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to config file (default: ~/.config/feedctl/config.toml)")
	root.PersistentFlags().StringVar(&a.apiURL, "api-url", "", "API base URL (overrides config)")
	root.PersistentFlags().StringVarP(&a.outputFmt, "output", "o", "", "Output format: text, json")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")

	root.AddCommand(
		newSignupCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newHealthCmd(a),
		newFeedCmd(a),
		newPostCmd(a),
		newLikeCmd(a),
		newCommentsCmd(a),
		newCommentCmd(a),
		newProfileCmd(a),
		newFollowersCmd(a),
		newFollowingCmd(a),
		newFollowCmd(a),
		newUnfollowCmd(a),
		newEditProfileCmd(a),
		newSearchCmd(a),
	)
	return root
}

func (a *app) init() error {
	settings, err := client.LoadSettings(a.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if a.apiURL != "" {
		settings.BaseURL = a.apiURL
	}
	if a.outputFmt != "" {
		settings.Output = a.outputFmt
	}
	if !validFormat(settings.Output) {
		return fmt.Errorf("unknown output format %q", settings.Output)
	}
	a.settings = settings

	a.log = log.New(a.logWriter())
	a.log.SetLevel(log.InfoLevel)
	if a.verbose {
		a.log.SetLevel(log.DebugLevel)
	}

	a.print = &printer{out: a.out, format: settings.Output}
	a.api = client.New(client.Options{
		BaseURL: settings.BaseURL,
		Timeout: settings.Timeout,
		Logger:  a.log,
	})

	creds, err := client.LoadCredentials(settings.CredentialsPath)
	if err != nil {
		a.log.Warn("Ignoring unreadable credentials", "path", settings.CredentialsPath, "error", err)
		return nil
	}
	if creds.IsValid(time.Now()) {
		a.api.SetToken(creds.Token)
		a.log.Debug("Using saved credentials", "username", creds.Username)
	}
	return nil
}

func (a *app) logWriter() io.Writer {
	if a.logOut != nil {
		return a.logOut
	}
	if err := os.MkdirAll(filepath.Dir(a.settings.LogFile), 0700); err == nil {
		if f, err := os.OpenFile(a.settings.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600); err == nil {
			return f
		}
	}
	return os.Stderr
}

// requireLogin fails early with a hint instead of letting the server answer 401
func (a *app) requireLogin() (*client.Credentials, error) {
	creds, err := client.LoadCredentials(a.settings.CredentialsPath)
	if err != nil {
		return nil, err
	}
	if !creds.IsValid(time.Now()) {
		return nil, fmt.Errorf("not logged in (run `feedctl login`)")
	}
	return creds, nil
}
