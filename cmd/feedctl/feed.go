package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pomegranateis/webfinalserver/internal/client"
	"github.com/spf13/cobra"
)

func addPageFlags(cmd *cobra.Command, page *client.Page) {
	cmd.Flags().IntVar(&page.Limit, "limit", 20, "Maximum number of results")
	cmd.Flags().IntVar(&page.Offset, "offset", 0, "Number of results to skip")
}

func parsePostID(arg string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid post id %q", arg)
	}
	return uint(id), nil
}

func newFeedCmd(a *app) *cobra.Command {
	var page client.Page
	var withAuthors bool
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Show the newest posts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			posts, err := a.api.Feed(cmd.Context(), page, withAuthors)
			if err != nil {
				return err
			}
			return a.print.posts(posts)
		},
	}
	addPageFlags(cmd, &page)
	cmd.Flags().BoolVar(&withAuthors, "authors", true, "Include author usernames")
	return cmd
}

func newPostCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "post <content...>",
		Short: "Publish a post",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireLogin(); err != nil {
				return err
			}

			post, err := a.api.CreatePost(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if a.print.jsonMode() {
				return a.print.printJSON(post)
			}
			a.print.success("Posted #%d", post.ID)
			return nil
		},
	}
}

func newLikeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "like <post-id>",
		Short: "Like a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parsePostID(args[0])
			if err != nil {
				return err
			}
			if _, err := a.requireLogin(); err != nil {
				return err
			}

			post, err := a.api.LikePost(cmd.Context(), id)
			if err != nil {
				return err
			}
			if a.print.jsonMode() {
				return a.print.printJSON(post)
			}
			a.print.success("Liked #%d (%d likes)", post.ID, post.LikeCount)
			return nil
		},
	}
}

func newCommentsCmd(a *app) *cobra.Command {
	var page client.Page
	cmd := &cobra.Command{
		Use:   "comments <post-id>",
		Short: "List comments on a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parsePostID(args[0])
			if err != nil {
				return err
			}

			comments, err := a.api.Comments(cmd.Context(), id, page)
			if err != nil {
				return err
			}
			return a.print.comments(comments)
		},
	}
	addPageFlags(cmd, &page)
	return cmd
}

func newCommentCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "comment <post-id> <content...>",
		Short: "Comment on a post",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parsePostID(args[0])
			if err != nil {
				return err
			}
			if _, err := a.requireLogin(); err != nil {
				return err
			}

			comment, err := a.api.CreateComment(cmd.Context(), id, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			if a.print.jsonMode() {
				return a.print.printJSON(comment)
			}
			a.print.success("Commented on #%d", comment.PostID)
			return nil
		},
	}
}
