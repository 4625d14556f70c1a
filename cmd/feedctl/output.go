package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	json "github.com/json-iterator/go"
	"github.com/pomegranateis/webfinalserver/internal/client"
)

const (
	formatText = "text"
	formatJSON = "json"
)

func validFormat(format string) bool {
	return format == formatText || format == formatJSON
}

// printer renders command results as colored text or as JSON
type printer struct {
	out    io.Writer
	format string
}

func (p *printer) jsonMode() bool {
	return p.format == formatJSON
}

func (p *printer) success(msg string, args ...interface{}) {
	if p.jsonMode() {
		return
	}
	color.New(color.FgGreen).Fprintf(p.out, msg+"\n", args...)
}

func (p *printer) info(msg string, args ...interface{}) {
	if p.jsonMode() {
		return
	}
	color.New(color.FgCyan).Fprintf(p.out, msg+"\n", args...)
}

func (p *printer) printJSON(data interface{}) error {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(p.out, string(out))
	return err
}

func (p *printer) table(headers []string, rows [][]string) {
	w := tabwriter.NewWriter(p.out, 0, 0, 2, ' ', 0)
	bold := color.New(color.Bold)

	for i, h := range headers {
		bold.Fprint(w, h)
		if i < len(headers)-1 {
			fmt.Fprint(w, "\t")
		}
	}
	fmt.Fprintln(w)

	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	w.Flush()
}

func (p *printer) record(fields [][2]string) {
	bold := color.New(color.Bold)
	for _, f := range fields {
		bold.Fprint(p.out, f[0]+": ")
		fmt.Fprintln(p.out, f[1])
	}
}

func (p *printer) posts(posts []client.Post) error {
	if p.jsonMode() {
		return p.printJSON(posts)
	}
	if len(posts) == 0 {
		p.info("No posts")
		return nil
	}

	rows := make([][]string, 0, len(posts))
	for _, post := range posts {
		author := post.AuthorID
		if post.Author != nil {
			author = post.Author.Username
		}
		rows = append(rows, []string{
			strconv.FormatUint(uint64(post.ID), 10),
			author,
			strconv.Itoa(post.LikeCount),
			ago(post.CreatedAt),
			truncate(post.Content, 60),
		})
	}
	p.table([]string{"ID", "AUTHOR", "LIKES", "POSTED", "CONTENT"}, rows)
	return nil
}

func (p *printer) comments(comments []client.Comment) error {
	if p.jsonMode() {
		return p.printJSON(comments)
	}
	if len(comments) == 0 {
		p.info("No comments")
		return nil
	}

	rows := make([][]string, 0, len(comments))
	for _, c := range comments {
		author := "(deleted)"
		if c.UserID != nil {
			author = *c.UserID
		}
		rows = append(rows, []string{
			strconv.FormatUint(uint64(c.ID), 10),
			author,
			ago(c.CreatedAt),
			truncate(c.Content, 60),
		})
	}
	p.table([]string{"ID", "USER", "POSTED", "CONTENT"}, rows)
	return nil
}

func (p *printer) users(users []client.User) error {
	if p.jsonMode() {
		return p.printJSON(users)
	}
	if len(users) == 0 {
		p.info("No users")
		return nil
	}

	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{u.Username, u.FullName, truncate(u.Bio, 40)})
	}
	p.table([]string{"USERNAME", "NAME", "BIO"}, rows)
	return nil
}

func (p *printer) profile(profile *client.Profile) error {
	if p.jsonMode() {
		return p.printJSON(profile)
	}
	p.record([][2]string{
		{"Username", profile.Username},
		{"Name", profile.FullName},
		{"Bio", profile.Bio},
		{"Followers", strconv.FormatInt(profile.FollowerCount, 10)},
		{"Following", strconv.FormatInt(profile.FollowingCount, 10)},
	})
	fmt.Fprintln(p.out)
	return p.posts(profile.Posts)
}

func (p *printer) editable(profile *client.EditableProfile) error {
	if p.jsonMode() {
		return p.printJSON(profile)
	}
	p.record([][2]string{
		{"Username", profile.Username},
		{"Name", profile.FullName},
		{"Bio", profile.Bio},
		{"Email", profile.Email},
	})
	return nil
}

func (p *printer) activity(a *client.UserActivity) error {
	if p.jsonMode() {
		return p.printJSON(a)
	}
	p.record([][2]string{
		{"Username", a.Username},
		{"Name", a.FullName},
		{"Bio", a.Bio},
		{"Joined", a.CreatedAt.Format("2006-01-02")},
		{"Posts", strconv.Itoa(len(a.Posts))},
		{"Comments", strconv.Itoa(len(a.Comments))},
		{"Followers", strconv.Itoa(len(a.Followers))},
		{"Following", strconv.Itoa(len(a.Following))},
	})
	if len(a.Posts) > 0 {
		fmt.Fprintln(p.out)
		return p.posts(a.Posts)
	}
	return nil
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// ago renders t relative to now at minute, hour or day granularity
func ago(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
