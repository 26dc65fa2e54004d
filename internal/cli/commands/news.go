package commands

import (
	"github.com/spf13/cobra"
)

// NewNewsCmd creates the public news command group
func NewNewsCmd(rt *Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "news",
		Short:       "Read published news",
		Annotations: routed("/news"),
	}

	cmd.AddCommand(newNewsListCmd(rt), newNewsReadCmd(rt))
	return cmd
}

func newNewsListCmd(rt *Runtime) *cobra.Command {
	var skip, limit int

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List published posts",
		RunE: func(cmd *cobra.Command, args []string) error {
			posts, err := rt.App.Client.News().ListPublic(cmd.Context(), skip, limit)
			if err != nil {
				return err
			}
			if len(posts) == 0 {
				rt.App.UI.Println("No news yet.")
				return nil
			}

			tbl := rt.App.UI.Table("SLUG", "TITLE", "PUBLISHED")
			for _, p := range posts {
				tbl.Row(p.Slug, p.Title, formatTime(p.PublishedAt))
			}
			return tbl.Flush()
		},
	}

	cmd.Flags().IntVar(&skip, "skip", 0, "Skip this many posts")
	cmd.Flags().IntVar(&limit, "limit", 10, "Show at most this many posts")
	return cmd
}

func newNewsReadCmd(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "read <slug>",
		Short: "Read a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := rt.App.Client.News().GetBySlug(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			u := rt.App.UI
			u.Printf("%s\n%s\n\n", p.Title, formatTime(p.PublishedAt))
			if p.Summary != "" {
				u.Printf("%s\n\n", p.Summary)
			}
			u.Println(p.Content)
			return nil
		},
	}
}

// NewPageCmd creates the page command, which shows a public static page
func NewPageCmd(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:         "page <key>",
		Short:       "Show a static page (about, contact...)",
		Args:        cobra.ExactArgs(1),
		Annotations: routed("/pages"),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := rt.App.Client.Pages().GetPublic(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			rt.App.UI.Printf("%s\n\n%s\n", p.Title, p.Content)
			return nil
		},
	}
}
