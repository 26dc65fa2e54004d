package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pantryhub/pantry/internal/api"
	"github.com/pantryhub/pantry/internal/models"
)

// NewAdminCmd creates the admin command group. Each subgroup is its own
// admin route.
func NewAdminCmd(rt *Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administration (admins only)",
	}

	cmd.AddCommand(
		newAdminUsersCmd(rt),
		newAdminNewsCmd(rt),
		newAdminPagesCmd(rt),
	)
	return cmd
}

func newAdminUsersCmd(rt *Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "users",
		Short:       "Manage user accounts",
		Annotations: routed("/admin/users"),
	}

	ls := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := rt.App.Client.Admin().ListUsers(cmd.Context())
			if err != nil {
				return err
			}
			tbl := rt.App.UI.Table("ID", "USERNAME", "EMAIL", "ACTIVE", "ADMIN", "LAST LOGIN")
			for _, u := range users {
				tbl.Row(u.ID, u.Username, u.Email, yesNo(u.IsActive), yesNo(u.IsAdmin), formatTime(u.LastLogin))
			}
			return tbl.Flush()
		},
	}

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show user statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rt.App.Client.Admin().Stats(cmd.Context())
			if err != nil {
				return err
			}
			u := rt.App.UI
			u.Printf("Total users:     %d\n", s.TotalUsers)
			u.Printf("Active users:    %d\n", s.ActiveUsers)
			u.Printf("Admins:          %d\n", s.AdminUsers)
			u.Printf("New this month:  %d\n", s.NewUsersThisMonth)
			return nil
		},
	}

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			user, err := rt.App.Client.Admin().GetUser(cmd.Context(), id)
			if err != nil {
				return err
			}
			rt.printAdminUser(user)
			return nil
		},
	}

	var active, admin bool
	set := &cobra.Command{
		Use:   "set <id>",
		Short: "Activate, deactivate, promote or demote a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var patch models.AdminUserUpdate
			if cmd.Flags().Changed("active") {
				patch.IsActive = &active
			}
			if cmd.Flags().Changed("admin") {
				patch.IsAdmin = &admin
			}
			if patch.IsActive == nil && patch.IsAdmin == nil {
				return errors.New("nothing to change: pass --active and/or --admin")
			}

			user, err := rt.App.Client.Admin().UpdateUser(cmd.Context(), id, patch)
			if err != nil {
				return fmt.Errorf("failed to update user: %w", err)
			}
			rt.App.UI.Println("✓ User updated")
			rt.printAdminUser(user)
			return nil
		},
	}
	set.Flags().BoolVar(&active, "active", true, "Whether the account may sign in")
	set.Flags().BoolVar(&admin, "admin", false, "Whether the account has admin rights")

	cmd.AddCommand(ls, stats, get, set, newDeleteByIDCmd(rt, "user", func(cmd *cobra.Command, id int) error {
		return rt.App.Client.Admin().DeleteUser(cmd.Context(), id)
	}))
	return cmd
}

func (rt *Runtime) printAdminUser(u *models.AdminUser) {
	ui := rt.App.UI
	ui.Printf("%s (#%d)\n", u.Username, u.ID)
	ui.Printf("  Email:      %s\n", u.Email)
	ui.Printf("  Active:     %s\n", yesNo(u.IsActive))
	ui.Printf("  Admin:      %s\n", yesNo(u.IsAdmin))
	ui.Printf("  Created:    %s\n", formatTime(&u.CreatedAt))
	ui.Printf("  Last login: %s\n", formatTime(u.LastLogin))
}

func newAdminNewsCmd(rt *Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "news",
		Short:       "Write and publish news",
		Annotations: routed("/admin/news"),
	}

	ls := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List all posts, drafts included",
		RunE: func(cmd *cobra.Command, args []string) error {
			posts, err := rt.App.Client.News().List(cmd.Context())
			if err != nil {
				return err
			}
			tbl := rt.App.UI.Table("ID", "SLUG", "TITLE", "PUBLISHED")
			for _, p := range posts {
				published := "draft"
				if p.IsPublished {
					published = formatTime(p.PublishedAt)
				}
				tbl.Row(p.ID, p.Slug, p.Title, published)
			}
			return tbl.Flush()
		},
	}

	var addFlags newsFlags
	add := &cobra.Command{
		Use:   "add",
		Short: "Create a post",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := rt.App.Client.News().Create(cmd.Context(), addFlags.input(cmd))
			if err != nil {
				return fmt.Errorf("failed to create post: %w", err)
			}
			rt.App.UI.Printf("✓ Created post %s (#%d)\n", p.Slug, p.ID)
			return nil
		},
	}
	addFlags.bind(add)
	_ = add.MarkFlagRequired("title")
	_ = add.MarkFlagRequired("content")

	var updateFlags newsFlags
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit, publish or unpublish a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			p, err := rt.App.Client.News().Update(cmd.Context(), id, updateFlags.input(cmd))
			if err != nil {
				return fmt.Errorf("failed to update post: %w", err)
			}
			rt.App.UI.Printf("✓ Updated post %s (#%d)\n", p.Slug, p.ID)
			return nil
		},
	}
	updateFlags.bind(update)

	cmd.AddCommand(ls, add, update, newDeleteByIDCmd(rt, "post", func(cmd *cobra.Command, id int) error {
		return rt.App.Client.News().Delete(cmd.Context(), id)
	}))
	return cmd
}

type newsFlags struct {
	title, summary, content, image string
	publish                        bool
}

func (f *newsFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "Title")
	cmd.Flags().StringVar(&f.summary, "summary", "", "Summary shown in listings")
	cmd.Flags().StringVar(&f.content, "content", "", "Body")
	cmd.Flags().StringVar(&f.image, "image-url", "", "Cover image URL")
	cmd.Flags().BoolVar(&f.publish, "publish", false, "Publish the post")
}

func (f *newsFlags) input(cmd *cobra.Command) models.NewsInput {
	var in models.NewsInput
	changed := cmd.Flags().Changed
	if changed("title") {
		in.Title = &f.title
	}
	if changed("summary") {
		in.Summary = &f.summary
	}
	if changed("content") {
		in.Content = &f.content
	}
	if changed("image-url") {
		in.ImageURL = &f.image
	}
	if changed("publish") {
		in.IsPublished = &f.publish
	}
	return in
}

func newAdminPagesCmd(rt *Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "pages",
		Short:       "Edit static pages",
		Annotations: routed("/admin/pages"),
	}

	ls := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List pages",
		RunE: func(cmd *cobra.Command, args []string) error {
			pages, err := rt.App.Client.Pages().List(cmd.Context())
			if err != nil {
				return err
			}
			tbl := rt.App.UI.Table("KEY", "TITLE", "UPDATED")
			for _, p := range pages {
				tbl.Row(p.PageKey, p.Title, formatTime(&p.UpdatedAt))
			}
			return tbl.Flush()
		},
	}

	var title, content string
	set := &cobra.Command{
		Use:   "set <key>",
		Short: "Create or update a page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			in := models.PageInput{PageKey: key}
			if cmd.Flags().Changed("title") {
				in.Title = &title
			}
			if cmd.Flags().Changed("content") {
				in.Content = &content
			}

			pages := rt.App.Client.Pages()
			p, err := pages.Update(cmd.Context(), key, in)
			if errors.Is(err, api.ErrNotFound) {
				p, err = pages.Create(cmd.Context(), in)
			}
			if err != nil {
				return fmt.Errorf("failed to save page: %w", err)
			}
			rt.App.UI.Printf("✓ Saved page %s\n", p.PageKey)
			return nil
		},
	}
	set.Flags().StringVar(&title, "title", "", "Title")
	set.Flags().StringVar(&content, "content", "", "Content")

	var yes bool
	rm := &cobra.Command{
		Use:     "rm <key>",
		Aliases: []string{"delete"},
		Short:   "Delete a page",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := rt.confirm(yes, fmt.Sprintf("Delete page %s", args[0]))
			if err != nil || !ok {
				return err
			}
			if err := rt.App.Client.Pages().Delete(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to delete page: %w", err)
			}
			rt.App.UI.Printf("✓ Deleted page %s\n", args[0])
			return nil
		},
	}
	rm.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")

	cmd.AddCommand(ls, set, rm)
	return cmd
}

// newDeleteByIDCmd builds an "rm <id>" command with confirmation
func newDeleteByIDCmd(rt *Runtime, noun string, del func(cmd *cobra.Command, id int) error) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a " + noun,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ok, err := rt.confirm(yes, fmt.Sprintf("Delete %s #%d", noun, id))
			if err != nil || !ok {
				return err
			}
			if err := del(cmd, id); err != nil {
				return fmt.Errorf("failed to delete %s: %w", noun, err)
			}
			rt.App.UI.Printf("✓ Deleted %s #%d\n", noun, id)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	return cmd
}
