package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pantryhub/pantry/internal/router"
)

// NewOpenCmd creates the open command, which runs a navigation and reports
// every guard decision on the way.
func NewOpenCmd(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "open <path>",
		Short: "Navigate to a route and show where the guard sends you",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := rt.App

			route, err := a.Routes.Lookup(args[0])
			if err != nil {
				return err
			}
			a.PrepareRoute(cmd.Context(), route)

			res, err := a.Navigator.Navigate(route.Path)
			hop := res.Requested
			for _, d := range res.Decisions {
				switch d.Outcome {
				case router.Allow:
					a.UI.Printf("%-14s allow\n", hop)
				default:
					a.UI.Printf("%-14s %s → %s\n", hop, d.Outcome, d.Target)
				}
				hop = d.Target
			}
			if err != nil {
				return err
			}

			a.UI.Printf("Now at: %s (%s)\n", res.Route.Title, res.Route.Path)
			return nil
		},
	}
}

// NewRoutesCmd creates the routes command
func NewRoutesCmd(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List routes, their access rules and what the guard says for you",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := rt.App
			authenticated, admin := a.Session.IsAuthenticated(), a.Session.IsAdmin()

			tbl := a.UI.Table("PATH", "NAME", "ACCESS", "YOU")
			for _, r := range a.Routes.Routes() {
				d := router.Guard(r, authenticated, admin)
				verdict := d.Outcome.String()
				if d.Outcome != router.Allow {
					verdict = fmt.Sprintf("%s → %s", d.Outcome, d.Target)
				}
				tbl.Row(r.Path, r.Name, access(r.Meta), verdict)
			}
			return tbl.Flush()
		},
	}
}

func access(m router.Meta) string {
	switch {
	case m.RequiresAdmin:
		return "admin"
	case m.RequiresAuth:
		return "user"
	default:
		return "public"
	}
}

// NewDashboardCmd creates the dashboard command
func NewDashboardCmd(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:         "dashboard",
		Aliases:     []string{"dash", "home"},
		Short:       "Show an overview of your pantry",
		Annotations: routed(router.PathHome),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := rt.App
			ctx := cmd.Context()

			if !a.Session.IsAuthenticated() {
				a.UI.Println("Welcome to Pantry!")
				posts, err := a.Client.News().ListPublic(ctx, 0, 3)
				if err != nil {
					return fmt.Errorf("failed to load news: %w", err)
				}
				if len(posts) > 0 {
					a.UI.Println("\nLatest news:")
					for _, p := range posts {
						a.UI.Printf("  • %s (%s)\n", p.Title, p.Slug)
					}
				}
				a.UI.Println("\nSign in with: pantry login")
				return nil
			}

			if a.Session.User() == nil {
				if err := a.Auth.FetchCurrentUser(ctx); err != nil {
					return err
				}
			}
			a.UI.Printf("Hello, %s!\n\n", a.Session.User().Username)

			ingredients, err := a.Client.Ingredients().List(ctx, "")
			if err != nil {
				return fmt.Errorf("failed to load ingredients: %w", err)
			}
			lists, err := a.Client.ShoppingLists().List(ctx)
			if err != nil {
				return fmt.Errorf("failed to load shopping lists: %w", err)
			}
			expiring, err := a.Client.Ingredients().ExpiringSoon(ctx, 0)
			if err != nil {
				return fmt.Errorf("failed to load expiring ingredients: %w", err)
			}

			open := 0
			for _, l := range lists {
				for _, it := range l.Items {
					if !it.IsPurchased {
						open++
					}
				}
			}

			a.UI.Printf("Ingredients:     %d\n", len(ingredients))
			a.UI.Printf("Shopping lists:  %d (%d items to buy)\n", len(lists), open)
			a.UI.Printf("Expiring soon:   %d\n", len(expiring))
			for _, ing := range expiring {
				a.UI.Printf("  • %s, %s\n", ing.Name, formatDate(ing.ExpiryDate))
			}
			return nil
		},
	}
}
