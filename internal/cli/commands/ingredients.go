package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pantryhub/pantry/internal/models"
)

// NewIngredientsCmd creates the ingredients command group
func NewIngredientsCmd(rt *Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "ingredients",
		Aliases:     []string{"ing"},
		Short:       "Manage pantry ingredients",
		Annotations: routed("/ingredients"),
	}

	cmd.AddCommand(
		newIngredientsListCmd(rt),
		newIngredientsGetCmd(rt),
		newIngredientsAddCmd(rt),
		newIngredientsUpdateCmd(rt),
		newIngredientsDeleteCmd(rt),
		newIngredientsExpiringCmd(rt),
	)
	return cmd
}

func newIngredientsListCmd(rt *Runtime) *cobra.Command {
	var location string

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List ingredients",
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := rt.App.Client.Ingredients().List(cmd.Context(), location)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				rt.App.UI.Println("No ingredients found.")
				rt.App.UI.Println("\nAdd one with: pantry ingredients add --name <name>")
				return nil
			}
			return rt.printIngredients(items)
		},
	}

	cmd.Flags().StringVar(&location, "location", "", "Only show ingredients stored here (fridge, freezer, pantry)")
	return cmd
}

func newIngredientsGetCmd(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one ingredient",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ing, err := rt.App.Client.Ingredients().Get(cmd.Context(), id)
			if err != nil {
				return err
			}

			u := rt.App.UI
			u.Printf("%s (#%d)\n", ing.Name, ing.ID)
			u.Printf("  Quantity: %s\n", formatQuantity(ing.Quantity, ing.Unit))
			u.Printf("  Location: %s\n", orDash(ing.Location))
			u.Printf("  Category: %s\n", orDash(ing.Category))
			u.Printf("  Expires:  %s\n", formatDate(ing.ExpiryDate))
			return nil
		},
	}
}

// ingredientFlags binds the editable fields; only flags the user set end up
// in the request.
type ingredientFlags struct {
	name, location, unit, category, expires string
	quantity                                float64
}

func (f *ingredientFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "Ingredient name")
	cmd.Flags().StringVar(&f.location, "location", "", "Storage location")
	cmd.Flags().Float64Var(&f.quantity, "quantity", 0, "Quantity")
	cmd.Flags().StringVar(&f.unit, "unit", "", "Unit (g, kg, l, pcs...)")
	cmd.Flags().StringVar(&f.category, "category", "", "Category")
	cmd.Flags().StringVar(&f.expires, "expires", "", "Expiry date (YYYY-MM-DD)")
}

func (f *ingredientFlags) input(cmd *cobra.Command) (models.IngredientInput, error) {
	var in models.IngredientInput
	changed := cmd.Flags().Changed

	if changed("name") {
		in.Name = &f.name
	}
	if changed("location") {
		in.Location = &f.location
	}
	if changed("quantity") {
		in.Quantity = &f.quantity
	}
	if changed("unit") {
		in.Unit = &f.unit
	}
	if changed("category") {
		in.Category = &f.category
	}
	if changed("expires") {
		d, err := models.ParseDate(f.expires)
		if err != nil {
			return in, err
		}
		in.ExpiryDate = &d
	}
	return in, nil
}

func newIngredientsAddCmd(rt *Runtime) *cobra.Command {
	var f ingredientFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an ingredient",
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := f.input(cmd)
			if err != nil {
				return err
			}
			ing, err := rt.App.Client.Ingredients().Create(cmd.Context(), in)
			if err != nil {
				return fmt.Errorf("failed to add ingredient: %w", err)
			}
			rt.App.UI.Printf("✓ Added %s (#%d)\n", ing.Name, ing.ID)
			return nil
		},
	}

	f.bind(cmd)
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newIngredientsUpdateCmd(rt *Runtime) *cobra.Command {
	var f ingredientFlags

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of an ingredient",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			in, err := f.input(cmd)
			if err != nil {
				return err
			}
			ing, err := rt.App.Client.Ingredients().Update(cmd.Context(), id, in)
			if err != nil {
				return fmt.Errorf("failed to update ingredient: %w", err)
			}
			rt.App.UI.Printf("✓ Updated %s: %s\n", ing.Name, formatQuantity(ing.Quantity, ing.Unit))
			return nil
		},
	}

	f.bind(cmd)
	return cmd
}

func newIngredientsDeleteCmd(rt *Runtime) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete an ingredient",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ok, err := rt.confirm(yes, fmt.Sprintf("Delete ingredient #%d", id))
			if err != nil || !ok {
				return err
			}
			if err := rt.App.Client.Ingredients().Delete(cmd.Context(), id); err != nil {
				return fmt.Errorf("failed to delete ingredient: %w", err)
			}
			rt.App.UI.Printf("✓ Deleted ingredient #%d\n", id)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	return cmd
}

func newIngredientsExpiringCmd(rt *Runtime) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "expiring",
		Short: "List ingredients that expire soon",
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := rt.App.Client.Ingredients().ExpiringSoon(cmd.Context(), days)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				rt.App.UI.Println("Nothing expires soon.")
				return nil
			}
			return rt.printIngredients(items)
		},
	}

	cmd.Flags().IntVar(&days, "days", 7, "Look ahead this many days")
	return cmd
}

func (rt *Runtime) printIngredients(items []models.Ingredient) error {
	tbl := rt.App.UI.Table("ID", "NAME", "QUANTITY", "LOCATION", "EXPIRES")
	for _, ing := range items {
		tbl.Row(ing.ID, ing.Name, formatQuantity(ing.Quantity, ing.Unit), orDash(ing.Location), formatDate(ing.ExpiryDate))
	}
	return tbl.Flush()
}
