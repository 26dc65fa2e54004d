package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pantryhub/pantry/internal/models"
)

// NewShoppingCmd creates the shopping command group
func NewShoppingCmd(rt *Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "shopping",
		Aliases:     []string{"shop"},
		Short:       "Manage shopping lists",
		Annotations: routed("/shopping"),
	}

	cmd.AddCommand(
		newShoppingListCmd(rt),
		newShoppingGetCmd(rt),
		newShoppingCreateCmd(rt),
		newShoppingDeleteCmd(rt),
		newShoppingAddItemCmd(rt),
		newShoppingCheckCmd(rt),
		newShoppingDeleteItemCmd(rt),
	)
	return cmd
}

func newShoppingListCmd(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List shopping lists",
		RunE: func(cmd *cobra.Command, args []string) error {
			lists, err := rt.App.Client.ShoppingLists().List(cmd.Context())
			if err != nil {
				return err
			}
			if len(lists) == 0 {
				rt.App.UI.Println("No shopping lists found.")
				rt.App.UI.Println("\nCreate one with: pantry shopping create <name>")
				return nil
			}

			tbl := rt.App.UI.Table("ID", "NAME", "ITEMS", "TO BUY")
			for _, l := range lists {
				toBuy := 0
				for _, it := range l.Items {
					if !it.IsPurchased {
						toBuy++
					}
				}
				tbl.Row(l.ID, l.Name, len(l.Items), toBuy)
			}
			return tbl.Flush()
		},
	}
}

func newShoppingGetCmd(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "get <list-id>",
		Short: "Show a shopping list and its items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			list, err := rt.App.Client.ShoppingLists().Get(cmd.Context(), id)
			if err != nil {
				return err
			}

			rt.App.UI.Printf("%s (#%d)\n\n", list.Name, list.ID)
			if len(list.Items) == 0 {
				rt.App.UI.Println("No items yet.")
				return nil
			}

			tbl := rt.App.UI.Table("ID", "", "ITEM", "QUANTITY")
			for _, it := range list.Items {
				mark := "[ ]"
				if it.IsPurchased {
					mark = "[x]"
				}
				tbl.Row(it.ID, mark, it.ItemName, formatQuantity(it.Quantity, it.Unit))
			}
			return tbl.Flush()
		},
	}
}

func newShoppingCreateCmd(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a shopping list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := rt.App.Client.ShoppingLists().Create(cmd.Context(), models.ShoppingListInput{Name: args[0]})
			if err != nil {
				return fmt.Errorf("failed to create shopping list: %w", err)
			}
			rt.App.UI.Printf("✓ Created shopping list %s (#%d)\n", list.Name, list.ID)
			return nil
		},
	}
}

func newShoppingDeleteCmd(rt *Runtime) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "rm <list-id>",
		Aliases: []string{"delete"},
		Short:   "Delete a shopping list with all its items",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ok, err := rt.confirm(yes, fmt.Sprintf("Delete shopping list #%d", id))
			if err != nil || !ok {
				return err
			}
			if err := rt.App.Client.ShoppingLists().Delete(cmd.Context(), id); err != nil {
				return fmt.Errorf("failed to delete shopping list: %w", err)
			}
			rt.App.UI.Printf("✓ Deleted shopping list #%d\n", id)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	return cmd
}

func newShoppingAddItemCmd(rt *Runtime) *cobra.Command {
	var quantity float64
	var unit string

	cmd := &cobra.Command{
		Use:   "add-item <list-id> <item>",
		Short: "Add an item to a shopping list",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			item, err := rt.App.Client.ShoppingLists().AddItem(cmd.Context(), id, models.ShoppingItemInput{
				ItemName: args[1],
				Quantity: quantity,
				Unit:     unit,
			})
			if err != nil {
				return fmt.Errorf("failed to add item: %w", err)
			}
			rt.App.UI.Printf("✓ Added %s (#%d)\n", item.ItemName, item.ID)
			return nil
		},
	}

	cmd.Flags().Float64Var(&quantity, "quantity", 1, "Quantity")
	cmd.Flags().StringVar(&unit, "unit", "", "Unit")
	return cmd
}

func newShoppingCheckCmd(rt *Runtime) *cobra.Command {
	var undo bool

	cmd := &cobra.Command{
		Use:   "check <item-id>",
		Short: "Mark an item as purchased",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			item, err := rt.App.Client.ShoppingLists().UpdateItem(cmd.Context(), id, !undo)
			if err != nil {
				return fmt.Errorf("failed to update item: %w", err)
			}
			if item.IsPurchased {
				rt.App.UI.Printf("✓ %s purchased\n", item.ItemName)
			} else {
				rt.App.UI.Printf("✓ %s back on the list\n", item.ItemName)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&undo, "undo", false, "Mark as not purchased")
	return cmd
}

func newShoppingDeleteItemCmd(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "rm-item <item-id>",
		Short: "Remove an item from its shopping list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := rt.App.Client.ShoppingLists().DeleteItem(cmd.Context(), id); err != nil {
				return fmt.Errorf("failed to remove item: %w", err)
			}
			rt.App.UI.Printf("✓ Removed item #%d\n", id)
			return nil
		},
	}
}
