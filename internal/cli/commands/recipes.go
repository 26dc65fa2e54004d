package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pantryhub/pantry/internal/models"
)

// NewRecipesCmd creates the recipes command group
func NewRecipesCmd(rt *Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "recipes",
		Aliases:     []string{"recipe"},
		Short:       "Browse and manage recipes",
		Annotations: routed("/recipes"),
	}

	cmd.AddCommand(
		newRecipesListCmd(rt),
		newRecipesGetCmd(rt),
		newRecipesAddCmd(rt),
		newRecipesDeleteCmd(rt),
		newRecipesMatchCmd(rt),
		newRecipesSeedCmd(rt),
		newRecipesGenerateCmd(rt),
	)
	return cmd
}

func newRecipesListCmd(rt *Runtime) *cobra.Command {
	var healthy bool

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List recipes",
		RunE: func(cmd *cobra.Command, args []string) error {
			recipes, err := rt.App.Client.Recipes().List(cmd.Context(), healthy)
			if err != nil {
				return err
			}
			if len(recipes) == 0 {
				rt.App.UI.Println("No recipes found.")
				rt.App.UI.Println("\nLoad the samples with: pantry recipes seed")
				return nil
			}
			return rt.printRecipes(recipes)
		},
	}

	cmd.Flags().BoolVar(&healthy, "healthy", false, "Only healthy recipes")
	return cmd
}

func newRecipesGetCmd(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			r, err := rt.App.Client.Recipes().Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			rt.printRecipe(r)
			return nil
		},
	}
}

func newRecipesAddCmd(rt *Runtime) *cobra.Command {
	var (
		in          models.RecipeInput
		ingredients []string
		prep, cook  int
		calories    int
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a recipe",
		RunE: func(cmd *cobra.Command, args []string) error {
			encoded, err := json.Marshal(ingredients)
			if err != nil {
				return fmt.Errorf("failed to encode ingredients: %w", err)
			}
			in.Ingredients = string(encoded)

			changed := cmd.Flags().Changed
			if changed("prep-time") {
				in.PrepTime = &prep
			}
			if changed("cook-time") {
				in.CookTime = &cook
			}
			if changed("calories") {
				in.Calories = &calories
			}

			r, err := rt.App.Client.Recipes().Create(cmd.Context(), in)
			if err != nil {
				return fmt.Errorf("failed to add recipe: %w", err)
			}
			rt.App.UI.Printf("✓ Added recipe %s (#%d)\n", r.Name, r.ID)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&in.Name, "name", "", "Recipe name")
	f.StringVar(&in.Description, "description", "", "Short description")
	f.StringArrayVar(&ingredients, "ingredient", nil, "Ingredient line, repeat for each")
	f.StringVar(&in.Instructions, "instructions", "", "Preparation steps")
	f.IntVar(&prep, "prep-time", 0, "Preparation time in minutes")
	f.IntVar(&cook, "cook-time", 0, "Cooking time in minutes")
	f.IntVar(&in.Servings, "servings", 1, "Servings")
	f.IntVar(&calories, "calories", 0, "Calories per serving")
	f.StringVar(&in.Difficulty, "difficulty", "", "easy, medium or hard")
	f.StringVar(&in.Tags, "tags", "", "Comma separated tags")
	f.BoolVar(&in.IsHealthy, "healthy", false, "Mark as healthy")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("instructions")

	return cmd
}

func newRecipesDeleteCmd(rt *Runtime) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a recipe",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ok, err := rt.confirm(yes, fmt.Sprintf("Delete recipe #%d", id))
			if err != nil || !ok {
				return err
			}
			if err := rt.App.Client.Recipes().Delete(cmd.Context(), id); err != nil {
				return fmt.Errorf("failed to delete recipe: %w", err)
			}
			rt.App.UI.Printf("✓ Deleted recipe #%d\n", id)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	return cmd
}

func newRecipesMatchCmd(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "match",
		Short: "Recipes you can cook with what is in the pantry",
		RunE: func(cmd *cobra.Command, args []string) error {
			recipes, err := rt.App.Client.Recipes().Match(cmd.Context())
			if err != nil {
				return err
			}
			if len(recipes) == 0 {
				rt.App.UI.Println("No recipe matches your pantry yet.")
				return nil
			}
			return rt.printRecipes(recipes)
		},
	}
}

func newRecipesSeedCmd(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the sample recipes",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := rt.App.Client.Recipes().SeedSample(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to seed recipes: %w", err)
			}
			if msg, ok := res["message"].(string); ok {
				rt.App.UI.Printf("✓ %s\n", msg)
			} else {
				rt.App.UI.Println("✓ Sample recipes loaded")
			}
			return nil
		},
	}
}

func newRecipesGenerateCmd(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Compose a new recipe from the pantry contents",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := rt.App.Client.Recipes().Generate(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to generate recipe: %w", err)
			}
			rt.printRecipe(r)
			return nil
		},
	}
}

func (rt *Runtime) printRecipes(recipes []models.Recipe) error {
	tbl := rt.App.UI.Table("ID", "NAME", "SERVINGS", "DIFFICULTY", "HEALTHY")
	for _, r := range recipes {
		tbl.Row(r.ID, r.Name, r.Servings, orDash(r.Difficulty), yesNo(r.IsHealthy))
	}
	return tbl.Flush()
}

func (rt *Runtime) printRecipe(r *models.Recipe) {
	u := rt.App.UI
	u.Printf("%s (#%d)\n", r.Name, r.ID)
	if r.Description != "" {
		u.Printf("%s\n", r.Description)
	}

	var meta []string
	if r.PrepTime != nil {
		meta = append(meta, fmt.Sprintf("prep %d min", *r.PrepTime))
	}
	if r.CookTime != nil {
		meta = append(meta, fmt.Sprintf("cook %d min", *r.CookTime))
	}
	if r.Servings > 0 {
		meta = append(meta, fmt.Sprintf("%d servings", r.Servings))
	}
	if r.Calories != nil {
		meta = append(meta, fmt.Sprintf("%d kcal", *r.Calories))
	}
	if len(meta) > 0 {
		u.Printf("%s\n", strings.Join(meta, " · "))
	}

	u.Println("\nIngredients:")
	for _, line := range recipeIngredients(r.Ingredients) {
		u.Printf("  • %s\n", line)
	}
	u.Println("\nInstructions:")
	u.Println(r.Instructions)
}

// recipeIngredients decodes the JSON list the backend stores. Entries are
// either plain strings or objects; anything undecodable is shown raw.
func recipeIngredients(raw string) []string {
	var entries []any
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		if raw == "" {
			return nil
		}
		return []string{raw}
	}

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		switch v := e.(type) {
		case string:
			lines = append(lines, v)
		case map[string]any:
			name, _ := v["name"].(string)
			var parts []string
			if q, ok := v["quantity"]; ok {
				parts = append(parts, fmt.Sprint(q))
			}
			if unit, ok := v["unit"].(string); ok && unit != "" {
				parts = append(parts, unit)
			}
			lines = append(lines, strings.Join(append(parts, name), " "))
		default:
			lines = append(lines, fmt.Sprint(v))
		}
	}
	return lines
}
