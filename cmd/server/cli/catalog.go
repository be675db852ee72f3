package cli

import (
	"context"
	"fmt"
	"os"

	recipes "github.com/mnuddindev/foodgram/internal/models/recipes"
	"github.com/mnuddindev/foodgram/pkg/utils"
	"github.com/spf13/cobra"
)

func NewLoadIngredientsCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "load-ingredients",
		Short: "Import ingredients from a name,unit CSV file",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", file, err)
			}
			defer f.Close()

			rt, err := bootstrap(ctx, false)
			if err != nil {
				return err
			}
			defer rt.close()

			created, skipped, err := recipes.LoadIngredients(ctx, rt.db, f)
			if err != nil {
				return err
			}
			rt.log.Info(ctx).WithMeta(utils.Map{"file": file}).WithFields("created", created, "skipped", skipped).Logs("Ingredients loaded")
			fmt.Fprintf(cmd.OutOrStdout(), "created %d ingredients, skipped %d rows\n", created, skipped)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "data/ingredients.csv", "CSV file with name,measurement_unit rows")
	return cmd
}

func NewCreateTagCommand() *cobra.Command {
	var tag recipes.Tag

	cmd := &cobra.Command{
		Use:   "create-tag",
		Short: "Create a recipe tag",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			rt, err := bootstrap(ctx, true)
			if err != nil {
				return err
			}
			defer rt.close()

			if err := recipes.CreateTag(ctx, rt.rclient, rt.db, &tag); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created tag %d (%s)\n", tag.ID, tag.Slug)
			return nil
		},
	}

	cmd.Flags().StringVar(&tag.Name, "name", "", "tag name")
	cmd.Flags().StringVar(&tag.Color, "color", "", "HEX color, e.g. #E26C2D")
	cmd.Flags().StringVar(&tag.Slug, "slug", "", "URL slug (derived from the name when empty)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("color")
	return cmd
}
