package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"budgetledger/internal/models"
	"budgetledger/internal/patch"
	"budgetledger/internal/services"
)

func (c *cli) categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"cat"},
		Short:   "Manage income and expense categories",
	}

	cmd.AddCommand(c.listCategoriesCmd())
	cmd.AddCommand(c.addCategoryCmd())
	cmd.AddCommand(c.updateCategoryCmd())
	cmd.AddCommand(c.deleteCategoryCmd())
	cmd.AddCommand(c.initCategoriesCmd())

	return cmd
}

func (c *cli) listCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List active categories",
		Args:  cobra.NoArgs,
		RunE: c.run(func(cmd *cobra.Command, _ []string, a *app) error {
			categories, err := a.categories.ListActiveCategories(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(categories) == 0 {
				fmt.Fprintln(out, mutedStyle.Render("No categories yet. Use 'ledger categories init' or 'ledger categories add'."))
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			defer w.Flush()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				headerStyle.Render("ID"),
				headerStyle.Render("Name"),
				headerStyle.Render("Type"),
				headerStyle.Render("Color"),
				headerStyle.Render("Parent"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				strings.Repeat("-", 4), strings.Repeat("-", 20), strings.Repeat("-", 7),
				strings.Repeat("-", 7), strings.Repeat("-", 6))

			for _, cat := range categories {
				name := cat.Name
				if cat.Icon != nil && *cat.Icon != "" {
					name = *cat.Icon + " " + name
				}
				parent := mutedStyle.Render("-")
				if cat.ParentID != nil {
					parent = fmt.Sprint(*cat.ParentID)
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", cat.ID, name, cat.Type, cat.Color, parent)
			}
			return nil
		}),
	}
}

func (c *cli) addCategoryCmd() *cobra.Command {
	var (
		categoryType string
		color        string
		icon         string
		parentID     int64
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new category",
		Args:  cobra.ExactArgs(1),
		RunE: c.run(func(cmd *cobra.Command, args []string, a *app) error {
			in := services.CreateCategoryInput{
				Name:  args[0],
				Type:  models.CategoryType(categoryType),
				Color: color,
			}
			if cmd.Flags().Changed("icon") {
				in.Icon = &icon
			}
			if cmd.Flags().Changed("parent") {
				in.ParentID = &parentID
			}

			category, err := a.categories.CreateCategory(cmd.Context(), in)
			if err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Created %s category %q (id %d)", category.Type, category.Name, category.ID)
			return nil
		}),
	}

	cmd.Flags().StringVarP(&categoryType, "type", "t", string(models.CategoryTypeExpense), "income or expense")
	cmd.Flags().StringVar(&color, "color", "#95A5A6", "display color")
	cmd.Flags().StringVar(&icon, "icon", "", "display icon")
	cmd.Flags().Int64Var(&parentID, "parent", 0, "parent category id")
	return cmd
}

func (c *cli) updateCategoryCmd() *cobra.Command {
	var (
		name         string
		categoryType string
		color        string
		icon         string
		parentID     int64
		clearIcon    bool
		clearParent  bool
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change selected fields of a category",
		Long:  `Only the flags you pass are changed. --clear-icon and --clear-parent remove those values.`,
		Args:  cobra.ExactArgs(1),
		RunE: c.run(func(cmd *cobra.Command, args []string, a *app) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			var in services.UpdateCategoryInput
			if flags.Changed("name") {
				in.Name = patch.Some(name)
			}
			if flags.Changed("type") {
				in.Type = patch.Some(models.CategoryType(categoryType))
			}
			if flags.Changed("color") {
				in.Color = patch.Some(color)
			}
			switch {
			case clearIcon:
				in.Icon = patch.Field[*string]{Set: true}
			case flags.Changed("icon"):
				in.Icon = patch.Some(&icon)
			}
			switch {
			case clearParent:
				in.ParentID = patch.Field[*int64]{Set: true}
			case flags.Changed("parent"):
				in.ParentID = patch.Some(&parentID)
			}

			category, err := a.categories.UpdateCategory(cmd.Context(), id, in)
			if err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Updated category %q (id %d)", category.Name, category.ID)
			return nil
		}),
	}

	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVarP(&categoryType, "type", "t", "", "income or expense")
	cmd.Flags().StringVar(&color, "color", "", "display color")
	cmd.Flags().StringVar(&icon, "icon", "", "display icon")
	cmd.Flags().Int64Var(&parentID, "parent", 0, "parent category id")
	cmd.Flags().BoolVar(&clearIcon, "clear-icon", false, "remove the icon")
	cmd.Flags().BoolVar(&clearParent, "clear-parent", false, "detach from the parent category")
	cmd.MarkFlagsMutuallyExclusive("icon", "clear-icon")
	cmd.MarkFlagsMutuallyExclusive("parent", "clear-parent")
	return cmd
}

func (c *cli) deleteCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Deactivate a category",
		Long:  `The category is hidden from listings. Its transactions and child categories are kept.`,
		Args:  cobra.ExactArgs(1),
		RunE: c.run(func(cmd *cobra.Command, args []string, a *app) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.categories.DeleteCategory(cmd.Context(), id); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Deleted category %d", id)
			return nil
		}),
	}
}

func (c *cli) initCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Seed the starter categories into an empty ledger",
		Args:  cobra.NoArgs,
		RunE: c.run(func(cmd *cobra.Command, _ []string, a *app) error {
			created, err := a.categories.InitializeDefaults(cmd.Context())
			if err != nil {
				return err
			}
			if created == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("Categories already exist; nothing to do."))
				return nil
			}
			success(cmd.OutOrStdout(), "Created %d default categories", created)
			return nil
		}),
	}
}
