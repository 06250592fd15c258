package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"product-image-studio/collection"
	"product-image-studio/service"
)

func newTransferCmd() *cobra.Command {
	var (
		selected   []string
		mode       string
		position   int
		category   string
		targetMode string
	)

	cmd := &cobra.Command{
		Use:   "transfer <source-product> <target-product>",
		Short: "Transfer images from one product into another",
		Long: `Transfer the selected references of the source product into the target
product and save the result.

Modes: add_to_end, add_before, replace_from, replace_all.
Position is 1-based and relative to the target category.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			transferMode, err := collection.ParseTransferMode(mode)
			if err != nil {
				return err
			}
			keyMode, err := collection.ParseKeyMode(targetMode)
			if err != nil {
				return err
			}
			a, err := loadApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			if _, err := a.Workspace.LoadProduct(ctx, service.RoleSource, args[0], collection.PerImage, nil); err != nil {
				return err
			}
			if _, err := a.Workspace.LoadProduct(ctx, service.RoleTarget, args[1], keyMode, nil); err != nil {
				return err
			}

			result, err := a.Workspace.Transfer(ctx, selected, transferMode, position, category)
			if err != nil {
				return err
			}

			fmt.Fprintf(color.Output, "%s %d images into %s (category %s), %d images total\n",
				color.GreenString("✅ Transferred"), len(selected), args[1], result.Category, len(result.Images))
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&selected, "select", "s", nil, "References to transfer, in order")
	cmd.Flags().StringVarP(&mode, "mode", "m", "add_to_end", "Transfer mode")
	cmd.Flags().IntVarP(&position, "position", "p", 1, "1-based position within the target category")
	cmd.Flags().StringVar(&category, "category", "", "Target category (default: first existing category)")
	cmd.Flags().StringVar(&targetMode, "target-mode", "per_product", "Target collection mode: per_image or per_product")
	_ = cmd.MarkFlagRequired("select")
	return cmd
}
