package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"product-image-studio/collection"
	"product-image-studio/service"
)

func newExportCmd() *cobra.Command {
	var (
		ai      bool
		output  string
		mode    string
		columns []string
	)

	cmd := &cobra.Command{
		Use:   "export <product>",
		Short: "Write the spreadsheet row payload of a product as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keyMode, err := collection.ParseKeyMode(mode)
			if err != nil {
				return err
			}
			a, err := loadApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			if _, err := a.Workspace.LoadProduct(ctx, service.RoleTarget, args[0], keyMode, columns); err != nil {
				return err
			}
			if ai {
				// Resolve every page so display-only images are known.
				view, err := a.Workspace.Page(ctx, service.RoleTarget, 0)
				if err != nil {
					return err
				}
				for n := 1; n < view.PageCount; n++ {
					if _, err := a.Workspace.Page(ctx, service.RoleTarget, n); err != nil {
						return err
					}
				}
			}

			payload, err := a.Workspace.Export(service.RoleTarget, ai)
			if err != nil {
				return err
			}

			var w io.Writer = os.Stdout
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(payload)
		},
	}

	cmd.Flags().BoolVar(&ai, "ai", false, "Drop images that could not be fetched")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "Output file")
	cmd.Flags().StringVarP(&mode, "mode", "m", "per_product", "Collection mode: per_image or per_product")
	cmd.Flags().StringSliceVar(&columns, "columns", nil, "Template column order (overrides TEMPLATE_COLUMNS)")
	return cmd
}
