package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newImportCmd() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "import <product> <drive-folder-id>",
		Short: "Append the images of a Google Drive folder to a product",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if a.Importer == nil {
				return fmt.Errorf("GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_APPLICATION_CREDENTIALS_JSON must be set to import from Drive")
			}
			result, err := a.Importer.ImportFolder(cmd.Context(), args[0], args[1], category)
			if err != nil {
				return err
			}

			fmt.Fprintf(color.Output, "%s %s: %s inserted, %s skipped, %d total\n",
				color.GreenString("✓ Imported"), result.ProductKey,
				color.GreenString("%d", result.Inserted), color.YellowString("%d", result.Skipped), result.Total)
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Category of the imported images (default DEFAULT_CATEGORY)")
	return cmd
}
