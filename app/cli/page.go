package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"product-image-studio/collection"
	"product-image-studio/service"
)

func newPageCmd() *cobra.Command {
	var (
		page    int
		mode    string
		columns []string
	)

	cmd := &cobra.Command{
		Use:   "page <product>",
		Short: "Print one page of a product grouped by category",
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

			if _, err := a.Workspace.LoadProduct(cmd.Context(), service.RoleSource, args[0], keyMode, columns); err != nil {
				return err
			}
			view, err := a.Workspace.Page(cmd.Context(), service.RoleSource, page-1)
			if err != nil {
				return err
			}
			printPage(view)
			return nil
		},
	}

	cmd.Flags().IntVarP(&page, "page", "n", 1, "Page number (1-based)")
	cmd.Flags().StringVarP(&mode, "mode", "m", "per_image", "Collection mode: per_image or per_product")
	cmd.Flags().StringSliceVar(&columns, "columns", nil, "Template column order (overrides TEMPLATE_COLUMNS)")
	return cmd
}

func printPage(view collection.PageView) {
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)
	red := color.New(color.FgRed)

	fmt.Fprintln(color.Output, bold.Sprintf("%s  page %d/%d", view.ProductKey, view.Page+1, view.PageCount))

	displayOnly := make(map[string]bool, len(view.Entries))
	for _, e := range view.Entries {
		if e.DisplayOnly() {
			displayOnly[e.SourceReference] = true
		}
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 80
	for _, g := range view.Groups {
		if len(g.Members) == 0 {
			tbl.AddRow(color.CyanString("%s", g.Category), faint.Sprint("(empty)"))
			continue
		}
		for i, item := range g.Members {
			label := ""
			if i == 0 {
				label = color.CyanString("%s", g.Category)
			}
			ref := item.Reference
			if displayOnly[item.Reference] {
				ref = red.Sprint(ref + " (display only)")
			}
			tbl.AddRow(label, fmt.Sprintf("%d.", item.OriginIndex+1), ref)
		}
	}
	_, _ = fmt.Fprintln(color.Output, tbl)
}
