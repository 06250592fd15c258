package cli

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"product-image-studio/collection"
)

func newPrefetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefetch <product>...",
		Short: "Download product images into the disk cache",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			var refs []string
			for _, key := range args {
				rows, err := a.Products.Load(cmd.Context(), key)
				if err != nil {
					return err
				}
				for _, row := range rows {
					refs = append(refs, row.ImageURL)
				}
			}
			items := collection.Dedupe(refs)
			unique := make([]string, len(items))
			for i, item := range items {
				unique[i] = item.Reference
			}
			if len(unique) == 0 {
				logger.Infof("⏭️  Nothing to prefetch")
				return nil
			}

			bar := progressbar.NewOptions(len(unique),
				progressbar.OptionSetDescription("Prefetching"),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionSetWidth(50),
				progressbar.OptionShowCount(),
				progressbar.OptionThrottle(100),
				progressbar.OptionOnCompletion(func() {
					fmt.Fprint(os.Stderr, "\n")
				}),
				progressbar.OptionSetRenderBlankState(true),
			)
			fetched, failed := a.Loader.Prefetch(cmd.Context(), unique, func(ref string, err error) {
				if err != nil {
					logger.Debugf("⚠️  %s: %v", ref, err)
				}
				_ = bar.Add(1)
			})

			logger.Infof("🎉 Prefetch completed: %d fetched, %d failed", fetched, failed)
			if failed > 0 && fetched == 0 {
				return fmt.Errorf("all %d downloads failed", failed)
			}
			return nil
		},
	}
	return cmd
}
