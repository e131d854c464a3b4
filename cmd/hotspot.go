package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var hotspotCmd = &cobra.Command{
	Use:   "hotspot",
	Short: "Sweep the news index for high-attention fraud cases",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate(); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		p := buildPipeline(st)
		summary, err := p.RunHotspot(ctx)
		if err != nil {
			return eris.Wrap(err, "hotspot run")
		}

		zap.L().Info("hotspot sweep finished",
			zap.Int("processed", summary.Processed),
			zap.Int("saved", summary.Saved),
			zap.Int("skipped", summary.Skipped),
			zap.Int("rejected", summary.Rejected),
			zap.Int("failed", summary.Failed))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(hotspotCmd)
}
