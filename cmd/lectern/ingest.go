package main

import (
	"github.com/lecternhq/lectern/internal/ingest"
	"github.com/lecternhq/lectern/internal/providers/rag"
	"github.com/lecternhq/lectern/pkg/log"
	"github.com/spf13/cobra"
)

var ingestDocsPath string

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Index course documents into the search backend",
	Long:  `Parses course documents from the docs folder, chunks and embeds their lessons, and stores them for retrieval. Already indexed courses are skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		logger := log.FromCtx(ctx)

		d := NewDeps(ctx)
		defer func() {
			if err := d.db.Close(); err != nil {
				logger.Error().Err(err).Msg("failed to close database")
			}
		}()

		dir := ingestDocsPath
		if dir == "" {
			dir = d.appCfg.DocsPath
		}

		ing := ingest.NewIngester(d.store, rag.ChunkerConfig{
			MaxTokens:     d.ragCfg.ChunkSize,
			OverlapTokens: d.ragCfg.ChunkOverlap,
		})

		stats, err := ing.Run(ctx, dir)
		if err != nil {
			return err
		}

		logger.Info().
			Int("courses", stats.Courses).
			Int("chunks", stats.Chunks).
			Int("skipped", stats.Skipped).
			Msg("ingest finished")
		return nil
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestDocsPath, "docs", "", "directory of course documents (defaults to LECTERN_DOCS_PATH)")
	rootCmd.AddCommand(ingestCmd)
}
