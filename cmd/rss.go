package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/Laisky/errors/v2"
	gcmd "github.com/Laisky/go-utils/v6/cmd"
	"github.com/Laisky/zap"
	"github.com/spf13/cobra"

	"github.com/Laisky/notion-blog/library/log"
)

var rssCMD = &cobra.Command{
	Use:   "rss",
	Short: "render the rss feed",
	Long: `Render the RSS 2.0 feed of the public posts.

The feed is written to the file given by --output, or to stdout when empty.

Example usage:
  go run entrypoints/main.go rss -c settings.yml -o public/feed.xml`,
	Args: gcmd.NoExtraArgs,
	PreRun: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		if err := initialize(ctx, cmd); err != nil {
			log.Logger.Panic("init", zap.Error(err))
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		if err := runRSS(ctx, cmd.Flag("output").Value.String()); err != nil {
			log.Logger.Panic("render rss", zap.Error(err))
		}
	},
}

func init() {
	rootCMD.AddCommand(rssCMD)
	rssCMD.Flags().StringP("output", "o", "", "output file path, stdout when empty")
}

func runRSS(ctx context.Context, output string) error {
	svc, err := setupModules(ctx)
	if err != nil {
		return errors.Wrap(err, "setup modules")
	}

	feed, err := svc.RSS(ctx)
	if err != nil {
		return errors.Wrap(err, "render feed")
	}

	if output == "" {
		_, err = fmt.Fprintln(os.Stdout, feed)
		return errors.Wrap(err, "write stdout")
	}

	if err = os.WriteFile(output, []byte(feed), 0o644); err != nil {
		return errors.Wrapf(err, "write %s", output)
	}

	log.Logger.Info("wrote rss feed", zap.String("output", output), zap.Int("bytes", len(feed)))
	return nil
}
