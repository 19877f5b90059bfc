// Package cmd command line
package cmd

import (
	"context"
	"fmt"

	"github.com/Laisky/errors/v2"
	gconfig "github.com/Laisky/go-config/v2"
	gcmd "github.com/Laisky/go-utils/v6/cmd"
	glog "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"github.com/spf13/cobra"

	"github.com/Laisky/notion-blog/internal/library/notion"
	"github.com/Laisky/notion-blog/internal/web/blog/dao"
	"github.com/Laisky/notion-blog/internal/web/blog/service"
	"github.com/Laisky/notion-blog/library/config"
	"github.com/Laisky/notion-blog/library/db/kv"
	"github.com/Laisky/notion-blog/library/db/redis"
	"github.com/Laisky/notion-blog/library/log"
)

var rootCMD = &cobra.Command{
	Use:   "notion-blog",
	Short: "notion-blog",
	Long:  `blog backend serving posts from a notion database`,
	Args:  gcmd.NoExtraArgs,
}

func initialize(ctx context.Context, cmd *cobra.Command) error {
	if err := gconfig.Shared.BindPFlags(cmd.Flags()); err != nil {
		return errors.Wrap(err, "bind pflags")
	}

	setupSettings(ctx)
	setupLogger(ctx)
	if err := validateStartupConfig(); err != nil {
		return errors.Wrap(err, "validate config")
	}

	return nil
}

func setupSettings(ctx context.Context) {
	// mode
	if gconfig.Shared.GetBool("debug") {
		fmt.Println("run in debug mode")
		gconfig.Shared.Set("log-level", "debug")
	} else { // prod mode
		fmt.Println("run in prod mode")
	}

	// load configuration
	cfgPath := gconfig.Shared.GetString("config")
	config.LoadFromFile(cfgPath)
}

func setupLogger(ctx context.Context) {
	lvl := gconfig.Shared.GetString("log-level")
	if err := log.Logger.ChangeLevel(glog.Level(lvl)); err != nil {
		log.Logger.Panic("change log level", zap.Error(err), zap.String("level", lvl))
	}
}

// setupModules wires the blog service from the loaded settings.
func setupModules(ctx context.Context) (*service.Blog, error) {
	settings := config.Load()

	notionCli, err := notion.NewHTTPClient(settings.Notion.APIBaseURL,
		settings.Notion.Timeout, log.Logger.Named("notion"))
	if err != nil {
		return nil, errors.Wrap(err, "new notion client")
	}

	resolver := kv.NewResolver(redis.Connector(settings.Redis), log.Logger.Named("kv"))
	if backend := resolver.Backend(ctx); !backend.IsConnected() {
		log.Logger.Warn("shared cache store unavailable",
			zap.String("reason", backend.Reason()),
			zap.Bool("production", settings.Engagement.Production))
	}

	blogDao := dao.New(log.Logger.Named("blog_dao"), resolver, settings.Engagement.Production)
	return service.New(log.Logger.Named("blog_svc"), blogDao, notionCli, settings), nil
}

func init() {
	rootCMD.PersistentFlags().Bool("debug", false, "run in debug mode")
	rootCMD.PersistentFlags().String("listen", "localhost:8080", "like `localhost:8080`")
	rootCMD.PersistentFlags().StringP("config", "c", "/etc/notion-blog/settings.yml", "config file path")
	rootCMD.PersistentFlags().String("log-level", "info", "`debug/info/error`")
}

// Execute execute root command
func Execute() {
	if err := rootCMD.Execute(); err != nil {
		glog.Shared.Panic("start", zap.Error(err))
	}
}
