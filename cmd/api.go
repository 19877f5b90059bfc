package cmd

import (
	"context"

	gconfig "github.com/Laisky/go-config/v2"
	gcmd "github.com/Laisky/go-utils/v6/cmd"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/Laisky/notion-blog/internal/web"
	"github.com/Laisky/notion-blog/internal/web/blog/controller"
	"github.com/Laisky/notion-blog/library/log"
)

var apiCMD = &cobra.Command{
	Use:   "api",
	Short: "api",
	Long:  `http API service for the blog`,
	Args:  gcmd.NoExtraArgs,
	PreRun: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		if err := initialize(ctx, cmd); err != nil {
			log.Logger.Panic("init", zap.Error(err))
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		svc, err := setupModules(ctx)
		if err != nil {
			log.Logger.Panic("setup modules", zap.Error(err))
		}

		if !svc.Settings().Debug {
			gin.SetMode(gin.ReleaseMode)
		}
		server, err := web.NewServer(svc.Settings(), controller.New(svc))
		if err != nil {
			log.Logger.Panic("new server", zap.Error(err))
		}

		web.RunServer(gconfig.Shared.GetString("listen"), server)
	},
}

func init() {
	rootCMD.AddCommand(apiCMD)
}
