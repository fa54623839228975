package internal

import (
	"github.com/spf13/cobra"
	"github.com/timvideos/fwfetch/internal/middleware"
)

var defaultCommands = []middleware.CommandFactory{
	middleware.UseMiddlewareChain(middleware.LoadConfig, middleware.OpenStore)(NewRevisionsCmd),
	middleware.UseMiddlewareChain(middleware.LoadConfig, middleware.OpenStore)(NewChannelsCmd),
	NewCacheCmd,
	NewConfigCmd,
}

func RegisterSubCommands(cmd *cobra.Command) {
	for _, factory := range defaultCommands {
		cmd.AddCommand(factory())
	}
}
