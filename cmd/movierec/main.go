package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rushteam/movierec/pkg/log"
)

var rootCommand = &cobra.Command{
	Use:   "movierec",
	Short: "Movie recommendation engine",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		debug, _ := cmd.Flags().GetBool("debug")
		log.SetLogger(cmd.Flags(), debug)
	},
}

func init() {
	flags := rootCommand.PersistentFlags()
	flags.StringP("config", "c", "", "path of YAML config file")
	flags.String("snapshot", "", "path of JSON snapshot (overrides data.snapshot)")
	flags.String("store", "", "store address, memory or redis://... (overrides data.store)")
	flags.Bool("debug", false, "use debug log mode")
	flags.Bool("json", false, "print results as JSON")
	log.AddFlags(flags)
}

func main() {
	if err := rootCommand.Execute(); err != nil {
		log.Logger().Error("command failed", zap.Error(err))
		os.Exit(1)
	}
}
