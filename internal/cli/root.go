// Package cli implements the promoter command line tools.
package cli

import (
	"context"
	"fmt"
	"github.com/beldeveloper/gitflow-promoter/internal/app/config"
	"github.com/beldeveloper/gitflow-promoter/pkg/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"os"
)

// NewRootCmd creates the root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	v := config.NewViper()
	root := &cobra.Command{
		Use:           "promoter",
		Short:         "Branch-pattern promotion tools",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Set(v.GetBool("debug"))
			if v.GetBool("log.json") {
				logger.UseJSONLogging()
			}
		},
	}
	root.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	root.PersistentFlags().String("definitions", "", "path to the promotion definitions")
	_ = v.BindPFlag("debug", root.PersistentFlags().Lookup("verbose"))
	_ = v.BindPFlag("definitions", root.PersistentFlags().Lookup("definitions"))

	root.AddCommand(
		newEvaluateCmd(v),
		newMacroCmd(v),
		newCheckoutCmd(v),
		newBranchesCmd(v),
	)
	return root
}

// Execute runs the root command.
func Execute() {
	err := NewRootCmd().ExecuteContext(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadDefinitions(v *viper.Viper) (config.Definitions, error) {
	return config.LoadDefinitions(v.GetString("definitions"))
}
