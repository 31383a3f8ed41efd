package cli

import (
	"fmt"
	"github.com/beldeveloper/gitflow-promoter/internal/app"
	"github.com/beldeveloper/gitflow-promoter/internal/app/config"
	"github.com/beldeveloper/gitflow-promoter/internal/app/node"
	"github.com/beldeveloper/gitflow-promoter/internal/app/svc"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newBranchesCmd(v *viper.Viper) *cobra.Command {
	var (
		job string
		url string
	)
	cmd := &cobra.Command{
		Use:   "branches",
		Short: "List the remote branches and the promotion processes a stable build of each would pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			defs, err := loadDefinitions(v)
			if err != nil {
				return err
			}
			j, err := defs.FindByName(cmd.Context(), job)
			if err != nil {
				return err
			}
			s := config.Load(v)
			local := node.NewLocal(app.WorkspacesDir(s.WorkspacesDir), app.GitExe(s.GitExe), s.CheckoutTimeout)
			branches, err := local.RemoteBranches(cmd.Context(), url)
			if err != nil {
				return err
			}
			printBranches(cmd, j, branches)
			return nil
		},
	}
	cmd.Flags().StringVar(&job, "job", "", "job name")
	cmd.Flags().StringVar(&url, "repo", "", "repository URL")
	_ = cmd.MarkFlagRequired("job")
	_ = cmd.MarkFlagRequired("repo")
	return cmd
}

func printBranches(cmd *cobra.Command, j app.Job, branches []app.RemoteBranch) {
	gate := svc.NewGate()
	out := cmd.OutOrStdout()
	for _, b := range branches {
		name := b.Name
		fmt.Fprintf(out, "%s\t%s", name, b.Hash)
		for _, p := range j.Processes {
			d := gate.Evaluate(app.OutcomeSuccess, p.Patterns.IncludeUnstable, &name, p.Patterns.Patterns)
			if d.Matched {
				fmt.Fprintf(out, "\t%s", p.Name)
			}
		}
		fmt.Fprintln(out)
	}
}
