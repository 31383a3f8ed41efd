package cli

import (
	"github.com/beldeveloper/gitflow-promoter/internal/app"
	"github.com/beldeveloper/gitflow-promoter/internal/app/config"
	"github.com/beldeveloper/gitflow-promoter/internal/app/node"
	"github.com/beldeveloper/gitflow-promoter/internal/app/svc"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"path/filepath"
)

func newCheckoutCmd(v *viper.Viper) *cobra.Command {
	var req app.CheckoutRequest
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Check the promoted branch out into a fresh workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := config.Load(v)
			if req.Workspace.Path == "" {
				req.Workspace.Path = filepath.Join(s.WorkspacesDir, "checkout-"+uuid.NewString())
			}
			req.Workspace.Node = app.DefaultNode
			local := node.NewLocal(app.WorkspacesDir(s.WorkspacesDir), app.GitExe(s.GitExe), s.CheckoutTimeout)
			registry := node.NewRegistry(map[string]app.NodeSvc{app.DefaultNode: local})
			return svc.NewCheckout(registry).Run(cmd.Context(), req, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&req.Branch, "branch", "", "promoted branch")
	cmd.Flags().StringVar(&req.Commit, "commit", "", "commit to pin the workspace to")
	cmd.Flags().StringVar(&req.RepositoryURL, "repo", "", "repository URL")
	cmd.Flags().StringVar(&req.SCM, "scm", app.SCMGit, "source control kind of the build")
	cmd.Flags().StringVar(&req.Workspace.Path, "workspace", "", "workspace directory inside the workspaces root")
	_ = cmd.MarkFlagRequired("repo")
	return cmd
}
