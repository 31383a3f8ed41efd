package svc

import (
	"context"
	"fmt"
	"github.com/beldeveloper/gitflow-promoter/internal/app"
	"github.com/beldeveloper/gitflow-promoter/internal/app/errtype"
	"github.com/beldeveloper/go-errors-context"
	"github.com/rs/zerolog/log"
	"io"
	"strings"
)

// NewCheckout creates a new instance of the promoted checkout.
func NewCheckout(nodes app.NodeRegistry) app.CheckoutSvc {
	return Checkout{nodes: nodes}
}

// Checkout checks the promoted branch out into a clean workspace.
type Checkout struct {
	nodes app.NodeRegistry
}

// Run validates the request, clears the workspace, resolves git and checks the branch out.
// Every step is reported to the console; nothing is mutated if the request is invalid.
func (s Checkout) Run(ctx context.Context, req app.CheckoutRequest, console io.Writer) error {
	if strings.TrimSpace(req.Branch) == "" {
		s.print(console, "Promoted branch is not present")
		return errors.WrapContext(errtype.ErrMissingBranchVariable, errors.Context{Path: "svc.Checkout.Run.validate"})
	}
	if req.SCM != app.SCMGit {
		s.print(console, "Promoted build does not use the git SCM!")
		log.Error().Str("scm", req.SCM).Str("branch", req.Branch).Msg("Promoted build does not use the git SCM")
		return errors.WrapContext(errtype.ErrUnsupportedSCM, errors.Context{
			Path:   "svc.Checkout.Run.validate",
			Params: errors.Params{"scm": req.SCM},
		})
	}
	node, err := s.nodes.Node(req.Workspace.Node)
	if err != nil {
		s.print(console, "Unknown node %q", req.Workspace.Node)
		return errors.WrapContext(err, errors.Context{
			Path:   "svc.Checkout.Run.Node",
			Params: errors.Params{"node": req.Workspace.Node},
		})
	}
	path := req.Workspace.Path

	s.print(console, "Clearing workspace at %s", path)
	_, err = node.Execute(ctx, app.NodeRequest{Op: app.NodeOpClear, Workspace: path})
	if err != nil {
		s.print(console, "Could not clear the workspace: %v", err)
		return errors.WrapContext(err, errors.Context{
			Path:   "svc.Checkout.Run.clear",
			Params: errors.Params{"workspace": path},
		})
	}

	exe, err := node.Execute(ctx, app.NodeRequest{Op: app.NodeOpResolve, Workspace: path})
	if err != nil {
		s.print(console, "Could not resolve git: %v", err)
		return errors.WrapContext(err, errors.Context{
			Path:   "svc.Checkout.Run.resolve",
			Params: errors.Params{"node": req.Workspace.Node},
		})
	}

	s.print(console, "Checking out %s into %s", req.Branch, path)
	res, err := node.Execute(ctx, app.NodeRequest{
		Op:            app.NodeOpCheckout,
		Workspace:     path,
		Executable:    exe.Executable,
		Branch:        req.Branch,
		Commit:        req.Commit,
		RepositoryURL: req.RepositoryURL,
	})
	if res.Output != "" {
		s.print(console, "%s", strings.TrimRight(res.Output, "\n"))
	}
	if err != nil {
		s.print(console, "Checkout failed: %v", err)
		return errors.WrapContext(err, errors.Context{
			Path:   "svc.Checkout.Run.checkout",
			Params: errors.Params{"branch": req.Branch, "workspace": path},
		})
	}

	s.print(console, "Complete")
	return nil
}

func (s Checkout) print(console io.Writer, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	log.Info().Msg(msg)
	if console == nil {
		return
	}
	if _, err := fmt.Fprintln(console, msg); err != nil {
		log.Error().Err(err).Msg("svc.Checkout.print: write console")
	}
}
