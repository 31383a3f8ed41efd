package node

import (
	"context"
	"fmt"
	"github.com/beldeveloper/gitflow-promoter/internal/app"
	"github.com/beldeveloper/gitflow-promoter/internal/app/errtype"
	"github.com/beldeveloper/gitflow-promoter/pkg/os"
	"github.com/beldeveloper/go-errors-context"
	"strings"
	"time"
)

// NewLocal creates a new instance of the node that owns the workspaces on this machine.
func NewLocal(root app.WorkspacesDir, gitExe app.GitExe, timeout time.Duration) Local {
	exe := string(gitExe)
	if exe == "" {
		exe = "git"
	}
	return Local{
		root:    strings.TrimRight(string(root), "/"),
		gitExe:  exe,
		timeout: timeout,
	}
}

// Local executes the workspace operations on this machine.
type Local struct {
	root    string
	gitExe  string
	timeout time.Duration
}

// Execute runs the operation; the workspace must be located inside the workspaces root.
func (n Local) Execute(ctx context.Context, req app.NodeRequest) (app.NodeResponse, error) {
	if req.Op != app.NodeOpResolve && !os.Within(n.root, req.Workspace) {
		return app.NodeResponse{}, errors.WrapContext(
			fmt.Errorf("%w: workspace %s is outside of %s", errtype.ErrBadInput, req.Workspace, n.root),
			errors.Context{Path: "node.Local.Execute", Params: errors.Params{"op": req.Op}},
		)
	}
	switch req.Op {
	case app.NodeOpClear:
		return n.clear(req)
	case app.NodeOpResolve:
		return n.resolve()
	case app.NodeOpCheckout:
		return n.checkout(ctx, req)
	}
	return app.NodeResponse{}, errors.WrapContext(
		fmt.Errorf("%w: unknown node operation %q", errtype.ErrBadInput, req.Op),
		errors.Context{Path: "node.Local.Execute"},
	)
}

func (n Local) clear(req app.NodeRequest) (app.NodeResponse, error) {
	err := os.ClearDir(req.Workspace)
	return app.NodeResponse{}, errors.WrapContext(err, errors.Context{
		Path:   "node.Local.clear",
		Params: errors.Params{"workspace": req.Workspace},
	})
}

func (n Local) resolve() (app.NodeResponse, error) {
	exe, err := os.LookPath(n.gitExe)
	if err != nil {
		return app.NodeResponse{}, errors.WrapContext(fmt.Errorf("%w: %v", errtype.ErrExternalTool, err), errors.Context{
			Path:   "node.Local.resolve",
			Params: errors.Params{"gitExe": n.gitExe},
		})
	}
	return app.NodeResponse{Executable: exe}, nil
}

// checkout clones the branch tip into the cleared workspace, and resets it to the commit if one is pinned.
func (n Local) checkout(ctx context.Context, req app.NodeRequest) (app.NodeResponse, error) {
	exe := req.Executable
	if exe == "" {
		exe = n.gitExe
	}
	if req.Branch == "" {
		return app.NodeResponse{}, errors.WrapContext(errtype.ErrMissingBranchVariable, errors.Context{Path: "node.Local.checkout"})
	}
	if strings.HasPrefix(req.Commit, "-") {
		return app.NodeResponse{}, errors.WrapContext(
			fmt.Errorf("%w: invalid commit %q", errtype.ErrBadInput, req.Commit),
			errors.Context{Path: "node.Local.checkout"},
		)
	}
	out, err := os.Exec(ctx, os.Cmd{
		Name:    exe,
		Args:    []string{"clone", "--branch", req.Branch, "--single-branch", "--", req.RepositoryURL, "."},
		Dir:     req.Workspace,
		Log:     true,
		Timeout: n.timeout,
	})
	if err != nil {
		return app.NodeResponse{Output: out}, errors.WrapContext(fmt.Errorf("%w: %v", errtype.ErrExternalTool, err), errors.Context{
			Path:   "node.Local.checkout.clone",
			Params: errors.Params{"branch": req.Branch, "workspace": req.Workspace},
		})
	}
	if req.Commit == "" {
		return app.NodeResponse{Output: out}, nil
	}
	reset, err := os.Exec(ctx, os.Cmd{
		Name:    exe,
		Args:    []string{"reset", "--hard", req.Commit},
		Dir:     req.Workspace,
		Log:     true,
		Timeout: n.timeout,
	})
	out += reset
	if err != nil {
		return app.NodeResponse{Output: out}, errors.WrapContext(fmt.Errorf("%w: %v", errtype.ErrExternalTool, err), errors.Context{
			Path:   "node.Local.checkout.reset",
			Params: errors.Params{"commit": req.Commit, "workspace": req.Workspace},
		})
	}
	return app.NodeResponse{Output: out}, nil
}
