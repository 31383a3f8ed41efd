package app

import (
	"context"
	"io"
)

// WorkspacesDir is a data type for storing the workspaces' root directory, used for DI.
type WorkspacesDir string

// GitExe is a data type for storing the configured git executable, used for DI.
type GitExe string

const (
	// NodeOpClear deletes the workspace contents.
	NodeOpClear = "clear"
	// NodeOpResolve resolves the version control executable.
	NodeOpResolve = "resolve"
	// NodeOpCheckout checks the branch out into the workspace.
	NodeOpCheckout = "checkout"
)

// Workspace is a directory owned by a specific node.
type Workspace struct {
	Node string `json:"node"`
	Path string `json:"path"`
}

// CheckoutRequest is the typed payload passed from the gate to the checkout.
type CheckoutRequest struct {
	Branch        string    `json:"branch"`
	Commit        string    `json:"commit,omitempty"`
	RepositoryURL string    `json:"repositoryUrl"`
	SCM           string    `json:"scm"`
	Workspace     Workspace `json:"workspace"`
}

// NodeRequest is an operation executed on the node that owns the workspace.
type NodeRequest struct {
	Op            string `json:"op"`
	Workspace     string `json:"workspace"`
	Executable    string `json:"executable,omitempty"`
	Branch        string `json:"branch,omitempty"`
	Commit        string `json:"commit,omitempty"`
	RepositoryURL string `json:"repositoryUrl,omitempty"`
}

// NodeResponse is the result of the node operation.
type NodeResponse struct {
	Executable string `json:"executable,omitempty"`
	Output     string `json:"output,omitempty"`
}

// CheckoutSvc describes the promoted checkout.
type CheckoutSvc interface {
	Run(ctx context.Context, req CheckoutRequest, console io.Writer) error
}

// NodeSvc describes a node that executes workspace operations.
type NodeSvc interface {
	Execute(ctx context.Context, req NodeRequest) (NodeResponse, error)
}

// NodeRegistry describes the lookup of the nodes by name.
type NodeRegistry interface {
	Node(name string) (NodeSvc, error)
}

// RemoteBranch is a branch head advertised by the remote repository.
type RemoteBranch struct {
	Name string `json:"name"`
	Hash string `json:"hash"`
}
