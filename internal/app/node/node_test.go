package node

import (
	"context"
	"github.com/beldeveloper/gitflow-promoter/internal/app"
	"github.com/beldeveloper/gitflow-promoter/internal/app/errtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	goos "os"
	"os/exec"
	"path/filepath"
	"testing"
)

func TestRegistry(t *testing.T) {
	local := NewLocal("/tmp/ws", "", 0)
	r := NewRegistry(map[string]app.NodeSvc{app.DefaultNode: local})

	n, err := r.Node("")
	require.NoError(t, err)
	assert.Equal(t, local, n)

	_, err = r.Node("agent-7")
	assert.ErrorIs(t, err, errtype.ErrNotFound)
}

func TestLocalClear(t *testing.T) {
	root := t.TempDir()
	ws := filepath.Join(root, "qa-1")
	require.NoError(t, goos.MkdirAll(filepath.Join(ws, "stale", "dir"), 0755))
	require.NoError(t, goos.WriteFile(filepath.Join(ws, "stale.txt"), []byte("x"), 0644))

	n := NewLocal(app.WorkspacesDir(root), "", 0)
	_, err := n.Execute(context.Background(), app.NodeRequest{Op: app.NodeOpClear, Workspace: ws})
	require.NoError(t, err)

	entries, err := goos.ReadDir(ws)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLocalRejectsForeignWorkspace(t *testing.T) {
	root := t.TempDir()
	n := NewLocal(app.WorkspacesDir(root), "", 0)
	for _, ws := range []string{root, filepath.Dir(root), filepath.Join(root, "..", "etc")} {
		_, err := n.Execute(context.Background(), app.NodeRequest{Op: app.NodeOpClear, Workspace: ws})
		assert.ErrorIs(t, err, errtype.ErrBadInput, ws)
	}
}

func TestLocalUnknownOp(t *testing.T) {
	root := t.TempDir()
	n := NewLocal(app.WorkspacesDir(root), "", 0)
	_, err := n.Execute(context.Background(), app.NodeRequest{Op: "rm", Workspace: filepath.Join(root, "x")})
	assert.ErrorIs(t, err, errtype.ErrBadInput)
}

func TestLocalResolve(t *testing.T) {
	n := NewLocal("/tmp/ws", "definitely-not-a-git-binary", 0)
	_, err := n.Execute(context.Background(), app.NodeRequest{Op: app.NodeOpResolve})
	assert.ErrorIs(t, err, errtype.ErrExternalTool)
}

func TestLocalCheckout(t *testing.T) {
	git, err := exec.LookPath("git")
	if err != nil {
		t.Skip("git is not installed")
	}
	ctx := context.Background()
	root := t.TempDir()
	origin := filepath.Join(root, "origin")
	require.NoError(t, goos.MkdirAll(origin, 0755))
	run := func(args ...string) string {
		cmd := exec.Command(git, args...)
		cmd.Dir = origin
		cmd.Env = append(goos.Environ(),
			"GIT_AUTHOR_NAME=t", "GIT_AUTHOR_EMAIL=t@example.com",
			"GIT_COMMITTER_NAME=t", "GIT_COMMITTER_EMAIL=t@example.com",
		)
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, string(out))
		return string(out)
	}
	run("init", "-q")
	run("checkout", "-q", "-b", "release/1.0")
	require.NoError(t, goos.WriteFile(filepath.Join(origin, "version.txt"), []byte("1.0.0"), 0644))
	run("add", "version.txt")
	run("commit", "-q", "-m", "first")
	first := run("rev-parse", "HEAD")
	require.NoError(t, goos.WriteFile(filepath.Join(origin, "version.txt"), []byte("1.0.1"), 0644))
	run("commit", "-q", "-am", "second")

	wsRoot := filepath.Join(root, "workspaces")
	n := NewLocal(app.WorkspacesDir(wsRoot), app.GitExe(git), 0)

	ws := filepath.Join(wsRoot, "qa-1")
	_, err = n.Execute(ctx, app.NodeRequest{Op: app.NodeOpClear, Workspace: ws})
	require.NoError(t, err)
	_, err = n.Execute(ctx, app.NodeRequest{Op: app.NodeOpCheckout, Workspace: ws, Branch: "release/1.0", RepositoryURL: origin})
	require.NoError(t, err)
	v, err := goos.ReadFile(filepath.Join(ws, "version.txt"))
	require.NoError(t, err)
	assert.Equal(t, "1.0.1", string(v))

	pinned := filepath.Join(wsRoot, "qa-2")
	_, err = n.Execute(ctx, app.NodeRequest{Op: app.NodeOpClear, Workspace: pinned})
	require.NoError(t, err)
	_, err = n.Execute(ctx, app.NodeRequest{
		Op:            app.NodeOpCheckout,
		Workspace:     pinned,
		Branch:        "release/1.0",
		Commit:        first[:len(first)-1],
		RepositoryURL: origin,
	})
	require.NoError(t, err)
	v, err = goos.ReadFile(filepath.Join(pinned, "version.txt"))
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", string(v))

	missing := filepath.Join(wsRoot, "qa-3")
	_, err = n.Execute(ctx, app.NodeRequest{Op: app.NodeOpClear, Workspace: missing})
	require.NoError(t, err)
	_, err = n.Execute(ctx, app.NodeRequest{Op: app.NodeOpCheckout, Workspace: missing, Branch: "release/9.9", RepositoryURL: origin})
	assert.ErrorIs(t, err, errtype.ErrExternalTool)

	marker := filepath.Join(root, "upload-pack-ran")
	hostile := filepath.Join(wsRoot, "qa-4")
	_, err = n.Execute(ctx, app.NodeRequest{Op: app.NodeOpClear, Workspace: hostile})
	require.NoError(t, err)
	_, err = n.Execute(ctx, app.NodeRequest{
		Op:            app.NodeOpCheckout,
		Workspace:     hostile,
		Branch:        "release/1.0",
		RepositoryURL: "--upload-pack=touch " + marker,
	})
	assert.ErrorIs(t, err, errtype.ErrExternalTool)
	assert.NoFileExists(t, marker)

	_, err = n.RemoteBranches(ctx, "--upload-pack=touch "+marker)
	assert.ErrorIs(t, err, errtype.ErrExternalTool)
	assert.NoFileExists(t, marker)
}

func TestLocalCheckoutRejectsOptionCommit(t *testing.T) {
	root := t.TempDir()
	n := NewLocal(app.WorkspacesDir(root), "", 0)
	_, err := n.Execute(context.Background(), app.NodeRequest{
		Op:            app.NodeOpCheckout,
		Workspace:     filepath.Join(root, "qa-1"),
		Branch:        "release/1.0",
		Commit:        "--hard",
		RepositoryURL: "https://git.example.com/lib.git",
	})
	assert.ErrorIs(t, err, errtype.ErrBadInput)
}

func TestParseRemoteHeads(t *testing.T) {
	out := "3f1c0a9e\trefs/heads/develop\n" +
		"9ab00c1d\trefs/heads/release/1.0\n" +
		"77aa0011\trefs/tags/v1.0\n" +
		"warning: redirecting\n\n"
	assert.Equal(t, []app.RemoteBranch{
		{Name: "develop", Hash: "3f1c0a9e"},
		{Name: "release/1.0", Hash: "9ab00c1d"},
	}, parseRemoteHeads(out))
	assert.Empty(t, parseRemoteHeads(""))
}
