package cli

import (
	"bytes"
	"github.com/beldeveloper/gitflow-promoter/internal/app/errtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

const definitions = `
jobs:
  - name: platform
    rootModule: com.x:core
    promotions:
      - name: qa
        patterns: "release/*, hotfix/*"
      - name: nightly
        patterns: "develop"
        evenIfUnstable: true
`

const buildEvent = `{
  "job": "platform",
  "number": 12,
  "outcome": "SUCCESS",
  "branch": "release/2.0",
  "modules": [
    {"groupId": "com.x", "artifactId": "parent", "version": "2.0.0"},
    {"groupId": "com.x", "artifactId": "core", "version": "2.0.1"}
  ]
}`

func writeFile(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestEvaluateCmd(t *testing.T) {
	defs := writeFile(t, "promotions.yml", definitions)

	out, err := run(t, "evaluate", "--definitions", defs, "--job", "platform", "--branch", "release/2.0")
	require.NoError(t, err)
	assert.Equal(t, "qa\tpromoted\trelease/2.0\trelease/*\nnightly\tskipped\n", out)

	out, err = run(t, "evaluate", "--definitions", defs, "--job", "platform", "--branch", "develop", "--outcome", "unstable")
	require.NoError(t, err)
	assert.Equal(t, "qa\tskipped\nnightly\tpromoted\tdevelop\tdevelop\n", out)

	out, err = run(t, "evaluate", "--definitions", defs, "--job", "platform")
	require.NoError(t, err)
	assert.Equal(t, "qa\tskipped\nnightly\tskipped\n", out)

	_, err = run(t, "evaluate", "--definitions", defs, "--job", "other")
	assert.ErrorIs(t, err, errtype.ErrNotFound)
}

func TestMacroCmd(t *testing.T) {
	defs := writeFile(t, "promotions.yml", definitions)
	build := writeFile(t, "build.json", buildEvent)

	out, err := run(t, "macro", "--definitions", defs, "--build", build, "POM_ARTIFACTID", "POM_VERSION")
	require.NoError(t, err)
	assert.Equal(t, "POM_ARTIFACTID=core\nPOM_VERSION=2.0.1\n", out)

	out, err = run(t, "macro", "--build", build, "POM_VERSION")
	require.NoError(t, err)
	assert.Equal(t, "POM_VERSION=unknown\n", out)

	out, err = run(t, "macro", "--definitions", defs, "--build", build, "--expand", "core-${POM_VERSION}")
	require.NoError(t, err)
	assert.Equal(t, "core-2.0.1\n", out)

	_, err = run(t, "macro", "--build", build, "POM_NAME")
	assert.ErrorIs(t, err, errtype.ErrBadInput)
}

func TestCheckoutCmdPreconditions(t *testing.T) {
	t.Setenv("PROMOTER_WORKSPACES_DIR", t.TempDir())

	out, err := run(t, "checkout", "--repo", "https://git.example.com/lib.git")
	assert.ErrorIs(t, err, errtype.ErrMissingBranchVariable)
	assert.Contains(t, out, "Promoted branch is not present")

	out, err = run(t, "checkout", "--repo", "https://svn.example.com/lib", "--branch", "trunk", "--scm", "svn")
	assert.ErrorIs(t, err, errtype.ErrUnsupportedSCM)
	assert.Contains(t, out, "Promoted build does not use the git SCM!")
}

func TestBranchesCmd(t *testing.T) {
	git, err := exec.LookPath("git")
	if err != nil {
		t.Skip("git is not installed")
	}
	origin := t.TempDir()
	gitRun := func(args ...string) {
		cmd := exec.Command(git, args...)
		cmd.Dir = origin
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=t", "GIT_AUTHOR_EMAIL=t@example.com",
			"GIT_COMMITTER_NAME=t", "GIT_COMMITTER_EMAIL=t@example.com",
		)
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, string(out))
	}
	gitRun("init", "-q")
	gitRun("checkout", "-q", "-b", "develop")
	gitRun("commit", "-q", "--allow-empty", "-m", "init")
	gitRun("branch", "release/2.0")
	gitRun("branch", "feature/x")

	defs := writeFile(t, "promotions.yml", definitions)
	out, err := run(t, "branches", "--definitions", defs, "--job", "platform", "--repo", origin)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Regexp(t, `^develop\t[0-9a-f]+\tnightly$`, lines[0])
	assert.Regexp(t, `^feature/x\t[0-9a-f]+$`, lines[1])
	assert.Regexp(t, `^release/2\.0\t[0-9a-f]+\tqa$`, lines[2])
}
