package node

import (
	"context"
	"fmt"
	"github.com/beldeveloper/gitflow-promoter/internal/app"
	"github.com/beldeveloper/gitflow-promoter/internal/app/errtype"
	"github.com/beldeveloper/gitflow-promoter/pkg/os"
	"github.com/beldeveloper/go-errors-context"
	"regexp"
	"strings"
)

var remoteHeadRx = regexp.MustCompile(`^([a-f0-9]+)\s+refs/heads/(.*)$`)

// RemoteBranches returns the branch heads of the remote repository.
func (n Local) RemoteBranches(ctx context.Context, url string) ([]app.RemoteBranch, error) {
	out, err := os.Exec(ctx, os.Cmd{
		Name:    n.gitExe,
		Args:    []string{"ls-remote", "--heads", "--", url},
		Timeout: n.timeout,
	})
	if err != nil {
		return nil, errors.WrapContext(fmt.Errorf("%w: %v", errtype.ErrExternalTool, err), errors.Context{
			Path:   "node.Local.RemoteBranches.ls",
			Params: errors.Params{"url": url},
		})
	}
	return parseRemoteHeads(out), nil
}

func parseRemoteHeads(out string) []app.RemoteBranch {
	rows := strings.Split(out, "\n")
	res := make([]app.RemoteBranch, 0, len(rows))
	for _, r := range rows {
		m := remoteHeadRx.FindStringSubmatch(strings.TrimSpace(r))
		if len(m) < 3 {
			continue
		}
		res = append(res, app.RemoteBranch{Name: m[2], Hash: m[1]})
	}
	return res
}
