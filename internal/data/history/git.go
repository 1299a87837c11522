package history

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"
)

// ResolveGitMetadata returns the HEAD commit of the repository containing
// root. Both values are zero when root is not inside a git work tree.
func ResolveGitMetadata(ctx context.Context, root string) (string, time.Time) {
	hash := git(ctx, root, "rev-parse", "--short=12", "HEAD")
	if hash == "" {
		return "", time.Time{}
	}
	committed, err := time.Parse(time.RFC3339, git(ctx, root, "show", "-s", "--format=%cI", "HEAD"))
	if err != nil {
		return hash, time.Time{}
	}
	return hash, committed.UTC()
}

func git(ctx context.Context, dir string, args ...string) string {
	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", dir}, args...)...)
	cmd.Stdout = &out
	if cmd.Run() != nil {
		return ""
	}
	return strings.TrimSpace(out.String())
}
