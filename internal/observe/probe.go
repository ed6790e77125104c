package observe

import (
	"context"
	"net/http"
	"os"
	"time"
)

// SourceResolvable reports whether the project source root exists on disk.
// An empty path means no source was offered at all.
func SourceResolvable(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// URLReachable probes the target with a HEAD request. Any HTTP response
// counts as reachable; only transport-level failure does not.
func URLReachable(ctx context.Context, url string) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return true
}
