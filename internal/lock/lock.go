// Package lock serializes writers of the same inventory identity.
package lock

import (
	"context"
	"errors"
	"sort"
)

var ErrNotObtained = errors.New("lock: could not obtain lock")

// Locker acquires every key or none. The returned unlock releases them all.
type Locker interface {
	Lock(ctx context.Context, keys ...string) (unlock func(), err error)
}

// normalize sorts and dedups keys so concurrent callers take them in one global order.
func normalize(keys []string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
