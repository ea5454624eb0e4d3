package persistent

import (
	"errors"
	"strings"
)

// ErrUnboundedDelete guards bulk soft deletes issued with an empty filter.
var ErrUnboundedDelete = errors.New("bulk delete requires a filter")

// nonEmpty keeps "IN ?" valid for an empty list; the sentinel matches no UUID.
func nonEmpty(ids []string) []string {
	if len(ids) == 0 {
		return []string{""}
	}
	return ids
}

func describeIDs(ids []string) string {
	return strings.Join(ids, ",")
}
