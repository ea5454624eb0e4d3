package transform

import "snappoint/services/post/internal/entity"

// SeparateFiles diffs the files currently attached to a post against the requested
// set, keyed by file ID. Requested files not already attached to the same block are
// returned for attaching; attached files missing from the request are returned for
// deletion.
func SeparateFiles(existing, requested []entity.File) (attach []entity.File, deleteIDs []string) {
	current := make(map[string]entity.File, len(existing))
	for _, f := range existing {
		current[f.ID] = f
	}

	wanted := make(map[string]bool, len(requested))
	attach = []entity.File{}
	for _, f := range requested {
		wanted[f.ID] = true
		if prev, ok := current[f.ID]; ok && prev.AttachedTo(f.BlockID()) {
			continue
		}
		attach = append(attach, f)
	}

	deleteIDs = []string{}
	for _, f := range existing {
		if !wanted[f.ID] {
			deleteIDs = append(deleteIDs, f.ID)
		}
	}
	return attach, deleteIDs
}
