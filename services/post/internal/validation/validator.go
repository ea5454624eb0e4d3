package validation

import (
	"context"
	"fmt"

	"snappoint/services/post/internal/entity"
	"snappoint/services/post/internal/repo/persistent"
)

// FileLookup resolves file IDs to live files.
type FileLookup interface {
	FindFilesByIDs(ctx context.Context, ids []string) ([]entity.File, error)
}

// ValidateLookupArea rejects malformed boxes and boxes whose diagonal exceeds
// MaxLookupDiagonalKm.
func ValidateLookupArea(area entity.BBox) error {
	if !validLatitude(area.LatitudeMin) || !validLatitude(area.LatitudeMax) {
		return entity.NewValidationError("latitude", "must be between -90 and 90")
	}
	if !validLongitude(area.LongitudeMin) || !validLongitude(area.LongitudeMax) {
		return entity.NewValidationError("longitude", "must be between -180 and 180")
	}
	if area.LatitudeMin > area.LatitudeMax {
		return entity.NewValidationError("latitudeMin", "must not be greater than latitudeMax")
	}
	if area.LongitudeMin > area.LongitudeMax {
		return entity.NewValidationError("longitudeMin", "must not be greater than longitudeMax")
	}

	distance := HaversineKm(area.LatitudeMin, area.LongitudeMin, area.LatitudeMax, area.LongitudeMax)
	if distance > MaxLookupDiagonalKm {
		return &entity.RangeError{Field: "area", Limit: MaxLookupDiagonalKm, Actual: distance}
	}
	return nil
}

// ValidateBlocks checks the per-type rules. A file belongs to a block when its
// attachment points at the block's ID.
func ValidateBlocks(blocks []entity.Block, files []entity.File) error {
	counts := make(map[string]int, len(blocks))
	for _, f := range files {
		if id := f.BlockID(); id != "" {
			counts[id]++
		}
	}

	for i, block := range blocks {
		field := fmt.Sprintf("blocks[%d]", i)
		switch block.Type {
		case entity.BlockTypeText:
			if block.HasCoordinates() {
				return entity.NewValidationError(field, "text block cannot have coordinates")
			}
			if counts[block.ID] > 0 {
				return entity.NewValidationError(field, "text block cannot have files")
			}
		case entity.BlockTypeMedia:
			if block.Latitude == nil || block.Longitude == nil {
				return entity.NewValidationError(field, "media block requires latitude and longitude")
			}
			if !validLatitude(*block.Latitude) || !validLongitude(*block.Longitude) {
				return entity.NewValidationError(field, "media block coordinates are out of range")
			}
			if counts[block.ID] == 0 {
				return entity.NewValidationError(field, "media block requires at least one file")
			}
		default:
			return entity.NewValidationError(field, "unknown block type %q", block.Type)
		}
	}
	return nil
}

type Validator struct {
	posts  persistent.PostRepository
	blocks persistent.BlockRepository
	files  FileLookup
}

func NewValidator(posts persistent.PostRepository, blocks persistent.BlockRepository, files FileLookup) *Validator {
	return &Validator{posts: posts, blocks: blocks, files: files}
}

// ValidateFiles checks that every referenced file exists, is live and is owned by
// userID, and that it is unattached or attached to a block of postID. postID is
// empty for a post that does not exist yet.
func (v *Validator) ValidateFiles(ctx context.Context, files []entity.File, userID, postID string) error {
	if len(files) == 0 {
		return nil
	}

	ids := make([]string, len(files))
	for i, f := range files {
		ids[i] = f.ID
	}

	found, err := v.files.FindFilesByIDs(ctx, ids)
	if err != nil {
		return entity.NewInternalError("validate files", err)
	}

	byID := make(map[string]entity.File, len(found))
	for _, f := range found {
		byID[f.ID] = f
	}
	for _, id := range ids {
		f, ok := byID[id]
		if !ok {
			return &entity.NotFoundError{Resource: "file", ID: id}
		}
		if f.UserID != userID {
			return &entity.ForbiddenError{Resource: "file", ID: id}
		}
	}

	own, err := v.postBlockIDs(ctx, postID)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if blockID := byID[id].BlockID(); blockID != "" && !own[blockID] {
			return entity.NewValidationError("files", "file %s is attached to another post", id)
		}
	}
	return nil
}

// postBlockIDs returns the IDs of every block of postID, deleted ones included.
func (v *Validator) postBlockIDs(ctx context.Context, postID string) (map[string]bool, error) {
	own := make(map[string]bool)
	if postID == "" {
		return own, nil
	}
	blocks, err := v.blocks.FindMany(ctx, persistent.BlockFilter{PostIDs: []string{postID}}, persistent.AnyState, persistent.NoPagination)
	if err != nil {
		return nil, entity.NewInternalError("validate files", err)
	}
	for _, b := range blocks {
		own[b.ID] = true
	}
	return own, nil
}

// ValidatePost returns the live post when userID owns it.
func (v *Validator) ValidatePost(ctx context.Context, postID, userID string) (*entity.Post, error) {
	post, err := v.posts.FindOne(ctx, persistent.PostFilter{IDs: []string{postID}}, persistent.LiveOnly)
	if err != nil {
		if entity.IsNotFound(err) {
			return nil, &entity.NotFoundError{Resource: "post", ID: postID}
		}
		return nil, entity.NewInternalError("validate post", err)
	}
	if post.UserID != userID {
		return nil, &entity.ForbiddenError{Resource: "post", ID: postID}
	}
	return post, nil
}

// ValidateModifyBlocks applies ValidateBlocks and rejects block IDs that already
// belong to another post.
func (v *Validator) ValidateModifyBlocks(ctx context.Context, postID string, blocks []entity.Block, files []entity.File) error {
	if err := ValidateBlocks(blocks, files); err != nil {
		return err
	}
	if len(blocks) == 0 {
		return nil
	}

	ids := make([]string, len(blocks))
	for i, b := range blocks {
		ids[i] = b.ID
	}

	existing, err := v.blocks.FindMany(ctx, persistent.BlockFilter{IDs: ids}, persistent.AnyState, persistent.NoPagination)
	if err != nil {
		return entity.NewInternalError("validate blocks", err)
	}
	for _, b := range existing {
		if b.PostID != postID {
			return entity.NewValidationError("blocks", "block %s belongs to another post", b.ID)
		}
	}
	return nil
}
