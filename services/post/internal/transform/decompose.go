package transform

import (
	"fmt"
	"strings"

	"snappoint/services/post/internal/entity"

	"github.com/google/uuid"
)

// Decomposed is a write request flattened into repository rows.
type Decomposed struct {
	Post   entity.Post
	Blocks []entity.Block
	Files  []entity.File
}

// BlockIDs returns the block IDs in order.
func (d Decomposed) BlockIDs() []string {
	ids := make([]string, len(d.Blocks))
	for i, b := range d.Blocks {
		ids[i] = b.ID
	}
	return ids
}

// DecomposePostData flattens input. A new post ID is generated when existingPostID
// is empty, and blocks without an ID get one. Block order is the input order.
func DecomposePostData(input entity.WritePostInput, userID, existingPostID string) (Decomposed, error) {
	if strings.TrimSpace(input.Title) == "" {
		return Decomposed{}, entity.NewValidationError("title", "is required")
	}

	postID := existingPostID
	if postID == "" {
		postID = uuid.New().String()
	}

	out := Decomposed{
		Post: entity.Post{
			ID:          postID,
			UserID:      userID,
			Title:       input.Title,
			Description: input.Description,
		},
		Blocks: make([]entity.Block, 0, len(input.Blocks)),
		Files:  []entity.File{},
	}

	seenBlocks := make(map[string]bool, len(input.Blocks))
	seenFiles := make(map[string]bool)
	for i, in := range input.Blocks {
		field := fmt.Sprintf("blocks[%d]", i)

		blockID := in.ID
		if blockID == "" {
			blockID = uuid.New().String()
		} else if _, err := uuid.Parse(blockID); err != nil {
			return Decomposed{}, entity.NewValidationError(field+".id", "must be a UUID")
		}
		if seenBlocks[blockID] {
			return Decomposed{}, entity.NewValidationError(field+".id", "duplicate block %s", blockID)
		}
		seenBlocks[blockID] = true

		out.Blocks = append(out.Blocks, entity.Block{
			ID:        blockID,
			PostID:    postID,
			Type:      in.Type,
			Order:     i,
			Latitude:  in.Latitude,
			Longitude: in.Longitude,
			Content:   in.Content,
		})

		for j, ref := range in.Files {
			if ref.ID == "" {
				return Decomposed{}, entity.NewValidationError(fmt.Sprintf("%s.files[%d]", field, j), "id is required")
			}
			if seenFiles[ref.ID] {
				return Decomposed{}, entity.NewValidationError(fmt.Sprintf("%s.files[%d]", field, j), "file %s is referenced twice", ref.ID)
			}
			seenFiles[ref.ID] = true

			out.Files = append(out.Files, entity.File{
				ID:         ref.ID,
				UserID:     userID,
				Attachment: entity.BlockAttachment{BlockID: blockID},
			})
		}
	}

	return out, nil
}
