package usecase

import (
	"context"

	"snappoint/services/post/internal/entity"
)

// FileService is the file/upload service contract. The local implementation joins
// the caller's transaction; the queue client does not.
type FileService interface {
	FindFilesByIDs(ctx context.Context, ids []string) ([]entity.File, error)
	FindAttachFiles(ctx context.Context, blockIDs []string) ([]entity.File, error)
	AttachFiles(ctx context.Context, files []entity.File) error
	DeleteAttachFiles(ctx context.Context, blockIDs []string) error
	DeleteFiles(ctx context.Context, ids []string) error
}

type SummaryPublisher interface {
	PublishPost(ctx context.Context, post entity.Post, blocks []entity.Block) error
}

type PostUseCase interface {
	FindPost(ctx context.Context, postID string, detail bool) (*entity.PostView, error)
	FindNearbyPosts(ctx context.Context, area entity.BBox) ([]entity.PostView, error)
	WritePost(ctx context.Context, input entity.WritePostInput, userID string) (*entity.PostView, error)
	ModifyPost(ctx context.Context, postID string, input entity.WritePostInput, userID string) (*entity.PostView, error)
	DeletePost(ctx context.Context, postID, userID string) (*entity.PostView, error)

	// FindEntireBlocksWithPost returns the live blocks of each post, aligned with postIDs.
	FindEntireBlocksWithPost(ctx context.Context, postIDs []string) ([][]entity.Block, error)
	// FindEntireFilesWithBlocks returns the live files of each block, aligned with blockIDs.
	FindEntireFilesWithBlocks(ctx context.Context, blockIDs []string) ([][]entity.File, error)
}
