package usecase

import (
	"context"

	"snappoint/pkg/cache"
	"snappoint/services/post/internal/entity"
	"snappoint/services/post/internal/repo/persistent"
	"snappoint/services/post/internal/transform"
	"snappoint/services/post/internal/validation"

	"golang.org/x/sync/errgroup"
)

func (uc *postUseCase) WritePost(ctx context.Context, input entity.WritePostInput, userID string) (*entity.PostView, error) {
	d, err := transform.DecomposePostData(input, userID, "")
	if err != nil {
		return nil, err
	}

	var author *entity.User
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return validation.ValidateBlocks(d.Blocks, d.Files) })
	g.Go(func() error { return uc.validator.ValidateFiles(gctx, d.Files, userID, "") })
	g.Go(func() error {
		var err error
		author, err = uc.findAuthor(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var attached []entity.File
	err = uc.tx.Transaction(ctx, func(ctx context.Context) error {
		if err := uc.postRepo.Create(ctx, &d.Post); err != nil {
			return err
		}
		if err := uc.blockRepo.CreateMany(ctx, d.Blocks); err != nil {
			return err
		}
		if err := uc.files.AttachFiles(ctx, d.Files); err != nil {
			return err
		}
		var err error
		attached, err = uc.files.FindAttachFiles(ctx, d.BlockIDs())
		return err
	})
	if err != nil {
		return nil, wrap("write post", err)
	}

	keys := []string{cache.BlockKey(d.Post.ID)}
	for _, id := range d.BlockIDs() {
		keys = append(keys, cache.FileKey(id))
	}
	uc.invalidate(ctx, keys)
	uc.publishSummary(ctx, d.Post, d.Blocks)

	uc.logger.Info("[POST] Created post %s with %d blocks and %d files", d.Post.ID, len(d.Blocks), len(attached))
	view := transform.AssemblePost(d.Post, *author, d.Blocks, attached)
	return &view, nil
}

func (uc *postUseCase) ModifyPost(ctx context.Context, postID string, input entity.WritePostInput, userID string) (*entity.PostView, error) {
	// Ownership first: a stranger gets 403 whatever the payload.
	if _, err := uc.validator.ValidatePost(ctx, postID, userID); err != nil {
		return nil, err
	}

	d, err := transform.DecomposePostData(input, userID, postID)
	if err != nil {
		return nil, err
	}

	var author *entity.User
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return uc.validator.ValidateModifyBlocks(gctx, postID, d.Blocks, d.Files) })
	g.Go(func() error { return uc.validator.ValidateFiles(gctx, d.Files, userID, postID) })
	g.Go(func() error {
		var err error
		author, err = uc.findAuthor(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var (
		updated  *entity.Post
		saved    []entity.Block
		removed  []string
		attached []entity.File
	)
	err = uc.tx.Transaction(ctx, func(ctx context.Context) error {
		var err error
		updated, err = uc.postRepo.Update(ctx, &d.Post)
		if err != nil {
			return err
		}

		saved, removed, err = uc.replaceBlocks(ctx, postID, d.Blocks)
		if err != nil {
			return err
		}

		// Files of removed blocks are part of the diff so they get deleted too.
		current, err := uc.files.FindAttachFiles(ctx, append(d.BlockIDs(), removed...))
		if err != nil {
			return err
		}
		attach, deleteIDs := transform.SeparateFiles(current, d.Files)
		if err := uc.files.AttachFiles(ctx, attach); err != nil {
			return err
		}
		if err := uc.files.DeleteFiles(ctx, deleteIDs); err != nil {
			return err
		}

		attached, err = uc.files.FindAttachFiles(ctx, d.BlockIDs())
		return err
	})
	if err != nil {
		return nil, wrap("modify post", err)
	}

	keys := []string{cache.FileKey(postID), cache.BlockKey(postID)}
	for _, id := range append(d.BlockIDs(), removed...) {
		keys = append(keys, cache.FileKey(id))
	}
	uc.invalidate(ctx, keys)
	uc.publishSummary(ctx, *updated, saved)

	uc.logger.Info("[POST] Modified post %s: %d blocks kept or added, %d removed", postID, len(saved), len(removed))
	view := transform.AssemblePost(*updated, *author, saved, attached)
	return &view, nil
}

// replaceBlocks updates requested blocks that already exist (reviving soft-deleted
// ones), inserts new ones and soft-deletes live blocks absent from the request.
func (uc *postUseCase) replaceBlocks(ctx context.Context, postID string, requested []entity.Block) ([]entity.Block, []string, error) {
	existing, err := uc.blockRepo.FindMany(ctx, persistent.BlockFilter{PostIDs: []string{postID}}, persistent.AnyState, persistent.NoPagination)
	if err != nil {
		return nil, nil, err
	}

	known := make(map[string]bool, len(existing))
	for _, b := range existing {
		known[b.ID] = true
	}

	wanted := make(map[string]bool, len(requested))
	saved := make([]entity.Block, 0, len(requested))
	for i := range requested {
		block := requested[i]
		wanted[block.ID] = true

		if known[block.ID] {
			block.IsDeleted = false
			updated, err := uc.blockRepo.Update(ctx, &block)
			if err != nil {
				return nil, nil, err
			}
			saved = append(saved, *updated)
			continue
		}

		if err := uc.blockRepo.Create(ctx, &block); err != nil {
			return nil, nil, err
		}
		saved = append(saved, block)
	}

	removed := []string{}
	for _, b := range existing {
		if !b.IsDeleted && !wanted[b.ID] {
			removed = append(removed, b.ID)
		}
	}
	if len(removed) > 0 {
		if _, err := uc.blockRepo.SoftDeleteMany(ctx, persistent.BlockFilter{IDs: removed}); err != nil {
			return nil, nil, err
		}
	}

	return saved, removed, nil
}

func (uc *postUseCase) DeletePost(ctx context.Context, postID, userID string) (*entity.PostView, error) {
	var author *entity.User
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := uc.validator.ValidatePost(gctx, postID, userID)
		return err
	})
	g.Go(func() error {
		var err error
		author, err = uc.findAuthor(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var (
		deleted *entity.Post
		blocks  []entity.Block
		files   []entity.File
	)
	err := uc.tx.Transaction(ctx, func(ctx context.Context) error {
		var err error
		deleted, err = uc.postRepo.SoftDelete(ctx, postID)
		if err != nil {
			return err
		}

		blocks, err = uc.blockRepo.FindMany(ctx, persistent.BlockFilter{PostIDs: []string{postID}}, persistent.LiveOnly, persistent.NoPagination)
		if err != nil {
			return err
		}
		ids := blockIDs(blocks)
		if len(ids) == 0 {
			return nil
		}
		if _, err := uc.blockRepo.SoftDeleteMany(ctx, persistent.BlockFilter{IDs: ids}); err != nil {
			return err
		}

		files, err = uc.files.FindAttachFiles(ctx, ids)
		if err != nil {
			return err
		}
		return uc.files.DeleteAttachFiles(ctx, ids)
	})
	if err != nil {
		return nil, wrap("delete post", err)
	}

	keys := []string{cache.BlockKey(postID)}
	for i := range blocks {
		blocks[i].IsDeleted = true
		keys = append(keys, cache.FileKey(blocks[i].ID))
	}
	for i := range files {
		files[i].IsDeleted = true
	}
	uc.invalidate(ctx, keys)

	uc.logger.Info("[POST] Deleted post %s with %d blocks and %d files", postID, len(blocks), len(files))
	view := transform.AssemblePost(*deleted, *author, blocks, files)
	return &view, nil
}
