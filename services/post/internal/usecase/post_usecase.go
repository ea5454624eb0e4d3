package usecase

import (
	"context"

	"snappoint/pkg/cache"
	"snappoint/pkg/database"
	"snappoint/pkg/logger"
	"snappoint/services/post/internal/entity"
	"snappoint/services/post/internal/repo/persistent"
	"snappoint/services/post/internal/transform"
	"snappoint/services/post/internal/validation"

	"golang.org/x/sync/errgroup"
)

type postUseCase struct {
	postRepo  persistent.PostRepository
	blockRepo persistent.BlockRepository
	userRepo  persistent.UserRepository
	files     FileService
	validator *validation.Validator
	tx        database.Transactor
	gateway   *cache.Gateway
	summary   SummaryPublisher
	logger    *logger.Logger
}

func NewPostUseCase(
	postRepo persistent.PostRepository,
	blockRepo persistent.BlockRepository,
	userRepo persistent.UserRepository,
	files FileService,
	tx database.Transactor,
	gateway *cache.Gateway,
	summary SummaryPublisher,
	logger *logger.Logger,
) PostUseCase {
	return &postUseCase{
		postRepo:  postRepo,
		blockRepo: blockRepo,
		userRepo:  userRepo,
		files:     files,
		validator: validation.NewValidator(postRepo, blockRepo, files),
		tx:        tx,
		gateway:   gateway,
		summary:   summary,
		logger:    logger,
	}
}

func (uc *postUseCase) FindPost(ctx context.Context, postID string, detail bool) (*entity.PostView, error) {
	post, err := uc.postRepo.FindOne(ctx, persistent.PostFilter{IDs: []string{postID}}, persistent.LiveOnly)
	if err != nil {
		return nil, wrap("find post", err)
	}

	var (
		user   *entity.User
		blocks [][]entity.Block
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		user, err = uc.findAuthor(gctx, post.UserID)
		return err
	})
	if detail {
		g.Go(func() error {
			var err error
			blocks, err = uc.FindEntireBlocksWithPost(gctx, []string{postID})
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if !detail {
		view := transform.FlatView(*post, *user)
		return &view, nil
	}

	files, err := uc.FindEntireFilesWithBlocks(ctx, blockIDs(blocks[0]))
	if err != nil {
		return nil, err
	}

	view := transform.AssemblePost(*post, *user, blocks[0], flatten(files))
	return &view, nil
}

func (uc *postUseCase) FindNearbyPosts(ctx context.Context, area entity.BBox) ([]entity.PostView, error) {
	if err := validation.ValidateLookupArea(area); err != nil {
		return nil, err
	}

	inArea, err := uc.blockRepo.FindMany(ctx, persistent.BlockFilter{Area: &area}, persistent.LiveOnly, persistent.NoPagination)
	if err != nil {
		return nil, wrap("find blocks in area", err)
	}

	postIDs := distinct(len(inArea), func(i int) string { return inArea[i].PostID })
	if len(postIDs) == 0 {
		return []entity.PostView{}, nil
	}

	posts, err := uc.postRepo.FindMany(ctx, persistent.PostFilter{IDs: postIDs}, persistent.LiveOnly, persistent.NoPagination)
	if err != nil {
		return nil, wrap("find nearby posts", err)
	}
	if len(posts) == 0 {
		return []entity.PostView{}, nil
	}

	livePostIDs := make([]string, len(posts))
	for i, p := range posts {
		livePostIDs[i] = p.ID
	}
	userIDs := distinct(len(posts), func(i int) string { return posts[i].UserID })

	var (
		users  []entity.User
		blocks [][]entity.Block
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = uc.userRepo.FindUsersByIDs(gctx, userIDs)
		return wrap("find authors", err)
	})
	g.Go(func() error {
		var err error
		blocks, err = uc.FindEntireBlocksWithPost(gctx, livePostIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	allBlocks := flatten(blocks)
	files, err := uc.FindEntireFilesWithBlocks(ctx, blockIDs(allBlocks))
	if err != nil {
		return nil, err
	}

	return transform.AssemblePosts(posts, users, allBlocks, flatten(files))
}

func (uc *postUseCase) FindEntireBlocksWithPost(ctx context.Context, postIDs []string) ([][]entity.Block, error) {
	keys := make([]string, len(postIDs))
	idByKey := make(map[string]string, len(postIDs))
	for i, id := range postIDs {
		keys[i] = cache.BlockKey(id)
		idByKey[keys[i]] = id
	}

	result, err := cache.BatchGet(ctx, uc.gateway, keys, cache.JSONDecoder[entity.Block](),
		func(ctx context.Context, missing []string) ([][]entity.Block, error) {
			ids := make([]string, len(missing))
			for i, key := range missing {
				ids[i] = idByKey[key]
			}

			blocks, err := uc.blockRepo.FindMany(ctx, persistent.BlockFilter{PostIDs: ids}, persistent.LiveOnly, persistent.NoPagination)
			if err != nil {
				return nil, err
			}

			grouped := transform.GroupBlocksByPost(blocks)
			out := make([][]entity.Block, len(ids))
			for i, id := range ids {
				out[i] = grouped[id]
			}
			return out, nil
		})
	if err != nil {
		return nil, entity.NewInternalError("find blocks", err)
	}
	return result, nil
}

func (uc *postUseCase) FindEntireFilesWithBlocks(ctx context.Context, blockIDs []string) ([][]entity.File, error) {
	keys := make([]string, len(blockIDs))
	idByKey := make(map[string]string, len(blockIDs))
	for i, id := range blockIDs {
		keys[i] = cache.FileKey(id)
		idByKey[keys[i]] = id
	}

	result, err := cache.BatchGet(ctx, uc.gateway, keys, cache.JSONDecoder[entity.File](),
		func(ctx context.Context, missing []string) ([][]entity.File, error) {
			ids := make([]string, len(missing))
			for i, key := range missing {
				ids[i] = idByKey[key]
			}

			files, err := uc.files.FindAttachFiles(ctx, ids)
			if err != nil {
				return nil, err
			}

			grouped := transform.GroupFilesByBlock(files)
			out := make([][]entity.File, len(ids))
			for i, id := range ids {
				out[i] = grouped[id]
			}
			return out, nil
		})
	if err != nil {
		return nil, entity.NewInternalError("find files", err)
	}
	return result, nil
}

func (uc *postUseCase) findAuthor(ctx context.Context, userID string) (*entity.User, error) {
	user, err := uc.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, wrap("find author", err)
	}
	return user, nil
}
