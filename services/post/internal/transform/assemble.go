package transform

import (
	"fmt"
	"sort"

	"snappoint/services/post/internal/entity"
)

// FlatView is the post envelope without blocks.
func FlatView(post entity.Post, user entity.User) entity.PostView {
	return entity.PostView{Post: post, Author: entity.NewAuthor(user)}
}

// AssemblePost nests files under their blocks and blocks under the post, ordered by
// block Order. Blocks without files get an empty list.
func AssemblePost(post entity.Post, user entity.User, blocks []entity.Block, files []entity.File) entity.PostView {
	return assemble(post, user, blocks, GroupFilesByBlock(files))
}

// AssemblePosts assembles every post in input order with one grouping pass over
// blocks and files. A post whose author is missing is an internal error.
func AssemblePosts(posts []entity.Post, users []entity.User, blocks []entity.Block, files []entity.File) ([]entity.PostView, error) {
	usersByID := make(map[string]entity.User, len(users))
	for _, u := range users {
		usersByID[u.ID] = u
	}
	blocksByPost := GroupBlocksByPost(blocks)
	filesByBlock := GroupFilesByBlock(files)

	views := make([]entity.PostView, 0, len(posts))
	for _, post := range posts {
		user, ok := usersByID[post.UserID]
		if !ok {
			return nil, entity.NewInternalError("assemble posts", fmt.Errorf("author %s of post %s not found", post.UserID, post.ID))
		}
		views = append(views, assemble(post, user, blocksByPost[post.ID], filesByBlock))
	}
	return views, nil
}

func assemble(post entity.Post, user entity.User, blocks []entity.Block, filesByBlock map[string][]entity.File) entity.PostView {
	ordered := make([]entity.Block, len(blocks))
	copy(ordered, blocks)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Order < ordered[j].Order })

	views := make([]entity.BlockView, len(ordered))
	for i, b := range ordered {
		files := filesByBlock[b.ID]
		if files == nil {
			files = []entity.File{}
		}
		views[i] = entity.BlockView{Block: b, Files: files}
	}

	view := FlatView(post, user)
	view.Blocks = views
	return view
}

func GroupBlocksByPost(blocks []entity.Block) map[string][]entity.Block {
	grouped := make(map[string][]entity.Block)
	for _, b := range blocks {
		grouped[b.PostID] = append(grouped[b.PostID], b)
	}
	return grouped
}

// GroupFilesByBlock drops files that are not attached to a block.
func GroupFilesByBlock(files []entity.File) map[string][]entity.File {
	grouped := make(map[string][]entity.File)
	for _, f := range files {
		if id := f.BlockID(); id != "" {
			grouped[id] = append(grouped[id], f)
		}
	}
	return grouped
}
