package persistent

import (
	"context"
	"errors"
	"fmt"

	"snappoint/pkg/database"
	"snappoint/pkg/models"
	"snappoint/services/post/internal/entity"

	"gorm.io/gorm"
)

type PostFilter struct {
	IDs    []string
	UserID string
}

func (f PostFilter) scope(db *gorm.DB) *gorm.DB {
	if f.IDs != nil {
		db = db.Where("id IN ?", nonEmpty(f.IDs))
	}
	if f.UserID != "" {
		db = db.Where("user_id = ?", f.UserID)
	}
	return db
}

func (f PostFilter) empty() bool {
	return f.IDs == nil && f.UserID == ""
}

type PostRepository interface {
	FindOne(ctx context.Context, filter PostFilter, vis Visibility) (*entity.Post, error)
	FindMany(ctx context.Context, filter PostFilter, vis Visibility, page Pagination) ([]entity.Post, error)
	Create(ctx context.Context, post *entity.Post) error
	CreateMany(ctx context.Context, posts []entity.Post) error
	Update(ctx context.Context, post *entity.Post) (*entity.Post, error)
	SoftDelete(ctx context.Context, id string) (*entity.Post, error)
	SoftDeleteMany(ctx context.Context, filter PostFilter) (int64, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) FindOne(ctx context.Context, filter PostFilter, vis Visibility) (*entity.Post, error) {
	var row models.Post
	err := database.Conn(ctx, r.db).
		Scopes(filter.scope, vis.scope).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &entity.NotFoundError{Resource: "post", ID: describeIDs(filter.IDs)}
	}
	if err != nil {
		return nil, fmt.Errorf("find post: %w", err)
	}
	post := ToPostEntity(&row)
	return &post, nil
}

func (r *postRepository) FindMany(ctx context.Context, filter PostFilter, vis Visibility, page Pagination) ([]entity.Post, error) {
	var rows []models.Post
	err := database.Conn(ctx, r.db).
		Scopes(filter.scope, vis.scope, page.scope).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("find posts: %w", err)
	}
	return toPostEntities(rows), nil
}

func (r *postRepository) Create(ctx context.Context, post *entity.Post) error {
	row := ToPostModel(post)
	if err := database.Conn(ctx, r.db).Create(row).Error; err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	*post = ToPostEntity(row)
	return nil
}

func (r *postRepository) CreateMany(ctx context.Context, posts []entity.Post) error {
	if len(posts) == 0 {
		return nil
	}
	rows := make([]*models.Post, len(posts))
	for i := range posts {
		rows[i] = ToPostModel(&posts[i])
	}
	if err := database.Conn(ctx, r.db).Create(rows).Error; err != nil {
		return fmt.Errorf("create posts: %w", err)
	}
	for i := range rows {
		posts[i] = ToPostEntity(rows[i])
	}
	return nil
}

// Update writes every mutable column of the row with post.ID.
func (r *postRepository) Update(ctx context.Context, post *entity.Post) (*entity.Post, error) {
	conn := database.Conn(ctx, r.db)
	result := conn.Model(&models.Post{}).
		Where("id = ?", post.ID).
		Updates(map[string]interface{}{
			"title":       post.Title,
			"description": post.Description,
			"is_deleted":  post.IsDeleted,
			"updated_at":  database.NowUTC(),
		})
	if result.Error != nil {
		return nil, fmt.Errorf("update post: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, &entity.NotFoundError{Resource: "post", ID: post.ID}
	}
	return r.FindOne(ctx, PostFilter{IDs: []string{post.ID}}, AnyState)
}

func (r *postRepository) SoftDelete(ctx context.Context, id string) (*entity.Post, error) {
	result := database.Conn(ctx, r.db).Model(&models.Post{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(map[string]interface{}{"is_deleted": true, "updated_at": database.NowUTC()})
	if result.Error != nil {
		return nil, fmt.Errorf("delete post: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, &entity.NotFoundError{Resource: "post", ID: id}
	}
	return r.FindOne(ctx, PostFilter{IDs: []string{id}}, DeletedOnly)
}

func (r *postRepository) SoftDeleteMany(ctx context.Context, filter PostFilter) (int64, error) {
	if filter.empty() {
		return 0, ErrUnboundedDelete
	}
	result := database.Conn(ctx, r.db).Model(&models.Post{}).
		Scopes(filter.scope, LiveOnly.scope).
		Updates(map[string]interface{}{"is_deleted": true, "updated_at": database.NowUTC()})
	if result.Error != nil {
		return 0, fmt.Errorf("delete posts: %w", result.Error)
	}
	return result.RowsAffected, nil
}
