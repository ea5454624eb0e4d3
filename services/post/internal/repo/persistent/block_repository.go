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

type BlockFilter struct {
	IDs     []string
	PostIDs []string
	Area    *entity.BBox
	Type    entity.BlockType
}

func (f BlockFilter) scope(db *gorm.DB) *gorm.DB {
	if f.IDs != nil {
		db = db.Where("id IN ?", nonEmpty(f.IDs))
	}
	if f.PostIDs != nil {
		db = db.Where("post_id IN ?", nonEmpty(f.PostIDs))
	}
	if f.Area != nil {
		db = db.Where("latitude BETWEEN ? AND ?", f.Area.LatitudeMin, f.Area.LatitudeMax).
			Where("longitude BETWEEN ? AND ?", f.Area.LongitudeMin, f.Area.LongitudeMax)
	}
	if f.Type != "" {
		db = db.Where("type = ?", string(f.Type))
	}
	return db
}

func (f BlockFilter) empty() bool {
	return f.IDs == nil && f.PostIDs == nil && f.Area == nil && f.Type == ""
}

type BlockRepository interface {
	FindOne(ctx context.Context, filter BlockFilter, vis Visibility) (*entity.Block, error)
	FindMany(ctx context.Context, filter BlockFilter, vis Visibility, page Pagination) ([]entity.Block, error)
	Create(ctx context.Context, block *entity.Block) error
	CreateMany(ctx context.Context, blocks []entity.Block) error
	Update(ctx context.Context, block *entity.Block) (*entity.Block, error)
	SoftDelete(ctx context.Context, id string) (*entity.Block, error)
	SoftDeleteMany(ctx context.Context, filter BlockFilter) (int64, error)
}

type blockRepository struct {
	db *gorm.DB
}

func NewBlockRepository(db *gorm.DB) BlockRepository {
	return &blockRepository{db: db}
}

func (r *blockRepository) FindOne(ctx context.Context, filter BlockFilter, vis Visibility) (*entity.Block, error) {
	var row models.Block
	err := database.Conn(ctx, r.db).
		Scopes(filter.scope, vis.scope).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &entity.NotFoundError{Resource: "block", ID: describeIDs(filter.IDs)}
	}
	if err != nil {
		return nil, fmt.Errorf("find block: %w", err)
	}
	block := ToBlockEntity(&row)
	return &block, nil
}

// FindMany returns blocks ordered by post, then by position within the post.
func (r *blockRepository) FindMany(ctx context.Context, filter BlockFilter, vis Visibility, page Pagination) ([]entity.Block, error) {
	var rows []models.Block
	err := database.Conn(ctx, r.db).
		Scopes(filter.scope, vis.scope, page.scope).
		Order("post_id ASC").
		Order("block_order ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("find blocks: %w", err)
	}
	return toBlockEntities(rows), nil
}

func (r *blockRepository) Create(ctx context.Context, block *entity.Block) error {
	row := ToBlockModel(block)
	if err := database.Conn(ctx, r.db).Create(row).Error; err != nil {
		return fmt.Errorf("create block: %w", err)
	}
	*block = ToBlockEntity(row)
	return nil
}

func (r *blockRepository) CreateMany(ctx context.Context, blocks []entity.Block) error {
	if len(blocks) == 0 {
		return nil
	}
	rows := make([]*models.Block, len(blocks))
	for i := range blocks {
		rows[i] = ToBlockModel(&blocks[i])
	}
	if err := database.Conn(ctx, r.db).Create(rows).Error; err != nil {
		return fmt.Errorf("create blocks: %w", err)
	}
	for i := range rows {
		blocks[i] = ToBlockEntity(rows[i])
	}
	return nil
}

// Update writes every mutable column, nil coordinates included.
func (r *blockRepository) Update(ctx context.Context, block *entity.Block) (*entity.Block, error) {
	result := database.Conn(ctx, r.db).Model(&models.Block{}).
		Where("id = ?", block.ID).
		Updates(map[string]interface{}{
			"post_id":     block.PostID,
			"type":        string(block.Type),
			"block_order": block.Order,
			"latitude":    block.Latitude,
			"longitude":   block.Longitude,
			"content":     block.Content,
			"is_deleted":  block.IsDeleted,
			"updated_at":  database.NowUTC(),
		})
	if result.Error != nil {
		return nil, fmt.Errorf("update block: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, &entity.NotFoundError{Resource: "block", ID: block.ID}
	}
	return r.FindOne(ctx, BlockFilter{IDs: []string{block.ID}}, AnyState)
}

func (r *blockRepository) SoftDelete(ctx context.Context, id string) (*entity.Block, error) {
	result := database.Conn(ctx, r.db).Model(&models.Block{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(map[string]interface{}{"is_deleted": true, "updated_at": database.NowUTC()})
	if result.Error != nil {
		return nil, fmt.Errorf("delete block: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, &entity.NotFoundError{Resource: "block", ID: id}
	}
	return r.FindOne(ctx, BlockFilter{IDs: []string{id}}, DeletedOnly)
}

func (r *blockRepository) SoftDeleteMany(ctx context.Context, filter BlockFilter) (int64, error) {
	if filter.empty() {
		return 0, ErrUnboundedDelete
	}
	result := database.Conn(ctx, r.db).Model(&models.Block{}).
		Scopes(filter.scope, LiveOnly.scope).
		Updates(map[string]interface{}{"is_deleted": true, "updated_at": database.NowUTC()})
	if result.Error != nil {
		return 0, fmt.Errorf("delete blocks: %w", result.Error)
	}
	return result.RowsAffected, nil
}
