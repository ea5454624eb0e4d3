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

type FileFilter struct {
	IDs        []string
	UserID     string
	SourceKind string
	SourceIDs  []string
}

func (f FileFilter) scope(db *gorm.DB) *gorm.DB {
	if f.IDs != nil {
		db = db.Where("id IN ?", nonEmpty(f.IDs))
	}
	if f.UserID != "" {
		db = db.Where("user_id = ?", f.UserID)
	}
	if f.SourceKind != "" {
		db = db.Where("source = ?", f.SourceKind)
	}
	if f.SourceIDs != nil {
		db = db.Where("source_uuid IN ?", nonEmpty(f.SourceIDs))
	}
	return db
}

func (f FileFilter) empty() bool {
	return f.IDs == nil && f.UserID == "" && f.SourceKind == "" && f.SourceIDs == nil
}

// FileRepository persists files and implements the file service operations the
// post service relies on.
type FileRepository interface {
	FindOne(ctx context.Context, filter FileFilter, vis Visibility) (*entity.File, error)
	FindMany(ctx context.Context, filter FileFilter, vis Visibility, page Pagination) ([]entity.File, error)
	Create(ctx context.Context, file *entity.File) error
	CreateMany(ctx context.Context, files []entity.File) error
	Update(ctx context.Context, file *entity.File) (*entity.File, error)
	SoftDelete(ctx context.Context, id string) (*entity.File, error)
	SoftDeleteMany(ctx context.Context, filter FileFilter) (int64, error)

	FindFilesByIDs(ctx context.Context, ids []string) ([]entity.File, error)
	FindAttachFiles(ctx context.Context, blockIDs []string) ([]entity.File, error)
	AttachFiles(ctx context.Context, files []entity.File) error
	DeleteAttachFiles(ctx context.Context, blockIDs []string) error
	DeleteFiles(ctx context.Context, ids []string) error
}

type fileRepository struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) FileRepository {
	return &fileRepository{db: db}
}

func (r *fileRepository) FindOne(ctx context.Context, filter FileFilter, vis Visibility) (*entity.File, error) {
	var row models.File
	err := database.Conn(ctx, r.db).
		Scopes(filter.scope, vis.scope).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &entity.NotFoundError{Resource: "file", ID: describeIDs(filter.IDs)}
	}
	if err != nil {
		return nil, fmt.Errorf("find file: %w", err)
	}
	file, err := ToFileEntity(&row)
	if err != nil {
		return nil, fmt.Errorf("find file: %w", err)
	}
	return &file, nil
}

func (r *fileRepository) FindMany(ctx context.Context, filter FileFilter, vis Visibility, page Pagination) ([]entity.File, error) {
	var rows []models.File
	err := database.Conn(ctx, r.db).
		Scopes(filter.scope, vis.scope, page.scope).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("find files: %w", err)
	}
	files, err := toFileEntities(rows)
	if err != nil {
		return nil, fmt.Errorf("find files: %w", err)
	}
	return files, nil
}

func (r *fileRepository) Create(ctx context.Context, file *entity.File) error {
	row := ToFileModel(file)
	if err := database.Conn(ctx, r.db).Create(row).Error; err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	created, err := ToFileEntity(row)
	if err != nil {
		return err
	}
	*file = created
	return nil
}

func (r *fileRepository) CreateMany(ctx context.Context, files []entity.File) error {
	if len(files) == 0 {
		return nil
	}
	rows := make([]*models.File, len(files))
	for i := range files {
		rows[i] = ToFileModel(&files[i])
	}
	if err := database.Conn(ctx, r.db).Create(rows).Error; err != nil {
		return fmt.Errorf("create files: %w", err)
	}
	for i := range rows {
		created, err := ToFileEntity(rows[i])
		if err != nil {
			return err
		}
		files[i] = created
	}
	return nil
}

func (r *fileRepository) Update(ctx context.Context, file *entity.File) (*entity.File, error) {
	source, sourceID := entity.AttachmentColumns(file.Attachment)
	result := database.Conn(ctx, r.db).Model(&models.File{}).
		Where("id = ?", file.ID).
		Updates(map[string]interface{}{
			"url":          file.URL,
			"mime_type":    file.MimeType,
			"is_processed": file.IsProcessed,
			"is_deleted":   file.IsDeleted,
			"source":       source,
			"source_uuid":  sourceID,
			"updated_at":   database.NowUTC(),
		})
	if result.Error != nil {
		return nil, fmt.Errorf("update file: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, &entity.NotFoundError{Resource: "file", ID: file.ID}
	}
	return r.FindOne(ctx, FileFilter{IDs: []string{file.ID}}, AnyState)
}

func (r *fileRepository) SoftDelete(ctx context.Context, id string) (*entity.File, error) {
	result := database.Conn(ctx, r.db).Model(&models.File{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(map[string]interface{}{"is_deleted": true, "updated_at": database.NowUTC()})
	if result.Error != nil {
		return nil, fmt.Errorf("delete file: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, &entity.NotFoundError{Resource: "file", ID: id}
	}
	return r.FindOne(ctx, FileFilter{IDs: []string{id}}, DeletedOnly)
}

func (r *fileRepository) SoftDeleteMany(ctx context.Context, filter FileFilter) (int64, error) {
	if filter.empty() {
		return 0, ErrUnboundedDelete
	}
	result := database.Conn(ctx, r.db).Model(&models.File{}).
		Scopes(filter.scope, LiveOnly.scope).
		Updates(map[string]interface{}{"is_deleted": true, "updated_at": database.NowUTC()})
	if result.Error != nil {
		return 0, fmt.Errorf("delete files: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// FindFilesByIDs returns the live files among ids. Missing ids are simply absent.
func (r *fileRepository) FindFilesByIDs(ctx context.Context, ids []string) ([]entity.File, error) {
	if len(ids) == 0 {
		return []entity.File{}, nil
	}
	return r.FindMany(ctx, FileFilter{IDs: ids}, LiveOnly, NoPagination)
}

// FindAttachFiles returns the live files attached to any of blockIDs.
func (r *fileRepository) FindAttachFiles(ctx context.Context, blockIDs []string) ([]entity.File, error) {
	if len(blockIDs) == 0 {
		return []entity.File{}, nil
	}
	return r.FindMany(ctx, FileFilter{SourceKind: entity.AttachmentKindBlock, SourceIDs: blockIDs}, LiveOnly, NoPagination)
}

// AttachFiles points each live file at its Attachment.
func (r *fileRepository) AttachFiles(ctx context.Context, files []entity.File) error {
	conn := database.Conn(ctx, r.db)
	for _, file := range files {
		source, sourceID := entity.AttachmentColumns(file.Attachment)
		result := conn.Model(&models.File{}).
			Where("id = ? AND is_deleted = ?", file.ID, false).
			Updates(map[string]interface{}{
				"source":      source,
				"source_uuid": sourceID,
				"updated_at":  database.NowUTC(),
			})
		if result.Error != nil {
			return fmt.Errorf("attach file %s: %w", file.ID, result.Error)
		}
		if result.RowsAffected == 0 {
			return &entity.NotFoundError{Resource: "file", ID: file.ID}
		}
	}
	return nil
}

// DeleteAttachFiles soft-deletes every file attached to blockIDs.
func (r *fileRepository) DeleteAttachFiles(ctx context.Context, blockIDs []string) error {
	if len(blockIDs) == 0 {
		return nil
	}
	_, err := r.SoftDeleteMany(ctx, FileFilter{SourceKind: entity.AttachmentKindBlock, SourceIDs: blockIDs})
	return err
}

func (r *fileRepository) DeleteFiles(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.SoftDeleteMany(ctx, FileFilter{IDs: ids})
	return err
}
