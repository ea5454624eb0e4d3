package persistent

import (
	"snappoint/pkg/models"
	"snappoint/services/post/internal/entity"
)

func ToPostEntity(m *models.Post) entity.Post {
	return entity.Post{
		ID:          m.ID,
		UserID:      m.UserID,
		Title:       m.Title,
		Description: m.Description,
		IsDeleted:   m.IsDeleted,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func ToPostModel(e *entity.Post) *models.Post {
	return &models.Post{
		ID:          e.ID,
		UserID:      e.UserID,
		Title:       e.Title,
		Description: e.Description,
		IsDeleted:   e.IsDeleted,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func ToBlockEntity(m *models.Block) entity.Block {
	return entity.Block{
		ID:        m.ID,
		PostID:    m.PostID,
		Type:      entity.BlockType(m.Type),
		Order:     m.Order,
		Latitude:  m.Latitude,
		Longitude: m.Longitude,
		Content:   m.Content,
		IsDeleted: m.IsDeleted,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func ToBlockModel(e *entity.Block) *models.Block {
	return &models.Block{
		ID:        e.ID,
		PostID:    e.PostID,
		Type:      string(e.Type),
		Order:     e.Order,
		Latitude:  e.Latitude,
		Longitude: e.Longitude,
		Content:   e.Content,
		IsDeleted: e.IsDeleted,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func ToFileEntity(m *models.File) (entity.File, error) {
	attachment, err := entity.ParseAttachment(m.Source, m.SourceUUID)
	if err != nil {
		return entity.File{}, err
	}
	return entity.File{
		ID:          m.ID,
		UserID:      m.UserID,
		URL:         m.URL,
		MimeType:    m.MimeType,
		IsProcessed: m.IsProcessed,
		IsDeleted:   m.IsDeleted,
		Attachment:  attachment,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}, nil
}

func ToFileModel(e *entity.File) *models.File {
	source, sourceID := entity.AttachmentColumns(e.Attachment)
	return &models.File{
		ID:          e.ID,
		UserID:      e.UserID,
		URL:         e.URL,
		MimeType:    e.MimeType,
		IsProcessed: e.IsProcessed,
		IsDeleted:   e.IsDeleted,
		Source:      source,
		SourceUUID:  sourceID,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func ToUserEntity(m *models.User) entity.User {
	return entity.User{
		ID:        m.ID,
		Email:     m.Email,
		Nickname:  m.Nickname,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func ToUserModel(e *entity.User) *models.User {
	return &models.User{
		ID:        e.ID,
		Email:     e.Email,
		Nickname:  e.Nickname,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func toPostEntities(rows []models.Post) []entity.Post {
	posts := make([]entity.Post, len(rows))
	for i := range rows {
		posts[i] = ToPostEntity(&rows[i])
	}
	return posts
}

func toBlockEntities(rows []models.Block) []entity.Block {
	blocks := make([]entity.Block, len(rows))
	for i := range rows {
		blocks[i] = ToBlockEntity(&rows[i])
	}
	return blocks
}

func toFileEntities(rows []models.File) ([]entity.File, error) {
	files := make([]entity.File, len(rows))
	for i := range rows {
		f, err := ToFileEntity(&rows[i])
		if err != nil {
			return nil, err
		}
		files[i] = f
	}
	return files, nil
}
