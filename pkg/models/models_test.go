package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUser_BeforeCreate(t *testing.T) {
	user := &User{
		Email:    "test@example.com",
		Nickname: "tester",
	}

	// BeforeCreate should set ID if empty
	err := user.BeforeCreate(nil)
	assert.NoError(t, err)
	assert.NotEmpty(t, user.ID)
}

func TestUser_BeforeCreate_WithID(t *testing.T) {
	existingID := "existing-id-123"
	user := &User{
		ID:       existingID,
		Email:    "test@example.com",
		Nickname: "tester",
	}

	err := user.BeforeCreate(nil)
	assert.NoError(t, err)
	// ID should remain unchanged if already set
	assert.Equal(t, existingID, user.ID)
}

func TestPost_BeforeCreate(t *testing.T) {
	post := &Post{
		UserID: "user-123",
		Title:  "Test Post",
	}

	err := post.BeforeCreate(nil)
	assert.NoError(t, err)
	assert.NotEmpty(t, post.ID)
}

func TestPost_BeforeCreate_WithID(t *testing.T) {
	existingID := "existing-post-id"
	post := &Post{
		ID:     existingID,
		UserID: "user-123",
		Title:  "Test Post",
	}

	err := post.BeforeCreate(nil)
	assert.NoError(t, err)
	assert.Equal(t, existingID, post.ID)
}

func TestBlock_BeforeCreate(t *testing.T) {
	lat, lng := 37.5, 127.0
	block := &Block{
		PostID:    "post-123",
		Type:      "media",
		Latitude:  &lat,
		Longitude: &lng,
	}

	err := block.BeforeCreate(nil)
	assert.NoError(t, err)
	assert.NotEmpty(t, block.ID)
}

func TestFile_BeforeCreate(t *testing.T) {
	file := &File{
		UserID: "user-123",
		URL:    "http://example.com/image.jpg",
	}

	err := file.BeforeCreate(nil)
	assert.NoError(t, err)
	assert.NotEmpty(t, file.ID)
	assert.Nil(t, file.Source)
	assert.Nil(t, file.SourceUUID)
}

func TestTableNames(t *testing.T) {
	assert.Equal(t, "users", User{}.TableName())
	assert.Equal(t, "posts", Post{}.TableName())
	assert.Equal(t, "blocks", Block{}.TableName())
	assert.Equal(t, "files", File{}.TableName())
}

func TestAll(t *testing.T) {
	assert.Len(t, All(), 4)
}
