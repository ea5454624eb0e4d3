package entity

import "time"

type BlockType string

const (
	BlockTypeText  BlockType = "text"
	BlockTypeMedia BlockType = "media"
)

func (t BlockType) Valid() bool {
	return t == BlockTypeText || t == BlockTypeMedia
}

type Post struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	IsDeleted   bool      `json:"is_deleted"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Block is one ordered content unit of a post. Order is the index in the post as
// the client sent it.
type Block struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	Type      BlockType `json:"type"`
	Order     int       `json:"order"`
	Latitude  *float64  `json:"latitude"`
	Longitude *float64  `json:"longitude"`
	Content   string    `json:"content"`
	IsDeleted bool      `json:"is_deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b Block) HasCoordinates() bool {
	return b.Latitude != nil || b.Longitude != nil
}

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Nickname  string    `json:"nickname"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Author struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
}

func NewAuthor(u User) Author {
	return Author{ID: u.ID, Email: u.Email, Nickname: u.Nickname}
}

// PostView is the nested client shape. Blocks is null in the flat (detail=false)
// form and an array, possibly empty, in the detailed one.
type PostView struct {
	Post
	Author Author      `json:"author"`
	Blocks []BlockView `json:"blocks"`
}

type BlockView struct {
	Block
	Files []File `json:"files"`
}

// BBox is a lookup area in degrees.
type BBox struct {
	LatitudeMin  float64 `json:"latitude_min" form:"latitudeMin"`
	LatitudeMax  float64 `json:"latitude_max" form:"latitudeMax"`
	LongitudeMin float64 `json:"longitude_min" form:"longitudeMin"`
	LongitudeMax float64 `json:"longitude_max" form:"longitudeMax"`
}

type WritePostInput struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Blocks      []BlockInput `json:"blocks"`
}

type BlockInput struct {
	ID        string    `json:"id,omitempty"`
	Type      BlockType `json:"type"`
	Content   string    `json:"content"`
	Latitude  *float64  `json:"latitude,omitempty"`
	Longitude *float64  `json:"longitude,omitempty"`
	Files     []FileRef `json:"files,omitempty"`
}

type FileRef struct {
	ID string `json:"id"`
}

// SummaryEvent is emitted after a post is created or modified.
type SummaryEvent struct {
	Post   Post    `json:"post"`
	Blocks []Block `json:"blocks"`
}
