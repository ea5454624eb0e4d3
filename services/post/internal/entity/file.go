package entity

import (
	"encoding/json"
	"fmt"
	"time"
)

const AttachmentKindBlock = "block"

// Attachment is a weak pointer from a file to the row it is attached to. A nil
// Attachment means the file is unattached.
type Attachment interface {
	Kind() string
	TargetID() string
	attachment()
}

type BlockAttachment struct {
	BlockID string
}

func (BlockAttachment) Kind() string       { return AttachmentKindBlock }
func (a BlockAttachment) TargetID() string { return a.BlockID }
func (BlockAttachment) attachment()        {}

// ParseAttachment builds an Attachment from the persisted source/source_uuid pair.
func ParseAttachment(source, sourceID *string) (Attachment, error) {
	if source == nil || sourceID == nil || *source == "" || *sourceID == "" {
		return nil, nil
	}
	switch *source {
	case AttachmentKindBlock:
		return BlockAttachment{BlockID: *sourceID}, nil
	default:
		return nil, fmt.Errorf("unknown attachment source %q", *source)
	}
}

// AttachmentColumns is the inverse of ParseAttachment.
func AttachmentColumns(a Attachment) (source, sourceID *string) {
	if a == nil {
		return nil, nil
	}
	kind, id := a.Kind(), a.TargetID()
	return &kind, &id
}

type File struct {
	ID          string
	UserID      string
	URL         string
	MimeType    string
	IsProcessed bool
	IsDeleted   bool
	Attachment  Attachment
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AttachedTo reports whether the file is attached to the given block.
func (f File) AttachedTo(blockID string) bool {
	a, ok := f.Attachment.(BlockAttachment)
	return ok && a.BlockID == blockID
}

// BlockID returns the attached block, or "" when the file is not attached to one.
func (f File) BlockID() string {
	if a, ok := f.Attachment.(BlockAttachment); ok {
		return a.BlockID
	}
	return ""
}

type fileJSON struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	URL         string    `json:"url"`
	MimeType    string    `json:"mime_type"`
	IsProcessed bool      `json:"is_processed"`
	IsDeleted   bool      `json:"is_deleted"`
	Source      *string   `json:"source"`
	SourceUUID  *string   `json:"source_uuid"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (f File) MarshalJSON() ([]byte, error) {
	source, sourceID := AttachmentColumns(f.Attachment)
	return json.Marshal(fileJSON{
		ID:          f.ID,
		UserID:      f.UserID,
		URL:         f.URL,
		MimeType:    f.MimeType,
		IsProcessed: f.IsProcessed,
		IsDeleted:   f.IsDeleted,
		Source:      source,
		SourceUUID:  sourceID,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	})
}

func (f *File) UnmarshalJSON(data []byte) error {
	var raw fileJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	attachment, err := ParseAttachment(raw.Source, raw.SourceUUID)
	if err != nil {
		return err
	}
	*f = File{
		ID:          raw.ID,
		UserID:      raw.UserID,
		URL:         raw.URL,
		MimeType:    raw.MimeType,
		IsProcessed: raw.IsProcessed,
		IsDeleted:   raw.IsDeleted,
		Attachment:  attachment,
		CreatedAt:   raw.CreatedAt,
		UpdatedAt:   raw.UpdatedAt,
	}
	return nil
}
