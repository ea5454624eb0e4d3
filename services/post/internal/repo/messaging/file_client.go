package messaging

import (
	"context"
	"fmt"

	"snappoint/services/post/internal/entity"
)

const (
	CmdFindFiles         = "files.find"
	CmdFindAttachFiles   = "files.attached.find"
	CmdAttachFiles       = "files.attach"
	CmdDeleteAttachFiles = "files.attached.delete"
	CmdDeleteFiles       = "files.delete"
)

// Requester is the request/reply side of the queue client.
type Requester interface {
	Request(ctx context.Context, queueName, cmd string, payload, out interface{}) error
}

type idsPayload struct {
	IDs []string `json:"uuids"`
}

type sourcePayload struct {
	Source      string   `json:"source"`
	SourceUUIDs []string `json:"sourceUuids"`
}

type attachPayload struct {
	Files []entity.File `json:"files"`
}

// FileClient calls a remote file service over the queue. Its calls cannot take
// part in the caller's database transaction.
type FileClient struct {
	requester Requester
	queue     string
}

func NewFileClient(requester Requester, queueName string) *FileClient {
	return &FileClient{requester: requester, queue: queueName}
}

func (c *FileClient) FindFilesByIDs(ctx context.Context, ids []string) ([]entity.File, error) {
	if len(ids) == 0 {
		return []entity.File{}, nil
	}
	var files []entity.File
	if err := c.requester.Request(ctx, c.queue, CmdFindFiles, idsPayload{IDs: ids}, &files); err != nil {
		return nil, fmt.Errorf("find files: %w", err)
	}
	return nonNil(files), nil
}

func (c *FileClient) FindAttachFiles(ctx context.Context, blockIDs []string) ([]entity.File, error) {
	if len(blockIDs) == 0 {
		return []entity.File{}, nil
	}
	var files []entity.File
	payload := sourcePayload{Source: entity.AttachmentKindBlock, SourceUUIDs: blockIDs}
	if err := c.requester.Request(ctx, c.queue, CmdFindAttachFiles, payload, &files); err != nil {
		return nil, fmt.Errorf("find attached files: %w", err)
	}
	return nonNil(files), nil
}

func (c *FileClient) AttachFiles(ctx context.Context, files []entity.File) error {
	if len(files) == 0 {
		return nil
	}
	if err := c.requester.Request(ctx, c.queue, CmdAttachFiles, attachPayload{Files: files}, nil); err != nil {
		return fmt.Errorf("attach files: %w", err)
	}
	return nil
}

func (c *FileClient) DeleteAttachFiles(ctx context.Context, blockIDs []string) error {
	if len(blockIDs) == 0 {
		return nil
	}
	payload := sourcePayload{Source: entity.AttachmentKindBlock, SourceUUIDs: blockIDs}
	if err := c.requester.Request(ctx, c.queue, CmdDeleteAttachFiles, payload, nil); err != nil {
		return fmt.Errorf("delete attached files: %w", err)
	}
	return nil
}

func (c *FileClient) DeleteFiles(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := c.requester.Request(ctx, c.queue, CmdDeleteFiles, idsPayload{IDs: ids}, nil); err != nil {
		return fmt.Errorf("delete files: %w", err)
	}
	return nil
}

func nonNil(files []entity.File) []entity.File {
	if files == nil {
		return []entity.File{}
	}
	return files
}
