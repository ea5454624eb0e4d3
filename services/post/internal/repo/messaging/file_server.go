package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"snappoint/services/post/internal/entity"
)

// FileStore is the local implementation served to remote callers.
type FileStore interface {
	FindFilesByIDs(ctx context.Context, ids []string) ([]entity.File, error)
	FindAttachFiles(ctx context.Context, blockIDs []string) ([]entity.File, error)
	AttachFiles(ctx context.Context, files []entity.File) error
	DeleteAttachFiles(ctx context.Context, blockIDs []string) error
	DeleteFiles(ctx context.Context, ids []string) error
}

// FileServer answers the commands sent by FileClient.
type FileServer struct {
	store FileStore
}

func NewFileServer(store FileStore) *FileServer {
	return &FileServer{store: store}
}

// Handle dispatches one command. Write commands reply with {"ok": true}.
func (s *FileServer) Handle(ctx context.Context, cmd string, data json.RawMessage) (interface{}, error) {
	switch cmd {
	case CmdFindFiles:
		var p idsPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", cmd, err)
		}
		return s.store.FindFilesByIDs(ctx, p.IDs)

	case CmdFindAttachFiles:
		p, err := decodeSource(cmd, data)
		if err != nil {
			return nil, err
		}
		return s.store.FindAttachFiles(ctx, p.SourceUUIDs)

	case CmdAttachFiles:
		var p attachPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", cmd, err)
		}
		return ok(s.store.AttachFiles(ctx, p.Files))

	case CmdDeleteAttachFiles:
		p, err := decodeSource(cmd, data)
		if err != nil {
			return nil, err
		}
		return ok(s.store.DeleteAttachFiles(ctx, p.SourceUUIDs))

	case CmdDeleteFiles:
		var p idsPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", cmd, err)
		}
		return ok(s.store.DeleteFiles(ctx, p.IDs))

	default:
		return nil, fmt.Errorf("unknown command %q", cmd)
	}
}

func decodeSource(cmd string, data json.RawMessage) (sourcePayload, error) {
	var p sourcePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("decode %s: %w", cmd, err)
	}
	if p.Source != entity.AttachmentKindBlock {
		return p, fmt.Errorf("unsupported source %q", p.Source)
	}
	return p, nil
}

func ok(err error) (interface{}, error) {
	if err != nil {
		return nil, err
	}
	return map[string]bool{"ok": true}, nil
}
