package messaging

import (
	"context"
	"fmt"

	"snappoint/services/post/internal/entity"
)

const CmdSummaryPost = "summary.post"

type Publisher interface {
	Publish(ctx context.Context, queueName, cmd string, payload interface{}) error
}

type SummaryPublisher struct {
	publisher Publisher
	queue     string
}

func NewSummaryPublisher(publisher Publisher, queueName string) *SummaryPublisher {
	return &SummaryPublisher{publisher: publisher, queue: queueName}
}

func (p *SummaryPublisher) PublishPost(ctx context.Context, post entity.Post, blocks []entity.Block) error {
	event := entity.SummaryEvent{Post: post, Blocks: blocks}
	if event.Blocks == nil {
		event.Blocks = []entity.Block{}
	}
	if err := p.publisher.Publish(ctx, p.queue, CmdSummaryPost, event); err != nil {
		return fmt.Errorf("publish summary for post %s: %w", post.ID, err)
	}
	return nil
}
