// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package llm

import (
	"context"
	"strings"

	"github.com/petar-djukic/go-patcher/pkg/types"

	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

// EventStream abstracts the Bedrock ConverseStream event stream for testing.
type EventStream interface {
	Events() <-chan brtypes.ConverseStreamOutput
	Close() error
	Err() error
}

// consumeStream forwards text deltas to chunks and accumulates the full
// response. chunks is closed on return. Cancellation is checked between
// chunks; on cancel the partial text is returned with ctx.Err() set.
func consumeStream(ctx context.Context, stream EventStream, chunks chan<- string) *types.StreamResponse {
	defer close(chunks)

	var text strings.Builder
	response := &types.StreamResponse{}
	finish := func(err error) *types.StreamResponse {
		response.FullText = text.String()
		response.Err = err
		return response
	}

	events := stream.Events()
	for {
		select {
		case <-ctx.Done():
			stream.Close()
			return finish(ctx.Err())

		case event, ok := <-events:
			if !ok {
				return finish(stream.Err())
			}

			switch v := event.(type) {
			case *brtypes.ConverseStreamOutputMemberContentBlockDelta:
				delta, isText := v.Value.Delta.(*brtypes.ContentBlockDeltaMemberText)
				if !isText {
					continue
				}
				text.WriteString(delta.Value)
				select {
				case chunks <- delta.Value:
				case <-ctx.Done():
					stream.Close()
					return finish(ctx.Err())
				}

			case *brtypes.ConverseStreamOutputMemberMetadata:
				recordUsage(&response.Usage, v.Value.Usage)
			}
		}
	}
}

func recordUsage(dst *types.TokenUsage, u *brtypes.TokenUsage) {
	if u == nil {
		return
	}
	if u.InputTokens != nil {
		dst.InputTokens = int(*u.InputTokens)
	}
	if u.OutputTokens != nil {
		dst.OutputTokens = int(*u.OutputTokens)
	}
}
