// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"go.uber.org/zap"

	"github.com/petar-djukic/go-patcher/pkg/types"
)

const (
	defaultTimeout   = 300 * time.Second
	defaultMaxTokens = 4096
	maxRetryAttempts = 3
)

// baseRetryDelay is a variable so tests can shorten it.
var baseRetryDelay = 1 * time.Second

// ErrLLMFailure indicates the LLM call failed (network, auth, rate limit).
var ErrLLMFailure = errors.New("LLM failure")

// ClientConfig configures the Bedrock LLM client.
type ClientConfig struct {
	ModelID   string        // Bedrock model ID (required)
	Region    string        // AWS region (required)
	Profile   string        // AWS credential profile (optional, uses default chain if empty)
	Timeout   time.Duration // Request timeout (default 300s)
	MaxTokens int           // Max tokens for the response (default 4096)
	Logger    *zap.Logger   // Optional; retries are logged at Info
}

// BedrockAPI abstracts the Bedrock ConverseStream call.
type BedrockAPI interface {
	ConverseStream(ctx context.Context, params *bedrockruntime.ConverseStreamInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseStreamOutput, error)
}

// openFunc starts a ConverseStream call and returns its event stream.
type openFunc func(ctx context.Context, input *bedrockruntime.ConverseStreamInput) (EventStream, error)

// Client wraps the AWS Bedrock runtime client for LLM access.
type Client struct {
	open      openFunc
	modelID   string
	timeout   time.Duration
	maxTokens int
	log       *zap.Logger

	mu    sync.Mutex
	usage types.TokenUsage // Cumulative usage across calls
}

// NewClient creates a new Bedrock LLM client from the given configuration.
// It initializes the AWS SDK client using the standard credential chain.
func NewClient(ctx context.Context, cfg ClientConfig) (*Client, error) {
	if cfg.ModelID == "" {
		return nil, fmt.Errorf("%w: model ID is required", ErrLLMFailure)
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("%w: region is required", ErrLLMFailure)
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: loading AWS config: %v", ErrLLMFailure, err)
	}

	return NewClientWithAPI(bedrockruntime.NewFromConfig(awsCfg), cfg), nil
}

// NewClientWithAPI creates a client with a pre-configured API implementation.
func NewClientWithAPI(api BedrockAPI, cfg ClientConfig) *Client {
	return newClient(func(ctx context.Context, input *bedrockruntime.ConverseStreamInput) (EventStream, error) {
		output, err := api.ConverseStream(ctx, input)
		if err != nil {
			return nil, err
		}
		return output.GetStream(), nil
	}, cfg)
}

func newClient(open openFunc, cfg ClientConfig) *Client {
	c := &Client{
		open:      open,
		modelID:   cfg.ModelID,
		timeout:   cfg.Timeout,
		maxTokens: cfg.MaxTokens,
		log:       cfg.Logger,
	}
	if c.timeout == 0 {
		c.timeout = defaultTimeout
	}
	if c.maxTokens == 0 {
		c.maxTokens = defaultMaxTokens
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	return c
}

// SendPrompt sends a conversation to Bedrock via ConverseStream. Text
// chunks arrive on the first channel as they stream; the final
// StreamResponse, with Err set on failure, arrives on the second once
// streaming ends. Both channels are always closed.
func (c *Client) SendPrompt(ctx context.Context, system []brtypes.SystemContentBlock, messages []brtypes.Message) (<-chan string, <-chan *types.StreamResponse) {
	chunks := make(chan string, 64)
	resultCh := make(chan *types.StreamResponse, 1)

	go func() {
		defer close(resultCh)

		response, err := c.sendWithRetry(ctx, system, messages, chunks)
		if err != nil {
			close(chunks)
			resultCh <- &types.StreamResponse{Err: err}
			return
		}

		c.mu.Lock()
		c.usage.InputTokens += response.Usage.InputTokens
		c.usage.OutputTokens += response.Usage.OutputTokens
		c.mu.Unlock()

		resultCh <- response
	}()

	return chunks, resultCh
}

// Generate sends a conversation and waits for the full response text.
func (c *Client) Generate(ctx context.Context, system []brtypes.SystemContentBlock, messages []brtypes.Message) (string, error) {
	chunks, responseCh := c.SendPrompt(ctx, system, messages)
	for range chunks {
	}

	resp := <-responseCh
	if resp == nil {
		return "", fmt.Errorf("%w: no response", ErrLLMFailure)
	}
	if resp.Err != nil {
		if errors.Is(resp.Err, ErrLLMFailure) {
			return resp.FullText, resp.Err
		}
		return resp.FullText, fmt.Errorf("%w: %v", ErrLLMFailure, resp.Err)
	}
	return resp.FullText, nil
}

// Usage returns the total token usage across all calls.
func (c *Client) Usage() types.TokenUsage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.usage
}

// sendWithRetry calls ConverseStream with exponential backoff retry for
// rate limit errors.
func (c *Client) sendWithRetry(ctx context.Context, system []brtypes.SystemContentBlock, messages []brtypes.Message, chunks chan<- string) (*types.StreamResponse, error) {
	var lastErr error

	for attempt := 0; attempt <= maxRetryAttempts; attempt++ {
		if attempt > 0 {
			delay := baseRetryDelay * time.Duration(math.Pow(2, float64(attempt-1)))
			c.log.Info("rate limited, retrying",
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(lastErr))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: context cancelled during retry: %v", ErrLLMFailure, ctx.Err())
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, c.timeout)

		input := &bedrockruntime.ConverseStreamInput{
			ModelId:  aws.String(c.modelID),
			System:   system,
			Messages: messages,
			InferenceConfig: &brtypes.InferenceConfiguration{
				MaxTokens: aws.Int32(int32(c.maxTokens)),
			},
		}

		stream, err := c.open(callCtx, input)
		if err != nil {
			cancel()

			var throttle *brtypes.ThrottlingException
			if errors.As(err, &throttle) {
				lastErr = err
				continue
			}

			return nil, c.classifyError(err)
		}

		response := consumeStream(callCtx, stream, chunks)
		response.Retries = attempt
		cancel()
		return response, nil
	}

	return nil, fmt.Errorf("%w: rate limited after %d retries: %v", ErrLLMFailure, maxRetryAttempts, lastErr)
}

// classifyError wraps Bedrock errors into ErrLLMFailure with descriptive messages.
func (c *Client) classifyError(err error) error {
	var accessDenied *brtypes.AccessDeniedException
	if errors.As(err, &accessDenied) {
		return fmt.Errorf("%w: credential or permission issue: %v", ErrLLMFailure, err)
	}

	var notFound *brtypes.ResourceNotFoundException
	if errors.As(err, &notFound) {
		return fmt.Errorf("%w: model not found: %s", ErrLLMFailure, c.modelID)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: request timed out after %s", ErrLLMFailure, c.timeout)
	}

	return fmt.Errorf("%w: %v", ErrLLMFailure, err)
}
