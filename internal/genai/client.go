package genai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ruliana/technoir-transmission-generator/internal/errors"
	"github.com/sashabaranov/go-openai"
)

const MaxTokens = 4096

// Config carries the credential and model selection for a Client. The key is
// fixed at construction: set once at session start, read-only thereafter.
// There is no ambient credential lookup anywhere else.
type Config struct {
	APIKey     string
	BaseURL    string
	TextModel  string
	ImageModel string
}

// Client implements Generator on top of the OpenAI API.
type Client struct {
	cfg    Config
	client *openai.Client
	logger *slog.Logger
}

// NewClient constructs a Client. An empty API key is allowed here so that the
// user can enter one later; every call fails fast with ErrMissingCredential
// until then.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.TextModel == "" {
		cfg.TextModel = openai.GPT4Turbo1106
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = openai.CreateImageModelDallE3
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Client{
		cfg:    cfg,
		client: openai.NewClientWithConfig(clientCfg),
		logger: logger.With("source", "genai.Client"),
	}
}

// StreamText starts a structured-text completion stream. The schema
// instruction rides along in the system message and JSON mode is requested,
// but the response is still validated after accumulation; the model is not
// trusted to honor either.
func (c *Client) StreamText(ctx context.Context, req TextRequest) (Stream, error) {
	if c.cfg.APIKey == "" {
		return nil, ErrMissingCredential
	}

	system := req.System
	if len(req.Schema.Fields) > 0 {
		system = system + "\n\n" + req.Schema.Instruction()
	}

	completion, err := c.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{ //nolint:exhaustruct // this is better for readability
		Model:     c.cfg.TextModel,
		MaxTokens: MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "create chat completion stream")
	}
	return chatStream{inner: completion}, nil
}

// chatStream adapts the OpenAI stream to the Stream interface.
type chatStream struct {
	inner *openai.ChatCompletionStream
}

func (s chatStream) Recv() (string, error) {
	response, err := s.inner.Recv()
	if err != nil {
		// io.EOF included, the caller handles it.
		return "", err
	}
	if len(response.Choices) == 0 {
		return "", nil
	}
	return response.Choices[0].Delta.Content, nil
}

func (s chatStream) Close() error {
	if err := s.inner.Close(); err != nil {
		return errors.Wrap(err, "close completion stream")
	}
	return nil
}

// Image generates one image and returns it as a data URI. Apart from the
// credential precondition, every failure maps to an empty result with a
// warning log; callers never branch on image errors.
func (c *Client) Image(ctx context.Context, req ImageRequest) (string, error) {
	if c.cfg.APIKey == "" {
		return "", ErrMissingCredential
	}

	response, err := c.client.CreateImage(ctx, openai.ImageRequest{ //nolint:exhaustruct // this is better for readability
		Model:          c.cfg.ImageModel,
		Prompt:         req.Prompt,
		Size:           sizeForAspect(req.Aspect),
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
		N:              1,
	})
	if err != nil {
		c.logger.WarnContext(ctx, "image generation failed, continuing without image", errors.SlogError(err))
		return "", nil
	}
	if len(response.Data) == 0 || response.Data[0].B64JSON == "" {
		c.logger.WarnContext(ctx, "image generation returned no payload")
		return "", nil
	}
	return fmt.Sprintf("data:image/png;base64,%s", response.Data[0].B64JSON), nil
}

func sizeForAspect(aspect Aspect) string {
	if aspect == AspectWide {
		return openai.CreateImageSize1792x1024
	}
	return openai.CreateImageSize1024x1024
}
