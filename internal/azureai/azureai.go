// Package azureai constructs ready-to-use Azure OpenAI clients from
// environment configuration.
package azureai

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Environment variables consumed during resolution.
const (
	EnvAPIKey        = "AZURE_OPENAI_KEY"
	EnvAPIVersion    = "AZURE_OPENAI_VERSION"
	EnvEndpoint      = "AZURE_OPENAI_ENDPOINT"
	EnvDeployment    = "AZURE_OPENAI_DEPLOYMENT_NAME"
	EnvDeploymentAlt = "AZURE_OPENAI_DEPLOYMENT"
)

// DefaultAPIVersion is used when AZURE_OPENAI_VERSION is not set.
const DefaultAPIVersion = "2024-02-15-preview"

// A literal 0 is dropped by the SDK's omitempty and the service would fall
// back to its own default temperature, so the smallest positive float
// stands in for deterministic sampling.
const deterministicTemperature = math.SmallestNonzeroFloat32

// LookupFunc reads one environment variable, reporting whether it was set.
// It matches the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// OSLookup reads from the real process environment.
func OSLookup(key string) (string, bool) {
	return os.LookupEnv(key)
}

// Settings holds the resolved connection values for one deployment.
// All four fields are non-empty after a successful Resolve, and Endpoint
// carries no trailing slash.
type Settings struct {
	APIKey     string
	APIVersion string
	Endpoint   string
	Deployment string
}

// MissingVarsError reports every required environment variable that was
// absent or empty during resolution, not just the first.
type MissingVarsError struct {
	Missing []string
}

func (e *MissingVarsError) Error() string {
	return "missing required environment variables: " + strings.Join(e.Missing, ", ")
}

// Resolve reads connection settings through lookup and validates them.
// The deployment name is taken from AZURE_OPENAI_DEPLOYMENT_NAME, falling
// back to AZURE_OPENAI_DEPLOYMENT; the primary silently wins when both are
// set. A set-but-empty variable counts as absent.
func Resolve(lookup LookupFunc) (*Settings, error) {
	s := &Settings{
		APIKey:     value(lookup, EnvAPIKey),
		APIVersion: value(lookup, EnvAPIVersion),
		Endpoint:   value(lookup, EnvEndpoint),
		Deployment: firstNonEmpty(lookup, EnvDeployment, EnvDeploymentAlt),
	}
	if s.APIVersion == "" {
		s.APIVersion = DefaultAPIVersion
	}

	var missing []string
	if s.APIKey == "" {
		missing = append(missing, EnvAPIKey)
	}
	if s.Endpoint == "" {
		missing = append(missing, EnvEndpoint)
	}
	if s.Deployment == "" {
		missing = append(missing, EnvDeployment)
	}
	if len(missing) > 0 {
		return nil, &MissingVarsError{Missing: missing}
	}

	s.Endpoint = strings.TrimRight(s.Endpoint, "/")
	return s, nil
}

func value(lookup LookupFunc, key string) string {
	v, _ := lookup(key)
	return v
}

// firstNonEmpty evaluates candidate variables in order and returns the
// first non-empty value, short-circuiting on a hit.
func firstNonEmpty(lookup LookupFunc, keys ...string) string {
	for _, key := range keys {
		if v := value(lookup, key); v != "" {
			return v
		}
	}
	return ""
}

// Client is an opaque handle for one Azure OpenAI deployment.
type Client struct {
	api        *openai.Client
	deployment string
}

// NewClient builds a client handle bound to the resolved settings.
// No network traffic occurs until the first request.
func NewClient(s *Settings) *Client {
	cfg := openai.DefaultAzureConfig(s.APIKey, s.Endpoint)
	cfg.APIVersion = s.APIVersion
	deployment := s.Deployment
	cfg.AzureModelMapperFunc = func(model string) string {
		return deployment
	}
	return &Client{
		api:        openai.NewClientWithConfig(cfg),
		deployment: deployment,
	}
}

// FromEnv resolves settings from the process environment and returns a
// client bound to them. Each call re-reads the environment and allocates
// a fresh handle.
func FromEnv() (*Client, error) {
	s, err := Resolve(OSLookup)
	if err != nil {
		return nil, err
	}
	return NewClient(s), nil
}

// Deployment returns the deployment name the client is bound to.
func (c *Client) Deployment() string {
	return c.deployment
}

// Complete sends a single-turn chat completion to the deployment and
// returns the assistant text. An empty system prompt is omitted from the
// request. SDK and transport errors pass through wrapped, untranslated.
func (c *Client) Complete(ctx context.Context, system, prompt string, maxTokens int) (string, error) {
	var messages []openai.ChatCompletionMessage
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.deployment,
		Messages:    messages,
		Temperature: deterministicTemperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("azure openai chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in API response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
