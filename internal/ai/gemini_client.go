package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"pdf-qa-backend/internal/config"
	"pdf-qa-backend/internal/logger"
	"pdf-qa-backend/internal/telemetry"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	genai "github.com/google/generative-ai-go/genai"
)

// One retry with backoff, then the failure surfaces as a typed error at
// the pipeline layer. Never more.
const (
	maxAttempts  = 2
	retryBackoff = 500 * time.Millisecond
)

// GeminiClient implements the pipeline's embedding/generation capability
// on Google Generative AI. The same client instance must serve both index
// builds and question embedding: embeddings from different models are not
// comparable.
type GeminiClient struct {
	client      *genai.Client
	breaker     *gobreaker.CircuitBreaker
	rateLimiter *rate.Limiter
	embedModel  string
	genModel    string
	metrics     *telemetry.Metrics
}

func NewGeminiClient(ctx context.Context, cfg *config.Config, metrics *telemetry.Metrics) (*GeminiClient, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("missing GEMINI_API_KEY")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, err
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "GeminiAPI",
		MaxRequests: 5,
		Interval:    10 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Printf("Circuit breaker %s: %s -> %s", name, from, to)
		},
	})

	rpm := cfg.GeminiRPM
	if rpm <= 0 {
		rpm = 60
	}
	// RPM limit with some buffer
	rateLimiter := rate.NewLimiter(rate.Limit(float64(rpm)*0.9/60.0), rpm/10+1)

	return &GeminiClient{
		client:      client,
		breaker:     breaker,
		rateLimiter: rateLimiter,
		embedModel:  cfg.GoogleEmbeddingsModel,
		genModel:    cfg.GeminiGenerationModel,
		metrics:     metrics,
	}, nil
}

// Embed returns an embedding vector for the given text.
func (gc *GeminiClient) Embed(ctx context.Context, text string) ([]float32, error) {
	tracer := otel.Tracer("gemini-client")
	ctx, span := tracer.Start(ctx, "gemini.embed")
	defer span.End()
	span.SetAttributes(
		attribute.Int("gemini.text_chars", len(text)),
		attribute.String("gemini.model", gc.embedModel),
	)

	var values []float32
	err := gc.execute(ctx, func() error {
		model := gc.client.EmbeddingModel(gc.embedModel)
		resp, err := model.EmbedContent(ctx, genai.Text(text))
		if err != nil {
			return err
		}
		if resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
			return errors.New("no embedding returned")
		}
		values = resp.Embedding.Values
		return nil
	})
	if err != nil {
		span.SetAttributes(attribute.Bool("gemini.error", true))
		return nil, err
	}
	span.SetAttributes(attribute.Int("gemini.vector_dim", len(values)))
	return values, nil
}

// Generate produces text for the given prompt.
func (gc *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	tracer := otel.Tracer("gemini-client")
	ctx, span := tracer.Start(ctx, "gemini.generate")
	defer span.End()
	span.SetAttributes(
		attribute.Int("gemini.prompt_chars", len(prompt)),
		attribute.String("gemini.model", gc.genModel),
	)

	var answer string
	err := gc.execute(ctx, func() error {
		model := gc.client.GenerativeModel(gc.genModel)
		model.SetTemperature(0.2)
		model.SetMaxOutputTokens(2048)

		resp, err := model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			return err
		}

		text := extractText(resp)
		if text == "" {
			return errors.New("no text returned")
		}
		answer = text

		if gc.metrics != nil {
			gc.metrics.RecordTokensUsed(extractTokenUsage(resp), gc.genModel)
		}
		return nil
	})
	if err != nil {
		span.SetAttributes(attribute.Bool("gemini.error", true))
		return "", err
	}
	return answer, nil
}

// execute runs fn behind the rate limiter and circuit breaker, retrying
// transient failures once with backoff.
func (gc *GeminiClient) execute(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			logger.Warn("retrying Gemini call after failure", "attempt", attempt+1, "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryBackoff):
			}
		}

		if werr := gc.rateLimiter.Wait(ctx); werr != nil {
			return werr
		}

		_, err = gc.breaker.Execute(func() (interface{}, error) {
			return nil, fn()
		})
		if err == nil {
			return nil
		}
		if errors.Is(err, gobreaker.ErrOpenState) || ctx.Err() != nil {
			return err
		}
	}
	return err
}

// extractText concatenates the text parts of a generation response.
func extractText(resp *genai.GenerateContentResponse) string {
	text := ""
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				text += string(t)
			}
		}
	}
	return text
}

// extractTokenUsage reads actual token usage from response metadata,
// estimating from the response text when absent (~4 chars per token).
func extractTokenUsage(resp *genai.GenerateContentResponse) int64 {
	if resp.UsageMetadata != nil {
		return int64(resp.UsageMetadata.TotalTokenCount)
	}
	estimated := int64(len(extractText(resp)) / 4)
	if estimated < 1 {
		estimated = 1
	}
	return estimated
}

// Close the client
func (gc *GeminiClient) Close() error {
	if gc.client != nil {
		return gc.client.Close()
	}
	return nil
}
