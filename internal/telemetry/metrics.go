package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all application metrics
type Metrics struct {
	RequestCounter     metric.Int64Counter
	RequestDuration    metric.Float64Histogram
	IndexBuildDuration metric.Float64Histogram
	ChunksEmbedded     metric.Int64Counter
	QuestionsAnswered  metric.Int64Counter
	AnswerConfidence   metric.Float64Histogram
	TokensUsed         metric.Int64Counter
}

// InitMetrics initializes all application metrics
func InitMetrics() (*Metrics, error) {
	meter := otel.Meter("pdf-qa-backend")

	requestCounter, err := meter.Int64Counter(
		"http.requests.total",
		metric.WithDescription("Total HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		"http.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	indexBuildDuration, err := meter.Float64Histogram(
		"index.build.duration",
		metric.WithDescription("Document index build duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	chunksEmbedded, err := meter.Int64Counter(
		"index.chunks.embedded",
		metric.WithDescription("Total chunks embedded into indexes"),
	)
	if err != nil {
		return nil, err
	}

	questionsAnswered, err := meter.Int64Counter(
		"qa.questions.total",
		metric.WithDescription("Total questions processed"),
	)
	if err != nil {
		return nil, err
	}

	answerConfidence, err := meter.Float64Histogram(
		"qa.answer.confidence",
		metric.WithDescription("Confidence scores of answered questions"),
	)
	if err != nil {
		return nil, err
	}

	tokensUsed, err := meter.Int64Counter(
		"gemini.tokens.used",
		metric.WithDescription("Total Gemini tokens used"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		RequestCounter:     requestCounter,
		RequestDuration:    requestDuration,
		IndexBuildDuration: indexBuildDuration,
		ChunksEmbedded:     chunksEmbedded,
		QuestionsAnswered:  questionsAnswered,
		AnswerConfidence:   answerConfidence,
		TokensUsed:         tokensUsed,
	}, nil
}

// RecordRequest records HTTP request metrics
func (m *Metrics) RecordRequest(method, path, status string, duration float64) {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("http.path", path),
		attribute.String("http.status", status),
	}

	m.RequestCounter.Add(context.Background(), 1, metric.WithAttributes(attrs...))
	m.RequestDuration.Record(context.Background(), duration, metric.WithAttributes(attrs...))
}

// RecordIndexBuild records a successful index build
func (m *Metrics) RecordIndexBuild(duration float64, chunks int) {
	m.IndexBuildDuration.Record(context.Background(), duration)
	m.ChunksEmbedded.Add(context.Background(), int64(chunks))
}

// RecordQuestion records a processed question
func (m *Metrics) RecordQuestion(confidence float64, success bool) {
	attrs := []attribute.KeyValue{
		attribute.Bool("qa.success", success),
	}
	m.QuestionsAnswered.Add(context.Background(), 1, metric.WithAttributes(attrs...))
	if success {
		m.AnswerConfidence.Record(context.Background(), confidence)
	}
}

// RecordTokensUsed records Gemini token usage
func (m *Metrics) RecordTokensUsed(tokens int64, model string) {
	attrs := []attribute.KeyValue{
		attribute.String("gemini.model", model),
	}
	m.TokensUsed.Add(context.Background(), tokens, metric.WithAttributes(attrs...))
}
