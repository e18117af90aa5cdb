package synthesize

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/loreline/loreline/internal/models"
	"github.com/loreline/loreline/internal/oracle"
)

// Options tunes the chunking thresholds.
type Options struct {
	// SingleCallThreshold is the maximum content duration handled with
	// one LLM call.
	SingleCallThreshold time.Duration
	// WindowMax is the maximum duration per window when chunking.
	WindowMax time.Duration
}

// Engine synthesizes structured documents from content segments.
type Engine struct {
	oracle          oracle.Oracle
	singleThreshold time.Duration
	windowMax       time.Duration
	logger          *slog.Logger
}

// NewEngine builds a synthesis engine. Zero options get the defaults of
// a 90 minute single-call threshold and 30 minute windows.
func NewEngine(o oracle.Oracle, opts Options, logger *slog.Logger) *Engine {
	if opts.SingleCallThreshold <= 0 {
		opts.SingleCallThreshold = 90 * time.Minute
	}
	if opts.WindowMax <= 0 {
		opts.WindowMax = 30 * time.Minute
	}
	return &Engine{
		oracle:          o,
		singleThreshold: opts.SingleCallThreshold,
		windowMax:       opts.WindowMax,
		logger:          logger.With("component", "synthesize"),
	}
}

// Synthesize produces a structured document for the segments. Content
// within the single-call threshold goes through one LLM call. Longer
// content is partitioned into windows, synthesized per window, and the
// partial documents merged.
func (e *Engine) Synthesize(ctx context.Context, segments []models.ContentSegment, title string) (*models.StructuredDocument, error) {
	if len(segments) == 0 {
		return &models.StructuredDocument{
			Title:       orElse(title, "Notes"),
			ContentType: models.ContentTypeGeneral,
			Overview:    "No content available",
		}, nil
	}

	contentType := DetectContentType(models.FlatText(segments), title)
	duration := time.Duration(models.TotalDuration(segments) * float64(time.Second))
	e.logger.Info("synthesis started",
		"content_type", contentType,
		"segments", len(segments),
		"duration", duration.Round(time.Second))

	if duration < e.singleThreshold {
		doc, err := e.synthesizeWindow(ctx, segments, contentType, title, 0, 0)
		if err != nil {
			return nil, err
		}
		if title != "" {
			doc.Title = title
		}
		return doc, nil
	}

	windows := Partition(segments, e.windowMax)
	e.logger.Info("content partitioned", "windows", len(windows), "window_max", e.windowMax)

	parts := make([]*models.StructuredDocument, 0, len(windows))
	for i, window := range windows {
		doc, err := e.synthesizeWindow(ctx, window, contentType, title, i+1, len(windows))
		if err != nil {
			return nil, fmt.Errorf("window %d/%d: %w", i+1, len(windows), err)
		}
		parts = append(parts, doc)
	}

	return Merge(parts, title), nil
}

// synthesizeWindow runs one LLM call for a window and parses the result.
// A response that fails to parse gets one degraded retry with a plain
// prompt. If that also fails to parse, a placeholder document carrying
// the parse error is returned rather than failing the whole run.
func (e *Engine) synthesizeWindow(ctx context.Context, segments []models.ContentSegment, contentType models.ContentType, title string, part, totalParts int) (*models.StructuredDocument, error) {
	response, err := e.oracle.Complete(ctx, buildPrompt(segments, contentType, part, totalParts))
	if err != nil {
		return nil, fmt.Errorf("synthesis call: %w", err)
	}

	doc, parseErr := parseDocument(response, contentType, title)
	if parseErr == nil {
		return doc, nil
	}

	e.logger.Warn("response parse failed, retrying with plain prompt",
		"part", part, "error", parseErr)
	response, err = e.oracle.Complete(ctx, buildPlainPrompt(models.FlatText(segments), contentType))
	if err != nil {
		return nil, fmt.Errorf("degraded synthesis call: %w", err)
	}

	doc, parseErr = parseDocument(response, contentType, title)
	if parseErr == nil {
		return doc, nil
	}

	e.logger.Error("degraded retry also unparseable, emitting placeholder",
		"part", part, "error", parseErr)
	return &models.StructuredDocument{
		Title:       orElse(title, "Notes"),
		ContentType: models.ContentTypeGeneral,
		Overview:    "Notes generation encountered an error",
		KeyInsights: []models.Insight{{
			Insight: "Could not parse model response",
			Context: parseErr.Error(),
		}},
	}, nil
}

// parseDocument decodes a synthesis response. The detected content type
// overrides whatever the model claims.
func parseDocument(response string, contentType models.ContentType, fallbackTitle string) (*models.StructuredDocument, error) {
	var doc models.StructuredDocument
	if err := oracle.ParseJSON(response, &doc); err != nil {
		return nil, err
	}
	doc.ContentType = contentType
	if doc.Title == "" {
		doc.Title = orElse(fallbackTitle, "Untitled Notes")
	}
	return &doc, nil
}
