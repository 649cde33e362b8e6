package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mcarruthers/shotsort/internal/core/domain"
	"github.com/mcarruthers/shotsort/internal/core/ports"
	"github.com/mcarruthers/shotsort/internal/textutil"
)

// ClassifyOutcome names which path produced the final category.
type ClassifyOutcome string

const (
	OutcomeRemote   ClassifyOutcome = "remote"
	OutcomeFallback ClassifyOutcome = "fallback"
	OutcomeGateSkip ClassifyOutcome = "gate_skip"
)

// OutcomeObserver receives the path taken for each completed classification.
type OutcomeObserver func(outcome ClassifyOutcome)

var _ ports.ScreenshotProcessor = (*ProcessScreenshotUseCase)(nil)

// ProcessScreenshotUseCase coordinates classification for one screenshot:
// extract, clean, gate, remote attempt, validation, fallback. Every path ends
// with a category and status=done; no failure below this boundary is fatal.
type ProcessScreenshotUseCase struct {
	repo       ports.ScreenshotRepository
	categories ports.CategoryStore
	extractor  ports.TextExtractor
	remote     ports.TextClassifier
	fallback   ports.TextClassifier
	logger     *slog.Logger
	observe    OutcomeObserver
}

func NewProcessScreenshotUseCase(
	repo ports.ScreenshotRepository,
	categories ports.CategoryStore,
	extractor ports.TextExtractor,
	remote ports.TextClassifier,
	fallback ports.TextClassifier,
	logger *slog.Logger,
) *ProcessScreenshotUseCase {
	return &ProcessScreenshotUseCase{
		repo:       repo,
		categories: categories,
		extractor:  extractor,
		remote:     remote,
		fallback:   fallback,
		logger:     logger,
	}
}

// SetOutcomeObserver wires metrics without making the use case depend on them.
func (uc *ProcessScreenshotUseCase) SetOutcomeObserver(observe OutcomeObserver) {
	uc.observe = observe
}

// ProcessByID runs the classification pipeline for one screenshot. Extraction
// failure is empty text, remote failure or an unknown remote category falls
// through to the keyword fallback, and the catch-all absorbs everything else.
// Only a persistence failure can leave the record pending.
func (uc *ProcessScreenshotUseCase) ProcessByID(ctx context.Context, screenshotID string) error {
	shot, err := uc.repo.GetByID(ctx, screenshotID)
	if err != nil {
		return fmt.Errorf("fetch screenshot by id: %w", err)
	}
	if shot.Status == domain.StatusDone {
		// Redelivered work; the first completion won.
		uc.logger.Debug("screenshot already done", "screenshot_id", screenshotID)
		return nil
	}

	text := uc.extractText(ctx, shot)
	category, outcome := uc.resolveCategory(ctx, text)

	cls := domain.Classification{OCRText: text, CategoryID: category.ID}
	if err := uc.repo.CompleteClassification(ctx, shot.ID, cls); err != nil {
		return fmt.Errorf("complete classification: %w", err)
	}

	if uc.observe != nil {
		uc.observe(outcome)
	}
	uc.logger.Info("screenshot classified",
		"screenshot_id", shot.ID,
		"category", category.Name,
		"outcome", string(outcome),
	)
	return nil
}

// extractText runs OCR and normalization. Any extractor error degrades to
// empty text: the catch-all category is always a valid result.
func (uc *ProcessScreenshotUseCase) extractText(ctx context.Context, shot *domain.Screenshot) string {
	raw, err := uc.extractor.Extract(ctx, shot)
	if err != nil {
		uc.logger.Warn("text extraction failed; continuing with empty text",
			"screenshot_id", shot.ID, "error", err)
		return ""
	}
	return textutil.StripChrome(textutil.Clean(raw))
}

// resolveCategory walks the gate -> remote -> validate -> fallback chain and
// always returns a store-resolved category.
func (uc *ProcessScreenshotUseCase) resolveCategory(ctx context.Context, text string) (*domain.Category, ClassifyOutcome) {
	if !textutil.LooksSocial(text) {
		// Do not spend a remote call on text unlikely to be social content.
		return uc.resolveFallback(ctx, text), OutcomeGateSkip
	}

	name, err := uc.remote.Classify(ctx, text)
	if err != nil {
		uc.logger.Warn("remote classification failed; using fallback", "error", err)
		return uc.resolveFallback(ctx, text), OutcomeFallback
	}

	known, err := uc.categories.IsKnown(ctx, name)
	if err != nil {
		uc.logger.Error("taxonomy membership check", "category", name, "error", err)
		return uc.resolveFallback(ctx, text), OutcomeFallback
	}
	if !known {
		uc.logger.Warn("remote returned a category outside the taxonomy",
			"error", domain.WrapError(domain.ErrInvalidCategory, "validate remote result",
				fmt.Errorf("%q", name)),
		)
		return uc.resolveFallback(ctx, text), OutcomeFallback
	}

	category, err := uc.categories.ResolveOrCreate(ctx, name)
	if err != nil {
		uc.logger.Error("resolve remote category", "category", name, "error", err)
		return uc.resolveFallback(ctx, text), OutcomeFallback
	}
	return category, OutcomeRemote
}

// resolveFallback runs the keyword classifier and resolves its pick through
// the category store. The catch-all is the last resort when even resolution
// misbehaves, so this path cannot fail.
func (uc *ProcessScreenshotUseCase) resolveFallback(ctx context.Context, text string) *domain.Category {
	name, err := uc.fallback.Classify(ctx, text)
	if err != nil || name == "" {
		name = domain.CatchAllCategory
	}

	category, err := uc.categories.ResolveOrCreate(ctx, name)
	if err == nil {
		return category
	}
	uc.logger.Error("resolve fallback category", "category", name, "error", err)

	category, err = uc.categories.ResolveOrCreate(ctx, domain.CatchAllCategory)
	if err == nil {
		return category
	}
	uc.logger.Error("resolve catch-all category", "error", err)
	// Store unreachable; finish with a name-only catch-all record reference.
	return &domain.Category{Name: domain.CatchAllCategory, IsSystem: true}
}
