package assist

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/kutahiru/idea-labo-sub002/internal/domain/mandalart"
	"github.com/kutahiru/idea-labo-sub002/internal/domain/osborn"
	"github.com/kutahiru/idea-labo-sub002/internal/events"
)

// Publisher fans out completion notifications. Satisfied by events.Bridge.
type Publisher interface {
	Publish(ctx context.Context, tenantID, topicID string, event events.Event)
}

// Worker runs AI fill jobs asynchronously. Its only contract with the rest of
// the system is that every request eventually publishes an AI_COMPLETED or
// AI_FAILED event carrying the correlation id handed back to the caller.
type Worker struct {
	gen        *Generator
	mandalarts *mandalart.Service
	checklists *osborn.Service
	publisher  Publisher
	logger     *slog.Logger
}

// NewWorker creates an assist worker.
func NewWorker(gen *Generator, mandalarts *mandalart.Service, checklists *osborn.Service, publisher Publisher, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		gen:        gen,
		mandalarts: mandalarts,
		checklists: checklists,
		publisher:  publisher,
		logger:     logger,
	}
}

// RequestMandalartFill validates access, then generates the eight subgoals in
// the background. Returns the correlation id for the eventual event.
func (w *Worker) RequestMandalartFill(ctx context.Context, tenantID, userID, mandalartID string) (string, error) {
	grid, err := w.mandalarts.Get(ctx, tenantID, userID, mandalartID)
	if err != nil {
		return "", err
	}

	corrID := uuid.NewString()
	bg := context.WithoutCancel(ctx)
	go w.fillMandalart(bg, tenantID, userID, mandalartID, grid.Mandalart.Theme, corrID)
	return corrID, nil
}

// RequestChecklistFill validates access, then generates one answer per Osborn
// lens in the background. Returns the correlation id for the eventual event.
func (w *Worker) RequestChecklistFill(ctx context.Context, tenantID, userID, checklistID string) (string, error) {
	sheet, err := w.checklists.Get(ctx, tenantID, userID, checklistID)
	if err != nil {
		return "", err
	}

	corrID := uuid.NewString()
	bg := context.WithoutCancel(ctx)
	go w.fillChecklist(bg, tenantID, userID, checklistID, sheet.Checklist.Theme, corrID)
	return corrID, nil
}

func (w *Worker) fillMandalart(ctx context.Context, tenantID, userID, mandalartID, theme, corrID string) {
	subgoals, err := w.gen.Ideas(ctx, theme, "distinct subgoals that would advance this goal", mandalart.Blocks-1)
	if err == nil {
		err = w.mandalarts.FillSubgoals(ctx, tenantID, userID, mandalartID, subgoals)
	}

	if err != nil {
		w.logger.Error("mandalart fill failed", "mandalart", mandalartID, "error", err)
		w.publisher.Publish(ctx, tenantID, mandalartID, events.GenerationFailed{
			CorrelationID: corrID,
			TargetKind:    "mandalart",
			TargetID:      mandalartID,
			Reason:        err.Error(),
		})
		return
	}

	w.publisher.Publish(ctx, tenantID, mandalartID, events.GenerationCompleted{
		CorrelationID: corrID,
		TargetKind:    "mandalart",
		TargetID:      mandalartID,
	})
}

func (w *Worker) fillChecklist(ctx context.Context, tenantID, userID, checklistID, theme, corrID string) {
	answers, err := w.generateAnswers(ctx, theme)
	if err == nil {
		err = w.checklists.FillAnswers(ctx, tenantID, userID, checklistID, answers)
	}

	if err != nil {
		w.logger.Error("checklist fill failed", "checklist", checklistID, "error", err)
		w.publisher.Publish(ctx, tenantID, checklistID, events.GenerationFailed{
			CorrelationID: corrID,
			TargetKind:    "checklist",
			TargetID:      checklistID,
			Reason:        err.Error(),
		})
		return
	}

	w.publisher.Publish(ctx, tenantID, checklistID, events.GenerationCompleted{
		CorrelationID: corrID,
		TargetKind:    "checklist",
		TargetID:      checklistID,
	})
}

func (w *Worker) generateAnswers(ctx context.Context, theme string) (map[osborn.Lens]string, error) {
	framing := fmt.Sprintf(
		"idea prompts, one for each Osborn checklist lens in this order: %v", osborn.Lenses,
	)
	lines, err := w.gen.Ideas(ctx, theme, framing, len(osborn.Lenses))
	if err != nil {
		return nil, err
	}

	answers := make(map[osborn.Lens]string, len(lines))
	for i, line := range lines {
		if i >= len(osborn.Lenses) {
			break
		}
		answers[osborn.Lenses[i]] = line
	}
	return answers, nil
}
