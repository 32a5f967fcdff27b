package ai

import (
	"context"
	"log/slog"
	"time"
)

// Drafter builds prompts, calls the completer and parses the answers. Transport
// failures come back as errors; unusable answers come back as rejected results.
type Drafter struct {
	completer Completer
	logger    *slog.Logger
}

func NewDrafter(completer Completer, logger *slog.Logger) *Drafter {
	return &Drafter{completer: completer, logger: logger}
}

func (d *Drafter) complete(ctx context.Context, kind, system, user string) (string, error) {
	start := time.Now()
	raw, err := d.completer.Complete(ctx, system, user)
	if err != nil {
		d.logger.ErrorContext(ctx, "ai completion failed", "kind", kind, "error", err)
		return "", err
	}
	d.logger.InfoContext(ctx, "ai completion",
		"kind", kind,
		"duration_ms", time.Since(start).Milliseconds(),
		"bytes", len(raw),
	)
	return raw, nil
}

func logRejected[T any](ctx context.Context, logger *slog.Logger, kind string, r Result[T]) Result[T] {
	if !r.OK() {
		logger.WarnContext(ctx, "ai draft rejected", "kind", kind, "reason", r.Reason)
	}
	return r
}

func (d *Drafter) DraftDiet(ctx context.Context, in DietInput) (Result[DietDraft], error) {
	system, user := dietPrompt(in)
	raw, err := d.complete(ctx, "diet", system, user)
	if err != nil {
		return Result[DietDraft]{}, err
	}
	return logRejected(ctx, d.logger, "diet", ParseDiet(raw)), nil
}

func (d *Drafter) DraftWorkout(ctx context.Context, in WorkoutInput) (Result[WorkoutDraft], error) {
	system, user := workoutPrompt(in)
	raw, err := d.complete(ctx, "workout", system, user)
	if err != nil {
		return Result[WorkoutDraft]{}, err
	}
	return logRejected(ctx, d.logger, "workout", ParseWorkout(raw)), nil
}

func (d *Drafter) DraftDivisions(ctx context.Context, in DivisionsInput) (Result[DivisionsDraft], error) {
	system, user := divisionsPrompt(in)
	raw, err := d.complete(ctx, "divisions", system, user)
	if err != nil {
		return Result[DivisionsDraft]{}, err
	}
	return logRejected(ctx, d.logger, "divisions", ParseDivisions(raw, in.Divisions)), nil
}

func (d *Drafter) SuggestSchedule(ctx context.Context, in ScheduleInput) (Result[ScheduleDraft], error) {
	system, user := schedulePrompt(in)
	raw, err := d.complete(ctx, "schedule", system, user)
	if err != nil {
		return Result[ScheduleDraft]{}, err
	}
	r := ParseSchedule(raw, in.Divisions)
	if r.OK() {
		for _, day := range in.UnavailableDays {
			r.Value.Days[day] = nil
		}
	}
	return logRejected(ctx, d.logger, "schedule", r), nil
}
