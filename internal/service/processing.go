package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/qaztriage/backend/internal/ai"
	"github.com/qaztriage/backend/internal/attach"
	"github.com/qaztriage/backend/internal/db"
	"github.com/qaztriage/backend/internal/geo"
	"github.com/qaztriage/backend/internal/models"
)

// ProcessingService runs one batch: classify every pending ticket, assign
// it, and persist the pair. Classification and assignment never fail; a
// persistence error aborts the remaining items of the run while keeping
// the completed ones.
type ProcessingService struct {
	Store           *db.Store
	Classifier      ai.Classifier
	Logger          zerolog.Logger
	AttachmentsRoot string
	EngineOptions   EngineOptions
}

type RunSummary struct {
	Events []map[string]any `json:"events"`
	Counts map[string]any   `json:"counts"`
}

func (s *ProcessingService) ProcessTickets(ctx context.Context) (RunSummary, error) {
	tickets, err := s.Store.GetTicketsForProcessing(ctx)
	if err != nil {
		return RunSummary{}, err
	}
	units, err := s.Store.ListBusinessUnits(ctx)
	if err != nil {
		return RunSummary{}, err
	}
	managers, err := s.Store.ListManagers(ctx, "", "")
	if err != nil {
		return RunSummary{}, err
	}

	roster := make([]*models.Manager, len(managers))
	for i := range managers {
		roster[i] = &managers[i]
	}

	opts := s.EngineOptions
	opts.ExtraCoords = mergeUnitCoords(opts.ExtraCoords, units)
	engine := NewAssignmentEngine(roster, units, opts)

	summary := RunSummary{Counts: map[string]any{}}
	start := time.Now()
	summary.Events = append(summary.Events, map[string]any{
		"type":    "batch_start",
		"message": "Tickets ready for processing",
		"count":   len(tickets),
		"time":    time.Now().UTC(),
	})

	var (
		assigned      int
		unassigned    int
		bySource      = map[string]int{}
		byRequestType = map[string]int{}
	)

	for _, t := range tickets {
		atts := attach.Parse(t.Attachments)
		meta := s.Classifier.Classify(ctx, ai.Request{
			TicketID: t.ID,
			Text:     t.Description,
			Hint:     attach.HintText(atts),
			Images:   attach.ResolveImages(s.AttachmentsRoot, atts),
		})
		bySource[meta.Source]++
		byRequestType[string(meta.RequestType)]++

		result := engine.Assign(t, meta)
		result.AttachmentInfo = attach.HintText(atts)
		if result.ManagerName != "" {
			assigned++
		} else {
			unassigned++
		}

		if err := s.persist(ctx, meta, result); err != nil {
			s.Logger.Error().Err(err).Str("ticket_id", t.ID).Msg("assignment write failed, aborting run")
			return summary, fmt.Errorf("persist ticket %s: %w", t.ID, err)
		}
		s.Logger.Debug().
			Str("ticket_id", t.ID).
			Str("request_type", string(meta.RequestType)).
			Str("source", meta.Source).
			Str("office", result.Office).
			Str("manager", result.ManagerName).
			Msg("ticket processed")
	}

	summary.Events = append(summary.Events, map[string]any{
		"type":       "batch_done",
		"assigned":   assigned,
		"unassigned": unassigned,
		"elapsed_ms": time.Since(start).Milliseconds(),
		"time":       time.Now().UTC(),
	})
	summary.Counts["tickets_processed"] = len(tickets)
	summary.Counts["assigned"] = assigned
	summary.Counts["unassigned"] = unassigned
	summary.Counts["by_source"] = bySource
	summary.Counts["by_request_type"] = byRequestType
	return summary, nil
}

func (s *ProcessingService) persist(ctx context.Context, meta models.AIMetadata, result models.ProcessedTicket) error {
	return s.Store.WithTx(ctx, func(tx pgx.Tx) error {
		if err := s.Store.UpsertAIMetadata(ctx, tx, meta); err != nil {
			return err
		}
		if err := s.Store.UpsertProcessedTicket(ctx, tx, result); err != nil {
			return err
		}
		if result.ManagerID != nil {
			return s.Store.UpdateManagerLoad(ctx, tx, *result.ManagerID, 1)
		}
		return nil
	})
}

// mergeUnitCoords folds geocoded business-unit coordinates into the
// engine's coordinate lookup; the static city table still wins.
func mergeUnitCoords(extra map[string]geo.Point, units []models.BusinessUnit) map[string]geo.Point {
	out := map[string]geo.Point{}
	for k, v := range extra {
		out[k] = v
	}
	for _, u := range units {
		if u.Lat == nil || u.Lon == nil {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(u.Name))
		if _, exists := out[key]; !exists {
			out[key] = geo.Point{Lat: *u.Lat, Lon: *u.Lon}
		}
	}
	return out
}
