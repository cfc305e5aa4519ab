package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/qaztriage/backend/internal/models"
)

type Store struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

func (s *Store) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) InsertTickets(ctx context.Context, tickets []models.Ticket) (int64, error) {
	rows := make([][]any, 0, len(tickets))
	for _, t := range tickets {
		rows = append(rows, []any{
			t.ID, t.CreatedAt, t.Segment, t.Country, t.Region, t.Settlement,
			t.Street, t.House, t.Description, t.Attachments,
		})
	}
	return s.Pool.CopyFrom(ctx, pgx.Identifier{"tickets"},
		[]string{"id", "created_at", "segment", "country", "region", "settlement", "street", "house", "description", "attachments"},
		pgx.CopyFromRows(rows))
}

func (s *Store) InsertManagers(ctx context.Context, managers []models.Manager) (int64, error) {
	rows := make([][]any, 0, len(managers))
	for _, m := range managers {
		rows = append(rows, []any{m.ID, m.Name, m.Office, m.Role, m.Skills, m.CurrentLoad, m.UpdatedAt})
	}
	return s.Pool.CopyFrom(ctx, pgx.Identifier{"managers"},
		[]string{"id", "name", "office", "role", "skills", "current_load", "updated_at"},
		pgx.CopyFromRows(rows))
}

func (s *Store) InsertBusinessUnits(ctx context.Context, units []models.BusinessUnit) (int64, error) {
	rows := make([][]any, 0, len(units))
	for _, u := range units {
		rows = append(rows, []any{u.ID, u.Name, u.Address, u.Lat, u.Lon})
	}
	return s.Pool.CopyFrom(ctx, pgx.Identifier{"business_units"},
		[]string{"id", "name", "address", "lat", "lon"},
		pgx.CopyFromRows(rows))
}

func (s *Store) ListBusinessUnits(ctx context.Context) ([]models.BusinessUnit, error) {
	rows, err := s.Pool.Query(ctx, `SELECT id, name, address, lat, lon FROM business_units ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.BusinessUnit
	for rows.Next() {
		var u models.BusinessUnit
		if err := rows.Scan(&u.ID, &u.Name, &u.Address, &u.Lat, &u.Lon); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Store) UpdateBusinessUnitCoords(ctx context.Context, id string, lat, lon float64) error {
	_, err := s.Pool.Exec(ctx, `UPDATE business_units SET lat = $2, lon = $3 WHERE id = $1`, id, lat, lon)
	return err
}

func (s *Store) ListManagers(ctx context.Context, office string, skill string) ([]models.Manager, error) {
	query := `SELECT id, name, office, role, skills, current_load, updated_at FROM managers`
	args := []any{}
	switch {
	case office != "" && skill != "":
		query += ` WHERE office = $1 AND $2 = ANY(skills)`
		args = append(args, office, skill)
	case office != "":
		query += ` WHERE office = $1`
		args = append(args, office)
	case skill != "":
		query += ` WHERE $1 = ANY(skills)`
		args = append(args, skill)
	}
	query += ` ORDER BY office, name`

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Manager
	for rows.Next() {
		var m models.Manager
		if err := rows.Scan(&m.ID, &m.Name, &m.Office, &m.Role, &m.Skills, &m.CurrentLoad, &m.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetTicketsForProcessing returns tickets without an assignment record, in
// insertion order.
func (s *Store) GetTicketsForProcessing(ctx context.Context) ([]models.Ticket, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT t.id, t.created_at, t.segment, t.country, t.region, t.settlement,
		       t.street, t.house, t.description, t.attachments
		FROM tickets t
		LEFT JOIN processed_tickets p ON p.ticket_id = t.id
		WHERE p.ticket_id IS NULL
		ORDER BY t.created_at, t.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Ticket
	for rows.Next() {
		var t models.Ticket
		if err := rows.Scan(&t.ID, &t.CreatedAt, &t.Segment, &t.Country, &t.Region,
			&t.Settlement, &t.Street, &t.House, &t.Description, &t.Attachments); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) UpsertAIMetadata(ctx context.Context, tx pgx.Tx, meta models.AIMetadata) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO ai_metadata (ticket_id, request_type, tone, priority, language, summary, recommendation, image_analysis, source, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (ticket_id) DO UPDATE SET
			request_type = EXCLUDED.request_type,
			tone = EXCLUDED.tone,
			priority = EXCLUDED.priority,
			language = EXCLUDED.language,
			summary = EXCLUDED.summary,
			recommendation = EXCLUDED.recommendation,
			image_analysis = EXCLUDED.image_analysis,
			source = EXCLUDED.source,
			created_at = EXCLUDED.created_at`,
		meta.TicketID, meta.RequestType, meta.Tone, meta.Priority, meta.Language,
		meta.Summary, meta.Recommendation, meta.ImageAnalysis, meta.Source, meta.CreatedAt)
	return err
}

func (s *Store) UpsertProcessedTicket(ctx context.Context, tx pgx.Tx, p models.ProcessedTicket) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO processed_tickets (id, ticket_id, manager_id, manager_name, office, attachment_info, reason, assigned_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (ticket_id) DO UPDATE SET
			manager_id = EXCLUDED.manager_id,
			manager_name = EXCLUDED.manager_name,
			office = EXCLUDED.office,
			attachment_info = EXCLUDED.attachment_info,
			reason = EXCLUDED.reason,
			assigned_at = EXCLUDED.assigned_at`,
		p.ID, p.TicketID, p.ManagerID, p.ManagerName, p.Office, p.AttachmentInfo, p.Reason, p.AssignedAt)
	return err
}

func (s *Store) UpdateManagerLoad(ctx context.Context, tx pgx.Tx, managerID string, delta int) error {
	_, err := tx.Exec(ctx, `UPDATE managers SET current_load = current_load + $2, updated_at = now() WHERE id = $1`, managerID, delta)
	return err
}

func (s *Store) ListProcessedTickets(ctx context.Context, office string, limit, offset int) ([]map[string]any, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	query := `
		SELECT p.ticket_id, p.manager_name, p.office, p.reason, p.assigned_at,
		       m.request_type, m.tone, m.priority, m.language, m.summary, m.source
		FROM processed_tickets p
		JOIN ai_metadata m ON m.ticket_id = p.ticket_id`
	args := []any{}
	if office != "" {
		query += ` WHERE p.office = $3`
		args = append(args, limit, offset, office)
	} else {
		args = append(args, limit, offset)
	}
	query += ` ORDER BY p.assigned_at DESC LIMIT $1 OFFSET $2`

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []map[string]any
	for rows.Next() {
		var (
			ticketID, office, reason, requestType, tone, language, summary, source string
			managerName                                                            *string
			priority                                                               int
			assignedAt                                                             time.Time
		)
		if err := rows.Scan(&ticketID, &managerName, &office, &reason, &assignedAt,
			&requestType, &tone, &priority, &language, &summary, &source); err != nil {
			return nil, err
		}
		out = append(out, map[string]any{
			"ticket_id":    ticketID,
			"manager_name": managerName,
			"office":       office,
			"reason":       reason,
			"assigned_at":  assignedAt,
			"request_type": requestType,
			"tone":         tone,
			"priority":     priority,
			"language":     language,
			"summary":      summary,
			"source":       source,
		})
	}
	return out, rows.Err()
}

func (s *Store) CreateRun(ctx context.Context, status string) (string, error) {
	id := uuid.NewString()
	_, err := s.Pool.Exec(ctx, `INSERT INTO runs (id, started_at, status) VALUES ($1, now(), $2)`, id, status)
	return id, err
}

func (s *Store) FinishRun(ctx context.Context, runID string, status string, summary []byte) error {
	_, err := s.Pool.Exec(ctx, `UPDATE runs SET finished_at = now(), status = $2, summary = $3 WHERE id = $1`, runID, status, summary)
	return err
}

func (s *Store) GetLatestRun(ctx context.Context) (models.Run, error) {
	var r models.Run
	var finished *time.Time
	err := s.Pool.QueryRow(ctx, `
		SELECT id, started_at, finished_at, status, COALESCE(summary, '{}'::jsonb)
		FROM runs ORDER BY started_at DESC LIMIT 1`).
		Scan(&r.ID, &r.StartedAt, &finished, &r.Status, &r.Summary)
	if err != nil {
		return models.Run{}, err
	}
	if finished != nil {
		r.FinishedAt = *finished
	}
	return r, nil
}

func (s *Store) Truncate(ctx context.Context) error {
	_, err := s.Pool.Exec(ctx, `TRUNCATE tickets, managers, business_units, ai_metadata, processed_tickets, runs`)
	return err
}
