package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/courtside/courtside-api/internal/models"
)

// TournamentRepository persists the Tournament aggregate. Registrations are
// append-only, matches are written once at bracket generation and mutated in
// place afterwards. Every write bumps the aggregate version with a
// compare-and-set, which is what makes the bracket idempotency guard safe
// against concurrent generation.
type TournamentRepository struct {
	db *sqlx.DB
}

// NewTournamentRepository constructs the repository.
func NewTournamentRepository(db *sqlx.DB) *TournamentRepository {
	return &TournamentRepository{db: db}
}

const tournamentColumns = `id, title, description, sport, venue_name, venue_city, start_date, end_date,
        registration_open_at, registration_close_at, max_participants, entry_fee, currency,
        status, visibility, format, current_round, created_by, version, created_at, updated_at`

type matchRow struct {
	ID           string             `db:"id"`
	TournamentID string             `db:"tournament_id"`
	Round        int                `db:"round"`
	MatchNumber  int                `db:"match_number"`
	SlotIndex    int                `db:"slot_index"`
	PlayerAKind  *string            `db:"player_a_kind"`
	PlayerAID    *string            `db:"player_a_id"`
	PlayerBKind  *string            `db:"player_b_kind"`
	PlayerBID    *string            `db:"player_b_id"`
	ScoreA       int                `db:"score_a"`
	ScoreB       int                `db:"score_b"`
	WinnerKind   *string            `db:"winner_kind"`
	WinnerID     *string            `db:"winner_id"`
	Court        string             `db:"court"`
	ScheduledAt  *time.Time         `db:"scheduled_at"`
	Status       models.MatchStatus `db:"status"`
}

func entrantFromColumns(kind, id *string) *models.Entrant {
	if kind == nil || id == nil {
		return nil
	}
	return &models.Entrant{Kind: models.EntrantKind(*kind), ID: *id}
}

func entrantToColumns(e *models.Entrant) (*string, *string) {
	if e == nil {
		return nil, nil
	}
	kind := string(e.Kind)
	id := e.ID
	return &kind, &id
}

func (row *matchRow) toModel() models.Match {
	return models.Match{
		ID:           row.ID,
		TournamentID: row.TournamentID,
		Round:        row.Round,
		MatchNumber:  row.MatchNumber,
		SlotIndex:    row.SlotIndex,
		PlayerA:      entrantFromColumns(row.PlayerAKind, row.PlayerAID),
		PlayerB:      entrantFromColumns(row.PlayerBKind, row.PlayerBID),
		ScoreA:       row.ScoreA,
		ScoreB:       row.ScoreB,
		Winner:       entrantFromColumns(row.WinnerKind, row.WinnerID),
		Court:        row.Court,
		ScheduledAt:  row.ScheduledAt,
		Status:       row.Status,
	}
}

// Create persists a new tournament without children.
func (r *TournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	t.Version = 1
	if t.Status == "" {
		t.Status = models.TournamentStatusUpcoming
	}
	if t.Visibility == "" {
		t.Visibility = models.VisibilityPublic
	}
	if t.CurrentRound == 0 {
		t.CurrentRound = 1
	}

	const query = `INSERT INTO tournaments (id, title, description, sport, venue_name, venue_city, start_date, end_date,
        registration_open_at, registration_close_at, max_participants, entry_fee, currency,
        status, visibility, format, current_round, created_by, version, created_at, updated_at)
        VALUES (:id, :title, :description, :sport, :venue_name, :venue_city, :start_date, :end_date,
        :registration_open_at, :registration_close_at, :max_participants, :entry_fee, :currency,
        :status, :visibility, :format, :current_round, :created_by, :version, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, t); err != nil {
		return fmt.Errorf("create tournament: %w", err)
	}
	return nil
}

// FindByID loads the full aggregate: tournament, registrations in
// registration order, matches in generation order.
func (r *TournamentRepository) FindByID(ctx context.Context, id string) (*models.Tournament, error) {
	query := fmt.Sprintf(`SELECT %s FROM tournaments WHERE id = $1`, tournamentColumns)
	var t models.Tournament
	if err := r.db.GetContext(ctx, &t, query, id); err != nil {
		return nil, err
	}

	const regQuery = `SELECT id, tournament_id, student, full_name, email, phone, dob,
        emergency_contact_name, emergency_contact_phone, team_name, format, registered_at, status
        FROM tournament_registrations WHERE tournament_id = $1 ORDER BY registered_at ASC, id ASC`
	if err := r.db.SelectContext(ctx, &t.Registrations, regQuery, id); err != nil {
		return nil, fmt.Errorf("load registrations: %w", err)
	}

	const matchQuery = `SELECT id, tournament_id, round, match_number, slot_index,
        player_a_kind, player_a_id, player_b_kind, player_b_id,
        score_a, score_b, winner_kind, winner_id, court, scheduled_at, status
        FROM tournament_matches WHERE tournament_id = $1 ORDER BY round ASC, slot_index ASC`
	var rows []matchRow
	if err := r.db.SelectContext(ctx, &rows, matchQuery, id); err != nil {
		return nil, fmt.Errorf("load matches: %w", err)
	}
	t.Matches = make([]models.Match, len(rows))
	for i := range rows {
		t.Matches[i] = rows[i].toModel()
	}
	return &t, nil
}

// List returns tournaments matching the filter, without children.
func (r *TournamentRepository) List(ctx context.Context, filter models.TournamentFilter) ([]models.Tournament, int, error) {
	var conditions []string
	var args []interface{}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Sport != "" {
		conditions = append(conditions, fmt.Sprintf("sport = $%d", len(args)+1))
		args = append(args, filter.Sport)
	}
	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	query := fmt.Sprintf(`SELECT %s FROM tournaments%s ORDER BY start_date %s LIMIT %d OFFSET %d`,
		tournamentColumns, clause, order, size, offset)
	var tournaments []models.Tournament
	if err := r.db.SelectContext(ctx, &tournaments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list tournaments: %w", err)
	}

	countQuery := "SELECT COUNT(*) FROM tournaments" + clause
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count tournaments: %w", err)
	}
	return tournaments, total, nil
}

// ListByStudent returns tournaments a student has registered for.
func (r *TournamentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Tournament, error) {
	query := fmt.Sprintf(`SELECT %s FROM tournaments t WHERE EXISTS (
        SELECT 1 FROM tournament_registrations reg WHERE reg.tournament_id = t.id AND reg.student = $1)
        ORDER BY t.start_date ASC`,
		prefixColumns("t", tournamentColumns))
	var tournaments []models.Tournament
	if err := r.db.SelectContext(ctx, &tournaments, query, studentID); err != nil {
		return nil, fmt.Errorf("list tournaments by student: %w", err)
	}
	return tournaments, nil
}

func prefixColumns(prefix, columns string) string {
	parts := strings.Split(columns, ",")
	for i, part := range parts {
		parts[i] = prefix + "." + strings.TrimSpace(part)
	}
	return strings.Join(parts, ", ")
}

// Delete removes the whole aggregate. Children go with it.
func (r *TournamentRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete tournament: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM tournament_matches WHERE tournament_id = $1`, id); err != nil {
		return fmt.Errorf("delete matches: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM tournament_registrations WHERE tournament_id = $1`, id); err != nil {
		return fmt.Errorf("delete registrations: %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM tournaments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete tournament: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete tournament rows: %w", err)
	}
	if affected == 0 {
		err = sql.ErrNoRows
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit delete tournament: %w", err)
	}
	return nil
}

// saveAggregate writes the tournament's mutable scalar state under the
// compare-and-set inside tx. Every aggregate mutation goes through here so
// two concurrent writers cannot both commit against the same version.
func saveAggregate(ctx context.Context, tx *sqlx.Tx, t *models.Tournament) error {
	result, err := tx.ExecContext(ctx,
		`UPDATE tournaments SET status = $3, current_round = $4, version = version + 1, updated_at = $5
         WHERE id = $1 AND version = $2`,
		t.ID, t.Version, t.Status, t.CurrentRound, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save tournament aggregate: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("save tournament aggregate rows: %w", err)
	}
	if affected == 0 {
		return ErrVersionConflict
	}
	return nil
}

// AppendRegistration inserts a registration under the aggregate CAS.
func (r *TournamentRepository) AppendRegistration(ctx context.Context, t *models.Tournament, reg *models.Registration) error {
	if reg.ID == "" {
		reg.ID = uuid.NewString()
	}
	reg.TournamentID = t.ID

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append registration: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = saveAggregate(ctx, tx, t); err != nil {
		return err
	}

	const query = `INSERT INTO tournament_registrations (id, tournament_id, student, full_name, email, phone, dob,
        emergency_contact_name, emergency_contact_phone, team_name, format, registered_at, status)
        VALUES (:id, :tournament_id, :student, :full_name, :email, :phone, :dob,
        :emergency_contact_name, :emergency_contact_phone, :team_name, :format, :registered_at, :status)`
	if _, err = sqlx.NamedExecContext(ctx, tx, query, reg); err != nil {
		return fmt.Errorf("insert registration: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit append registration: %w", err)
	}
	t.Version++
	return nil
}

// InsertMatches stores a freshly generated bracket. The CAS on the
// tournament row means two concurrent generation calls cannot both commit.
func (r *TournamentRepository) InsertMatches(ctx context.Context, t *models.Tournament, matches []models.Match) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert matches: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = saveAggregate(ctx, tx, t); err != nil {
		return err
	}

	const query = `INSERT INTO tournament_matches (id, tournament_id, round, match_number, slot_index,
        player_a_kind, player_a_id, player_b_kind, player_b_id,
        score_a, score_b, winner_kind, winner_id, court, scheduled_at, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	for i := range matches {
		match := &matches[i]
		if match.ID == "" {
			match.ID = uuid.NewString()
		}
		match.TournamentID = t.ID
		aKind, aID := entrantToColumns(match.PlayerA)
		bKind, bID := entrantToColumns(match.PlayerB)
		wKind, wID := entrantToColumns(match.Winner)
		if _, err = tx.ExecContext(ctx, query,
			match.ID, match.TournamentID, match.Round, match.MatchNumber, match.SlotIndex,
			aKind, aID, bKind, bID,
			match.ScoreA, match.ScoreB, wKind, wID, match.Court, match.ScheduledAt, match.Status,
		); err != nil {
			return fmt.Errorf("insert match r%dm%d: %w", match.Round, match.MatchNumber, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit insert matches: %w", err)
	}
	t.Version++
	return nil
}

// UpdateMatches writes back mutated matches (result reporting, scheduling,
// winner propagation) under the aggregate CAS so a result and its
// advancement land atomically.
func (r *TournamentRepository) UpdateMatches(ctx context.Context, t *models.Tournament, matches ...*models.Match) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update matches: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = saveAggregate(ctx, tx, t); err != nil {
		return err
	}

	const query = `UPDATE tournament_matches SET
        player_a_kind = $3, player_a_id = $4, player_b_kind = $5, player_b_id = $6,
        score_a = $7, score_b = $8, winner_kind = $9, winner_id = $10,
        court = $11, scheduled_at = $12, status = $13
        WHERE id = $1 AND tournament_id = $2`
	for _, match := range matches {
		aKind, aID := entrantToColumns(match.PlayerA)
		bKind, bID := entrantToColumns(match.PlayerB)
		wKind, wID := entrantToColumns(match.Winner)
		if _, err = tx.ExecContext(ctx, query,
			match.ID, t.ID,
			aKind, aID, bKind, bID,
			match.ScoreA, match.ScoreB, wKind, wID,
			match.Court, match.ScheduledAt, match.Status,
		); err != nil {
			return fmt.Errorf("update match r%dm%d: %w", match.Round, match.MatchNumber, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit update matches: %w", err)
	}
	t.Version++
	return nil
}
