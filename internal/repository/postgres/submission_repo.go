package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"techtalks/internal/domain"
)

type submissionRepository struct {
	DB *sql.DB
}

func NewSubmissionRepository(db *sql.DB) domain.SubmissionRepository {
	return &submissionRepository{DB: db}
}

// Dates and times are rendered by Postgres so they round-trip as the "2006-01-02" and "15:04" strings clients send.
const submissionColumns = `id, full_name, email, phone, role_title, institution, biography, photo,
		topic_category, topic_title, description,
		to_char(event_date, 'YYYY-MM-DD'), to_char(event_time, 'HH24:MI'),
		status, rejection_reason, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row rowScanner) (*domain.Submission, error) {
	s := &domain.Submission{}
	var status string
	var reason sql.NullString
	err := row.Scan(
		&s.ID, &s.FullName, &s.Email, &s.Phone, &s.RoleTitle, &s.Institution, &s.Biography, &s.Photo,
		&s.TopicCategory, &s.TopicTitle, &s.Description,
		&s.EventDate, &s.EventTime,
		&status, &reason, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.Status = domain.SubmissionStatus(status)
	if reason.Valid {
		s.RejectionReason = &reason.String
	}
	return s, nil
}

func (r *submissionRepository) Create(ctx context.Context, s *domain.Submission) error {
	query := `
		INSERT INTO submissions (
			full_name, email, phone, role_title, institution, biography, photo,
			topic_category, topic_title, description, event_date, event_time,
			status, rejection_reason, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		s.FullName, s.Email, s.Phone, s.RoleTitle, s.Institution, s.Biography, s.Photo,
		s.TopicCategory, s.TopicTitle, s.Description, s.EventDate, s.EventTime,
		string(s.Status), s.RejectionReason, s.CreatedAt, s.UpdatedAt,
	).Scan(&s.ID)
}

func (r *submissionRepository) GetByID(ctx context.Context, id string) (*domain.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1`
	s, err := scanSubmission(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

// List returns every submission, newest first.
func (r *submissionRepository) List(ctx context.Context) ([]*domain.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions ORDER BY created_at DESC`
	return r.list(ctx, query)
}

func (r *submissionRepository) ListByEmail(ctx context.Context, email string) ([]*domain.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE email = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, email)
}

// ListApproved returns approved submissions, latest event first.
func (r *submissionRepository) ListApproved(ctx context.Context) ([]*domain.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE status = 'approved' ORDER BY event_date DESC, event_time DESC`
	return r.list(ctx, query)
}

func (r *submissionRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Submission, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *submissionRepository) ListApprovedSlots(ctx context.Context) ([]domain.Slot, error) {
	query := `
		SELECT to_char(event_date, 'YYYY-MM-DD'), to_char(event_time, 'HH24:MI')
		FROM submissions
		WHERE status = 'approved'
		ORDER BY event_date ASC, event_time ASC
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []domain.Slot
	for rows.Next() {
		var s domain.Slot
		if err := rows.Scan(&s.Date, &s.Time); err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

func (r *submissionRepository) ExistsApprovedAt(ctx context.Context, date, eventTime string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM submissions
			WHERE event_date = $1 AND event_time = $2 AND status = 'approved'
		)
	`
	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, date, eventTime).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// UpdateStatus locks the submission, refuses an approval into a slot another approved
// submission holds, writes the new status and appends a history row in one transaction.
func (r *submissionRepository) UpdateStatus(ctx context.Context, id string, u domain.StatusUpdate) (*domain.Submission, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var oldStatus, date, eventTime string
	err = tx.QueryRowContext(ctx, `
		SELECT status, to_char(event_date, 'YYYY-MM-DD'), to_char(event_time, 'HH24:MI')
		FROM submissions
		WHERE id = $1
		FOR UPDATE
	`, id).Scan(&oldStatus, &date, &eventTime)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if u.Status == domain.StatusApproved {
		var holder string
		err = tx.QueryRowContext(ctx, `
			SELECT id FROM submissions
			WHERE event_date = $1 AND event_time = $2 AND status = 'approved' AND id <> $3
			LIMIT 1
			FOR UPDATE
		`, date, eventTime, id).Scan(&holder)
		switch {
		case err == nil:
			return nil, domain.ErrSlotTaken
		case !errors.Is(err, sql.ErrNoRows):
			return nil, err
		}
	}

	updated, err := scanSubmission(tx.QueryRowContext(ctx, `
		UPDATE submissions
		SET status = $1, rejection_reason = $2, updated_at = $3
		WHERE id = $4
		RETURNING `+submissionColumns,
		string(u.Status), u.RejectionReason, u.UpdatedAt, id,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrSlotTaken
		}
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO submission_status_history (submission_id, old_status, new_status, changed_by, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id, oldStatus, string(u.Status), u.ChangedBy, u.RejectionReason, u.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("record status change: %w", err)
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrSlotTaken
		}
		return nil, fmt.Errorf("commit: %w", err)
	}
	return updated, nil
}

func (r *submissionRepository) ListHistory(ctx context.Context, submissionID string) ([]*domain.StatusChange, error) {
	query := `
		SELECT id, submission_id, old_status, new_status, changed_by, reason, created_at
		FROM submission_status_history
		WHERE submission_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, submissionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var changes []*domain.StatusChange
	for rows.Next() {
		c := &domain.StatusChange{}
		var oldStatus, newStatus string
		var reason sql.NullString
		if err := rows.Scan(&c.ID, &c.SubmissionID, &oldStatus, &newStatus, &c.ChangedBy, &reason, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.OldStatus = domain.SubmissionStatus(oldStatus)
		c.NewStatus = domain.SubmissionStatus(newStatus)
		if reason.Valid {
			c.Reason = &reason.String
		}
		changes = append(changes, c)
	}
	return changes, rows.Err()
}
