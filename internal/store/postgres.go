package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"voicedesk/internal/calls"
	"voicedesk/pkg/utils"

	"github.com/google/uuid"
)

// Postgres is the persistent backend. database/sql over the pgx stdlib
// driver; schema is ensured at startup so the demo needs no migration step.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

func (p *Postgres) Kind() string { return "postgres" }

func (p *Postgres) Close() error { return p.db.Close() }

// EnsureSchema creates the tables when missing. Both statements run in one
// transaction so a half-created schema never survives a startup crash.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	return utils.WithTx(ctx, p.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS contacts (
				id           TEXT PRIMARY KEY,
				name         TEXT NOT NULL,
				phone_number TEXT NOT NULL,
				created_at   TIMESTAMPTZ NOT NULL
			)`); err != nil {
			return fmt.Errorf("create contacts: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS calls (
				id               TEXT PRIMARY KEY,
				external_call_id TEXT NOT NULL UNIQUE,
				contact_id       TEXT,
				phone_number     TEXT NOT NULL,
				name             TEXT NOT NULL,
				status           TEXT NOT NULL,
				transcript       JSONB,
				created_at       TIMESTAMPTZ NOT NULL
			)`); err != nil {
			return fmt.Errorf("create calls: %w", err)
		}
		return nil
	})
}

func (p *Postgres) CreateContact(ctx context.Context, name, phoneNumber string) (calls.Contact, error) {
	name = strings.TrimSpace(name)
	phoneNumber = strings.TrimSpace(phoneNumber)
	if name == "" || phoneNumber == "" {
		return calls.Contact{}, fmt.Errorf("%w: name and phoneNumber are required", calls.ErrInvalidArgument)
	}

	c := calls.Contact{
		ID:          uuid.NewString(),
		Name:        name,
		PhoneNumber: phoneNumber,
		CreatedAt:   time.Now().UTC(),
	}
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO contacts (id, name, phone_number, created_at) VALUES ($1, $2, $3, $4)`,
		c.ID, c.Name, c.PhoneNumber, c.CreatedAt)
	if err != nil {
		return calls.Contact{}, fmt.Errorf("insert contact: %w", err)
	}
	return c, nil
}

func (p *Postgres) ListContacts(ctx context.Context) ([]calls.Contact, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, name, phone_number, created_at FROM contacts ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	out := make([]calls.Contact, 0)
	for rows.Next() {
		var c calls.Contact
		if err := rows.Scan(&c.ID, &c.Name, &c.PhoneNumber, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (p *Postgres) FindContact(ctx context.Context, id string) (calls.Contact, error) {
	var c calls.Contact
	err := p.db.QueryRowContext(ctx,
		`SELECT id, name, phone_number, created_at FROM contacts WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.PhoneNumber, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return calls.Contact{}, fmt.Errorf("%w: contact %q", calls.ErrNotFound, id)
	}
	if err != nil {
		return calls.Contact{}, fmt.Errorf("find contact: %w", err)
	}
	return c, nil
}

func (p *Postgres) CreateCall(ctx context.Context, call calls.Call) (calls.Call, error) {
	if call.ExternalCallID == "" {
		return calls.Call{}, fmt.Errorf("%w: externalCallId is required", calls.ErrInvalidArgument)
	}
	call.ID = uuid.NewString()
	if call.CreatedAt.IsZero() {
		call.CreatedAt = time.Now().UTC()
	}

	transcript, err := marshalTranscript(call.Transcript)
	if err != nil {
		return calls.Call{}, err
	}

	var contactID any
	if call.ContactID != "" {
		contactID = call.ContactID
	}

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO calls (id, external_call_id, contact_id, phone_number, name, status, transcript, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		call.ID, call.ExternalCallID, contactID, call.PhoneNumber, call.Name, string(call.Status), transcript, call.CreatedAt)
	if err != nil {
		return calls.Call{}, fmt.Errorf("insert call: %w", err)
	}
	return call, nil
}

func (p *Postgres) FindCallByExternalID(ctx context.Context, externalCallID string) (calls.Call, error) {
	row := p.db.QueryRowContext(ctx, `
		SELECT id, external_call_id, contact_id, phone_number, name, status, transcript, created_at
		FROM calls WHERE external_call_id = $1`, externalCallID)
	c, err := scanCall(row)
	if errors.Is(err, sql.ErrNoRows) {
		return calls.Call{}, fmt.Errorf("%w: call %q", calls.ErrNotFound, externalCallID)
	}
	if err != nil {
		return calls.Call{}, fmt.Errorf("find call: %w", err)
	}
	return c, nil
}

func (p *Postgres) UpdateCallByExternalID(ctx context.Context, externalCallID string, upd calls.CallUpdate) (calls.Call, error) {
	sets := make([]string, 0, 2)
	args := make([]any, 0, 3)

	if upd.Status != nil {
		args = append(args, string(*upd.Status))
		sets = append(sets, fmt.Sprintf("status = $%d", len(args)))
	}
	if upd.Transcript != nil {
		transcript, err := marshalTranscript(upd.Transcript)
		if err != nil {
			return calls.Call{}, err
		}
		args = append(args, transcript)
		sets = append(sets, fmt.Sprintf("transcript = $%d", len(args)))
	}
	if len(sets) == 0 {
		return p.FindCallByExternalID(ctx, externalCallID)
	}

	args = append(args, externalCallID)
	query := fmt.Sprintf(`
		UPDATE calls SET %s WHERE external_call_id = $%d
		RETURNING id, external_call_id, contact_id, phone_number, name, status, transcript, created_at`,
		strings.Join(sets, ", "), len(args))

	c, err := scanCall(p.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return calls.Call{}, fmt.Errorf("%w: call %q", calls.ErrNotFound, externalCallID)
	}
	if err != nil {
		return calls.Call{}, fmt.Errorf("update call: %w", err)
	}
	return c, nil
}

func (p *Postgres) ListCalls(ctx context.Context) ([]calls.Call, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT c.id, c.external_call_id, c.contact_id, c.phone_number, c.name, c.status, c.transcript, c.created_at,
		       ct.id, ct.name, ct.phone_number, ct.created_at
		FROM calls c
		LEFT JOIN contacts ct ON ct.id = c.contact_id
		ORDER BY c.created_at DESC, c.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list calls: %w", err)
	}
	defer rows.Close()

	out := make([]calls.Call, 0)
	for rows.Next() {
		var (
			c          calls.Call
			contactID  sql.NullString
			transcript sql.NullString
			status     string

			ctID, ctName, ctNumber sql.NullString
			ctCreated              sql.NullTime
		)
		if err := rows.Scan(&c.ID, &c.ExternalCallID, &contactID, &c.PhoneNumber, &c.Name, &status, &transcript, &c.CreatedAt,
			&ctID, &ctName, &ctNumber, &ctCreated); err != nil {
			return nil, fmt.Errorf("scan call: %w", err)
		}
		c.Status = calls.CallStatus(status)
		c.ContactID = contactID.String
		if err := unmarshalTranscript(transcript, &c); err != nil {
			return nil, err
		}
		if ctID.Valid {
			c.Contact = &calls.Contact{
				ID:          ctID.String,
				Name:        ctName.String,
				PhoneNumber: ctNumber.String,
				CreatedAt:   ctCreated.Time,
			}
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCall(row rowScanner) (calls.Call, error) {
	var (
		c          calls.Call
		contactID  sql.NullString
		transcript sql.NullString
		status     string
	)
	if err := row.Scan(&c.ID, &c.ExternalCallID, &contactID, &c.PhoneNumber, &c.Name, &status, &transcript, &c.CreatedAt); err != nil {
		return calls.Call{}, err
	}
	c.Status = calls.CallStatus(status)
	c.ContactID = contactID.String
	if err := unmarshalTranscript(transcript, &c); err != nil {
		return calls.Call{}, err
	}
	return c, nil
}

func marshalTranscript(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: transcript not serializable: %v", calls.ErrInvalidArgument, err)
	}
	return string(b), nil
}

func unmarshalTranscript(s sql.NullString, c *calls.Call) error {
	if !s.Valid || s.String == "" {
		return nil
	}
	var v any
	if err := json.Unmarshal([]byte(s.String), &v); err != nil {
		return fmt.Errorf("decode transcript for call %s: %w", c.ID, err)
	}
	c.Transcript = v
	return nil
}
