package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"github.com/mbolis/quick-forms/model"
)

// ErrNotFound is returned when the requested form or user does not exist,
// or a form exists but is not in the state the operation needs.
var ErrNotFound = errors.New("not found")

// Store persists forms, responses and admin users. Field definitions and
// response data are kept as JSON text inside otherwise relational rows.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) DB() *sql.DB { return s.db }

type scanner interface {
	Scan(dest ...any) error
}

const formColumns = `id, title, description, slug, fields, is_published, created_at, updated_at`

func scanForm(row scanner) (model.Form, error) {
	var (
		f      model.Form
		desc   sql.NullString
		fields string
	)
	err := row.Scan(&f.ID, &f.Title, &desc, &f.Slug, &fields, &f.IsPublished, &f.CreatedAt, &f.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return f, ErrNotFound
	}
	if err != nil {
		return f, err
	}
	f.Description = desc.String
	f.Fields, err = model.DecodeFields(fields)
	if err != nil {
		return f, errors.Wrapf(err, "form %s: parse fields", f.ID)
	}
	return f, nil
}

func (s *Store) ListForms(ctx context.Context) ([]model.Form, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+formColumns+`
		FROM form
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "query forms")
	}
	defer rows.Close()

	forms := []model.Form{}
	for rows.Next() {
		f, err := scanForm(rows)
		if err != nil {
			return nil, err
		}
		forms = append(forms, f)
	}
	return forms, rows.Err()
}

// CreateForm inserts f, stamping its creation and update times.
func (s *Store) CreateForm(ctx context.Context, f *model.Form) error {
	fields, err := model.EncodeFields(f.Fields)
	if err != nil {
		return errors.Wrap(err, "encode fields")
	}

	now := s.now()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO form (id, title, description, slug, fields, is_published, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.Title, nullable(f.Description), f.Slug, fields, f.IsPublished, now, now,
	)
	if err != nil {
		return errors.Wrap(err, "insert form")
	}
	f.CreatedAt, f.UpdatedAt = now, now
	if f.Fields == nil {
		f.Fields = []model.Field{}
	}
	return nil
}

func (s *Store) GetForm(ctx context.Context, id string) (model.Form, error) {
	return scanForm(s.db.QueryRowContext(ctx, `
		SELECT `+formColumns+`
		FROM form
		WHERE id = ?`,
		id,
	))
}

// GetPublishedForm returns the form only while it is published.
func (s *Store) GetPublishedForm(ctx context.Context, id string) (model.Form, error) {
	return scanForm(s.db.QueryRowContext(ctx, `
		SELECT `+formColumns+`
		FROM form
		WHERE id = ?
			AND is_published`,
		id,
	))
}

// GetPublishedFormBySlug resolves the public address of a form.
func (s *Store) GetPublishedFormBySlug(ctx context.Context, slug string) (model.Form, error) {
	return scanForm(s.db.QueryRowContext(ctx, `
		SELECT `+formColumns+`
		FROM form
		WHERE slug = ?
			AND is_published`,
		slug,
	))
}

// ReplaceForm overwrites title, description, fields and publish state of the
// form with f.ID and returns the stored result. Concurrent writers are not
// detected: the last one wins.
func (s *Store) ReplaceForm(ctx context.Context, f model.Form) (model.Form, error) {
	fields, err := model.EncodeFields(f.Fields)
	if err != nil {
		return model.Form{}, errors.Wrap(err, "encode fields")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Form{}, errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE form
		SET
			title = ?,
			description = ?,
			fields = ?,
			is_published = ?,
			updated_at = ?
		WHERE id = ?`,
		f.Title, nullable(f.Description), fields, f.IsPublished, s.now(), f.ID,
	)
	if err != nil {
		return model.Form{}, errors.Wrap(err, "update form")
	}
	if n, err := res.RowsAffected(); err != nil {
		return model.Form{}, errors.Wrap(err, "update form: rows affected")
	} else if n < 1 {
		return model.Form{}, ErrNotFound
	}

	updated, err := scanForm(tx.QueryRowContext(ctx, `
		SELECT `+formColumns+`
		FROM form
		WHERE id = ?`,
		f.ID,
	))
	if err != nil {
		return model.Form{}, err
	}
	return updated, errors.Wrap(tx.Commit(), "commit")
}

// SetPublished flips the publish state of a form without touching anything else.
func (s *Store) SetPublished(ctx context.Context, id string, published bool) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE form
		SET is_published = ?, updated_at = ?
		WHERE id = ?`,
		published, s.now(), id,
	)
	if err != nil {
		return errors.Wrap(err, "update form")
	}
	if n, err := res.RowsAffected(); err != nil {
		return errors.Wrap(err, "update form: rows affected")
	} else if n < 1 {
		return ErrNotFound
	}
	return nil
}

// DeleteForm removes a form together with all of its responses.
func (s *Store) DeleteForm(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		DELETE FROM response
		WHERE form_id = ?`,
		id,
	)
	if err != nil {
		return errors.Wrap(err, "delete responses")
	}

	res, err := tx.ExecContext(ctx, `
		DELETE FROM form
		WHERE id = ?`,
		id,
	)
	if err != nil {
		return errors.Wrap(err, "delete form")
	}
	if n, err := res.RowsAffected(); err != nil {
		return errors.Wrap(err, "delete form: rows affected")
	} else if n < 1 {
		return ErrNotFound
	}

	return errors.Wrap(tx.Commit(), "commit")
}

// CreateResponse stores r against its form. The publish check and the insert
// are one statement, so a form unpublished in between is never written to;
// in that case, or when the form does not exist, ErrNotFound is returned.
func (s *Store) CreateResponse(ctx context.Context, r *model.Response) error {
	data, err := model.EncodeData(r.Data)
	if err != nil {
		return errors.Wrap(err, "encode data")
	}

	now := s.now()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO response (id, form_id, data, created_at)
		SELECT ?, f.id, ?, ?
		FROM form f
		WHERE f.id = ?
			AND f.is_published`,
		r.ID, data, now, r.FormID,
	)
	if err != nil {
		return errors.Wrap(err, "insert response")
	}
	if n, err := res.RowsAffected(); err != nil {
		return errors.Wrap(err, "insert response: rows affected")
	} else if n < 1 {
		return ErrNotFound
	}
	r.CreatedAt = now
	return nil
}

// ListResponses returns the responses to a form, oldest first.
func (s *Store) ListResponses(ctx context.Context, formID string) ([]model.Response, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, form_id, data, created_at
		FROM response
		WHERE form_id = ?
		ORDER BY id`,
		formID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "query responses")
	}
	defer rows.Close()

	responses := []model.Response{}
	for rows.Next() {
		var (
			r    model.Response
			data string
		)
		if err := rows.Scan(&r.ID, &r.FormID, &data, &r.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan response")
		}
		r.Data, err = model.DecodeData(data)
		if err != nil {
			return nil, errors.Wrapf(err, "response %s: parse data", r.ID)
		}
		responses = append(responses, r)
	}
	return responses, rows.Err()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
