package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbolis/quick-forms/idgen"
	"github.com/mbolis/quick-forms/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db)
}

func newForm(t *testing.T, title string, fields ...model.Field) *model.Form {
	t.Helper()
	slug, err := idgen.Slug(title)
	require.NoError(t, err)
	return &model.Form{ID: idgen.NewID(), Title: title, Slug: slug, Fields: fields}
}

func TestCreateAndGetForm(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	min := 1.0
	f := newForm(t, "Customer Feedback",
		model.Field{ID: "a", Type: model.FieldText, Label: "Name", Required: true},
		model.Field{ID: "b", Type: model.FieldNumber, Label: "Score", Validation: &model.Validation{Min: &min}},
		model.Field{ID: "c", Type: model.FieldRadio, Label: "Again?", Options: []model.Option{{Label: "Yes", Value: "y"}}},
	)
	f.Description = "Tell us"
	require.NoError(t, s.CreateForm(ctx, f))
	assert.False(t, f.CreatedAt.IsZero())

	got, err := s.GetForm(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, f.Title, got.Title)
	assert.Equal(t, "Tell us", got.Description)
	assert.Equal(t, f.Slug, got.Slug)
	assert.False(t, got.IsPublished)
	assert.WithinDuration(t, f.CreatedAt, got.CreatedAt, time.Millisecond)
	if diff := cmp.Diff(f.Fields, got.Fields); diff != "" {
		t.Fatalf("fields differ (-want +got):\n%s", diff)
	}

	_, err = s.GetForm(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListFormsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	forms, err := s.ListForms(ctx)
	require.NoError(t, err)
	assert.NotNil(t, forms)
	assert.Empty(t, forms)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, title := range []string{"first", "second", "third"} {
		s.now = func() time.Time { return base.Add(time.Duration(i) * time.Hour) }
		require.NoError(t, s.CreateForm(ctx, newForm(t, title)))
	}

	forms, err = s.ListForms(ctx)
	require.NoError(t, err)
	require.Len(t, forms, 3)
	assert.Equal(t, "third", forms[0].Title)
	assert.Equal(t, "first", forms[2].Title)
	assert.NotNil(t, forms[0].Fields)
}

func TestReplaceForm(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	f := newForm(t, "Draft", model.Field{ID: "a", Type: model.FieldText, Label: "Old"})
	f.Description = "old description"
	require.NoError(t, s.CreateForm(ctx, f))

	updated, err := s.ReplaceForm(ctx, model.Form{
		ID:          f.ID,
		Title:       "Final",
		Fields:      []model.Field{{ID: "b", Type: model.FieldEmail, Label: "Email"}},
		IsPublished: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Final", updated.Title)
	assert.Empty(t, updated.Description)
	assert.Equal(t, f.Slug, updated.Slug, "slug is immutable")
	assert.True(t, updated.IsPublished)
	require.Len(t, updated.Fields, 1)
	assert.Equal(t, "b", updated.Fields[0].ID)

	_, err = s.ReplaceForm(ctx, model.Form{ID: "missing", Title: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResponsesRequirePublishedForm(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	f := newForm(t, "Poll", model.Field{ID: "q", Type: model.FieldCheckbox})
	require.NoError(t, s.CreateForm(ctx, f))

	r := &model.Response{ID: idgen.NewResponseID(), FormID: f.ID, Data: model.Data{"q": model.Choices{"a"}}}
	assert.ErrorIs(t, s.CreateResponse(ctx, r), ErrNotFound)

	_, err := s.GetPublishedForm(ctx, f.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetPublishedFormBySlug(ctx, f.Slug)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.SetPublished(ctx, f.ID, true))
	require.NoError(t, s.CreateResponse(ctx, r))
	assert.False(t, r.CreatedAt.IsZero())

	bySlug, err := s.GetPublishedFormBySlug(ctx, f.Slug)
	require.NoError(t, err)
	assert.Equal(t, f.ID, bySlug.ID)

	second := &model.Response{ID: idgen.NewResponseID(), FormID: f.ID, Data: model.Data{}}
	require.NoError(t, s.CreateResponse(ctx, second))

	responses, err := s.ListResponses(ctx, f.ID)
	require.NoError(t, err)
	require.Len(t, responses, 2)
	assert.Equal(t, r.ID, responses[0].ID)
	assert.Equal(t, model.Data{"q": model.Choices{"a"}}, responses[0].Data)

	assert.ErrorIs(t, s.CreateResponse(ctx, &model.Response{ID: idgen.NewResponseID(), FormID: "missing"}), ErrNotFound)
	assert.ErrorIs(t, s.SetPublished(ctx, "missing", true), ErrNotFound)
}

func TestDeleteFormCascades(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	f := newForm(t, "Short lived")
	f.IsPublished = true
	require.NoError(t, s.CreateForm(ctx, f))
	require.NoError(t, s.CreateResponse(ctx, &model.Response{ID: idgen.NewResponseID(), FormID: f.ID, Data: model.Data{}}))

	require.NoError(t, s.DeleteForm(ctx, f.ID))

	_, err := s.GetForm(ctx, f.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	responses, err := s.ListResponses(ctx, f.ID)
	require.NoError(t, err)
	assert.Empty(t, responses)

	assert.ErrorIs(t, s.DeleteForm(ctx, f.ID), ErrNotFound)
}

func TestUsersAndTokens(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.PasswordHash(ctx, "admin")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.AddUser(ctx, "admin", []byte("hash-1")))
	require.NoError(t, s.AddUser(ctx, "admin", []byte("hash-2")))
	hash, err := s.PasswordHash(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, []byte("hash-2"), hash)

	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.StoreToken(ctx, "admin", "tok", "ref", exp))

	got, err := s.ConsumeToken(ctx, "admin", "tok", "ref")
	require.NoError(t, err)
	assert.True(t, exp.Equal(got))

	_, err = s.ConsumeToken(ctx, "admin", "tok", "ref")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreFailuresPropagate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	s := NewStore(db)
	ctx := context.Background()
	diskErr := errors.New("disk I/O error")

	mock.ExpectQuery(`SELECT .* FROM form`).WillReturnError(diskErr)
	_, err = s.ListForms(ctx)
	assert.ErrorIs(t, err, diskErr)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM response`).WithArgs("f1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM form`).WithArgs("f1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()
	assert.ErrorIs(t, s.DeleteForm(ctx, "f1"), ErrNotFound)

	mock.ExpectExec(`INSERT INTO response`).WillReturnError(diskErr)
	err = s.CreateResponse(ctx, &model.Response{ID: "r1", FormID: "f1", Data: model.Data{}})
	assert.ErrorIs(t, err, diskErr)

	mock.ExpectQuery(`SELECT .* FROM form`).
		WithArgs("f2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description", "slug", "fields", "is_published", "created_at", "updated_at"}).
			AddRow("f2", "Broken", nil, "broken-12345678", "{not json", false, time.Now(), time.Now()))
	_, err = s.GetForm(ctx, "f2")
	assert.ErrorContains(t, err, "parse fields")

	assert.NoError(t, mock.ExpectationsWereMet())
}
