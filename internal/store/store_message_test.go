package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"github.com/privchat/privchat/internal/authz"
)

func TestCreateMessageOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	st := &Store{DB: db}

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO messages (id, user_id, content, is_user) VALUES ($1,$2,$3,$4) RETURNING created_at`)).
		WithArgs(sqlmock.AnyArg(), "A1", "hello", true).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))

	m, err := st.CreateMessage(context.Background(), "A1", "A1", "hello", true)
	if err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}
	if m.ID == "" {
		t.Fatalf("expected generated id")
	}
	if m.UserID != "A1" || m.Content != "hello" || !m.IsUser {
		t.Fatalf("unexpected message: %+v", m)
	}
	if !m.CreatedAt.Equal(now) {
		t.Fatalf("expected insert timestamp back, got %v", m.CreatedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCreateMessageStrangerForbidden(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	st := &Store{DB: db}

	_, err = st.CreateMessage(context.Background(), "B1", "A1", "intrusion", true)
	if !errors.Is(err, authz.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListMessagesOrderedAscending(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	st := &Store{DB: db}

	t0 := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, user_id, content, is_user, created_at FROM messages WHERE user_id=$1 ORDER BY created_at ASC`)).
		WithArgs("A1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "content", "is_user", "created_at"}).
			AddRow("m1", "A1", "hello", true, t0).
			AddRow("m2", "A1", "hi there", false, t0.Add(time.Second)))

	msgs, err := st.ListMessages(context.Background(), "A1", "A1")
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Content != "hello" || msgs[1].Content != "hi there" {
		t.Fatalf("unexpected order: %q, %q", msgs[0].Content, msgs[1].Content)
	}
	if msgs[1].CreatedAt.Before(msgs[0].CreatedAt) {
		t.Fatalf("timestamps not ascending")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListMessagesStrangerGetsEmptyWithoutSQL(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	st := &Store{DB: db}

	msgs, err := st.ListMessages(context.Background(), "B1", "A1")
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if msgs == nil || len(msgs) != 0 {
		t.Fatalf("expected empty non-nil result, got %v", msgs)
	}
	// the filter short-circuits; no query may reach the database
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestClearMessagesIdempotent(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	st := &Store{DB: db}

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM messages WHERE user_id=$1`)).
		WithArgs("A1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM messages WHERE user_id=$1`)).
		WithArgs("A1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	n, err := st.ClearMessages(context.Background(), "A1", "A1")
	if err != nil {
		t.Fatalf("ClearMessages: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 deletions, got %d", n)
	}
	n, err = st.ClearMessages(context.Background(), "A1", "A1")
	if err != nil {
		t.Fatalf("ClearMessages (second): %v", err)
	}
	if n != 0 {
		t.Fatalf("second clear must report zero deletions, got %d", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestClearMessagesStrangerForbidden(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	st := &Store{DB: db}

	if _, err := st.ClearMessages(context.Background(), "B1", "A1"); !errors.Is(err, authz.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
