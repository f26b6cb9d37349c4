package cart

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepositoryList(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "product_id", "quantity", "size"}).
		AddRow("r1", "p1", 2, nil).
		AddRow("r2", "p2", 1, "M")
	mock.ExpectQuery(regexp.QuoteMeta(listRowsSQL)).WithArgs("user-1").WillReturnRows(rows)

	got, err := NewRepository(db).List(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, []Row{
		{ID: "r1", ProductID: "p1", Quantity: 2},
		{ID: "r2", ProductID: "p2", Quantity: 1, Size: "M"},
	}, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryList_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(listRowsSQL)).WithArgs("user-1").WillReturnError(errors.New("boom"))

	_, err = NewRepository(db).List(context.Background(), "user-1")
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryWrites(t *testing.T) {
	tests := map[string]struct {
		query string
		args  []driver.Value
		call  func(r Repository) error
	}{
		"add with size": {
			query: addQuantitySQL,
			args:  []driver.Value{sqlmock.AnyArg(), "user-1", "p1", 2, "M"},
			call: func(r Repository) error {
				return r.AddQuantity(context.Background(), "user-1", "p1", "M", 2)
			},
		},
		"add without size stores null": {
			query: addQuantitySQL,
			args:  []driver.Value{sqlmock.AnyArg(), "user-1", "p1", 1, nil},
			call: func(r Repository) error {
				return r.AddQuantity(context.Background(), "user-1", "p1", "", 1)
			},
		},
		"set quantity": {
			query: setQuantitySQL,
			args:  []driver.Value{sqlmock.AnyArg(), "user-1", "p1", 7, "L"},
			call: func(r Repository) error {
				return r.SetQuantity(context.Background(), "user-1", "p1", "L", 7)
			},
		},
		"delete by key": {
			query: deleteRowSQL,
			args:  []driver.Value{"user-1", "p1", nil},
			call: func(r Repository) error {
				return r.Delete(context.Background(), "user-1", "p1", "")
			},
		},
		"delete all": {
			query: deleteAllSQL,
			args:  []driver.Value{"user-1"},
			call: func(r Repository) error {
				return r.DeleteAll(context.Background(), "user-1")
			},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			mock.ExpectExec(regexp.QuoteMeta(tc.query)).
				WithArgs(tc.args...).
				WillReturnResult(sqlmock.NewResult(0, 1))

			require.NoError(t, tc.call(NewRepository(db)))
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepositoryMoveSize_Commits(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(deleteRowSQL)).
		WithArgs("user-1", "p1", "M").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(addQuantitySQL)).
		WithArgs(sqlmock.AnyArg(), "user-1", "p1", 3, "L").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, NewRepository(db).MoveSize(context.Background(), "user-1", "p1", "M", "L", 3))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryMoveSize_RollsBackOnInsertError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(deleteRowSQL)).
		WithArgs("user-1", "p1", "M").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(addQuantitySQL)).
		WithArgs(sqlmock.AnyArg(), "user-1", "p1", 3, "L").
		WillReturnError(errors.New("constraint"))
	mock.ExpectRollback()

	err = NewRepository(db).MoveSize(context.Background(), "user-1", "p1", "M", "L", 3)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
