package catalog

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var loadMenuSQL = regexp.QuoteMeta(`SELECT name, unit_price::text FROM menu_items ORDER BY position`)

func TestPostgresRepository_Load(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(loadMenuSQL).
		WillReturnRows(pgxmock.NewRows([]string{"name", "unit_price"}).
			AddRow("Espresso", "150.00").
			AddRow("Latte", "225.50"))

	repo := NewPostgresRepository(mock)
	items, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "Espresso", items[0].Name)
	require.True(t, items[1].UnitPrice.Equal(decimal.RequireFromString("225.5")))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_LoadQueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(loadMenuSQL).WillReturnError(errors.New("db down"))

	_, err = NewPostgresRepository(mock).Load(context.Background())
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_LoadBadPrice(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(loadMenuSQL).
		WillReturnRows(pgxmock.NewRows([]string{"name", "unit_price"}).AddRow("Mocha", "n/a"))

	_, err = NewPostgresRepository(mock).Load(context.Background())
	require.Error(t, err)
}
