package customer

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresRepository_Register(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	q := regexp.QuoteMeta(`INSERT INTO customers (store_id, account_id, name, email, phone)`)
	mock.ExpectExec(q).WithArgs("s1", "a1", "Sara", "sara@example.com", "050").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(q).WithArgs("s1", "a1", "Sara", "sara@example.com", "050").
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	repo := NewPostgresRepository(mock)
	c := Customer{StoreID: "s1", AccountID: "a1", Name: "Sara", Email: "sara@example.com", Phone: "050"}

	created, err := repo.Register(context.Background(), c)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.Register(context.Background(), c)
	require.NoError(t, err)
	assert.False(t, created)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_GetAndList(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	cols := []string{"store_id", "account_id", "name", "email", "phone", "total_orders", "total_spent", "created_at"}
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM customers WHERE store_id=$1 AND account_id=$2`)).
		WithArgs("s1", "missing").
		WillReturnRows(pgxmock.NewRows(cols))
	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY total_spent DESC`)).
		WithArgs("s1").
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow("s1", "a2", "Big", "big@example.com", "", 4, 900.0, now).
			AddRow("s1", "a1", "Small", "small@example.com", "", 1, 80.0, now))

	repo := NewPostgresRepository(mock)
	_, err = repo.Get(context.Background(), "s1", "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := repo.List(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a2", list[0].AccountID)
	assert.Equal(t, 900.0, list[0].TotalSpent)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCounters(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(regexp.QuoteMeta(`total_orders = customers.total_orders + 1`)).
		WithArgs("s1", "a1", "Sara", "sara@example.com", "", 95.0).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(regexp.QuoteMeta(`total_orders = GREATEST(total_orders - 1, 0)`)).
		WithArgs("s1", "a1", 95.0).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	ctx := context.Background()
	require.NoError(t, RecordOrder(ctx, mock, Customer{StoreID: "s1", AccountID: "a1", Name: "Sara", Email: "sara@example.com"}, 95))
	require.NoError(t, ReverseOrder(ctx, mock, "s1", "a1", 95))
	require.NoError(t, mock.ExpectationsWereMet())
}
