package orders

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/menu-assistant/backend/internal/model/catalog"
	"github.com/zhouzirui/menu-assistant/backend/internal/model/order"
)

func sampleCart(t *testing.T) order.Cart {
	t.Helper()
	var cart order.Cart
	require.NoError(t, cart.Add(catalog.Entry{Name: "Frappé de Café", Price: 6500}, 2))
	require.NoError(t, cart.Add(catalog.Entry{Name: "Croissant", Price: 3500}, 1))
	return cart
}

func TestMemorySinkFinalize(t *testing.T) {
	ctx := context.Background()
	sink := NewMemorySink()
	cart := sampleCart(t)

	id, err := sink.FinalizeOrder(ctx, "centro", "5551234", cart)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	_, err = sink.FinalizeOrder(ctx, "norte", "5550000", cart)
	require.NoError(t, err)

	got := sink.List("centro")
	require.Len(t, got, 1)
	assert.Equal(t, id, got[0].ID)
	assert.Equal(t, "$165.00", got[0].Total)
	assert.Len(t, sink.List(""), 2)

	// later edits to the caller's cart do not leak into the stored order
	cart.Lines[0].Quantity = 9
	assert.Equal(t, 2, sink.List("centro")[0].Cart.Lines[0].Quantity)
}

func TestSinksRejectEmptyCart(t *testing.T) {
	ctx := context.Background()
	_, err := NewMemorySink().FinalizeOrder(ctx, "centro", "s", order.Cart{})
	assert.ErrorIs(t, err, ErrEmptyCart)

	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	_, err = NewPostgresSink(db).FinalizeOrder(ctx, "centro", "s", order.Cart{})
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestPostgresSinkFinalize(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO orders").
		WithArgs(sqlmock.AnyArg(), "centro", "5551234", sqlmock.AnyArg(), int64(16500)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := NewPostgresSink(db).FinalizeOrder(context.Background(), "centro", "5551234", sampleCart(t))
	require.NoError(t, err)
	assert.Len(t, id, 36)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSinkInsertFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	boom := errors.New("connection reset")
	mock.ExpectExec("INSERT INTO orders").WillReturnError(boom)

	_, err = NewPostgresSink(db).FinalizeOrder(context.Background(), "centro", "s", sampleCart(t))
	assert.ErrorIs(t, err, boom)
}

func TestPostgresSinkMigrate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS orders").WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, NewPostgresSink(db).Migrate(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}
