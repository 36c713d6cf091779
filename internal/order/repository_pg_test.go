package order_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecommerce-platform/checkout-service/internal/order"
)

var testPool *pgxpool.Pool

// Интеграционные тесты гоняются только при заданном DB_HOST.
func TestMain(m *testing.M) {
	host := os.Getenv("DB_HOST")
	if host == "" {
		os.Exit(m.Run())
	}

	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host,
		os.Getenv("DB_PORT"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_SSLMODE"),
	)

	var err error
	testPool, err = pgxpool.New(context.Background(), connStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect to test database: %v\n", err)
		os.Exit(1)
	}

	exitCode := m.Run()

	testPool.Close()

	os.Exit(exitCode)
}

func TestPostgresRepository_CreateGetDelete(t *testing.T) {
	if testPool == nil {
		t.Skip("DB_HOST not set, skipping integration test")
	}

	ctx := context.Background()
	repo := order.NewPostgresRepository(testPool)

	orderID, err := uuid.NewV4()
	require.NoError(t, err)
	userID, err := uuid.NewV4()
	require.NoError(t, err)
	productID, err := uuid.NewV4()
	require.NoError(t, err)
	number, err := uuid.NewV7()
	require.NoError(t, err)

	o := &order.Order{
		ID:                  orderID,
		OrderNumber:         "ORD-" + number.String(),
		UserID:              userID,
		CustomerEmail:       "buyer@example.com",
		Status:              order.StatusPending,
		PaymentMethod:       "card",
		PaymentStatus:       order.PaymentStatusUnpaid,
		Subtotal:            decimal.RequireFromString("150"),
		Tax:                 decimal.RequireFromString("7.5"),
		ShippingFee:         decimal.Zero,
		DiscountAmount:      decimal.RequireFromString("10"),
		TotalAmount:         decimal.RequireFromString("147.5"),
		ShippingAddressText: "Иван Иванов, ул. Ленина 1, Москва, 101000, RU",
		BillingAddressText:  "Иван Иванов, ул. Ленина 1, Москва, 101000, RU",
		Items: []order.Item{
			{
				ProductID:       productID,
				ProductName:     "Widget",
				Quantity:        3,
				PriceAtPurchase: decimal.RequireFromString("50"),
			},
		},
	}

	require.NoError(t, repo.Create(ctx, o))
	t.Cleanup(func() {
		_ = repo.Delete(context.Background(), orderID)
	})

	got, err := repo.GetByID(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, o.OrderNumber, got.OrderNumber)
	assert.Equal(t, order.StatusPending, got.Status)
	assert.True(t, got.TotalAmount.Equal(o.TotalAmount))
	require.Len(t, got.Items, 1)
	assert.Equal(t, 3, got.Items[0].Quantity)
	assert.True(t, got.Items[0].PriceAtPurchase.Equal(decimal.RequireFromString("50")))
	assert.WithinDuration(t, time.Now().UTC(), got.CreatedAt, time.Minute)

	require.NoError(t, repo.UpdateStatus(ctx, orderID, order.StatusAccepted))
	got, err = repo.GetByID(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusAccepted, got.Status)

	require.NoError(t, repo.Delete(ctx, orderID))
	_, err = repo.GetByID(ctx, orderID)
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}

func TestPostgresRepository_DuplicateOrderNumber(t *testing.T) {
	if testPool == nil {
		t.Skip("DB_HOST not set, skipping integration test")
	}

	ctx := context.Background()
	repo := order.NewPostgresRepository(testPool)

	userID, err := uuid.NewV4()
	require.NoError(t, err)
	number, err := uuid.NewV7()
	require.NoError(t, err)

	build := func() *order.Order {
		id, genErr := uuid.NewV4()
		require.NoError(t, genErr)
		return &order.Order{
			ID:                  id,
			OrderNumber:         "ORD-" + number.String(),
			UserID:              userID,
			CustomerEmail:       "buyer@example.com",
			Status:              order.StatusPending,
			PaymentMethod:       "card",
			PaymentStatus:       order.PaymentStatusUnpaid,
			Subtotal:            decimal.RequireFromString("10"),
			Tax:                 decimal.RequireFromString("0.5"),
			ShippingFee:         decimal.RequireFromString("10"),
			DiscountAmount:      decimal.Zero,
			TotalAmount:         decimal.RequireFromString("20.5"),
			ShippingAddressText: "somewhere",
			BillingAddressText:  "somewhere",
		}
	}

	first := build()
	require.NoError(t, repo.Create(ctx, first))
	t.Cleanup(func() {
		_ = repo.Delete(context.Background(), first.ID)
	})

	assert.Error(t, repo.Create(ctx, build()))
}
