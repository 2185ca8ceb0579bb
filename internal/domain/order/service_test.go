// internal/domain/order/service_test.go
package order

import (
	"fmt"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/size"
	"github.com/your-org/storefront-backend/internal/pkg/apperrors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&size.Size{}, &product.Product{}, &cart.Cart{}, &cart.CartItem{},
		&Order{}, &OrderItem{},
	))

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		Checkout: config.CheckoutConfig{
			FreeShippingThreshold: 500000,
			FlatShippingFee:       30000,
		},
	}
}

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewService(db, testConfig(), log), db
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price int64, stock int) *product.Product {
	t.Helper()
	sz := size.Size{Category: size.SizeCategoryMen, System: size.SizeSystemEU, Value: "42"}
	require.NoError(t, db.Create(&sz).Error)
	p := &product.Product{
		Name:  name,
		Price: price,
		Stock: stock,
		Sizes: []size.Size{sz},
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func addToCart(t *testing.T, db *gorm.DB, userID uint, p *product.Product, quantity int) {
	t.Helper()
	svc := cart.NewService(db, logrus.New())
	_, err := svc.AddItem(userID, &cart.AddItemRequest{
		ProductID: p.ID,
		SizeID:    p.Sizes[0].ID,
		Quantity:  quantity,
	})
	require.NoError(t, err)
}

func testAddress() ShippingAddress {
	return ShippingAddress{
		FullName:   "Jane Doe",
		Address:    "1 Main St",
		City:       "Hanoi",
		PostalCode: "100000",
		Country:    "VN",
		Phone:      "0123456789",
	}
}

func stockOf(t *testing.T, db *gorm.DB, productID uint) int {
	t.Helper()
	var p product.Product
	require.NoError(t, db.First(&p, productID).Error)
	return p.Stock
}

func TestCheckoutPricingAboveFreeShippingThreshold(t *testing.T) {
	service, gdb := newTestService(t)
	pa := seedProduct(t, gdb, "Boot", 1000000, 10)
	pb := seedProduct(t, gdb, "Sandal", 600000, 10)
	addToCart(t, gdb, 1, pa, 2)
	addToCart(t, gdb, 1, pb, 1)

	resp, err := service.Checkout(1, &CheckoutRequest{
		ShippingAddress: testAddress(),
		PaymentMethod:   PaymentCOD,
	})
	require.NoError(t, err)

	o := resp.Order
	assert.Equal(t, int64(2600000), o.ItemsPrice)
	assert.Equal(t, int64(0), o.ShippingPrice)
	assert.Equal(t, int64(0), o.TaxPrice)
	assert.Equal(t, int64(2600000), o.TotalPrice)
	assert.Equal(t, StatusPending, o.Status)
	assert.False(t, o.IsPaid)
	assert.Len(t, o.Items, 2)
}

func TestCheckoutFlatShippingBelowThreshold(t *testing.T) {
	service, db := newTestService(t)
	p := seedProduct(t, db, "Socks", 100000, 10)
	addToCart(t, db, 1, p, 3)

	resp, err := service.Checkout(1, &CheckoutRequest{
		ShippingAddress: testAddress(),
		PaymentMethod:   PaymentCOD,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(300000), resp.Order.ItemsPrice)
	assert.Equal(t, int64(30000), resp.Order.ShippingPrice)
	assert.Equal(t, int64(330000), resp.Order.TotalPrice)
}

func TestCheckoutUsesDiscountedPriceInSnapshots(t *testing.T) {
	service, db := newTestService(t)
	p := seedProduct(t, db, "Runner", 200000, 10)
	require.NoError(t, db.Model(&product.Product{}).Where("id = ?", p.ID).
		Updates(map[string]interface{}{"is_on_sale": true, "discount": 25}).Error)
	addToCart(t, db, 1, p, 2)

	resp, err := service.Checkout(1, &CheckoutRequest{
		ShippingAddress: testAddress(),
		PaymentMethod:   PaymentCOD,
	})
	require.NoError(t, err)

	require.Len(t, resp.Order.Items, 1)
	assert.Equal(t, int64(150000), resp.Order.Items[0].Price)
	assert.Equal(t, "EU 42", resp.Order.Items[0].Size)
	assert.Equal(t, int64(300000), resp.Order.ItemsPrice)
}

func TestCheckoutDecrementsStockAndClearsCart(t *testing.T) {
	service, db := newTestService(t)
	p := seedProduct(t, db, "Runner", 600000, 10)
	addToCart(t, db, 1, p, 4)

	_, err := service.Checkout(1, &CheckoutRequest{
		ShippingAddress: testAddress(),
		PaymentMethod:   PaymentCOD,
	})
	require.NoError(t, err)

	assert.Equal(t, 6, stockOf(t, db, p.ID))

	var count int64
	require.NoError(t, db.Model(&cart.CartItem{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestCheckoutInsufficientStockRollsBackEverything(t *testing.T) {
	service, db := newTestService(t)
	pa := seedProduct(t, db, "Boot", 600000, 10)
	pb := seedProduct(t, db, "Sandal", 600000, 5)
	addToCart(t, db, 1, pa, 2)
	addToCart(t, db, 1, pb, 3)

	// Another checkout drains the second product first
	require.NoError(t, db.Model(&product.Product{}).Where("id = ?", pb.ID).
		Update("stock", 2).Error)

	_, err := service.Checkout(1, &CheckoutRequest{
		ShippingAddress: testAddress(),
		PaymentMethod:   PaymentCOD,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))

	// Nothing moved: first product's stock untouched, cart intact, no order
	assert.Equal(t, 10, stockOf(t, db, pa.ID))
	assert.Equal(t, 2, stockOf(t, db, pb.ID))

	var orders, lines int64
	require.NoError(t, db.Model(&Order{}).Count(&orders).Error)
	require.NoError(t, db.Model(&cart.CartItem{}).Count(&lines).Error)
	assert.Equal(t, int64(0), orders)
	assert.Equal(t, int64(2), lines)
}

func TestCheckoutSequentialBuyersShareLimitedStock(t *testing.T) {
	service, db := newTestService(t)
	p := seedProduct(t, db, "Limited", 600000, 3)
	addToCart(t, db, 1, p, 2)
	addToCart(t, db, 2, p, 2)

	_, err := service.Checkout(1, &CheckoutRequest{
		ShippingAddress: testAddress(),
		PaymentMethod:   PaymentCOD,
	})
	require.NoError(t, err)

	_, err = service.Checkout(2, &CheckoutRequest{
		ShippingAddress: testAddress(),
		PaymentMethod:   PaymentCOD,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
	assert.Equal(t, 1, stockOf(t, db, p.ID))
}

func TestCheckoutEmptyCart(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.Checkout(1, &CheckoutRequest{
		ShippingAddress: testAddress(),
		PaymentMethod:   PaymentCOD,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestCheckoutInvalidPaymentMethod(t *testing.T) {
	service, db := newTestService(t)
	p := seedProduct(t, db, "Runner", 600000, 10)
	addToCart(t, db, 1, p, 1)

	_, err := service.Checkout(1, &CheckoutRequest{
		ShippingAddress: testAddress(),
		PaymentMethod:   PaymentMethod("bitcoin"),
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestCheckoutMissingAddressField(t *testing.T) {
	service, db := newTestService(t)
	p := seedProduct(t, db, "Runner", 600000, 10)
	addToCart(t, db, 1, p, 1)

	addr := testAddress()
	addr.Phone = ""
	_, err := service.Checkout(1, &CheckoutRequest{
		ShippingAddress: addr,
		PaymentMethod:   PaymentCOD,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestCheckoutZaloPayCarriesPaymentHint(t *testing.T) {
	service, db := newTestService(t)
	p := seedProduct(t, db, "Runner", 600000, 10)
	addToCart(t, db, 1, p, 1)

	resp, err := service.Checkout(1, &CheckoutRequest{
		ShippingAddress: testAddress(),
		PaymentMethod:   PaymentZaloPay,
	})
	require.NoError(t, err)
	assert.True(t, resp.PaymentRequired)
	assert.NotEmpty(t, resp.PaymentHint)
}

func TestSnapshotsSurvivePriceChanges(t *testing.T) {
	service, db := newTestService(t)
	p := seedProduct(t, db, "Runner", 600000, 10)
	addToCart(t, db, 1, p, 1)

	resp, err := service.Checkout(1, &CheckoutRequest{
		ShippingAddress: testAddress(),
		PaymentMethod:   PaymentCOD,
	})
	require.NoError(t, err)

	require.NoError(t, db.Model(&product.Product{}).Where("id = ?", p.ID).
		Update("price", 999999).Error)

	o, err := service.GetOrder(resp.Order.ID, 1, false)
	require.NoError(t, err)
	assert.Equal(t, int64(600000), o.Items[0].Price)
	assert.Equal(t, int64(600000), o.ItemsPrice)
}

func placeOrder(t *testing.T, service *Service, db *gorm.DB, userID uint) *Order {
	t.Helper()
	p := seedProduct(t, db, fmt.Sprintf("Item-%d", userID), 600000, 10)
	addToCart(t, db, userID, p, 1)
	resp, err := service.Checkout(userID, &CheckoutRequest{
		ShippingAddress: testAddress(),
		PaymentMethod:   PaymentCOD,
	})
	require.NoError(t, err)
	return resp.Order
}

func TestMarkPaidTransitionsToProcessing(t *testing.T) {
	service, db := newTestService(t)
	o := placeOrder(t, service, db, 1)

	paid, err := service.MarkPaid(o.ID, &PaymentDetails{
		TransactionID: "tx-1",
		Status:        "COMPLETED",
		EmailAddress:  "payer@example.com",
	})
	require.NoError(t, err)
	assert.True(t, paid.IsPaid)
	assert.NotNil(t, paid.PaidAt)
	assert.Equal(t, StatusProcessing, paid.Status)
	assert.Equal(t, "tx-1", paid.PaymentResult.TransactionID)

	_, err = service.MarkPaid(o.ID, &PaymentDetails{TransactionID: "tx-2"})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))

	// The rejected call left the payment record untouched
	var stored Order
	require.NoError(t, db.First(&stored, o.ID).Error)
	require.NotNil(t, stored.PaidAt)
	assert.True(t, stored.PaidAt.Equal(*paid.PaidAt))
	assert.Equal(t, "tx-1", stored.PaymentResult.TransactionID)
}

func TestMarkPaidKeepsStatusPastPending(t *testing.T) {
	service, db := newTestService(t)
	o := placeOrder(t, service, db, 1)

	require.NoError(t, db.Model(&Order{}).Where("id = ?", o.ID).
		Update("status", StatusShipped).Error)

	paid, err := service.MarkPaid(o.ID, &PaymentDetails{TransactionID: "tx-1"})
	require.NoError(t, err)
	assert.True(t, paid.IsPaid)
	assert.Equal(t, StatusShipped, paid.Status)

	var stored Order
	require.NoError(t, db.First(&stored, o.ID).Error)
	assert.Equal(t, StatusShipped, stored.Status)
}

func TestMarkPaidOnCancelledOrder(t *testing.T) {
	service, db := newTestService(t)
	o := placeOrder(t, service, db, 1)

	_, err := service.Cancel(o.ID)
	require.NoError(t, err)

	_, err = service.MarkPaid(o.ID, &PaymentDetails{TransactionID: "tx-1"})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}

func TestMarkDelivered(t *testing.T) {
	service, db := newTestService(t)
	o := placeOrder(t, service, db, 1)

	delivered, err := service.MarkDelivered(o.ID)
	require.NoError(t, err)
	assert.True(t, delivered.IsDelivered)
	assert.NotNil(t, delivered.DeliveredAt)
	assert.Equal(t, StatusDelivered, delivered.Status)

	_, err = service.MarkDelivered(o.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}

func TestCancelRestoresStock(t *testing.T) {
	service, db := newTestService(t)
	p := seedProduct(t, db, "Runner", 600000, 10)
	addToCart(t, db, 1, p, 4)

	resp, err := service.Checkout(1, &CheckoutRequest{
		ShippingAddress: testAddress(),
		PaymentMethod:   PaymentCOD,
	})
	require.NoError(t, err)
	require.Equal(t, 6, stockOf(t, db, p.ID))

	cancelled, err := service.Cancel(resp.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)
	assert.Equal(t, 10, stockOf(t, db, p.ID))
}

func TestCancelDeliveredOrderRejected(t *testing.T) {
	service, db := newTestService(t)
	o := placeOrder(t, service, db, 1)

	_, err := service.MarkDelivered(o.ID)
	require.NoError(t, err)

	_, err = service.Cancel(o.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}

func TestGetOrderOwnership(t *testing.T) {
	service, db := newTestService(t)
	o := placeOrder(t, service, db, 1)

	// Owner can read it
	got, err := service.GetOrder(o.ID, 1, false)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)

	// A stranger cannot
	_, err = service.GetOrder(o.ID, 2, false)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))

	// An admin can
	_, err = service.GetOrder(o.ID, 2, true)
	require.NoError(t, err)

	_, err = service.GetOrder(999, 1, false)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestGetMyOrdersNewestFirst(t *testing.T) {
	service, db := newTestService(t)
	first := placeOrder(t, service, db, 1)
	second := placeOrder(t, service, db, 1)
	placeOrder(t, service, db, 2)

	orders, err := service.GetMyOrders(1)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second.ID, orders[0].ID)
	assert.Equal(t, first.ID, orders[1].ID)
}

func TestGetAllOrdersFilters(t *testing.T) {
	service, db := newTestService(t)
	o1 := placeOrder(t, service, db, 1)
	placeOrder(t, service, db, 2)

	_, err := service.MarkPaid(o1.ID, &PaymentDetails{TransactionID: "tx-1"})
	require.NoError(t, err)

	paid := true
	result, err := service.GetAllOrders(&ListFilters{IsPaid: &paid})
	require.NoError(t, err)
	require.Len(t, result.Orders, 1)
	assert.Equal(t, o1.ID, result.Orders[0].ID)

	result, err = service.GetAllOrders(&ListFilters{Status: StatusPending})
	require.NoError(t, err)
	assert.Len(t, result.Orders, 1)

	result, err = service.GetAllOrders(&ListFilters{Page: 1, Limit: 1})
	require.NoError(t, err)
	assert.Len(t, result.Orders, 1)
	assert.Equal(t, int64(2), result.Total)
	assert.Equal(t, 2, result.TotalPages)
}
