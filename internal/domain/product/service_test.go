// internal/domain/product/service_test.go
package product

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/size"
	"github.com/your-org/storefront-backend/internal/infrastructure/storage"
	"github.com/your-org/storefront-backend/internal/pkg/apperrors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeImageStore records uploads and deletions in memory
type fakeImageStore struct {
	uploads int
	deleted []string
}

func (f *fakeImageStore) Upload(_ context.Context, filename string, _ io.Reader) (*storage.ImageRef, error) {
	f.uploads++
	return &storage.ImageRef{
		URL:      "/uploads/" + filename,
		PublicID: fmt.Sprintf("img-%d", f.uploads),
	}, nil
}

func (f *fakeImageStore) Delete(_ context.Context, publicID string) error {
	f.deleted = append(f.deleted, publicID)
	return nil
}

func newTestService(t *testing.T) (*Service, *gorm.DB, *fakeImageStore) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&size.Size{}, &Product{}))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	store := &fakeImageStore{}
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewService(db, &config.Config{}, store, log), db, store
}

func seedSize(t *testing.T, db *gorm.DB, value string) size.Size {
	t.Helper()
	sz := size.Size{Category: size.SizeCategoryMen, System: size.SizeSystemEU, Value: value}
	require.NoError(t, db.Create(&sz).Error)
	return sz
}

func TestDiscountedPrice(t *testing.T) {
	p := Product{Price: 200000}
	assert.Equal(t, int64(200000), p.DiscountedPrice())

	p.IsOnSale = true
	p.Discount = 25
	assert.Equal(t, int64(150000), p.DiscountedPrice())

	// Discount is ignored while the product is not on sale
	p.IsOnSale = false
	assert.Equal(t, int64(200000), p.DiscountedPrice())

	p = Product{Price: 999, IsOnSale: true, Discount: 10}
	assert.Equal(t, int64(899), p.DiscountedPrice())
}

func TestCreateProduct(t *testing.T) {
	svc, db, store := newTestService(t)
	sz := seedSize(t, db, "42")

	p, err := svc.Create(context.Background(), &CreateProductRequest{
		Name:    "Runner",
		Price:   150000,
		Stock:   10,
		Brand:   "Acme",
		SizeIDs: []uint{sz.ID},
	}, "runner.jpg", strings.NewReader("fake-image-bytes"))
	require.NoError(t, err)

	assert.Equal(t, "/uploads/runner.jpg", p.Image)
	assert.Equal(t, "img-1", p.ImagePublicID)
	assert.Equal(t, 1, store.uploads)
	require.Len(t, p.Sizes, 1)

	got, err := svc.Get(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Runner", got.Name)
	assert.Len(t, got.Sizes, 1)
}

func TestCreateProductUnknownSize(t *testing.T) {
	svc, _, store := newTestService(t)

	_, err := svc.Create(context.Background(), &CreateProductRequest{
		Name:    "Runner",
		Price:   150000,
		SizeIDs: []uint{42},
	}, "runner.jpg", strings.NewReader("x"))
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	assert.Zero(t, store.uploads)
}

func TestGetMissingProduct(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Get(12345)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestListFiltersAndPagination(t *testing.T) {
	svc, db, _ := newTestService(t)
	sz := seedSize(t, db, "42")

	for i := 0; i < 5; i++ {
		brand := "Acme"
		if i%2 == 1 {
			brand = "Other"
		}
		p := Product{
			Name:     fmt.Sprintf("Shoe %d", i),
			Price:    int64(100000 * (i + 1)),
			Stock:    i, // first product is out of stock
			Brand:    brand,
			IsOnSale: i == 4,
			Sizes:    []size.Size{sz},
		}
		require.NoError(t, db.Create(&p).Error)
	}

	resp, err := svc.List(&ProductListRequest{Brand: "Acme"})
	require.NoError(t, err)
	assert.Len(t, resp.Products, 3)

	inStock := true
	resp, err = svc.List(&ProductListRequest{InStock: &inStock})
	require.NoError(t, err)
	assert.Len(t, resp.Products, 4)

	onSale := true
	resp, err = svc.List(&ProductListRequest{OnSale: &onSale})
	require.NoError(t, err)
	assert.Len(t, resp.Products, 1)

	resp, err = svc.List(&ProductListRequest{Page: 2, Limit: 2, SortBy: "price"})
	require.NoError(t, err)
	assert.Len(t, resp.Products, 2)
	assert.Equal(t, int64(5), resp.Pagination.Total)
	assert.Equal(t, 3, resp.Pagination.TotalPages)
	assert.True(t, resp.Pagination.HasNext)
	assert.True(t, resp.Pagination.HasPrev)
}

func TestUpdateProductPartial(t *testing.T) {
	svc, db, _ := newTestService(t)
	sz := seedSize(t, db, "42")

	p, err := svc.Create(context.Background(), &CreateProductRequest{
		Name:    "Runner",
		Price:   150000,
		Stock:   10,
		SizeIDs: []uint{sz.ID},
	}, "runner.jpg", strings.NewReader("x"))
	require.NoError(t, err)

	newPrice := int64(120000)
	onSale := true
	discount := 10
	updated, err := svc.Update(p.ID, &UpdateProductRequest{
		Price:    &newPrice,
		IsOnSale: &onSale,
		Discount: &discount,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(120000), updated.Price)
	assert.True(t, updated.IsOnSale)
	assert.Equal(t, "Runner", updated.Name) // untouched
	assert.Equal(t, 10, updated.Stock)      // untouched

	bad := -5
	_, err = svc.Update(p.ID, &UpdateProductRequest{Stock: &bad})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestUpdateProductReplacesSizes(t *testing.T) {
	svc, db, _ := newTestService(t)
	sz1 := seedSize(t, db, "42")
	sz2 := seedSize(t, db, "43")

	p, err := svc.Create(context.Background(), &CreateProductRequest{
		Name:    "Runner",
		Price:   150000,
		SizeIDs: []uint{sz1.ID},
	}, "runner.jpg", strings.NewReader("x"))
	require.NoError(t, err)

	updated, err := svc.Update(p.ID, &UpdateProductRequest{SizeIDs: []uint{sz2.ID}})
	require.NoError(t, err)
	require.Len(t, updated.Sizes, 1)
	assert.Equal(t, sz2.ID, updated.Sizes[0].ID)
}

func TestDeleteProductRemovesImage(t *testing.T) {
	svc, _, store := newTestService(t)

	p, err := svc.Create(context.Background(), &CreateProductRequest{
		Name:  "Runner",
		Price: 150000,
	}, "runner.jpg", strings.NewReader("x"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), p.ID))
	assert.Equal(t, []string{p.ImagePublicID}, store.deleted)

	_, err = svc.Get(p.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}
