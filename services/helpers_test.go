package services

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
	"testing"
	"time"

	"github.com/shahzaib-autos/shahzaib-autos-api/config"
	"github.com/shahzaib-autos/shahzaib-autos-api/models"
	"github.com/shahzaib-autos/shahzaib-autos-api/utils"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testEnv wires an in-memory database and mock collaborators into the package singletons
type testEnv struct {
	db     *gorm.DB
	cfg    *config.Config
	email  *MockEmailService
	cache  *MockCacheService
	events *MockEventPublisher
	images *MockImageService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection keeps every query on the same in-memory database
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(models.All()...))
	config.SetDB(db)

	cfg := &config.Config{
		GoEnv:                 "test",
		SiteURL:               "https://shahzaibautos.pk",
		AdminNotifyEmail:      "orders@shahzaibautos.pk",
		ShopWhatsAppNumber:    "0300-1234567",
		StaleOrderAge:         24 * time.Hour,
		SweepInterval:         time.Hour,
		ShippingFee:           250,
		FreeShippingThreshold: 10000,
		BookingOpenHour:       9,
		BookingCloseHour:      18,
		BookingClosedWeekday:  "Friday",
		LowStockThreshold:     5,
	}
	config.SetConfig(cfg)

	env := &testEnv{
		db:     db,
		cfg:    cfg,
		email:  NewMockEmailService(),
		cache:  NewMockCacheService(),
		events: NewMockEventPublisher(),
		images: NewMockImageService(),
	}
	env.email.SetAsMockForTesting()
	env.cache.SetAsMockForTesting()
	env.events.SetAsMockForTesting()
	env.images.SetAsMockForTesting()
	SetAuditService(&GormAuditService{db: db})

	t.Cleanup(func() {
		SetEmailService(nil)
		SetCacheService(nil)
		SetEventPublisher(nil)
		SetImageService(nil)
		SetAuditService(nil)
	})
	return env
}

func (e *testEnv) customer(t *testing.T, email string) *models.Customer {
	t.Helper()
	c := models.Customer{Auth0ID: "auth0|" + email, Name: "Bilal Ahmed", Email: email, Phone: "03211234567", City: "Lahore"}
	require.NoError(t, e.db.Create(&c).Error)
	return &c
}

func (e *testEnv) product(t *testing.T, name string, price int64, stock int) *models.Product {
	t.Helper()
	p := models.Product{Name: name, Slug: utils.Slugify(name), Price: price, Stock: stock, Published: true, Category: "oils"}
	require.NoError(t, e.db.Create(&p).Error)
	return &p
}

func (e *testEnv) admin(t *testing.T, email string, role models.Role) *models.Admin {
	t.Helper()
	hash, err := HashPassword("correct-horse-battery")
	require.NoError(t, err)
	a := models.Admin{Email: email, Name: string(role), PasswordHash: hash, Role: role, Active: true}
	require.NoError(t, e.db.Create(&a).Error)
	return &a
}

func (e *testEnv) service(t *testing.T, name string, capacity int) *models.Service {
	t.Helper()
	s := models.Service{Name: name, Slug: utils.Slugify(name), Price: 3000, DurationMinutes: 60, SlotCapacity: capacity, Active: true}
	require.NoError(t, e.db.Create(&s).Error)
	return &s
}

// fixedClock returns a clock pinned to the given shop-local time
func fixedClock(year int, month time.Month, day, hour int) func() time.Time {
	t := time.Date(year, month, day, hour, 0, 0, 0, ShopLocation)
	return func() time.Time { return t }
}

// createTestFileHeader builds a multipart.FileHeader holding content
func createTestFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="image"; filename="`+filename+`"`)
	h.Set("Content-Type", "application/octet-stream")
	part, err := writer.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(body, writer.Boundary()).ReadForm(int64(len(content)) + 1024)
	require.NoError(t, err)
	require.Len(t, form.File["image"], 1)
	return form.File["image"][0]
}
