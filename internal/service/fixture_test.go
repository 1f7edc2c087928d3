package service_test

import (
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"github.com/templui/thumbnailer/internal/metrics"
	"github.com/templui/thumbnailer/internal/repository"
	"github.com/templui/thumbnailer/internal/service"
	"github.com/templui/thumbnailer/internal/storage"
	"github.com/templui/thumbnailer/internal/testutil"
)

const testBaseURL = "http://testserver"

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	db       *sqlx.DB
	store    *storage.LocalStorage
	clock    *clock
	images   *service.ImageService
	expiring *service.ExpiringService
	access   *service.AccessService
	auth     *service.AuthService
	users    *service.UserService
}

type fixtureOption func(*service.ImageServiceOptions)

func withRollback(o *service.ImageServiceOptions) {
	o.RollbackPartialUploads = true
}

func withMaxPixels(n int64) fixtureOption {
	return func(o *service.ImageServiceOptions) {
		o.MaxPixels = n
	}
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()

	conn := testutil.NewDB(t)
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	imageRepo := repository.NewImageRepository(conn)
	expiringRepo := repository.NewExpiringImageRepository(conn)
	userRepo := repository.NewUserRepository(conn)
	tierRepo := repository.NewTierRepository(conn)
	tokenRepo := repository.NewTokenRepository(conn)

	c := &clock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	m := metrics.Noop{}

	expiring := service.NewExpiringService(expiringRepo, store, m).WithClock(c.Now)
	thumbnails := service.NewThumbnailService(store, m)

	o := service.ImageServiceOptions{
		Links:         service.Links{BaseURL: testBaseURL},
		MaxUploadSize: 10 << 20,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &fixture{
		db:       conn,
		store:    store,
		clock:    c,
		images:   service.NewImageService(imageRepo, store, thumbnails, expiring, m, o),
		expiring: expiring,
		access:   service.NewAccessService(imageRepo, store),
		auth:     service.NewAuthService(userRepo, tierRepo, tokenRepo, "test-secret-that-is-long-enough-for-hs256", time.Hour),
		users:    service.NewUserService(userRepo, tierRepo, expiringRepo, store),
	}
}

func (f *fixture) count(t *testing.T, userID string) int {
	t.Helper()

	n, err := f.images.Count(userID)
	require.NoError(t, err)
	return n
}

func (f *fixture) files(t *testing.T, userID string) []string {
	t.Helper()

	paths, err := f.store.List(service.UserImagesDir(userID))
	require.NoError(t, err)
	return paths
}

func upload(name string, data []byte) service.UploadInput {
	return service.UploadInput{File: &service.UploadFile{Name: name, Data: data}}
}

func uploadWithLiveTime(name string, data []byte, liveTime string) service.UploadInput {
	in := upload(name, data)
	in.LiveTime = liveTime
	in.LiveTimeSent = true
	return in
}
