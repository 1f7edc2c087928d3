package service_test

import (
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/thumbnailer/internal/model"
	"github.com/templui/thumbnailer/internal/service"
	"github.com/templui/thumbnailer/internal/testutil"
)

func TestParseLiveTime(t *testing.T) {
	n, err := service.ParseLiveTime(" 300 ", true)
	require.NoError(t, err)
	assert.Equal(t, 300, n)

	_, err = service.ParseLiveTime("", false)
	assert.ErrorIs(t, err, service.ErrLiveTimeRequired)

	_, err = service.ParseLiveTime("", true)
	assert.ErrorIs(t, err, service.ErrInvalidLiveTime)
	assert.NotErrorIs(t, err, service.ErrLiveTimeRequired)

	_, err = service.ParseLiveTime("3000.5", true)
	assert.ErrorIs(t, err, service.ErrInvalidLiveTime)
}

func TestExpiringLinkLifecycle(t *testing.T) {
	f := newFixture(t)
	user := testutil.User(t, f.db, "alice", testutil.Tier(t, f.db, model.TierEnterprise))
	data := testutil.JPEG(t, 64, 64)

	img, err := f.expiring.Create(user.ID, ".jpg", data, 300)
	require.NoError(t, err)
	assert.Equal(t, service.ExpiringPrefix+img.ID+".jpg", img.StoragePath)
	name := path.Base(img.StoragePath)

	got, _, err := f.expiring.Fetch(name)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	// Exactly live_time seconds old is still live
	f.clock.Advance(300 * time.Second)
	_, _, err = f.expiring.Fetch(name)
	require.NoError(t, err)

	f.clock.Advance(time.Second)
	_, _, err = f.expiring.Fetch(name)
	assert.ErrorIs(t, err, service.ErrExpired)

	_, _, err = f.expiring.Fetch(name)
	assert.ErrorIs(t, err, service.ErrNotFound)

	exists, err := f.store.Exists(img.StoragePath)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestExpiringFetchNeedsNoOwner(t *testing.T) {
	f := newFixture(t)
	user := testutil.User(t, f.db, "bob", testutil.Tier(t, f.db, model.TierEnterprise))

	result, err := f.images.Upload(user, uploadWithLiveTime("photo.png", testutil.PNG(t, 50, 50), "1000"))
	require.NoError(t, err)

	got, img, err := f.expiring.Fetch(path.Base(result.Expiring.StoragePath))
	require.NoError(t, err)
	assert.Equal(t, user.ID, img.UserID)

	original, err := f.access.AuthorizeAndFetch(user, user.ID, path.Base(result.Image.StoragePath))
	require.NoError(t, err)
	assert.Equal(t, original, got)
}

func TestExpiringFetchUnknownNames(t *testing.T) {
	f := newFixture(t)

	for _, name := range []string{"missing.jpg", "", "..", "a/b.jpg", `..\x.jpg`} {
		_, _, err := f.expiring.Fetch(name)
		assert.ErrorIs(t, err, service.ErrNotFound, name)
	}
}

func TestExpiringFetchMissingFile(t *testing.T) {
	f := newFixture(t)
	user := testutil.User(t, f.db, "carol", nil)

	img, err := f.expiring.Create(user.ID, ".jpg", testutil.JPEG(t, 8, 8), 600)
	require.NoError(t, err)
	require.NoError(t, f.store.Delete(img.StoragePath))

	_, _, err = f.expiring.Fetch(path.Base(img.StoragePath))
	assert.ErrorIs(t, err, service.ErrFileMissing)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestExpiringCreateValidatesLiveTime(t *testing.T) {
	f := newFixture(t)
	user := testutil.User(t, f.db, "dave", nil)

	_, err := f.expiring.Create(user.ID, ".jpg", []byte("x"), model.MinLiveTime-1)
	assert.ErrorIs(t, err, service.ErrInvalidLiveTime)

	_, err = f.expiring.Create(user.ID, ".jpg", []byte("x"), model.MaxLiveTime+1)
	assert.ErrorIs(t, err, service.ErrInvalidLiveTime)
}

func TestReap(t *testing.T) {
	f := newFixture(t)
	user := testutil.User(t, f.db, "erin", nil)

	short, err := f.expiring.Create(user.ID, ".jpg", []byte("short"), 300)
	require.NoError(t, err)
	long, err := f.expiring.Create(user.ID, ".jpg", []byte("long"), 3000)
	require.NoError(t, err)

	n, err := f.expiring.Reap()
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	f.clock.Advance(301 * time.Second)
	n, err = f.expiring.Reap()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, _, err = f.expiring.Fetch(path.Base(short.StoragePath))
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, _, err = f.expiring.Fetch(path.Base(long.StoragePath))
	assert.NoError(t, err)
}
