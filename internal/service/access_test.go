package service_test

import (
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/thumbnailer/internal/model"
	"github.com/templui/thumbnailer/internal/service"
	"github.com/templui/thumbnailer/internal/testutil"
)

func TestAccessOwnerReadsArtifacts(t *testing.T) {
	f := newFixture(t)
	owner := testutil.User(t, f.db, "alice", testutil.Tier(t, f.db, model.TierPremium))
	data := testutil.JPEG(t, 800, 600)

	result, err := f.images.Upload(owner, upload("photo.jpg", data))
	require.NoError(t, err)

	got, err := f.access.AuthorizeAndFetch(owner, owner.ID, path.Base(result.Image.StoragePath))
	require.NoError(t, err)
	assert.Equal(t, data, got)

	for _, thumb := range result.Thumbnails {
		got, err := f.access.AuthorizeAndFetch(owner, owner.ID, path.Base(thumb.Path))
		require.NoError(t, err)
		assert.NotEmpty(t, got)
	}
}

func TestAccessForbidsOtherUsers(t *testing.T) {
	f := newFixture(t)
	owner := testutil.User(t, f.db, "alice", nil)
	intruder := testutil.User(t, f.db, "mallory", nil)

	result, err := f.images.Upload(owner, upload("photo.jpg", testutil.JPEG(t, 50, 50)))
	require.NoError(t, err)
	name := path.Base(result.Image.StoragePath)

	_, err = f.access.AuthorizeAndFetch(intruder, owner.ID, name)
	assert.ErrorIs(t, err, service.ErrForbidden)

	// Existence is not revealed to other users
	_, err = f.access.AuthorizeAndFetch(intruder, owner.ID, "missing.jpg")
	assert.ErrorIs(t, err, service.ErrForbidden)

	_, err = f.access.AuthorizeAndFetch(nil, owner.ID, name)
	assert.ErrorIs(t, err, service.ErrForbidden)
}

func TestAccessOwnerMissingFile(t *testing.T) {
	f := newFixture(t)
	owner := testutil.User(t, f.db, "alice", nil)

	for _, name := range []string{"missing.jpg", "..", "../other.jpg", ""} {
		_, err := f.access.AuthorizeAndFetch(owner, owner.ID, name)
		assert.ErrorIs(t, err, service.ErrNotFound, name)
	}
}

func TestAccessRecordedOriginalWithoutBytes(t *testing.T) {
	f := newFixture(t)
	owner := testutil.User(t, f.db, "alice", nil)

	result, err := f.images.Upload(owner, upload("photo.jpg", testutil.JPEG(t, 50, 50)))
	require.NoError(t, err)
	require.NoError(t, f.store.Delete(result.Image.StoragePath))

	_, err = f.access.AuthorizeAndFetch(owner, owner.ID, path.Base(result.Image.StoragePath))
	assert.ErrorIs(t, err, service.ErrFileMissing)
}
