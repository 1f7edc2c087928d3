// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"github.com/templui/thumbnailer/internal/db"
	"github.com/templui/thumbnailer/internal/model"
	"github.com/templui/thumbnailer/internal/repository"
	"golang.org/x/image/bmp"
)

// NewDB returns a migrated SQLite database that lives for the duration of t.
func NewDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_pragma=foreign_keys(1)&_time_format=sqlite"
	conn, err := db.Init("sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(conn) })

	require.NoError(t, db.RunMigrations(conn.DB, "sqlite"))
	return conn
}

// Tier loads a seeded built-in tier by name.
func Tier(t *testing.T, conn *sqlx.DB, name string) *model.Tier {
	t.Helper()

	tier, err := repository.NewTierRepository(conn).ByName(name)
	require.NoError(t, err)
	return tier
}

// GenericTier creates a custom tier with one thumbnail height.
func GenericTier(t *testing.T, conn *sqlx.DB, name string, height int, original, expiring bool) *model.Tier {
	t.Helper()

	tier := &model.Tier{
		ID:                         uuid.New().String(),
		Name:                       name,
		ThumbnailHeight:            &height,
		PresenceOfOriginalFileLink: original,
		AbilityToFetchExpiringLink: expiring,
		CreatedAt:                  time.Now().UTC(),
	}
	require.NoError(t, repository.NewTierRepository(conn).Create(tier))
	return tier
}

// User creates a user on tier (nil for none) and returns it with Tier loaded.
func User(t *testing.T, conn *sqlx.DB, username string, tier *model.Tier) *model.User {
	t.Helper()

	user := &model.User{
		ID:        uuid.New().String(),
		Username:  username,
		CreatedAt: time.Now().UTC(),
		Tier:      tier,
	}
	if tier != nil {
		user.TierID = &tier.ID
	}
	require.NoError(t, repository.NewUserRepository(conn).Create(user))
	return user
}

func picture(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

// JPEG encodes a width x height test picture.
func JPEG(t *testing.T, width, height int) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, picture(width, height), nil))
	return buf.Bytes()
}

// PNG encodes a width x height test picture.
func PNG(t *testing.T, width, height int) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, picture(width, height)))
	return buf.Bytes()
}

// BMP encodes a picture in a format that decodes but is not accepted for upload.
func BMP(t *testing.T, width, height int) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, picture(width, height)))
	return buf.Bytes()
}

// PNGHeader returns a small PNG whose header declares width x height pixels.
// Only the header is consistent, so it decodes its config but not its pixels.
func PNGHeader(t *testing.T, width, height int) []byte {
	t.Helper()

	data := PNG(t, 1, 1)
	// signature(8) length(4) "IHDR"(4) width(4) height(4) ... crc at 29
	binary.BigEndian.PutUint32(data[16:20], uint32(width))
	binary.BigEndian.PutUint32(data[20:24], uint32(height))
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))
	return data
}
