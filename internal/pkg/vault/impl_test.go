package vault_test

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vreid/shinpan/internal/pkg/vault"
)

func TestStoreAndLoad(t *testing.T) {
	t.Parallel()

	svc := &vault.VaultService{BlobDir: t.TempDir()}

	data := []byte(`{"moves":["e4","e5"]}`)

	blobID, err := svc.Store(data, "application/json")
	require.NoError(t, err)

	sum := sha256.Sum256(data)
	assert.Equal(t, hex.EncodeToString(sum[:]), blobID)

	loaded, contentType, err := svc.Load(blobID)
	require.NoError(t, err)
	assert.Equal(t, data, loaded)
	assert.Equal(t, "application/json", contentType)
}

func TestStoreIsIdempotent(t *testing.T) {
	t.Parallel()

	svc := &vault.VaultService{BlobDir: t.TempDir()}

	first, err := svc.Store([]byte("replay"), "text/plain")
	require.NoError(t, err)

	second, err := svc.Store([]byte("replay"), "text/plain")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestLoadUnknownBlob(t *testing.T) {
	t.Parallel()

	svc := &vault.VaultService{BlobDir: t.TempDir()}

	sum := sha256.Sum256([]byte("never stored"))

	_, _, err := svc.Load(hex.EncodeToString(sum[:]))
	assert.ErrorIs(t, err, vault.ErrBlobNotFound)
}

func TestLoadRejectsInvalidID(t *testing.T) {
	t.Parallel()

	svc := &vault.VaultService{BlobDir: t.TempDir()}

	for _, blobID := range []string{"", "../../etc/passwd", "zz", "abcd"} {
		_, _, err := svc.Load(blobID)
		assert.ErrorIs(t, err, vault.ErrInvalidBlobID, "id %q", blobID)
	}
}
