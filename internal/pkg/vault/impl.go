package vault

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/samber/do/v2"
	"github.com/vreid/shinpan/internal/pkg/common"
)

// MaxBlobSize caps a single upload.
const MaxBlobSize = 16 << 20

var (
	ErrBlobNotFound  = errors.New("blob doesn't exist")
	ErrInvalidBlobID = errors.New("blob id isn't a valid content hash")
)

// VaultService is the content-addressable blob store the ledger consumes by
// opaque id: bytes in, sha256 hex id out. Blob contents are never
// interpreted.
type VaultService struct {
	BlobDir string
}

func NewVaultService(i do.Injector) (*VaultService, error) {
	dataDir := do.MustInvokeNamed[string](i, "data-dir")

	result := &VaultService{
		BlobDir: filepath.Join(dataDir, "vault"),
	}

	err := os.MkdirAll(result.BlobDir, 0700)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob directory: %w", err)
	}

	echoService, err := do.Invoke[*common.EchoService](i)
	if err != nil {
		return nil, fmt.Errorf("failed to create echo service: %w", err)
	}

	echoService.Register(func(e *echo.Echo) {
		apiGroup := e.Group("/api")

		vaultGroup := apiGroup.Group("/vault")

		vaultGroup.POST("", result.Upload)
		vaultGroup.GET("/:id", result.Download)
	})

	return result, nil
}

func checkBlobID(blobID string) error {
	raw, err := hex.DecodeString(blobID)
	if err != nil || len(raw) != sha256.Size {
		return ErrInvalidBlobID
	}

	return nil
}

func (s *VaultService) Store(data []byte, contentType string) (string, error) {
	sum := sha256.Sum256(data)
	blobID := hex.EncodeToString(sum[:])

	blobPath := filepath.Join(s.BlobDir, blobID)

	err := os.WriteFile(blobPath, data, 0600)
	if err != nil {
		return "", fmt.Errorf("failed to write blob: %w", err)
	}

	meta := BlobMeta{
		BlobID:      blobID,
		ContentType: contentType,
		Size:        int64(len(data)),
		Timestamp:   time.Now(),
	}

	metaData, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal blob meta: %w", err)
	}

	err = os.WriteFile(blobPath+".meta.json", metaData, 0600)
	if err != nil {
		return "", fmt.Errorf("failed to write blob meta: %w", err)
	}

	return blobID, nil
}

func (s *VaultService) Load(blobID string) ([]byte, string, error) {
	err := checkBlobID(blobID)
	if err != nil {
		return nil, "", err
	}

	blobPath := filepath.Join(s.BlobDir, blobID)

	data, err := os.ReadFile(blobPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", ErrBlobNotFound
		}

		return nil, "", fmt.Errorf("failed to read blob: %w", err)
	}

	var meta BlobMeta

	metaData, err := os.ReadFile(blobPath + ".meta.json")
	if err == nil {
		_ = json.Unmarshal(metaData, &meta)
	}

	contentType := meta.ContentType
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}

	return data, contentType, nil
}

func (s *VaultService) Upload(c echo.Context) error {
	data, err := io.ReadAll(io.LimitReader(c.Request().Body, MaxBlobSize))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to read request body")
	}

	contentType := c.Request().Header.Get(echo.HeaderContentType)

	blobID, err := s.Store(data, contentType)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to store blob")
	}

	//nolint:wrapcheck
	return c.JSON(http.StatusCreated, BlobMeta{
		BlobID:      blobID,
		ContentType: contentType,
		Size:        int64(len(data)),
		Timestamp:   time.Now(),
	})
}

func (s *VaultService) Download(c echo.Context) error {
	data, contentType, err := s.Load(c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrInvalidBlobID) {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid blob id")
		}

		if errors.Is(err, ErrBlobNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "blob not found")
		}

		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load blob")
	}

	//nolint:wrapcheck
	return c.Blob(http.StatusOK, contentType, data)
}
