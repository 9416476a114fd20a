// Package storage keeps post images in Azure Blob Storage.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"github.com/JaimeStill/agora/pkg/lifecycle"
)

// System stores and removes image blobs.
type System interface {
	// Start registers a startup hook that ensures the container exists.
	Start(lc *lifecycle.Coordinator) error
	// Upload writes reader to key and returns the blob's public URL.
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) (string, error)
	// Delete removes the blob at key. Returns ErrNotFound if absent.
	Delete(ctx context.Context, key string) error
	// KeyFromURL returns the blob key for a URL inside this container.
	// URLs hosted elsewhere report false.
	KeyFromURL(rawURL string) (string, bool)
}

type azure struct {
	client    *azblob.Client
	container string
	base      string
	logger    *slog.Logger
}

// New creates the Azure client. No request is made until Start or the first
// operation.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	client, err := azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	return &azure{
		client:    client,
		container: cfg.ContainerName,
		base:      strings.TrimSuffix(cfg.PublicURL, "/") + "/",
		logger:    logger.With("system", "storage"),
	}, nil
}

func (a *azure) Start(lc *lifecycle.Coordinator) error {
	a.logger.Info("starting storage system")

	lc.OnStartup(func() {
		_, err := a.client.CreateContainer(lc.Context(), a.container, nil)
		if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
			a.logger.Error("storage container initialization failed", "error", err)
			return
		}
		a.logger.Info("storage container ready", "container", a.container)
	})

	return nil
}

func (a *azure) Upload(ctx context.Context, key string, reader io.Reader, contentType string) (string, error) {
	if err := ValidateKey(key); err != nil {
		return "", err
	}

	_, err := a.client.UploadStream(ctx, a.container, key, reader, &azblob.UploadStreamOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
	})
	if err != nil {
		return "", fmt.Errorf("upload blob %s: %w", key, err)
	}

	return a.base + key, nil
}

func (a *azure) Delete(ctx context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	if _, err := a.client.DeleteBlob(ctx, a.container, key, nil); err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete blob %s: %w", key, err)
	}
	return nil
}

func (a *azure) KeyFromURL(rawURL string) (string, bool) {
	return KeyFromURL(a.base, rawURL)
}

// KeyFromURL strips base from rawURL, returning the remaining blob key.
func KeyFromURL(base, rawURL string) (string, bool) {
	key, ok := strings.CutPrefix(rawURL, base)
	if !ok || ValidateKey(key) != nil {
		return "", false
	}
	return key, true
}

// ValidateKey rejects empty keys and path traversal.
func ValidateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if strings.Contains(key, "..") {
		return ErrInvalidKey
	}
	return nil
}
