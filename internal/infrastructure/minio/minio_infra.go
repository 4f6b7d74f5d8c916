package minio

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/techmart/backend/internal/cfg"
	"github.com/techmart/backend/internal/domain"
	"github.com/techmart/backend/internal/infrastructure"
	"github.com/techmart/backend/internal/usecase"
	"github.com/techmart/backend/pkg/e"
	"github.com/techmart/backend/pkg/logger"
)

// MinioInfrastructure управляет загрузкой и фоновой очисткой изображений в MinIO.
type MinioInfrastructure struct {
	minioRepo   usecase.ImageRepository
	cfg         *cfg.MinIOCfg
	logger      logger.Logger
	shutdownCtx context.Context
	wg          sync.WaitGroup
}

func NewMinioInfrastructure(minioRepo usecase.ImageRepository, cfg *cfg.MinIOCfg, logger logger.Logger, shutdownCtx context.Context) *MinioInfrastructure {
	return &MinioInfrastructure{
		minioRepo:   minioRepo,
		cfg:         cfg,
		logger:      logger,
		shutdownCtx: shutdownCtx,
	}
}

// UploadImage загружает изображение товара и возвращает ключ объекта и
// внешний URL. Ключ включает uuid, коллизии имён файлов не страшны.
func (m *MinioInfrastructure) UploadImage(ctx context.Context, req *usecase.UploadImageReq) (*usecase.UploadImageRes, error) {
	const op = "MinioInfrastructure.UploadImage"

	ext, err := infrastructure.GetExtensionFromMIME(req.MimeType)
	if err != nil {
		return nil, e.Wrap(op, fmt.Errorf("invalid mime type %s for %s: %w", req.MimeType, req.Name, err))
	}

	imageID := uuid.NewString()
	objKey := fmt.Sprintf("products/%s.%s", imageID, ext)
	image := domain.NewImage(imageID, m.cfg.BucketName, objKey, req.Data, &req.Size, &req.MimeType)

	key, err := m.minioRepo.Upload(ctx, image)
	if err != nil {
		return nil, e.Wrap(op, fmt.Errorf("upload %s failed: %w", req.Name, err))
	}

	return &usecase.UploadImageRes{
		Key: key,
		URL: m.publicURL(key),
	}, nil
}

// RemoveImage запускает фоновое удаление объекта с повторами.
// Внешние ссылки (не наши ключи) пропускаются.
func (m *MinioInfrastructure) RemoveImage(key string) {
	if key == "" || strings.Contains(key, "://") {
		return
	}
	m.wg.Add(1)
	go m.cleanupKey(key)
}

// cleanupKey удаляет объект из MinIO с экспоненциальной задержкой и jitter.
func (m *MinioInfrastructure) cleanupKey(key string) {
	defer m.wg.Done()
	const op = "MinioInfrastructure.cleanupKey"

	ctx, cancel := context.WithTimeout(m.shutdownCtx, 30*time.Second)
	defer cancel()

	backoff := time.Second
	for attempt := 0; attempt < 3; attempt++ {
		if err := m.minioRepo.Delete(ctx, key); err == nil {
			return
		}

		select {
		case <-ctx.Done():
			m.logger.Warnf("%s: cleanup interrupted by shutdown, key=%v", op, key)
			return
		default:
		}

		if attempt < 2 {
			jitter := time.Duration(time.Now().UnixNano() % int64(time.Second))
			select {
			case <-time.After(backoff + jitter):
			case <-ctx.Done():
				m.logger.Warnf("%s: cleanup interrupted by shutdown during backoff, key=%v", op, key)
				return
			}
			backoff *= 2
		}
	}

	m.logger.Warnf("%s: giving up on key=%v", op, key)
}

// WaitForCleanup ожидает завершения всех фоновых задач очистки с учётом таймаута завершения приложения.
func (m *MinioInfrastructure) WaitForCleanup(shutdownTimeoutCtx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-shutdownTimeoutCtx.Done():
		return fmt.Errorf("minio cleanup timeout during shutdown: %w", shutdownTimeoutCtx.Err())
	}
}

func (m *MinioInfrastructure) publicURL(key string) string {
	return strings.TrimRight(m.cfg.PublicURL, "/") + "/" + m.cfg.BucketName + "/" + key
}
