package verification

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/nobridge/nobridge-backend/internal/domain/entity"
	"github.com/nobridge/nobridge-backend/internal/domain/repository"
	"github.com/nobridge/nobridge-backend/internal/pkg/apperror"
	"github.com/nobridge/nobridge-backend/internal/storage"
)

// DocumentStorage сохраняет файлы документов.
type DocumentStorage interface {
	Save(ctx context.Context, userID, requestID uuid.UUID, originalName string, r io.Reader) (*storage.StoredFile, error)
	Delete(ctx context.Context, path string) error
}

type UploadDocumentUseCase struct {
	verifications repository.VerificationRepository
	storage       DocumentStorage
	now           func() time.Time
	log           logrus.FieldLogger
}

func NewUploadDocumentUseCase(verifications repository.VerificationRepository, docs DocumentStorage, now func() time.Time, log logrus.FieldLogger) *UploadDocumentUseCase {
	return &UploadDocumentUseCase{verifications: verifications, storage: docs, now: now, log: log}
}

// Execute прикладывает документ к своей ожидающей заявке.
func (uc *UploadDocumentUseCase) Execute(ctx context.Context, requestID, userID uuid.UUID, filename string, r io.Reader) (doc *entity.VerificationDocument, err error) {
	defer func() { observe(actionUpload, err) }()

	req, err := uc.verifications.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !req.IsOwnedBy(userID) {
		return nil, apperror.ErrForbidden
	}
	if !req.Status.IsPending() {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "заявка уже рассмотрена")
	}

	stored, err := uc.storage.Save(ctx, userID, requestID, filename, r)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrUnsupportedType):
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, "допустимы только PDF, JPEG и PNG")
		case errors.Is(err, storage.ErrTooLarge):
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, "файл слишком большой")
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось сохранить документ")
	}

	doc = &entity.VerificationDocument{
		ID:        uuid.New(),
		RequestID: req.ID,
		UserID:    userID,
		FilePath:  stored.Path,
		FileType:  stored.MIME,
		FileSize:  stored.Size,
		CreatedAt: uc.now(),
	}
	if err := uc.verifications.AddDocument(ctx, doc); err != nil {
		if delErr := uc.storage.Delete(ctx, stored.Path); delErr != nil {
			uc.log.WithError(delErr).WithFields(logrus.Fields{
				"request_id": req.ID,
				"path":       stored.Path,
			}).Warn("verification: не удалось удалить файл документа после ошибки записи")
		}
		return nil, err
	}
	return doc, nil
}
