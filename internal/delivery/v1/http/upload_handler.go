package http

import (
	"io"
	"net/http"
	"strings"

	"github.com/techmart/backend/internal/usecase"
	"github.com/techmart/backend/pkg/e"
	"github.com/techmart/backend/pkg/logger"
)

const (
	maxUploadSize    = 15 << 20
	maxUploadMemory  = 4 << 20
	maxUploadRequest = maxUploadSize + 1<<20 // файл + накладные расходы формы
)

type UploadHandler struct {
	imagesInfra usecase.ImagesInfra
	logger      logger.Logger
}

func NewUploadHandler(imagesInfra usecase.ImagesInfra, logger logger.Logger) *UploadHandler {
	return &UploadHandler{imagesInfra: imagesInfra, logger: logger}
}

// upload
//
//	@Summary	Загрузка изображения товара (админ)
//	@Description	Принимает одно изображение (jpeg/png/webp) в поле file
//	@Tags		uploads
//	@Accept		multipart/form-data
//	@Produce	json
//	@Param		file	formData	file	true	"Изображение"
//	@Success	201		{object}	UploadResponse
//	@Failure	415		{object}	ErrorResponse
//	@Security	BearerAuth
//	@Router		/uploads [post]
func (u *UploadHandler) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadRequest)

	if err := ensureMultipartForm(r, maxUploadMemory); err != nil {
		WriteError(w, err)
		return
	}

	file, fh, err := r.FormFile("file")
	if err != nil {
		WriteError(w, e.WrapField("file", e.ErrValidation))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		WriteError(w, e.ErrInternalServerError)
		return
	}
	if int64(len(data)) > maxUploadSize {
		WriteError(w, e.WrapField(fh.Filename, e.ErrFileTooLarge))
		return
	}

	mimeType := http.DetectContentType(data[:min(len(data), 512)])

	res, err := u.imagesInfra.UploadImage(r.Context(), &usecase.UploadImageReq{
		Data:     data,
		MimeType: mimeType,
		Size:     int64(len(data)),
		Name:     fh.Filename,
	})
	if err != nil {
		u.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, UploadResponse{Key: res.Key, URL: res.URL})
}

func ensureMultipartForm(r *http.Request, maxMemory int64) error {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return e.ErrExpectedMultipart
	}
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		return e.WrapField("form", e.ErrValidation)
	}
	return nil
}
