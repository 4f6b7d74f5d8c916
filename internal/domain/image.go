package domain

// Image описывает объект изображения в S3-совместимом хранилище.
type Image struct {
	ID        string // uuid
	Bucket    string
	ObjectKey string
	Bytes     []byte
	Size      *int64
	MimeType  *string
}

func NewImage(id, bucket, objectKey string, data []byte, size *int64, mimeType *string) *Image {
	return &Image{
		ID:        id,
		Bucket:    bucket,
		ObjectKey: objectKey,
		Bytes:     data,
		Size:      size,
		MimeType:  mimeType,
	}
}
