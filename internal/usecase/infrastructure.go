package usecase

import "context"

// PaymentProvider — внешний платёжный провайдер (PayPal).
type PaymentProvider interface {
	// CreateOrder открывает у провайдера платёж на сумму заказа и
	// возвращает его идентификатор.
	CreateOrder(ctx context.Context, req *CreatePaymentReq) (*CreatePaymentRes, error)

	// Capture подтверждает списание средств. Вызывается строго один раз на
	// запрос: повторы отдаются на откуп клиенту.
	Capture(ctx context.Context, providerOrderID string) (*CaptureRes, error)
}

type ImagesInfra interface {
	UploadImage(ctx context.Context, req *UploadImageReq) (*UploadImageRes, error)
	RemoveImage(key string)
	WaitForCleanup(ctx context.Context) error
}

type MessageProducer interface {
	WriteRawMessage(ctx context.Context, req *WriteRawMessageReq) error
}
