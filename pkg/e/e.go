package e

import "fmt"

var (
	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	// Ошибки конфигурации
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect env variable")

	// 400 Bad Request
	ErrValidation           = fmt.Errorf("validation failed")
	ErrInvalidPrice         = fmt.Errorf("invalid price")
	ErrPricePrecision       = fmt.Errorf("price must have at most 2 decimal places")
	ErrStatusBadRequest     = fmt.Errorf("bad request")
	ErrExpectedMultipart    = fmt.Errorf("expected multipart/form-data")
	ErrMissingFields        = fmt.Errorf("missing required fields")
	ErrUnsupportedMediaType = fmt.Errorf("unsupported media type")
	ErrFileTooLarge         = fmt.Errorf("file too large")
	ErrEmptyCart            = fmt.Errorf("cart is empty")

	// 401 / 403
	ErrUnauthorized = fmt.Errorf("invalid credentials")
	ErrInvalidToken = fmt.Errorf("invalid or expired token")
	ErrForbidden    = fmt.Errorf("forbidden")

	// 404 Not Found
	ErrNotFound        = fmt.Errorf("not found")
	ErrProductNotFound = fmt.Errorf("product not found")
	ErrOrderNotFound   = fmt.Errorf("order not found")
	ErrUserNotFound    = fmt.Errorf("user not found")

	// 409 Conflict
	ErrEmailTaken        = fmt.Errorf("email already registered")
	ErrSlugTaken         = fmt.Errorf("slug already in use")
	ErrOutOfStock        = fmt.Errorf("product is out of stock")
	ErrInsufficientStock = fmt.Errorf("insufficient stock")
	ErrOrderNotPaid      = fmt.Errorf("order is not paid")

	// 502 Bad Gateway
	ErrPaymentProvider = fmt.Errorf("payment provider error")

	// 500
	ErrInternalServerError = fmt.Errorf("internal server error")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}

// WrapField помечает ошибку валидации именем поля.
func WrapField(field string, err error) error {
	return fmt.Errorf("%s: %w", field, err)
}
