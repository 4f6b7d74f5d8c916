package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techmart/backend/internal/cfg"
	"github.com/techmart/backend/pkg/e"
)

func TestToHTTPResponse(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{e.WrapField("name", e.ErrValidation), http.StatusBadRequest},
		{e.ErrEmptyCart, http.StatusBadRequest},
		{e.ErrOrderNotPaid, http.StatusBadRequest},
		{e.ErrUnsupportedMediaType, http.StatusUnsupportedMediaType},
		{e.ErrUnauthorized, http.StatusUnauthorized},
		{e.ErrInvalidToken, http.StatusUnauthorized},
		{e.ErrForbidden, http.StatusForbidden},
		{e.Wrap("op", e.ErrProductNotFound), http.StatusNotFound},
		{e.ErrOrderNotFound, http.StatusNotFound},
		{e.ErrEmailTaken, http.StatusConflict},
		{e.ErrInsufficientStock, http.StatusConflict},
		{e.ErrSlugTaken, http.StatusConflict},
		{e.ErrPaymentProvider, http.StatusBadGateway},
		{assert.AnError, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		code, msg := ToHTTPResponse(tc.err)
		assert.Equal(t, tc.code, code, tc.err.Error())
		assert.NotEmpty(t, msg)
	}
}

// Сообщение клиенту — только текст sentinel-ошибки, без внутренних деталей.
func TestToHTTPResponseHidesInternals(t *testing.T) {
	_, msg := ToHTTPResponse(e.Wrap("OrderUseCase.Pay", e.ErrPaymentProvider))
	assert.Equal(t, e.ErrPaymentProvider.Error(), msg)

	_, msg = ToHTTPResponse(assert.AnError)
	assert.Equal(t, e.ErrInternalServerError.Error(), msg)
}

func TestAmountToCents(t *testing.T) {
	cents, err := amountToCents(108.33)
	require.NoError(t, err)
	assert.Equal(t, int64(10833), cents)

	cents, err = amountToCents(0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), cents)

	_, err = amountToCents(10.999)
	assert.ErrorIs(t, err, e.ErrPricePrecision)

	_, err = amountToCents(-5)
	assert.ErrorIs(t, err, e.ErrInvalidPrice)

	_, err = amountToCents(2_000_000_000)
	assert.ErrorIs(t, err, e.ErrInvalidPrice)
}

func TestCentsToAmount(t *testing.T) {
	assert.Equal(t, 108.33, centsToAmount(10833))
	assert.Equal(t, 0.0, centsToAmount(0))
}

func TestParsePriceRange(t *testing.T) {
	from, to, err := parsePriceRange("10-200")
	require.NoError(t, err)
	assert.Equal(t, int64(10_00), from)
	assert.Equal(t, int64(200_00), to)

	from, to, err = parsePriceRange("all")
	require.NoError(t, err)
	assert.Equal(t, int64(-1), from)
	assert.Equal(t, int64(-1), to)

	from, to, err = parsePriceRange("-50")
	require.NoError(t, err)
	assert.Equal(t, int64(-1), from)
	assert.Equal(t, int64(50_00), to)

	_, _, err = parsePriceRange("abc")
	assert.ErrorIs(t, err, e.ErrValidation)
}

func TestPublicImageURL(t *testing.T) {
	minioCfg := &cfg.MinIOCfg{PublicURL: "http://localhost:9000/", BucketName: "images"}

	assert.Equal(t, "http://localhost:9000/images/products/p.jpg", publicImageURL(minioCfg, "products/p.jpg"))
	assert.Equal(t, "https://cdn.example.com/p.jpg", publicImageURL(minioCfg, "https://cdn.example.com/p.jpg"))
	assert.Equal(t, "", publicImageURL(minioCfg, ""))
}

func TestParseOrderID(t *testing.T) {
	id, err := parseOrderID("7f9c24e8-3b12-4f4f-9a67-2f8b9c1d0e5a")
	require.NoError(t, err)
	assert.Equal(t, "7f9c24e8-3b12-4f4f-9a67-2f8b9c1d0e5a", id)

	_, err = parseOrderID("42")
	assert.ErrorIs(t, err, e.ErrValidation)
}
