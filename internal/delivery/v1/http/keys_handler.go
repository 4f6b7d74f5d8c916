package http

import (
	"net/http"

	"github.com/techmart/backend/internal/cfg"
)

type KeysHandler struct {
	paypalCfg *cfg.PayPalCfg
}

func NewKeysHandler(paypalCfg *cfg.PayPalCfg) *KeysHandler {
	return &KeysHandler{paypalCfg: paypalCfg}
}

// paypalKey
//
//	@Summary	Публичный client id PayPal
//	@Description	Используется фронтендом для инициализации SDK
//	@Tags		keys
//	@Produce	json
//	@Success	200	{object}	PaypalKeyResponse
//	@Security	BearerAuth
//	@Router		/keys/paypal [get]
func (k *KeysHandler) paypalKey(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, http.StatusOK, PaypalKeyResponse{ClientID: k.paypalCfg.ClientID})
}
