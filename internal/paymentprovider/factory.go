package paymentprovider

import (
	"fmt"

	"github.com/magabrotheeeer/taskshare/internal/config"
)

// NewFromConfig создаёт провайдера, выбранного в настройках оплаты.
func NewFromConfig(cfg config.Payment) (Provider, error) {
	switch cfg.Provider {
	case config.ProviderStripe:
		return NewStripeProvider(StripeConfig{
			SecretKey:     cfg.StripeSecretKey,
			WebhookSecret: cfg.StripeWebhookSecret,
			Timeout:       cfg.Timeout,
		})
	case config.ProviderPaddle:
		return NewPaddleProvider(PaddleConfig{
			APIKey:        cfg.PaddleAPIKey,
			WebhookSecret: cfg.PaddleWebhookSecret,
			Sandbox:       cfg.PaddleSandbox,
			CheckoutURL:   cfg.SuccessURL,
		})
	default:
		return nil, fmt.Errorf("unknown payment provider %q", cfg.Provider)
	}
}
