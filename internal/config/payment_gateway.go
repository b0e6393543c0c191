package config

type PaymentConfig struct {
	Stripe          *StripeConfig `yaml:"stripe"`
	Currency        string        `yaml:"currency"`
	PlatformFeeRate float64       `yaml:"platform_fee_rate"`
	// SubscriptionPrices maps subscription product ids to their price in
	// Currency. Products missing here cannot be bought.
	SubscriptionPrices map[string]float64 `yaml:"subscription_prices"`
}

type StripeConfig struct {
	PublishableKey string `yaml:"publishable_key"`
	SecretKey      string `yaml:"secret_key"`
	WebhookSecret  string `yaml:"webhook_secret"`
}

func loadPaymentConfig() *PaymentConfig {
	return &PaymentConfig{
		Stripe: &StripeConfig{
			PublishableKey: getEnv("STRIPE_PUBLISHABLE_KEY", ""),
			SecretKey:      getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret:  getEnv("STRIPE_WEBHOOK_SECRET", ""),
		},
		Currency:        getEnv("PAYMENT_CURRENCY", "usd"),
		PlatformFeeRate: getEnvAsFloat64("PLATFORM_FEE_RATE", 0.15),
		SubscriptionPrices: getEnvAsPriceMap("SUBSCRIPTION_PRODUCTS", map[string]float64{
			"weekly_subscription":  9.99,
			"monthly_subscription": 29.99,
		}),
	}
}

// SubscriptionPrice returns the catalog price of a subscription product.
func (c *PaymentConfig) SubscriptionPrice(productID string) (float64, bool) {
	price, ok := c.SubscriptionPrices[productID]
	return price, ok && price > 0
}
