package config

import "github.com/caarlos0/env/v10"

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	JWTSecret           string `env:"JWT_SECRET"`
	JWTAccessTTLMinutes int    `env:"JWT_ACCESS_TTL_MINUTES" envDefault:"60"`

	// Credenciales del cliente de ingesta (secret como hash bcrypt).
	IngestClientID         string `env:"INGEST_CLIENT_ID" envDefault:"svc:ingest"`
	IngestClientSecretHash string `env:"INGEST_CLIENT_SECRET_HASH"`

	RiskModelURL            string `env:"RISK_MODEL_URL"`
	RiskModelAPIKey         string `env:"RISK_MODEL_API_KEY"`
	RiskModelTimeoutSeconds int    `env:"RISK_MODEL_TIMEOUT_SECONDS" envDefault:"10"`

	// Ventanas de validez del pipeline de decision.
	RiskAssessmentTTLDays int `env:"RISK_ASSESSMENT_TTL_DAYS" envDefault:"30"`
	CreditOfferTTLDays    int `env:"CREDIT_OFFER_TTL_DAYS" envDefault:"15"`

	// Lookback de historial por decision.
	TransactionLookbackDays int `env:"TRANSACTION_LOOKBACK_DAYS" envDefault:"90"`
	TransactionLimit        int `env:"TRANSACTION_LIMIT" envDefault:"1000"`
	EmotionLookbackDays     int `env:"EMOTION_LOOKBACK_DAYS" envDefault:"30"`
	EmotionLimit            int `env:"EMOTION_LIMIT" envDefault:"1000"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPass     string `env:"SMTP_PASS"`
	SMTPFrom     string `env:"SMTP_FROM"`
	SMTPFromName string `env:"SMTP_FROM_NAME"`
	SMTPUseTLS   bool   `env:"SMTP_USE_TLS" envDefault:"false"`

	PushWebhookURL string `env:"PUSH_WEBHOOK_URL"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
