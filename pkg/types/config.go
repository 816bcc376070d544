package types

type Config struct {
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	ServerPort      uint   `envconfig:"SERVER_PORT" default:"8080"`
	DatabaseURL     string `envconfig:"DATABASE_URL"`
	ReadTimeoutSec  uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"15"`

	// Supabase project. The service key is only ever read from the
	// environment; it must never reach a client runtime.
	SupabaseProjectID  string `envconfig:"SUPABASE_PROJECT_ID"`
	SupabaseServiceKey string `envconfig:"SUPABASE_SERVICE_KEY"`
	SupabaseJWKSURL    string `envconfig:"SUPABASE_JWKS_URL"`

	// Object storage. Backend is "supabase" (default) or "s3" for any
	// S3-compatible endpoint, including Supabase's S3 protocol.
	StorageBackend    string `envconfig:"STORAGE_BACKEND" default:"supabase"`
	StorageBucketName string `envconfig:"STORAGE_BUCKET_NAME" default:"documents"`
	StorageS3Endpoint string `envconfig:"STORAGE_S3_ENDPOINT"`

	// Mistral AI endpoints (OCR + chat completions).
	MistralAPIKey  string `envconfig:"MISTRAL_API_KEY"`
	MistralBaseURL string `envconfig:"MISTRAL_BASE_URL" default:"https://api.mistral.ai/v1"`
	MistralModel   string `envconfig:"MISTRAL_MODEL" default:"mistral-small"`

	// Upload limit. An earlier revision shipped 10MB; keep it configurable
	// rather than a literal in the pipeline.
	MaxUploadBytes int64 `envconfig:"MAX_UPLOAD_BYTES" default:"104857600"`

	// Cookie encryption keys (base64 encoded)
	// openssl rand -base64 32
	// to generate values
	CookieHashKey  string `envconfig:"COOKIE_HASH_KEY"`  // 32 or 64 bytes
	CookieBlockKey string `envconfig:"COOKIE_BLOCK_KEY"` // 16, 24, or 32 bytes
}
