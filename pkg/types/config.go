package types

type Config struct {
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	ServerPort      uint   `envconfig:"SERVER_PORT" default:"8080"`
	DatabaseURL     string `envconfig:"DATABASE_URL"`
	ReadTimeoutSec  uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"15"`

	// Uploaded donation images live here and are served under /uploads/.
	UploadsDir string `envconfig:"UPLOADS_DIR" default:"uploads"`

	// When set, image URLs are built from this base instead of the
	// incoming request's scheme and host.
	PublicBaseURL string `envconfig:"PUBLIC_BASE_URL"`

	MaxImagesPerDonation int   `envconfig:"MAX_IMAGES_PER_DONATION" default:"5"`
	MaxUploadBytes       int64 `envconfig:"MAX_UPLOAD_BYTES" default:"33554432"`
}
