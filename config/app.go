package config

type App struct {
	Port          string `envconfig:"APP_PORT" default:"8080"`
	DatabaseURL   string `envconfig:"DATABASE_URL" required:"true"`
	JWTSecret     string `envconfig:"JWT_SECRET" default:"local_dev_secret"`
	JWTTTLHours   int    `envconfig:"JWT_TTL_HOURS" default:"24"`
	Env           string `envconfig:"APP_ENV" default:"dev"`
	MigrationsDir string `envconfig:"MIGRATIONS_DIR" default:"migrations"`

	// Seed admin: created at startup when missing so a fresh database has
	// someone who can log in. Disabled when the password is empty.
	SeedAdminUsername string `envconfig:"SEED_ADMIN_USERNAME" default:"admin"`
	SeedAdminEmail    string `envconfig:"SEED_ADMIN_EMAIL" default:"admin@rentaladmin.local"`
	SeedAdminPassword string `envconfig:"SEED_ADMIN_PASSWORD" default:""`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	MinioEndpoint  string `envconfig:"MINIO_ENDPOINT" default:"localhost:9000"`
	MinioAccessKey string `envconfig:"MINIO_ACCESS_KEY" default:"minioadmin"`
	MinioSecretKey string `envconfig:"MINIO_SECRET_KEY" default:"minioadmin"`
	MinioBucket    string `envconfig:"MINIO_BUCKET" default:"equipment-images"`
	MinioUseSSL    bool   `envconfig:"MINIO_USE_SSL" default:"false"`
}
