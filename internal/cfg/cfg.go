package cfg

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jimlawless/whereami"
	"github.com/joho/godotenv"
	"github.com/techmart/backend/pkg/e"
	"github.com/techmart/backend/pkg/logger"
)

type Config struct {
	Http    *HTTPConfig
	Db      *PGDBCfg
	Redis   *RedisCfg
	Minio   *MinIOCfg
	Kafka   *KafkaCfg
	PayPal  *PayPalCfg
	Auth    *AuthCfg
	Catalog *CatalogCfg
}

type HTTPConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type PGDBCfg struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisCfg struct {
	Addr        string
	Password    string
	User        string
	DB          int
	MaxRetries  int
	DialTimeout time.Duration
	Timeout     time.Duration
	ProductTTL  time.Duration
}

type MinIOCfg struct {
	Endpoint     string
	BucketName   string
	RootUser     string
	RootPassword string
	UseSSL       bool
	PublicURL    string // База для внешних ссылок на объекты
}

type KafkaCfg struct {
	Topic             string
	Brokers           []string
	NetworkMode       string
	Partitions        int
	ReplicationFactor int
}

// PayPalCfg — доступ к REST API платёжного провайдера.
// ClientID отдаётся клиентам, Secret не покидает сервер.
type PayPalCfg struct {
	BaseURL  string
	ClientID string
	Secret   string
	Currency string
	Timeout  time.Duration
}

type AuthCfg struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type CatalogCfg struct {
	PageSize int
}

// Load безопасно загружает конфигурацию и возвращает ошибку в случае неудачи.
func Load(log logger.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debugf(".env file not found, using process environment")
	}

	db, err := loadPGDBCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	http, err := loadHTTPConfig(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	redis, err := loadRedisCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	minio, err := loadMinIOCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	kafka, err := loadKafkaCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	paypal, err := loadPayPalCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	auth, err := loadAuthCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	catalog, err := loadCatalogCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &Config{
		Http:    http,
		Db:      db,
		Redis:   redis,
		Minio:   minio,
		Kafka:   kafka,
		PayPal:  paypal,
		Auth:    auth,
		Catalog: catalog,
	}, nil
}

func loadHTTPConfig(log logger.Logger) (*HTTPConfig, error) {
	const (
		defaultPort         = "8080"
		defaultReadTimeout  = 5 * time.Second
		defaultWriteTimeout = 10 * time.Second
		defaultIdleTimeout  = 60 * time.Second
	)

	readTimeout, err := parseDurationEnv("HTTP_READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("HTTP_WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_WRITE_TIMEOUT")
		return nil, err
	}

	idleTimeout, err := parseDurationEnv("KEEP_ALIVE", defaultIdleTimeout)
	if err != nil {
		log.Errorf(err, "invalid KEEP_ALIVE")
		return nil, err
	}

	return &HTTPConfig{
		Port:         getEnvOrDefault("HTTP_PORT", defaultPort),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}, nil
}

func loadPGDBCfg(log logger.Logger) (*PGDBCfg, error) {
	const (
		defaultHost    = "localhost"
		defaultPort    = "5432"
		defaultSSLMode = "disable"
	)

	user := os.Getenv("POSTGRES_USER")
	if user == "" {
		err := fmt.Errorf("POSTGRES_USER is required")
		log.Errorf(err, "missing POSTGRES_USER")
		return nil, err
	}

	password := os.Getenv("POSTGRES_PASSWORD")
	if password == "" {
		err := fmt.Errorf("POSTGRES_PASSWORD is required")
		log.Errorf(err, "missing POSTGRES_PASSWORD")
		return nil, err
	}

	dbName := os.Getenv("POSTGRES_DB")
	if dbName == "" {
		err := fmt.Errorf("POSTGRES_DB is required")
		log.Errorf(err, "missing POSTGRES_DB")
		return nil, err
	}

	return &PGDBCfg{
		Host:     getEnvOrDefault("POSTGRES_HOST", defaultHost),
		Port:     getEnvOrDefault("POSTGRES_PORT", defaultPort),
		User:     user,
		Password: password,
		DBName:   dbName,
		SSLMode:  getEnvOrDefault("SSL_MODE", defaultSSLMode),
	}, nil
}

func loadRedisCfg(log logger.Logger) (*RedisCfg, error) {
	const (
		defaultAddr         = "localhost:6379"
		defaultDB           = 0
		defaultMaxRetries   = 3
		defaultDialTimeout  = 5 * time.Second
		defaultReadTimeout  = 3 * time.Second
		defaultWriteTimeout = 3 * time.Second
		defaultProductTTL   = 3 * time.Minute
	)

	db, err := parseIntEnv("REDIS_DB_ID", defaultDB)
	if err != nil {
		log.Errorf(err, "invalid REDIS_DB_ID")
		return nil, err
	}

	maxRetries, err := parseIntEnv("REDIS_MAX_RETRIES", defaultMaxRetries)
	if err != nil {
		log.Errorf(err, "invalid REDIS_MAX_RETRIES")
		return nil, err
	}

	dialTimeout, err := parseDurationEnv("REDIS_DIAL_TIMEOUT", defaultDialTimeout)
	if err != nil {
		log.Errorf(err, "invalid REDIS_DIAL_TIMEOUT")
		return nil, err
	}

	readTimeout, err := parseDurationEnv("REDIS_READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid REDIS_READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("REDIS_WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid REDIS_WRITE_TIMEOUT")
		return nil, err
	}

	productTTL, err := parseDurationEnv("PRODUCT_TTL", defaultProductTTL)
	if err != nil {
		log.Errorf(err, "invalid PRODUCT_TTL")
		return nil, err
	}

	timeout := readTimeout
	if writeTimeout > timeout {
		timeout = writeTimeout
	}

	return &RedisCfg{
		Addr:        getEnvOrDefault("REDIS_ADDR", defaultAddr),
		Password:    os.Getenv("REDIS_PASSWORD"),
		User:        os.Getenv("REDIS_USER"),
		DB:          db,
		MaxRetries:  maxRetries,
		DialTimeout: dialTimeout,
		Timeout:     timeout,
		ProductTTL:  productTTL,
	}, nil
}

func loadMinIOCfg(log logger.Logger) (*MinIOCfg, error) {
	const (
		defaultUseSSL   = false
		defaultEndpoint = "minio:9000"
		defaultBucket   = "product-images"
	)

	useSSL, err := strconv.ParseBool(getEnvOrDefault("MINIO_USE_SSL", strconv.FormatBool(defaultUseSSL)))
	if err != nil {
		log.Errorf(err, "invalid MINIO_USE_SSL")
		return nil, err
	}

	endpoint := getEnvOrDefault("MINIO_ENDPOINT", defaultEndpoint)

	return &MinIOCfg{
		Endpoint:     endpoint,
		BucketName:   getEnvOrDefault("BUCKET_NAME", defaultBucket),
		RootUser:     os.Getenv("MINIO_ROOT_USER"),
		RootPassword: os.Getenv("MINIO_ROOT_PASSWORD"),
		UseSSL:       useSSL,
		PublicURL:    getEnvOrDefault("MINIO_PUBLIC_URL", "http://"+endpoint),
	}, nil
}

func loadKafkaCfg() (*KafkaCfg, error) {
	const (
		defaultPartitions        = 3
		defaultReplicationFactor = 1
		defaultNetworkMode       = "tcp"
		defaultTopic             = "order-events"
	)

	brokerStr := os.Getenv("KAFKA_BROKERS")
	if brokerStr == "" {
		return nil, fmt.Errorf("KAFKA_BROKERS environment variable is required")
	}

	partitions, err := parseIntEnv("KAFKA_PARTITIONS", defaultPartitions)
	if err != nil {
		return nil, e.Wrap("KAFKA_PARTITIONS", err)
	}

	replicationFactor, err := parseIntEnv("REPLICATION_FACTOR", defaultReplicationFactor)
	if err != nil {
		return nil, e.Wrap("REPLICATION_FACTOR", err)
	}

	return &KafkaCfg{
		Brokers:           strings.Split(brokerStr, ","),
		Topic:             getEnvOrDefault("KAFKA_TOPIC", defaultTopic),
		Partitions:        partitions,
		ReplicationFactor: replicationFactor,
		NetworkMode:       getEnvOrDefault("KAFKA_NETWORK_MODE", defaultNetworkMode),
	}, nil
}

func loadPayPalCfg() (*PayPalCfg, error) {
	const (
		defaultBaseURL  = "https://api-m.sandbox.paypal.com"
		defaultCurrency = "USD"
		defaultTimeout  = 15 * time.Second
	)

	clientID := os.Getenv("PAYPAL_CLIENT_ID")
	if clientID == "" {
		return nil, fmt.Errorf("PAYPAL_CLIENT_ID environment variable is required")
	}

	secret := os.Getenv("PAYPAL_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("PAYPAL_SECRET environment variable is required")
	}

	timeout, err := parseDurationEnv("PAYPAL_TIMEOUT", defaultTimeout)
	if err != nil {
		return nil, e.Wrap("PAYPAL_TIMEOUT", err)
	}

	return &PayPalCfg{
		BaseURL:  getEnvOrDefault("PAYPAL_BASE_URL", defaultBaseURL),
		ClientID: clientID,
		Secret:   secret,
		Currency: getEnvOrDefault("PAYPAL_CURRENCY", defaultCurrency),
		Timeout:  timeout,
	}, nil
}

func loadAuthCfg() (*AuthCfg, error) {
	const defaultTokenTTL = 24 * time.Hour

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	ttl, err := parseDurationEnv("TOKEN_TTL", defaultTokenTTL)
	if err != nil {
		return nil, e.Wrap("TOKEN_TTL", err)
	}

	return &AuthCfg{JWTSecret: secret, TokenTTL: ttl}, nil
}

func loadCatalogCfg() (*CatalogCfg, error) {
	const defaultPageSize = 12

	pageSize, err := parseIntEnv("PAGE_SIZE", defaultPageSize)
	if err != nil {
		return nil, e.Wrap("PAGE_SIZE", err)
	}

	return &CatalogCfg{PageSize: pageSize}, nil
}

// getEnvOrDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// parseDurationEnv считывает длительность или возвращает значение по умолчанию.
func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	if v := os.Getenv(key); v != "" {
		return time.ParseDuration(v)
	}

	return defaultValue, nil
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}

	intValue, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue, e.ErrIncorrectEnvVariable
	}

	return intValue, nil
}

