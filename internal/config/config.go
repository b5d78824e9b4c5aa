package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "SMARTSHOP"

const (
	KeyServerAddr     = "server.addr"
	KeyDatabaseDSN    = "database.dsn"
	KeyAutoMigrate    = "database.auto_migrate"
	KeySigningKey     = "auth.signing_key"
	KeyAllowedOrigins = "server.allowed_origins"
	KeyLogLevel       = "log.level"
	KeyLogPretty      = "log.pretty"
	KeyBotReplyDelay  = "chat.bot_reply_delay"
	KeyBusDriver      = "realtime.bus"
	KeyRedisAddr      = "redis.addr"
	KeyRedisPassword  = "redis.password"
	KeyRedisDB        = "redis.db"
	KeyOCRCommand     = "ocr.command"
	KeyOCRTimeout     = "ocr.timeout"
	KeyUploadBackend  = "uploads.backend"
	KeyUploadDir      = "uploads.dir"
	KeyUploadBaseURL  = "uploads.base_url"
	KeyS3Endpoint     = "uploads.s3.endpoint"
	KeyS3Region       = "uploads.s3.region"
	KeyS3Bucket       = "uploads.s3.bucket"
	KeyS3AccessKey    = "uploads.s3.access_key_id"
	KeyS3SecretKey    = "uploads.s3.secret_access_key"
	KeyS3PathStyle    = "uploads.s3.use_path_style"
	KeyS3PublicURL    = "uploads.s3.public_url"
)

const (
	BusLocal = "local"
	BusRedis = "redis"

	UploadsLocal = "local"
	UploadsS3    = "s3"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type S3Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
	PublicURL       string
}

type Config struct {
	ServerAddr     string
	DatabaseDSN    string
	AutoMigrate    bool
	SigningKey     []byte
	AllowedOrigins []string
	LogLevel       string
	LogPretty      bool
	BotReplyDelay  time.Duration
	BusDriver      string
	Redis          RedisConfig
	OCRCommand     []string
	OCRTimeout     time.Duration
	UploadBackend  string
	UploadDir      string
	UploadBaseURL  string
	S3             S3Config
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyServerAddr, "localhost:8000")
	v.SetDefault(KeyDatabaseDSN, "host=localhost user=postgres password=postgres dbname=smartshop sslmode=disable")
	v.SetDefault(KeyAutoMigrate, true)
	v.SetDefault(KeyAllowedOrigins, []string{"http://localhost:5173"})
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogPretty, false)
	v.SetDefault(KeyBotReplyDelay, time.Second)
	v.SetDefault(KeyBusDriver, BusLocal)
	v.SetDefault(KeyRedisAddr, "localhost:6379")
	v.SetDefault(KeyRedisDB, 0)
	v.SetDefault(KeyOCRCommand, []string{"tesseract", "{image}", "stdout"})
	v.SetDefault(KeyOCRTimeout, time.Minute)
	v.SetDefault(KeyUploadBackend, UploadsLocal)
	v.SetDefault(KeyUploadDir, "uploads")
	v.SetDefault(KeyUploadBaseURL, "/uploads")
	v.SetDefault(KeyS3Region, "us-east-1")
}

// NewViper loads .env (if present) into the process environment, then
// layers SMARTSHOP_* environment variables over an optional config file
// and the built-in defaults.
func NewViper(configFile string) (*viper.Viper, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("smartshop")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	return v, nil
}

func decodeSigningSecret(base64Secret string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(base64Secret)
}

// splitList accepts both real lists and comma separated strings, since
// values coming from the environment are always strings.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func NewConfig(v *viper.Viper) (*Config, error) {
	serverAddr := v.GetString(KeyServerAddr)
	if serverAddr == "" {
		return nil, fmt.Errorf("server address cannot be empty")
	}

	databaseDSN := v.GetString(KeyDatabaseDSN)
	if databaseDSN == "" {
		return nil, fmt.Errorf("database DSN cannot be empty")
	}

	base64Secret := v.GetString(KeySigningKey)
	if base64Secret == "" {
		return nil, fmt.Errorf("signing secret cannot be empty")
	}

	signingKey, err := decodeSigningSecret(base64Secret)
	if err != nil {
		return nil, fmt.Errorf("decode signing secret: %w", err)
	}

	botDelay := v.GetDuration(KeyBotReplyDelay)
	if botDelay < 0 {
		return nil, fmt.Errorf("bot reply delay cannot be negative")
	}

	busDriver := v.GetString(KeyBusDriver)
	if !slices.Contains([]string{BusLocal, BusRedis}, busDriver) {
		return nil, fmt.Errorf("unknown realtime bus %q", busDriver)
	}
	if busDriver == BusRedis && v.GetString(KeyRedisAddr) == "" {
		return nil, fmt.Errorf("redis address cannot be empty when using the redis bus")
	}

	ocrCommand := strings.Fields(strings.Join(v.GetStringSlice(KeyOCRCommand), " "))
	if len(ocrCommand) == 0 {
		return nil, fmt.Errorf("ocr command cannot be empty")
	}

	ocrTimeout := v.GetDuration(KeyOCRTimeout)
	if ocrTimeout <= 0 {
		return nil, fmt.Errorf("ocr timeout must be positive")
	}

	uploadBackend := v.GetString(KeyUploadBackend)
	switch uploadBackend {
	case UploadsLocal:
		if v.GetString(KeyUploadDir) == "" {
			return nil, fmt.Errorf("upload directory cannot be empty")
		}
	case UploadsS3:
		if v.GetString(KeyS3Bucket) == "" {
			return nil, fmt.Errorf("s3 bucket cannot be empty")
		}
	default:
		return nil, fmt.Errorf("unknown upload backend %q", uploadBackend)
	}

	return &Config{
		ServerAddr:     serverAddr,
		DatabaseDSN:    databaseDSN,
		AutoMigrate:    v.GetBool(KeyAutoMigrate),
		SigningKey:     signingKey,
		AllowedOrigins: splitList(v.GetStringSlice(KeyAllowedOrigins)),
		LogLevel:       v.GetString(KeyLogLevel),
		LogPretty:      v.GetBool(KeyLogPretty),
		BotReplyDelay:  botDelay,
		BusDriver:      busDriver,
		Redis: RedisConfig{
			Addr:     v.GetString(KeyRedisAddr),
			Password: v.GetString(KeyRedisPassword),
			DB:       v.GetInt(KeyRedisDB),
		},
		OCRCommand:    ocrCommand,
		OCRTimeout:    ocrTimeout,
		UploadBackend: uploadBackend,
		UploadDir:     v.GetString(KeyUploadDir),
		UploadBaseURL: strings.TrimSuffix(v.GetString(KeyUploadBaseURL), "/"),
		S3: S3Config{
			Endpoint:        v.GetString(KeyS3Endpoint),
			Region:          v.GetString(KeyS3Region),
			Bucket:          v.GetString(KeyS3Bucket),
			AccessKeyID:     v.GetString(KeyS3AccessKey),
			SecretAccessKey: v.GetString(KeyS3SecretKey),
			UsePathStyle:    v.GetBool(KeyS3PathStyle),
			PublicURL:       v.GetString(KeyS3PublicURL),
		},
	}, nil
}
