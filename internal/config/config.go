// Package config reads the uploader settings from the process environment,
// after loading the dotenv file named by AWS_ENV_PATH.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/damacus/bucket-drop/internal/services"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment variable names.
const (
	EnvPathVar       = "AWS_ENV_PATH"
	AccessKeyVar     = "AWS_ACCESS_KEY_ID"
	SecretKeyVar     = "AWS_SECRET_ACCESS_KEY"
	RegionVar        = "AWS_REGION"
	SessionTokenVar  = "AWS_SESSION_TOKEN"
	EndpointVar      = "S3_ENDPOINT"
	BackendVar       = "S3_BACKEND"
	PathStyleVar     = "S3_USE_PATH_STYLE"
	UseSSLVar        = "S3_USE_SSL"
	ListenAddrVar    = "UPLOADER_LISTEN_ADDR"
	OpenBrowserVar   = "UPLOADER_OPEN_BROWSER"
	IconBaseURLVar   = "UPLOADER_ICON_BASE_URL"
	IconTimeoutVar   = "UPLOADER_ICON_TIMEOUT"
	UploadTimeoutVar = "UPLOADER_UPLOAD_TIMEOUT"
	LogLevelVar      = "LOG_LEVEL"
)

const (
	DefaultEndpoint    = "s3.amazonaws.com"
	DefaultListenAddr  = "127.0.0.1:8765"
	DefaultIconBaseURL = "https://img.icons8.com/color/96/"
	DefaultIconTimeout = 15 * time.Second
)

type Config struct {
	Credentials services.Credentials `validate:"-"`

	Backend       string `validate:"oneof=minio aws"`
	UsePathStyle  bool
	UseSSL        bool
	ListenAddr    string `validate:"required,hostname_port"`
	OpenBrowser   bool
	IconBaseURL   string        `validate:"required,http_url"`
	IconTimeout   time.Duration `validate:"gte=0"`
	UploadTimeout time.Duration `validate:"gte=0"`
	LogLevel      string

	// EnvPath is the settings file that was requested, EnvFileErr why it
	// could not be loaded. Neither stops the program from starting.
	EnvPath    string
	EnvFileErr error
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load builds a Config from the environment. Missing credentials are not an
// error here; they surface on the first upload.
func Load() (*Config, error) {
	cfg := &Config{EnvPath: os.Getenv(EnvPathVar)}
	cfg.EnvFileErr = loadEnvFile(cfg.EnvPath)

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault(EndpointVar, DefaultEndpoint)
	v.SetDefault(BackendVar, services.BackendMinio)
	v.SetDefault(PathStyleVar, false)
	v.SetDefault(ListenAddrVar, DefaultListenAddr)
	v.SetDefault(OpenBrowserVar, true)
	v.SetDefault(IconBaseURLVar, DefaultIconBaseURL)
	v.SetDefault(IconTimeoutVar, DefaultIconTimeout)
	v.SetDefault(UploadTimeoutVar, time.Duration(0))
	v.SetDefault(LogLevelVar, "info")

	endpoint, secure, hasScheme := services.SplitEndpointScheme(strings.TrimSpace(v.GetString(EndpointVar)))
	cfg.Credentials = services.Credentials{
		Endpoint:     endpoint,
		Region:       strings.TrimSpace(v.GetString(RegionVar)),
		AccessKey:    v.GetString(AccessKeyVar),
		SecretKey:    v.GetString(SecretKeyVar),
		SessionToken: v.GetString(SessionTokenVar),
	}
	cfg.Backend = strings.ToLower(strings.TrimSpace(v.GetString(BackendVar)))
	cfg.UsePathStyle = v.GetBool(PathStyleVar)
	// An explicit S3_USE_SSL beats the endpoint scheme, which beats the
	// host-based default.
	switch {
	case v.IsSet(UseSSLVar):
		cfg.UseSSL = v.GetBool(UseSSLVar)
	case hasScheme:
		cfg.UseSSL = secure
	default:
		cfg.UseSSL = services.DefaultUseSSL(endpoint)
	}
	cfg.ListenAddr = v.GetString(ListenAddrVar)
	cfg.OpenBrowser = v.GetBool(OpenBrowserVar)
	cfg.IconBaseURL = v.GetString(IconBaseURLVar)
	cfg.IconTimeout = v.GetDuration(IconTimeoutVar)
	cfg.UploadTimeout = v.GetDuration(UploadTimeoutVar)
	cfg.LogLevel = v.GetString(LogLevelVar)

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadEnvFile copies the settings file into the process environment.
// Variables that are already set keep their value.
func loadEnvFile(path string) error {
	if path == "" {
		return fmt.Errorf("%s is not set", EnvPathVar)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load settings file %s: %w", path, err)
	}
	return nil
}
