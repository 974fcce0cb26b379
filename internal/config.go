package internal

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/unixdj/dynqr"
	"github.com/unixdj/dynqr/internal/logger"
)

// Config represents the application configuration.
type Config struct {
	App   ApplicationConfig `yaml:"app"`
	QR    QRConfig          `yaml:"qr"`
	Cache CacheConfig       `yaml:"cache"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.QR.Validate(); err != nil {
		return fmt.Errorf("qr: %w", err)
	}
	if err := c.Cache.Validate(); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel  string     `yaml:"log_level"`
	LogEnv    string     `yaml:"log_env"`
	PublicURL string     `yaml:"public_url"`
	HTTP      HTTPConfig `yaml:"http"`
}

var urlRe = regexp.MustCompile(`^https?://[^/\s]+(/\S*)?$`)

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.LogLevel, validation.By(func(any) error {
			_, err := logger.ParseLevel(c.LogLevel)
			return err
		})),
		validation.Field(&c.LogEnv, validation.In(logger.EnvDev, logger.EnvProd)),
		validation.Field(&c.PublicURL, validation.Required,
			validation.Match(urlRe).Error("must be an http or https URL")),
	); err != nil {
		return err
	}
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port           int           `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.ReadTimeout, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.WriteTimeout, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.MaxUploadBytes, validation.Required, validation.Min(int64(1<<10))),
	)
}

// QRConfig holds the defaults for generated codes.
type QRConfig struct {
	Level        string  `yaml:"level"`
	Scale        int     `yaml:"scale"`
	Border       int     `yaml:"border"`
	Shape        string  `yaml:"shape"`
	Foreground   string  `yaml:"foreground"`
	Background   string  `yaml:"background"`
	LogoEdge     int     `yaml:"logo_edge"`
	LogoFraction float64 `yaml:"logo_fraction"`
}

func parsed[T any](parse func(string) (T, error)) validation.Rule {
	return validation.By(func(v any) error {
		s, _ := v.(string)
		_, err := parse(s)
		return err
	})
}

// Validate validates the QR configuration.
func (c *QRConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Level, validation.Required, parsed(qr.ParseLevel)),
		validation.Field(&c.Scale, validation.Required, validation.Min(1), validation.Max(MaxScale)),
		validation.Field(&c.Border, validation.Min(0), validation.Max(qr.MaxBorder)),
		validation.Field(&c.Shape, validation.Required, parsed(qr.ParseShape)),
		validation.Field(&c.Foreground, validation.Required, parsed(qr.ParseColor)),
		validation.Field(&c.Background, validation.Required, parsed(qr.ParseColor)),
		validation.Field(&c.LogoEdge, validation.Min(0), validation.Max(4096)),
		validation.Field(&c.LogoFraction, validation.Min(0.0), validation.Max(qr.SafeFraction(qr.H))),
	)
}

// MaxScale is the largest module size the server accepts.
const MaxScale = 40

// Options returns the code options described by c.
func (c *QRConfig) Options() (qr.Options, error) {
	var (
		o    = qr.DefaultOptions()
		err  error
		errs []error
	)
	o.Level, err = qr.ParseLevel(c.Level)
	errs = append(errs, err)
	o.Shape, err = qr.ParseShape(c.Shape)
	errs = append(errs, err)
	o.Foreground, err = qr.ParseColor(c.Foreground)
	errs = append(errs, err)
	o.Background, err = qr.ParseColor(c.Background)
	errs = append(errs, err)
	o.Scale = c.Scale
	o.Border = c.Border
	o.Edge = c.LogoEdge
	o.Fraction = c.LogoFraction
	return o, errors.Join(errs...)
}

// CacheConfig holds the rendered image cache configuration.
type CacheConfig struct {
	Size int           `yaml:"size"`
	TTL  time.Duration `yaml:"ttl"`
}

// Validate validates the cache configuration.
func (c *CacheConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Size, validation.Min(0), validation.Max(1<<16)),
		validation.Field(&c.TTL, validation.Min(time.Duration(0))),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel:  "info",
			LogEnv:    logger.EnvDev,
			PublicURL: "http://localhost:8080",
			HTTP: HTTPConfig{
				Port:           8080,
				ReadTimeout:    15 * time.Second,
				WriteTimeout:   30 * time.Second,
				MaxUploadBytes: 5 << 20,
			},
		},
		QR: QRConfig{
			Level:      "H",
			Scale:      qr.DefaultScale,
			Border:     qr.DefaultBorder,
			Shape:      "rounded",
			Foreground: "#000000",
			Background: "#ffffff",
			LogoEdge:   qr.DefaultLogoEdge,
		},
		Cache: CacheConfig{
			Size: 256,
			TTL:  10 * time.Minute,
		},
	}
}
