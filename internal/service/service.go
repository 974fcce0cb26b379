// Package service ties code generation to the record store: it renders
// images, creates records for generated codes and re-renders codes from
// their records.
package service

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/unixdj/dynqr"
	"github.com/unixdj/dynqr/coding"
	"github.com/unixdj/dynqr/store"
)

// Error kinds reported by Kind.
const (
	KindInvalidInput = "invalid_input"
	KindDataTooLong  = "data_too_long"
	KindInvalidImage = "invalid_image"
	KindNotFound     = "not_found"
	KindInternal     = "internal"
)

// ErrTarget is returned for an unknown image target.
var ErrTarget = errors.New("service: unknown target")

// Kind classifies err as one of the Kind constants.  Errors the caller
// can correct by changing the request are KindInvalidInput.
func Kind(err error) string {
	switch {
	case errors.Is(err, coding.ErrDataTooLong):
		return KindDataTooLong
	case errors.Is(err, qr.ErrInvalidImage):
		return KindInvalidImage
	case errors.Is(err, store.ErrNotFound):
		return KindNotFound
	case errors.Is(err, coding.ErrInvalidInput),
		errors.Is(err, store.ErrInvalidInput),
		errors.Is(err, coding.ErrLevel),
		errors.Is(err, coding.ErrVersion),
		errors.Is(err, qr.ErrStyle),
		errors.Is(err, qr.ErrColor),
		errors.Is(err, ErrTarget):
		return KindInvalidInput
	}
	return KindInternal
}

// Params are the rendering parameters of a code image.
type Params struct {
	Level        qr.Level
	Scale        int
	Border       int
	Shape        qr.Shape
	Foreground   color.RGBA
	Background   color.RGBA
	Logo         []byte
	LogoEdge     int     // requested logo side in pixels
	LogoFraction float64 // requested logo share of the image side
	Caption      bool    // draw the label under the code
}

// ParamsFromOptions returns the parameters matching o.
func ParamsFromOptions(o qr.Options) Params {
	return Params{
		Level:        o.Level,
		Scale:        o.Scale,
		Border:       o.Border,
		Shape:        o.Shape,
		Foreground:   o.Foreground,
		Background:   o.Background,
		LogoEdge:     o.Edge,
		LogoFraction: o.Fraction,
	}
}

func (p Params) options(caption string) qr.Options {
	o := qr.Options{
		Level: p.Level,
		Style: qr.Style{
			Scale:      p.Scale,
			Border:     p.Border,
			Shape:      p.Shape,
			Foreground: p.Foreground,
			Background: p.Background,
		},
		LogoOptions: qr.LogoOptions{Edge: p.LogoEdge, Fraction: p.LogoFraction},
		Logo:        p.Logo,
	}
	if p.Caption {
		o.Caption = caption
	}
	return o
}

// A Target selects what a record's image encodes.
type Target int

const (
	TargetData     Target = iota // the record's data
	TargetRedirect               // the record's redirect URL
)

// ParseTarget parses "data" or "redirect".  An empty string means
// TargetData.
func ParseTarget(s string) (Target, error) {
	switch strings.ToLower(s) {
	case "", "data":
		return TargetData, nil
	case "redirect":
		return TargetRedirect, nil
	}
	return 0, fmt.Errorf("%w %q", ErrTarget, s)
}

// Config configures a Service.
type Config struct {
	Defaults  Params        // parameters used when a request gives none
	PublicURL string        // base of redirect URLs
	CacheSize int           // rendered images to keep; 0 disables caching
	CacheTTL  time.Duration // how long a rendered image is kept
}

// Service generates codes and manages their records.
type Service struct {
	store     *store.Store
	cache     *Cache
	defaults  Params
	publicURL string
	logger    *zap.Logger
}

// New returns a Service keeping its records in st.
func New(st *store.Store, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	recordsGauge.Set(float64(st.Len()))
	return &Service{
		store:     st,
		cache:     NewCache(cfg.CacheSize, cfg.CacheTTL),
		defaults:  cfg.Defaults,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
		logger:    logger.With(zap.String("component", "service")),
	}
}

// Defaults returns the default rendering parameters.
func (s *Service) Defaults() Params {
	return s.defaults
}

// Generate renders data as a code image and stores it under a new
// identifier with label.  The record is created only once the image has
// been rendered.
func (s *Service) Generate(ctx context.Context, data, label string, p Params) (int, []byte, error) {
	png, err := s.render(ctx, data, label, p)
	if err != nil {
		return 0, nil, err
	}
	id, err := s.store.Create(data, label)
	if err != nil {
		return 0, nil, err
	}
	recordsGauge.Set(float64(s.store.Len()))
	s.logger.Info("code generated",
		zap.Int("id", id),
		zap.Int("data_len", len(data)),
		zap.Int("png_bytes", len(png)))
	return id, png, nil
}

// Image renders the code of record id.
func (s *Service) Image(ctx context.Context, id int, t Target, p Params) ([]byte, error) {
	rec, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	data := rec.Data
	switch t {
	case TargetData:
	case TargetRedirect:
		data = s.RedirectURL(id)
	default:
		return nil, fmt.Errorf("%w %d", ErrTarget, t)
	}
	return s.render(ctx, data, rec.Label, p)
}

// Get returns record id.
func (s *Service) Get(id int) (store.Record, error) {
	return s.store.Get(id)
}

// List returns all records in identifier order.
func (s *Service) List() []store.Record {
	return s.store.List()
}

// Update replaces the data and label of record id.
func (s *Service) Update(ctx context.Context, id int, data, label string) (store.Record, error) {
	if err := ctx.Err(); err != nil {
		return store.Record{}, err
	}
	rec, err := s.store.Update(id, data, label)
	if err != nil {
		return store.Record{}, err
	}
	s.logger.Info("record updated",
		zap.Int("id", id),
		zap.Int("data_len", len(data)))
	return rec, nil
}

// RedirectURL returns the URL that redirects to the data of record id.
func (s *Service) RedirectURL(id int) string {
	return s.publicURL + "/r/" + strconv.Itoa(id)
}

func (s *Service) render(ctx context.Context, data, caption string, p Params) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := cacheKey(data, caption, p)
	if png, ok := s.cache.Get(key); ok {
		generationsTotal.WithLabelValues("cached").Inc()
		return png, nil
	}
	start := time.Now()
	c, err := qr.Encode(data, p.options(caption))
	if err != nil {
		generationsTotal.WithLabelValues(Kind(err)).Inc()
		return nil, err
	}
	s.checkLogo(c, p)
	png, err := c.PNG()
	if err != nil {
		generationsTotal.WithLabelValues(KindInternal).Inc()
		return nil, fmt.Errorf("encode png: %w", err)
	}
	generationDuration.Observe(time.Since(start).Seconds())
	generationsTotal.WithLabelValues("ok").Inc()
	s.cache.Set(key, png)
	return png, nil
}

// checkLogo logs when the logo is drawn smaller than requested to keep
// the code readable.
func (s *Service) checkLogo(c *qr.Code, p Params) {
	if len(p.Logo) == 0 {
		return
	}
	want := p.LogoEdge
	if want <= 0 {
		want = qr.DefaultLogoEdge
	}
	side := (c.Size + 2*c.Border) * c.Scale
	if got := qr.LogoEdge(side, c.Logo); got < want {
		logoClampsTotal.Inc()
		s.logger.Info("logo clamped",
			zap.Int("requested", want),
			zap.Int("edge", got),
			zap.Int("side", side),
			zap.Stringer("level", p.Level))
	}
}
