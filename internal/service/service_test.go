package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/unixdj/dynqr"
	"github.com/unixdj/dynqr/coding"
	"github.com/unixdj/dynqr/store"
)

func testParams() Params {
	p := ParamsFromOptions(qr.DefaultOptions())
	p.Scale = 2
	return p
}

func newService(t *testing.T, cacheSize int) (*Service, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.InfoLevel)
	s := New(store.New(), Config{
		Defaults:  testParams(),
		PublicURL: "https://qr.example.com/",
		CacheSize: cacheSize,
		CacheTTL:  time.Minute,
	}, zap.New(core))
	return s, logs
}

func logoPNG(t *testing.T, side int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, side, side))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+3] = 0xc0, 0xff
	}
	var b bytes.Buffer
	if err := png.Encode(&b, img); err != nil {
		t.Fatal(err)
	}
	return b.Bytes()
}

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func TestGenerate(t *testing.T) {
	s, logs := newService(t, 0)
	ctx := context.Background()
	for i, data := range []string{"https://a", "https://b"} {
		id, img, err := s.Generate(ctx, data, fmt.Sprint("label ", i), testParams())
		if err != nil {
			t.Fatalf("Generate(%q): %v", data, err)
		}
		if id != i+1 {
			t.Errorf("Generate(%q) id = %d, want %d", data, id, i+1)
		}
		if !bytes.HasPrefix(img, pngMagic) {
			t.Errorf("Generate(%q) did not return a PNG image", data)
		}
		want, err := qr.Generate(data, testParams().options(""))
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(img, want) {
			t.Errorf("Generate(%q) image differs from qr.Generate", data)
		}
	}
	rec, err := s.Get(2)
	if err != nil || rec.Data != "https://b" || rec.Label != "label 1" {
		t.Errorf("Get(2) = %+v, %v", rec, err)
	}
	if n := len(s.List()); n != 2 {
		t.Errorf("List has %d records, want 2", n)
	}
	if n := logs.FilterMessage("code generated").Len(); n != 2 {
		t.Errorf("%d generation log lines, want 2", n)
	}
}

func TestGenerateErrors(t *testing.T) {
	s, _ := newService(t, 0)
	big := testParams()
	big.Level = qr.L
	bad := testParams()
	bad.Logo = []byte("not an image")
	scale := testParams()
	scale.Scale = -1
	var tests = []struct {
		data string
		p    Params
		kind string
	}{
		{"", testParams(), KindInvalidInput},
		{strings.Repeat("x", 3000), big, KindDataTooLong},
		{"https://a", bad, KindInvalidImage},
		{"https://a", scale, KindInvalidInput},
	}
	for _, tt := range tests {
		id, img, err := s.Generate(context.Background(), tt.data, "", tt.p)
		if err == nil || id != 0 || img != nil {
			t.Errorf("Generate(%.10q) = %d, %d bytes, %v, want error",
				tt.data, id, len(img), err)
			continue
		}
		if k := Kind(err); k != tt.kind {
			t.Errorf("Generate(%.10q) error %v is %s, want %s", tt.data, err, k, tt.kind)
		}
	}
	if n := len(s.List()); n != 0 {
		t.Errorf("failed generations created %d records", n)
	}
}

func TestGenerateCanceled(t *testing.T) {
	s, _ := newService(t, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := s.Generate(ctx, "https://a", "", testParams()); !errors.Is(err, context.Canceled) {
		t.Errorf("Generate with canceled context: %v", err)
	}
	if n := len(s.List()); n != 0 {
		t.Errorf("canceled generation created %d records", n)
	}
}

func TestImage(t *testing.T) {
	s, _ := newService(t, 0)
	ctx := context.Background()
	p := testParams()
	id, orig, err := s.Generate(ctx, "https://a", "shop", p)
	if err != nil {
		t.Fatal(err)
	}
	img, err := s.Image(ctx, id, TargetData, p)
	if err != nil || !bytes.Equal(img, orig) {
		t.Errorf("Image(data) = %d bytes, %v, want the generated image", len(img), err)
	}

	img, err = s.Image(ctx, id, TargetRedirect, p)
	if err != nil {
		t.Fatal(err)
	}
	if u := s.RedirectURL(id); u != "https://qr.example.com/r/1" {
		t.Errorf("RedirectURL(1) = %q", u)
	}
	want, _ := qr.Generate(s.RedirectURL(id), p.options(""))
	if !bytes.Equal(img, want) {
		t.Error("Image(redirect) does not encode the redirect URL")
	}

	if _, err := s.Update(ctx, id, "https://c", "shop"); err != nil {
		t.Fatal(err)
	}
	img, err = s.Image(ctx, id, TargetData, p)
	if err != nil {
		t.Fatal(err)
	}
	want, _ = qr.Generate("https://c", p.options(""))
	if !bytes.Equal(img, want) {
		t.Error("Image after Update does not encode the new data")
	}

	p.Caption = true
	img, err = s.Image(ctx, id, TargetData, p)
	if err != nil {
		t.Fatal(err)
	}
	want, _ = qr.Generate("https://c", p.options("shop"))
	if !bytes.Equal(img, want) {
		t.Error("Image with caption does not draw the label")
	}

	if _, err := s.Image(ctx, 99, TargetData, p); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Image(99): %v, want ErrNotFound", err)
	}
	if _, err := s.Image(ctx, id, Target(7), p); Kind(err) != KindInvalidInput {
		t.Errorf("Image(target 7): %v, want invalid input", err)
	}
}

func TestUpdate(t *testing.T) {
	s, _ := newService(t, 0)
	ctx := context.Background()
	id, _, err := s.Generate(ctx, "https://a", "", testParams())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Update(ctx, id, "", "x"); Kind(err) != KindInvalidInput {
		t.Errorf("Update with empty data: %v", err)
	}
	if _, err := s.Update(ctx, 99, "x", ""); Kind(err) != KindNotFound {
		t.Errorf("Update(99): %v", err)
	}
	rec, err := s.Update(ctx, id, "https://c", "new")
	if err != nil || rec.Data != "https://c" || rec.Label != "new" {
		t.Errorf("Update = %+v, %v", rec, err)
	}
}

func TestCache(t *testing.T) {
	s, _ := newService(t, 8)
	ctx := context.Background()
	p := testParams()
	id, _, err := s.Generate(ctx, "https://a", "", p)
	if err != nil {
		t.Fatal(err)
	}
	hits := testutil.ToFloat64(cacheHitsTotal)
	first, err := s.Image(ctx, id, TargetData, p)
	if err != nil {
		t.Fatal(err)
	}
	if d := testutil.ToFloat64(cacheHitsTotal) - hits; d != 1 {
		t.Errorf("Image after Generate: %v cache hits, want 1", d)
	}
	if _, err := s.Update(ctx, id, "https://b", ""); err != nil {
		t.Fatal(err)
	}
	second, err := s.Image(ctx, id, TargetData, p)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(first, second) {
		t.Error("cached image served after Update")
	}
	if n := s.cache.Len(); n != 2 {
		t.Errorf("cache holds %d images, want 2", n)
	}

	var none *Cache = NewCache(0, time.Minute)
	none.Set("k", []byte{1})
	if _, ok := none.Get("k"); ok || none.Len() != 0 {
		t.Error("zero-sized cache stores images")
	}
}

func TestCacheKey(t *testing.T) {
	p := testParams()
	base := cacheKey("ab", "c", p)
	if cacheKey("a", "bc", p) == base {
		t.Error("cache key ignores field boundaries")
	}
	for i, f := range []func(*Params){
		func(p *Params) { p.Level = qr.M },
		func(p *Params) { p.Scale++ },
		func(p *Params) { p.Border++ },
		func(p *Params) { p.Shape = qr.Square },
		func(p *Params) { p.Foreground = color.RGBA{1, 2, 3, 0xff} },
		func(p *Params) { p.Background = color.RGBA{1, 2, 3, 0xff} },
		func(p *Params) { p.Logo = []byte{1} },
		func(p *Params) { p.LogoEdge = 7 },
		func(p *Params) { p.LogoFraction = 0.05 },
	} {
		q := testParams()
		f(&q)
		if cacheKey("ab", "c", q) == base {
			t.Errorf("change %d does not alter the cache key", i)
		}
	}
	if cacheKey("ab", "c", testParams()) != base {
		t.Error("cache key is not deterministic")
	}
}

func TestLogoClamp(t *testing.T) {
	s, logs := newService(t, 0)
	p := testParams()
	p.Logo = logoPNG(t, 64)
	p.LogoEdge = 10
	clamps := testutil.ToFloat64(logoClampsTotal)
	if _, _, err := s.Generate(context.Background(), "https://a", "", p); err != nil {
		t.Fatal(err)
	}
	if n := logs.FilterMessage("logo clamped").Len(); n != 0 {
		t.Errorf("%d clamp log lines for a small logo", n)
	}
	p.LogoEdge = 1000
	if _, _, err := s.Generate(context.Background(), "https://a", "", p); err != nil {
		t.Fatal(err)
	}
	l := logs.FilterMessage("logo clamped").All()
	if len(l) != 1 {
		t.Fatalf("%d clamp log lines, want 1", len(l))
	}
	if e := l[0].ContextMap()["edge"].(int64); e <= 0 || e >= 1000 {
		t.Errorf("clamped edge %d", e)
	}
	if d := testutil.ToFloat64(logoClampsTotal) - clamps; d != 1 {
		t.Errorf("clamp counter grew by %v, want 1", d)
	}
}

func TestKind(t *testing.T) {
	var tests = []struct {
		err  error
		kind string
	}{
		{qr.ErrInvalidInput, KindInvalidInput},
		{store.ErrInvalidInput, KindInvalidInput},
		{coding.ErrLevel, KindInvalidInput},
		{coding.ErrVersion, KindInvalidInput},
		{fmt.Errorf("%w: scale", qr.ErrStyle), KindInvalidInput},
		{qr.ErrColor, KindInvalidInput},
		{ErrTarget, KindInvalidInput},
		{&coding.CapacityError{Len: 5, Max: 4, Version: 1, Level: qr.H}, KindDataTooLong},
		{fmt.Errorf("%w: gif", qr.ErrInvalidImage), KindInvalidImage},
		{store.ErrNotFound, KindNotFound},
		{errors.New("boom"), KindInternal},
		{context.Canceled, KindInternal},
	}
	for _, tt := range tests {
		if k := Kind(tt.err); k != tt.kind {
			t.Errorf("Kind(%v) = %s, want %s", tt.err, k, tt.kind)
		}
	}
}

func TestParseTarget(t *testing.T) {
	for s, want := range map[string]Target{
		"": TargetData, "data": TargetData, "Redirect": TargetRedirect,
	} {
		if got, err := ParseTarget(s); err != nil || got != want {
			t.Errorf("ParseTarget(%q) = %v, %v", s, got, err)
		}
	}
	if _, err := ParseTarget("url"); !errors.Is(err, ErrTarget) {
		t.Errorf("ParseTarget(url): %v", err)
	}
}
