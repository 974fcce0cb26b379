package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/unixdj/dynqr"
	"github.com/unixdj/dynqr/internal/service"
	"github.com/unixdj/dynqr/store"
)

// Module sizes accepted in requests.
const (
	minSize = 1
	maxSize = 40
)

// StyleRequest holds the rendering fields shared by image requests.
// Empty fields take the server defaults.
type StyleRequest struct {
	Level    string `json:"level"`
	Color    string `json:"color"`
	BgColor  string `json:"bg_color"`
	Size     int    `json:"size"`
	Style    string `json:"style"`
	LogoSize int    `json:"logo_size"`
	Caption  bool   `json:"caption"`
}

func parsed[T any](parse func(string) (T, error)) validation.Rule {
	return validation.By(func(v any) error {
		s, _ := v.(string)
		if s == "" {
			return nil
		}
		_, err := parse(s)
		return err
	})
}

// Validate validates the style fields.
func (r *StyleRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Level, parsed(qr.ParseLevel)),
		validation.Field(&r.Color, parsed(qr.ParseColor)),
		validation.Field(&r.BgColor, parsed(qr.ParseColor)),
		validation.Field(&r.Size, validation.Min(minSize), validation.Max(maxSize)),
		validation.Field(&r.Style, parsed(qr.ParseShape)),
		validation.Field(&r.LogoSize, validation.Min(1), validation.Max(qr.MaxImageSide)),
	)
}

// Params applies the request to the defaults.  r must be valid.
func (r *StyleRequest) Params(p service.Params) (service.Params, error) {
	var err error
	if r.Level != "" {
		if p.Level, err = qr.ParseLevel(r.Level); err != nil {
			return p, err
		}
	}
	if r.Color != "" {
		if p.Foreground, err = qr.ParseColor(r.Color); err != nil {
			return p, err
		}
	}
	if r.BgColor != "" {
		if p.Background, err = qr.ParseColor(r.BgColor); err != nil {
			return p, err
		}
	}
	if r.Style != "" {
		if p.Shape, err = qr.ParseShape(r.Style); err != nil {
			return p, err
		}
	}
	if r.Size != 0 {
		p.Scale = r.Size
	}
	if r.LogoSize != 0 {
		p.LogoEdge = r.LogoSize
	}
	p.Caption = r.Caption
	return p, nil
}

// GenerateRequest is the form of POST /generate.
type GenerateRequest struct {
	StyleRequest
	Data  string `json:"data"`
	Label string `json:"label"`
	Logo  []byte `json:"-"`
}

var dataRequired = validation.Required.Error("no data provided")

// Validate validates the request.
func (r *GenerateRequest) Validate() error {
	if err := validation.ValidateStruct(r,
		validation.Field(&r.Data, dataRequired),
	); err != nil {
		return err
	}
	return r.StyleRequest.Validate()
}

// RecordRequest is the body of PUT /codes/{id} and the form of
// POST /edit/{id}.
type RecordRequest struct {
	Data  string `json:"data"`
	Label string `json:"label"`
}

// Validate validates the request.
func (r *RecordRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Data, dataRequired),
	)
}

// RecordResponse is a record with the URLs that serve it.
type RecordResponse struct {
	store.Record
	ImageURL    string `json:"image_url"`
	RedirectURL string `json:"redirect_url"`
}

// RecordListResponse wraps record listings.
type RecordListResponse struct {
	Records []RecordResponse `json:"records"`
	Total   int              `json:"total"`
}
