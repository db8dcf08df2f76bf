package validators

import (
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
)

type quantityBody struct {
	Quantity *int   `json:"quantity" validate:"required,gte=1"`
	Note     string `json:"note,omitempty" validate:"max=5"`
}

func TestDecodeJSONBody(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
		field   string
	}{
		{name: "valid", body: `{"quantity":3}`},
		{name: "fractional quantity", body: `{"quantity":0.4}`, wantErr: true, field: "quantity"},
		{name: "below minimum", body: `{"quantity":0}`, wantErr: true, field: "quantity"},
		{name: "missing", body: `{}`, wantErr: true, field: "quantity"},
		{name: "unknown field", body: `{"quantity":1,"extra":true}`, wantErr: true},
		{name: "empty body", body: ``, wantErr: true},
		{name: "too long note", body: `{"quantity":1,"note":"abcdefg"}`, wantErr: true, field: "note"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/", strings.NewReader(tt.body))
			var dest quantityBody
			err := DecodeJSONBody(req, &dest)
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if dest.Quantity == nil || *dest.Quantity != 3 {
					t.Fatalf("unexpected decode result %+v", dest)
				}
				return
			}
			if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if tt.field == "" {
				return
			}
			details, ok := pkgerrors.As(err).Details().(map[string]string)
			if !ok {
				t.Fatalf("expected field details, got %#v", pkgerrors.As(err).Details())
			}
			if _, ok := details[tt.field]; !ok {
				t.Fatalf("expected details for %s, got %v", tt.field, details)
			}
		})
	}
}

func TestSanitizeString(t *testing.T) {
	tests := map[string]string{
		"  abc  ":         "abc",
		"Leash\x00\n":     "Leash",
		"bo\twl":          "bowl",
		"Hundeline Ø 2cm": "Hundeline Ø 2cm",
		"":                "",
	}
	for input, want := range tests {
		if got := SanitizeString(input); got != want {
			t.Fatalf("SanitizeString(%q) = %q, want %q", input, got, want)
		}
	}
}
