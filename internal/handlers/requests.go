package handlers

import (
	"encoding/json"
	"mime"
	"net/http"
	"strings"

	"github.com/abrezinsky/snackcounter/internal/services"
	"github.com/abrezinsky/snackcounter/internal/uploads"
)

// priceField accepts a JSON number or a numeric string. Null and blank
// strings count as "not supplied".
type priceField struct {
	Value string
	Set   bool
}

func (p *priceField) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		p.Value = s
		p.Set = strings.TrimSpace(s) != ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	p.Value = n.String()
	p.Set = true
	return nil
}

// SnackRequest is the body of POST /api/snacks and PUT /api/snacks/{id}
type SnackRequest struct {
	Name     string     `json:"name"`
	Price    priceField `json:"price"`
	Category string     `json:"category"`
	Img      string     `json:"img"`
}

type snackForm struct {
	SnackRequest
	uploaded bool // Img refers to a file stored for this request
}

// parseSnackForm reads snack fields from a JSON body or a (multipart) form.
// A file stored by the upload middleware takes precedence over an img URL.
func parseSnackForm(r *http.Request) (snackForm, error) {
	var f snackForm

	if isJSON(r) {
		if err := decodeJSON(r, &f.SnackRequest); err != nil {
			return f, err
		}
	} else {
		f.Name = r.FormValue("name")
		f.Category = r.FormValue("category")
		f.Img = r.FormValue("img")
		if price := r.FormValue("price"); strings.TrimSpace(price) != "" {
			f.Price = priceField{Value: price, Set: true}
		}
	}

	if stored, ok := uploads.FromContext(r.Context()); ok {
		f.Img = stored.Ref
		f.uploaded = true
	}
	return f, nil
}

func (f snackForm) createInput() services.CreateSnack {
	return services.CreateSnack{
		Name:     f.Name,
		Price:    f.Price.Value,
		Category: f.Category,
		Img:      f.Img,
		Uploaded: f.uploaded,
	}
}

func (f snackForm) updateInput() services.UpdateSnack {
	return services.UpdateSnack{
		Name:     f.Name,
		Price:    f.Price.Value,
		PriceSet: f.Price.Set,
		Category: f.Category,
		Img:      f.Img,
		Uploaded: f.uploaded,
	}
}

func isJSON(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}
