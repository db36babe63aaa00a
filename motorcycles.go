package motoadmin

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
)

// ListMotorcycles returns one server-side page of motorcycles matching
// params.Search.
func (c *Client) ListMotorcycles(ctx context.Context, params ListParams) (*MotorcyclePage, error) {
	if params.Limit == 0 {
		params.Limit = c.config.PageLimit
	}
	var page MotorcyclePage
	err := c.doJSON(ctx, request{
		op:      "ListMotorcycles",
		method:  http.MethodGet,
		path:    "/motorcycles",
		query:   listQuery(params),
		failMsg: msgListMotorcycles,
	}, nil, &page)
	if err != nil {
		return nil, err
	}
	if page.Motorcycles == nil {
		page.Motorcycles = []*Motorcycle{}
	}
	return &page, nil
}

// AddMotorcycle creates a motorcycle.
func (c *Client) AddMotorcycle(ctx context.Context, in *MotorcycleInput) (*Motorcycle, error) {
	const op = "AddMotorcycle"
	if err := in.Validate(); err != nil {
		return nil, err
	}
	body, contentType, err := encodeMotorcycleForm(in)
	if err != nil {
		return nil, NewAPIError(op, 0, msgAddMotorcycle, err)
	}

	var m Motorcycle
	err = c.do(ctx, request{
		op:          op,
		method:      http.MethodPost,
		path:        "/motorcycles/add",
		body:        body,
		contentType: contentType,
		failMsg:     msgAddMotorcycle,
	}, &m)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// UpdateMotorcycle replaces the editable fields of motorcycle id.
// A nil in.Image keeps the current picture.
func (c *Client) UpdateMotorcycle(ctx context.Context, id string, in *MotorcycleInput) (*Motorcycle, error) {
	const op = "UpdateMotorcycle"
	if err := requireID(op, id, msgUpdateMotorcycle); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	body, contentType, err := encodeMotorcycleForm(in)
	if err != nil {
		return nil, NewAPIError(op, 0, msgUpdateMotorcycle, err)
	}

	var m Motorcycle
	err = c.do(ctx, request{
		op:          op,
		method:      http.MethodPatch,
		path:        "/motorcycles/update/" + url.PathEscape(id),
		body:        body,
		contentType: contentType,
		failMsg:     msgUpdateMotorcycle,
	}, &m)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// DeleteMotorcycle removes motorcycle id.
func (c *Client) DeleteMotorcycle(ctx context.Context, id string) error {
	const op = "DeleteMotorcycle"
	if err := requireID(op, id, msgDeleteMotorcycle); err != nil {
		return err
	}
	return c.do(ctx, request{
		op:      op,
		method:  http.MethodDelete,
		path:    "/motorcycles/delete/" + url.PathEscape(id),
		failMsg: msgDeleteMotorcycle,
	}, nil)
}

// encodeMotorcycleForm builds the multipart body the API expects.
func encodeMotorcycleForm(in *MotorcycleInput) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := []struct{ name, value string }{
		{"name", in.Name},
		{"brand", in.Brand},
		{"rentPrice", strconv.FormatFloat(in.RentPrice, 'f', -1, 64)},
		{"status", in.Status.String()},
		{"description", in.Description},
	}
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", f.name, err)
		}
	}

	if in.Image != nil && len(in.Image.Data) > 0 {
		ct := in.Image.ContentType
		if ct == "" {
			ct = http.DetectContentType(in.Image.Data)
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, escapeQuotes(in.Image.Filename)))
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("create image part: %w", err)
		}
		if _, err := part.Write(in.Image.Data); err != nil {
			return nil, "", fmt.Errorf("write image: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// listQuery encodes page, limit and search for paginated endpoints.
func listQuery(p ListParams) url.Values {
	p = p.normalize()
	q := url.Values{}
	q.Set("page", strconv.Itoa(p.Page))
	q.Set("limit", strconv.Itoa(p.Limit))
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	return q
}

func requireID(op, id, msg string) error {
	if strings.TrimSpace(id) == "" {
		return NewAPIError(op, 0, msg, fmt.Errorf("%w: empty id", ErrNotFound))
	}
	return nil
}
