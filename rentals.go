package motoadmin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// ListRentals returns every rental record. The API does not paginate
// this endpoint.
func (c *Client) ListRentals(ctx context.Context) ([]*Rental, error) {
	const op = "ListRentals"
	var raw json.RawMessage
	err := c.doJSON(ctx, request{
		op:      op,
		method:  http.MethodGet,
		path:    "/rentals/all",
		failMsg: msgListRentals,
	}, nil, &raw)
	if err != nil {
		return nil, err
	}

	rentals, err := decodeRentals(raw)
	if err != nil {
		return nil, NewAPIError(op, 0, msgListRentals, fmt.Errorf("%w: %v", ErrInvalidResponse, err))
	}
	return rentals, nil
}

// ReturnMotorcycle closes rental id and frees its motorcycle.
func (c *Client) ReturnMotorcycle(ctx context.Context, id string) (*Rental, error) {
	const op = "ReturnMotorcycle"
	if err := requireID(op, id, msgReturnMotorcycle); err != nil {
		return nil, err
	}
	var r Rental
	err := c.doJSON(ctx, request{
		op:      op,
		method:  http.MethodPost,
		path:    "/rentals/return/" + url.PathEscape(id),
		failMsg: msgReturnMotorcycle,
	}, struct{}{}, &r)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// decodeRentals accepts either a bare array or {"rentals": [...]}.
func decodeRentals(raw json.RawMessage) ([]*Rental, error) {
	raw = bytes.TrimSpace(raw)
	rentals := []*Rental{}
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return rentals, nil
	}
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &rentals); err != nil {
			return nil, err
		}
		return rentals, nil
	}
	var wrapped struct {
		Rentals []*Rental `json:"rentals"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, err
	}
	if wrapped.Rentals != nil {
		rentals = wrapped.Rentals
	}
	return rentals, nil
}
