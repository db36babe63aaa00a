package motoadmin

import (
	"context"
	"net/http"
	"net/url"
)

// ListUsers returns one server-side page of users matching params.Search.
func (c *Client) ListUsers(ctx context.Context, params ListParams) (*UserPage, error) {
	if params.Limit == 0 {
		params.Limit = c.config.PageLimit
	}
	var page UserPage
	err := c.doJSON(ctx, request{
		op:      "ListUsers",
		method:  http.MethodGet,
		path:    "/users",
		query:   listQuery(params),
		failMsg: msgListUsers,
	}, nil, &page)
	if err != nil {
		return nil, err
	}
	if page.Users == nil {
		page.Users = []*User{}
	}
	return &page, nil
}

// VerifyUser marks user id as verified.
func (c *Client) VerifyUser(ctx context.Context, id string) (*User, error) {
	const op = "VerifyUser"
	if err := requireID(op, id, msgVerifyUser); err != nil {
		return nil, err
	}
	var u User
	err := c.doJSON(ctx, request{
		op:      op,
		method:  http.MethodPatch,
		path:    "/users/verify/" + url.PathEscape(id),
		failMsg: msgVerifyUser,
	}, struct{}{}, &u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
