package motoadmin

import (
	"context"
	"net/http"
	"strings"
)

// Login exchanges admin credentials for a bearer token.
//
// Only accounts whose role is admin are accepted; any other account yields
// an error wrapping ErrNotAdmin and no token is returned.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	const op = "Login"

	payload := map[string]string{
		"email":    strings.TrimSpace(email),
		"password": password,
	}
	var res LoginResult
	err := c.doJSON(StripToken(ctx), request{
		op:      op,
		method:  http.MethodPost,
		path:    "/auth/login",
		failMsg: msgLoginFailed,
	}, payload, &res)
	if err != nil {
		return nil, err
	}

	if res.Token == "" || res.User == nil {
		return nil, NewAPIError(op, 0, msgLoginFailed, ErrInvalidResponse)
	}
	if !res.User.IsAdmin() {
		c.logWarn("non-admin login rejected", "email", res.User.Email)
		return nil, NewAPIError(op, 0, ErrNotAdmin.Error(), ErrNotAdmin)
	}
	return &res, nil
}
