// Package motoadmin is the admin console for a motorcycle rental business.
//
// The root package is the typed client for the rental REST API. The web
// console itself lives in package ui and its subpackages; sessions and the
// audit log are persisted through package storage.
//
// # Quick Start
//
// Create a client and log in:
//
//	client, err := motoadmin.NewClient(&motoadmin.ClientConfig{
//	    BaseURL: "http://localhost:5000/api",
//	})
//	res, err := client.Login(ctx, "admin@example.com", "secret")
//
// Every other call is made on behalf of a logged-in admin. The bearer token
// travels in the context:
//
//	ctx = motoadmin.WithToken(ctx, res.Token)
//	page, err := client.ListMotorcycles(ctx, motoadmin.ListParams{Page: 1, Search: "ducati"})
//
// # Errors
//
// Failed calls return *APIError. The API's own message, when present, is in
// APIError.Message and is meant to be shown to the admin as is. Status codes
// map to sentinels:
//
//	if errors.Is(err, motoadmin.ErrUnauthorized) {
//	    // token expired, send the admin back to the login page
//	}
//
// Transport failures and 5xx responses count against a circuit breaker;
// while it is open calls fail fast with ErrUnavailable.
package motoadmin
