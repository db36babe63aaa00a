// Package service provides the shared business logic for the motoadmin console.
//
// The service layer is HTTP-agnostic and used by both the JSON API and
// SSR frontend handlers. This ensures consistency and avoids duplication.
//
// # Usage
//
//	svc := service.New(client, store, &service.Config{Hooks: registry})
//
//	// Requests carry the admin's session (auth.WithSession)
//	page, err := svc.ListMotorcycles(ctx, 2, "honda")
//	rentals, err := svc.ListRentals(ctx, 1, "ada@")
//
// # Design
//
// The service layer:
//   - Calls the rental API through the API interface (*motoadmin.Client)
//   - Paginates motorcycles and users on the API side, rentals locally
//   - Clamps page numbers into range and numbers rows across pages
//   - Reports every mutation to the hooks registry (audit log, logging, metrics)
package service
