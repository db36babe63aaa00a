// Package api provides read-only JSON endpoints for the motoadmin console.
//
// Every endpoint answers with the Response envelope. Lists carry their
// pagination in Meta. The router expects the admin session to be on the
// request context already; mount it behind auth.Manager.RequireAdminJSON.
//
// # Endpoints
//
//   - GET /dashboard - Stats and recent activity
//   - GET /motorcycles - Motorcycles (?page, ?search)
//   - GET /users - Users (?page, ?search)
//   - GET /rentals - Rentals (?page, ?search)
//   - GET /activities - Recent admin activity (?limit)
package api
