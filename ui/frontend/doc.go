// Package frontend provides SSR frontend handlers for the motoadmin console.
//
// Pages are plain html/template documents with Tailwind CSS loaded via CDN.
// Add and edit forms open in a <dialog>; every state-changing form posts
// with a CSRF token.
//
// # Routes
//
// Public:
//   - GET /login - Login form
//   - POST /login - Log in
//
// Admin pages (session required, otherwise redirect to /login):
//   - GET / - Redirect to dashboard
//   - GET /dashboard - Stat cards and recent activity
//   - GET /motorcycles - Motorcycles list (?page, ?search, ?add, ?edit={id})
//   - POST /motorcycles - Add a motorcycle
//   - POST /motorcycles/{id} - Update a motorcycle
//   - POST /motorcycles/{id}/delete - Delete a motorcycle
//   - GET /users - Users list (?page, ?search)
//   - POST /users/{id}/verify - Verify a user
//   - GET /rentals - Rentals list (?page, ?search)
//   - POST /rentals/{id}/return - Return a rented motorcycle
//   - POST /logout - Log out
//
// Static Assets:
//   - GET /static/* - Embedded static files (JS, CSS)
package frontend
