package testutil

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/youssefsiam38/motoadmin"
)

// FakeAPI is an in-memory rental API served over httptest.
type FakeAPI struct {
	Server *httptest.Server

	mu          sync.Mutex
	users       []*motoadmin.User
	passwords   map[string]string // email -> password
	tokens      map[string]string // token -> user id
	motorcycles []*motoadmin.Motorcycle
	rentals     []*motoadmin.Rental
	stats       *motoadmin.DashboardStats
	failures    map[string]fakeFailure
	nextID      int
}

type fakeFailure struct {
	status  int
	message string
}

// NewFakeAPI starts a fake rental API. It is closed when the test ends.
func NewFakeAPI(t *testing.T) *FakeAPI {
	t.Helper()
	f := &FakeAPI{
		passwords: make(map[string]string),
		tokens:    make(map[string]string),
		failures:  make(map[string]fakeFailure),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", f.login)
	mux.HandleFunc("GET /api/admin/stats", f.authed("stats", f.getStats))
	mux.HandleFunc("GET /api/motorcycles", f.authed("motorcycles", f.listMotorcycles))
	mux.HandleFunc("POST /api/motorcycles/add", f.authed("add", f.addMotorcycle))
	mux.HandleFunc("PATCH /api/motorcycles/update/{id}", f.authed("update", f.updateMotorcycle))
	mux.HandleFunc("DELETE /api/motorcycles/delete/{id}", f.authed("delete", f.deleteMotorcycle))
	mux.HandleFunc("GET /api/users", f.authed("users", f.listUsers))
	mux.HandleFunc("PATCH /api/users/verify/{id}", f.authed("verify", f.verifyUser))
	mux.HandleFunc("GET /api/rentals/all", f.authed("rentals", f.listRentals))
	mux.HandleFunc("POST /api/rentals/return/{id}", f.authed("return", f.returnMotorcycle))

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the API base URL, including the /api prefix.
func (f *FakeAPI) URL() string {
	return f.Server.URL + "/api"
}

// AddUser registers an account that can log in with password.
func (f *FakeAPI) AddUser(u *motoadmin.User, password string) *motoadmin.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID == "" {
		u.ID = f.newID("u")
	}
	f.users = append(f.users, u)
	if password != "" {
		f.passwords[u.Email] = password
	}
	return u
}

// AddMotorcycle seeds a motorcycle.
func (f *FakeAPI) AddMotorcycle(m *motoadmin.Motorcycle) *motoadmin.Motorcycle {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m.ID == "" {
		m.ID = f.newID("m")
	}
	f.motorcycles = append(f.motorcycles, m)
	return m
}

// AddRental seeds a rental record.
func (f *FakeAPI) AddRental(r *motoadmin.Rental) *motoadmin.Rental {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r.ID == "" {
		r.ID = f.newID("r")
	}
	f.rentals = append(f.rentals, r)
	return r
}

// SetStats overrides the computed dashboard statistics.
func (f *FakeAPI) SetStats(s *motoadmin.DashboardStats) {
	f.mu.Lock()
	f.stats = s
	f.mu.Unlock()
}

// Fail makes the named route answer with status and message until cleared
// with a zero status. Route names: stats, motorcycles, add, update, delete,
// users, verify, rentals, return.
func (f *FakeAPI) Fail(route string, status int, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if status == 0 {
		delete(f.failures, route)
		return
	}
	f.failures[route] = fakeFailure{status: status, message: message}
}

// RevokeTokens invalidates every issued token.
func (f *FakeAPI) RevokeTokens() {
	f.mu.Lock()
	clear(f.tokens)
	f.mu.Unlock()
}

// Motorcycles returns a snapshot of the stored motorcycles.
func (f *FakeAPI) Motorcycles() []motoadmin.Motorcycle {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]motoadmin.Motorcycle, len(f.motorcycles))
	for i, m := range f.motorcycles {
		out[i] = *m
	}
	return out
}

// User returns a copy of the user with the given id.
func (f *FakeAPI) User(id string) (motoadmin.User, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			return *u, true
		}
	}
	return motoadmin.User{}, false
}

// Rental returns a copy of the rental with the given id.
func (f *FakeAPI) Rental(id string) (motoadmin.Rental, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rentals {
		if r.ID == id {
			return *r, true
		}
	}
	return motoadmin.Rental{}, false
}

func (f *FakeAPI) newID(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s%d", prefix, f.nextID)
}

func (f *FakeAPI) authed(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		f.mu.Lock()
		_, ok := f.tokens[token]
		fail, failing := f.failures[route]
		f.mu.Unlock()

		if !ok {
			fakeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
			return
		}
		if failing {
			body := map[string]string{}
			if fail.message != "" {
				body["message"] = fail.message
			}
			fakeJSON(w, fail.status, body)
			return
		}
		h(w, r)
	}
}

func (f *FakeAPI) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		fakeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	pw, ok := f.passwords[body.Email]
	if !ok || pw != body.Password {
		fakeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid email or password"})
		return
	}
	for _, u := range f.users {
		if u.Email == body.Email {
			token := "tok-" + u.ID
			f.tokens[token] = u.ID
			fakeJSON(w, http.StatusOK, motoadmin.LoginResult{Token: token, User: u})
			return
		}
	}
	fakeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid email or password"})
}

func (f *FakeAPI) getStats(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stats != nil {
		fakeJSON(w, http.StatusOK, f.stats)
		return
	}
	rented := 0
	for _, m := range f.motorcycles {
		if !m.IsAvailable() {
			rented++
		}
	}
	stats := motoadmin.DashboardStats{TotalUsers: len(f.users), TotalMotorcycles: len(f.motorcycles)}
	if len(f.motorcycles) > 0 {
		stats.RentedPercentage = float64(rented) * 100 / float64(len(f.motorcycles))
	}
	fakeJSON(w, http.StatusOK, stats)
}

func (f *FakeAPI) listMotorcycles(w http.ResponseWriter, r *http.Request) {
	page, limit, search := pageParams(r)
	f.mu.Lock()
	defer f.mu.Unlock()

	var matched []*motoadmin.Motorcycle
	for _, m := range f.motorcycles {
		if matches(search, m.Name, m.Brand, string(m.Status)) {
			matched = append(matched, m)
		}
	}
	items, total := slicePage(matched, page, limit)
	fakeJSON(w, http.StatusOK, motoadmin.MotorcyclePage{Motorcycles: items, TotalPages: total})
}

func (f *FakeAPI) addMotorcycle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		fakeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid form"})
		return
	}
	m := motorcycleFromForm(r, &motoadmin.Motorcycle{})
	if m.Name == "" {
		fakeJSON(w, http.StatusBadRequest, map[string]string{"message": "Name is required"})
		return
	}
	f.mu.Lock()
	m.ID = f.newID("m")
	f.motorcycles = append(f.motorcycles, m)
	f.mu.Unlock()
	fakeJSON(w, http.StatusCreated, m)
}

func (f *FakeAPI) updateMotorcycle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		fakeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid form"})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.motorcycles {
		if m.ID == r.PathValue("id") {
			motorcycleFromForm(r, m)
			fakeJSON(w, http.StatusOK, m)
			return
		}
	}
	fakeJSON(w, http.StatusNotFound, map[string]string{"message": "Motorcycle not found"})
}

func (f *FakeAPI) deleteMotorcycle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, m := range f.motorcycles {
		if m.ID == r.PathValue("id") {
			f.motorcycles = slices.Delete(f.motorcycles, i, i+1)
			fakeJSON(w, http.StatusOK, map[string]string{"message": "Motorcycle deleted"})
			return
		}
	}
	fakeJSON(w, http.StatusNotFound, map[string]string{"message": "Motorcycle not found"})
}

func (f *FakeAPI) listUsers(w http.ResponseWriter, r *http.Request) {
	page, limit, search := pageParams(r)
	f.mu.Lock()
	defer f.mu.Unlock()

	var matched []*motoadmin.User
	for _, u := range f.users {
		if matches(search, u.Name, u.Email) {
			matched = append(matched, u)
		}
	}
	items, total := slicePage(matched, page, limit)
	fakeJSON(w, http.StatusOK, motoadmin.UserPage{Users: items, TotalPages: total})
}

func (f *FakeAPI) verifyUser(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == r.PathValue("id") {
			u.IsVerified = true
			fakeJSON(w, http.StatusOK, u)
			return
		}
	}
	fakeJSON(w, http.StatusNotFound, map[string]string{"message": "User not found"})
}

func (f *FakeAPI) listRentals(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.rentals
	if out == nil {
		out = []*motoadmin.Rental{}
	}
	fakeJSON(w, http.StatusOK, out)
}

func (f *FakeAPI) returnMotorcycle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rental := range f.rentals {
		if rental.ID == r.PathValue("id") {
			if !rental.IsActive() {
				fakeJSON(w, http.StatusBadRequest, map[string]string{"message": "Motorcycle already returned"})
				return
			}
			rental.Status = motoadmin.RentalReturned
			fakeJSON(w, http.StatusOK, rental)
			return
		}
	}
	fakeJSON(w, http.StatusNotFound, map[string]string{"message": "Rental not found"})
}

func motorcycleFromForm(r *http.Request, m *motoadmin.Motorcycle) *motoadmin.Motorcycle {
	m.Name = r.FormValue("name")
	m.Brand = r.FormValue("brand")
	m.RentPrice, _ = strconv.ParseFloat(r.FormValue("rentPrice"), 64)
	m.Status = motoadmin.MotorcycleStatus(r.FormValue("status"))
	m.Description = r.FormValue("description")
	if _, hdr, err := r.FormFile("image"); err == nil {
		m.ImageURL = "/uploads/" + hdr.Filename
	}
	return m
}

func pageParams(r *http.Request) (page, limit int, search string) {
	q := r.URL.Query()
	page, _ = strconv.Atoi(q.Get("page"))
	limit, _ = strconv.Atoi(q.Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 5
	}
	return page, limit, strings.ToLower(q.Get("search"))
}

func matches(search string, fields ...string) bool {
	if search == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), search) {
			return true
		}
	}
	return false
}

func slicePage[T any](items []T, page, limit int) ([]T, int) {
	total := int(math.Ceil(float64(len(items)) / float64(limit)))
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}, total
	}
	end := min(start+limit, len(items))
	return items[start:end], total
}

func fakeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
