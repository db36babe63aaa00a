package frontend

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/youssefsiam38/motoadmin"
	"github.com/youssefsiam38/motoadmin/auth"
	"github.com/youssefsiam38/motoadmin/ui/service"
)

// Flash texts for successful actions.
const (
	msgMotorcycleAdded    = "Motorcycle added successfully!"
	msgMotorcycleUpdated  = "Motorcycle updated successfully!"
	msgMotorcycleDeleted  = "Motorcycle deleted successfully!"
	msgUserVerified       = "User verified successfully!"
	msgMotorcycleReturned = "Motorcycle returned successfully!"
	msgLoadRentals        = "Failed to load rental data"
	msgImageTooLarge      = "Image must be 5 MB or smaller"
)

// dashboardPath is where a fresh login lands.
const dashboardPath = "/dashboard"

// parsePage parses the page query parameter, defaulting to 1.
func parsePage(r *http.Request) int {
	page, err := strconv.Atoi(r.FormValue("page"))
	if err != nil {
		return 1
	}
	return service.ValidatePage(page)
}

// parseSearch returns the search query parameter.
func parseSearch(r *http.Request) string {
	return service.ValidateSearch(r.FormValue("search"))
}

// logError logs an error if the logger is configured.
func (rt *router) logError(msg string, err error) {
	if rt.config.Logger != nil {
		rt.config.Logger.Warn(msg, "error", err.Error())
	}
}

// page builds the data shared by every page. It may set cookies, so it
// must run before anything is written.
func (rt *router) page(w http.ResponseWriter, r *http.Request, title string, data any) *PageData {
	pd := &PageData{
		Title:       title,
		CurrentPath: r.URL.Path,
		Admin:       auth.SessionFromContext(r.Context()),
		Data:        data,
	}
	tok, err := rt.auth.CSRFToken(w, r)
	if err != nil {
		rt.logError("csrf token unavailable", err)
	}
	pd.CSRFToken = tok
	for _, f := range rt.auth.Flashes(w, r) {
		pd.Flashes = append(pd.Flashes, FlashMessage{Type: f.Type, Message: f.Message})
	}
	return pd
}

func (rt *router) renderPage(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	if err := rt.renderer.render(w, status, name, rt.page(w, r, title, data)); err != nil {
		rt.logError("render "+name, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// flash queues a message for the next page.
func (rt *router) flash(w http.ResponseWriter, r *http.Request, typ, msg string) {
	if err := rt.auth.AddFlash(w, r, auth.Flash{Type: typ, Message: msg}); err != nil {
		rt.logError("flash", err)
	}
}

// endSession destroys a session whose token the API rejected and sends the
// admin to the login page.
func (rt *router) endSession(w http.ResponseWriter, r *http.Request) {
	if err := rt.auth.Destroy(w, r, "token rejected"); err != nil {
		rt.logError("destroy session", err)
	}
	http.Redirect(w, r, auth.LoginPath, http.StatusSeeOther)
}

// fail renders the error page for err, or ends the session when the API
// rejected the token.
func (rt *router) fail(w http.ResponseWriter, r *http.Request, err error) {
	if motoadmin.IsAuthError(err) {
		rt.endSession(w, r)
		return
	}
	rt.logError("request failed", err)
	rt.renderPage(w, r, errorStatus(err), "error.html", "Error", map[string]any{
		"Message": motoadmin.UserMessage(err),
		"Retry":   r.URL.RequestURI(),
	})
}

// afterMutation finishes a POST that changes data: on success it flashes
// okMsg, on failure the error message, then redirects to back.
func (rt *router) afterMutation(w http.ResponseWriter, r *http.Request, err error, okMsg, back string) {
	switch {
	case err == nil:
		rt.flash(w, r, auth.FlashSuccess, okMsg)
	case motoadmin.IsAuthError(err):
		rt.endSession(w, r)
		return
	default:
		rt.flash(w, r, auth.FlashError, motoadmin.UserMessage(err))
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

// errorStatus maps an error to the status of the page reporting it.
func errorStatus(err error) int {
	var valErr *motoadmin.ValidationError
	switch {
	case errors.As(err, &valErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, motoadmin.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, motoadmin.ErrUnavailable):
		return http.StatusServiceUnavailable
	}
	var apiErr *motoadmin.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
		return http.StatusBadRequest
	}
	return http.StatusBadGateway
}

// Login

type loginView struct {
	Email string
	Next  string
	Error string
}

func (rt *router) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if _, err := rt.auth.Current(r); err == nil {
		http.Redirect(w, r, dashboardPath, http.StatusSeeOther)
		return
	}
	rt.renderPage(w, r, http.StatusOK, "login.html", "Login", &loginView{
		Next: auth.SafeNext(r.URL.Query().Get("next"), ""),
	})
}

func (rt *router) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if err := rt.auth.VerifyCSRF(r); err != nil {
		http.Error(w, "Forbidden - invalid CSRF token", http.StatusForbidden)
		return
	}

	email := strings.TrimSpace(r.PostFormValue("email"))
	next := auth.SafeNext(r.PostFormValue("next"), "")

	_, err := rt.auth.Login(w, r, email, r.PostFormValue("password"))
	if err != nil {
		view := &loginView{Email: email, Next: next, Error: motoadmin.UserMessage(err)}
		status := http.StatusUnauthorized
		var valErr *motoadmin.ValidationError
		switch {
		case errors.Is(err, auth.ErrRateLimited):
			view.Error = auth.MsgRateLimited
			status = http.StatusTooManyRequests
		case errors.As(err, &valErr):
			status = http.StatusUnprocessableEntity
		case errors.Is(err, motoadmin.ErrUnavailable):
			status = http.StatusServiceUnavailable
		}
		rt.renderPage(w, r, status, "login.html", "Login", view)
		return
	}

	http.Redirect(w, r, auth.SafeNext(next, dashboardPath), http.StatusSeeOther)
}

func (rt *router) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := rt.auth.Logout(w, r); err != nil {
		rt.logError("logout", err)
	}
	http.Redirect(w, r, auth.LoginPath, http.StatusSeeOther)
}

// Main page handlers

func (rt *router) handleRedirectToDashboard(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, dashboardPath, http.StatusTemporaryRedirect)
}

func (rt *router) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := rt.svc.GetDashboard(r.Context())
	if err != nil {
		rt.fail(w, r, err)
		return
	}
	rt.renderPage(w, r, http.StatusOK, "dashboard.html", "Dashboard", dashboard)
}

// Motorcycles

type motorcyclesView struct {
	List *service.Page[*motoadmin.Motorcycle]
	// Form opens the add/edit dialog when set.
	Form     *motorcycleForm
	Statuses []motoadmin.MotorcycleStatus
}

// AddURL opens the add dialog over the current page.
func (v *motorcyclesView) AddURL() string {
	return withQuery(pageURL("/motorcycles", v.List.Page, v.List.Search), "add", "1")
}

// EditURL opens the edit dialog for id over the current page.
func (v *motorcyclesView) EditURL(id string) string {
	return withQuery(pageURL("/motorcycles", v.List.Page, v.List.Search), "edit", id)
}

func withQuery(u, key, value string) string {
	sep := "?"
	if strings.Contains(u, "?") {
		sep = "&"
	}
	return u + sep + url.QueryEscape(key) + "=" + url.QueryEscape(value)
}

// motorcycleForm holds the dialog fields as typed, so a rejected form is
// shown again unchanged.
type motorcycleForm struct {
	ID          string
	Name        string
	Brand       string
	RentPrice   string
	Status      string
	Description string
	Error       string
	Page        int
	Search      string
}

// Action returns the URL the dialog posts to.
func (f *motorcycleForm) Action() string {
	if f.ID == "" {
		return "/motorcycles"
	}
	return "/motorcycles/" + f.ID
}

// Title returns the dialog heading.
func (f *motorcycleForm) Title() string {
	if f.ID == "" {
		return "Add Motorcycle"
	}
	return "Edit Motorcycle"
}

func formFromMotorcycle(m *motoadmin.Motorcycle, page int, search string) *motorcycleForm {
	return &motorcycleForm{
		ID:          m.ID,
		Name:        m.Name,
		Brand:       m.Brand,
		RentPrice:   strconv.FormatFloat(m.RentPrice, 'f', -1, 64),
		Status:      string(m.Status),
		Description: m.Description,
		Page:        page,
		Search:      search,
	}
}

// parseMotorcycleForm reads the add/edit dialog. The returned form is
// always usable for re-rendering, even with an error.
func parseMotorcycleForm(r *http.Request) (*motorcycleForm, *motoadmin.MotorcycleInput, error) {
	if err := r.ParseMultipartForm(maxFormSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return &motorcycleForm{}, nil, &motoadmin.ValidationError{Field: "form", Message: msgImageTooLarge}
	}

	form := &motorcycleForm{
		ID:          r.PathValue("id"),
		Name:        r.PostFormValue("name"),
		Brand:       r.PostFormValue("brand"),
		RentPrice:   strings.TrimSpace(r.PostFormValue("rentPrice")),
		Status:      r.PostFormValue("status"),
		Description: r.PostFormValue("description"),
		Page:        parsePage(r),
		Search:      parseSearch(r),
	}

	price, err := strconv.ParseFloat(form.RentPrice, 64)
	if err != nil {
		return form, nil, &motoadmin.ValidationError{Field: "rentPrice", Message: "Rent price must be a number"}
	}
	in := &motoadmin.MotorcycleInput{
		Name:        form.Name,
		Brand:       form.Brand,
		RentPrice:   price,
		Status:      motoadmin.MotorcycleStatus(form.Status),
		Description: form.Description,
	}

	file, header, err := r.FormFile("image")
	switch {
	case err == nil:
		defer file.Close()
		data, err := io.ReadAll(io.LimitReader(file, motoadmin.MaxImageSize+1))
		if err != nil {
			return form, nil, &motoadmin.ValidationError{Field: "image", Message: "Could not read the uploaded image"}
		}
		in.Image = &motoadmin.Image{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		return form, nil, &motoadmin.ValidationError{Field: "image", Message: "Could not read the uploaded image"}
	}
	return form, in, nil
}

func (rt *router) handleMotorcycles(w http.ResponseWriter, r *http.Request) {
	page, search := parsePage(r), parseSearch(r)
	list, err := rt.svc.ListMotorcycles(r.Context(), page, search)
	if err != nil {
		rt.fail(w, r, err)
		return
	}

	view := &motorcyclesView{List: list, Statuses: motorcycleStatuses()}
	q := r.URL.Query()
	switch {
	case q.Get("add") != "":
		view.Form = &motorcycleForm{Status: string(motoadmin.MotorcycleAvailable), Page: list.Page, Search: search}
	case q.Get("edit") != "":
		for _, m := range list.Items {
			if m.ID == q.Get("edit") {
				view.Form = formFromMotorcycle(m, list.Page, search)
				break
			}
		}
	}
	rt.renderPage(w, r, http.StatusOK, "motorcycles.html", "Motorcycles", view)
}

func (rt *router) handleAddMotorcycle(w http.ResponseWriter, r *http.Request) {
	form, in, err := parseMotorcycleForm(r)
	if err == nil {
		_, err = rt.svc.AddMotorcycle(r.Context(), in)
	}
	rt.afterMotorcycleForm(w, r, form, err, msgMotorcycleAdded)
}

func (rt *router) handleUpdateMotorcycle(w http.ResponseWriter, r *http.Request) {
	form, in, err := parseMotorcycleForm(r)
	if err == nil {
		_, err = rt.svc.UpdateMotorcycle(r.Context(), form.ID, in)
	}
	rt.afterMotorcycleForm(w, r, form, err, msgMotorcycleUpdated)
}

// afterMotorcycleForm redirects back to the list on success and shows the
// dialog again with the error otherwise.
func (rt *router) afterMotorcycleForm(w http.ResponseWriter, r *http.Request, form *motorcycleForm, err error, okMsg string) {
	back := pageURL("/motorcycles", form.Page, form.Search)
	if err == nil || motoadmin.IsAuthError(err) {
		rt.afterMutation(w, r, err, okMsg, back)
		return
	}

	form.Error = motoadmin.UserMessage(err)
	rt.showMotorcycleForm(w, r, form, errorStatus(err))
}

// showMotorcycleForm renders the list with the dialog open on form.
func (rt *router) showMotorcycleForm(w http.ResponseWriter, r *http.Request, form *motorcycleForm, status int) {
	list, listErr := rt.svc.ListMotorcycles(r.Context(), form.Page, form.Search)
	if listErr != nil {
		if motoadmin.IsAuthError(listErr) {
			rt.endSession(w, r)
			return
		}
		rt.logError("list motorcycles", listErr)
		list = service.Paginate([]*motoadmin.Motorcycle{}, 1, rt.svc.PageSize())
	}
	view := &motorcyclesView{List: list, Form: form, Statuses: motorcycleStatuses()}
	rt.renderPage(w, r, status, "motorcycles.html", "Motorcycles", view)
}

// rejectOversized answers motorcycle forms that declare a body over
// maxFormSize with the dialog and the image size error. The body is never
// read and nothing changes, so it runs ahead of the CSRF check.
func (rt *router) rejectOversized(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength <= maxFormSize {
			next.ServeHTTP(w, r)
			return
		}
		form := &motorcycleForm{
			ID:     r.PathValue("id"),
			Status: string(motoadmin.MotorcycleAvailable),
			Error:  msgImageTooLarge,
			Page:   1,
		}
		rt.showMotorcycleForm(w, r, form, http.StatusRequestEntityTooLarge)
	})
}

func (rt *router) handleDeleteMotorcycle(w http.ResponseWriter, r *http.Request) {
	err := rt.svc.DeleteMotorcycle(r.Context(), r.PathValue("id"), r.PostFormValue("name"))
	rt.afterMutation(w, r, err, msgMotorcycleDeleted, pageURL("/motorcycles", parsePage(r), parseSearch(r)))
}

func motorcycleStatuses() []motoadmin.MotorcycleStatus {
	return []motoadmin.MotorcycleStatus{motoadmin.MotorcycleAvailable, motoadmin.MotorcycleRented}
}

// Users

func (rt *router) handleUsers(w http.ResponseWriter, r *http.Request) {
	list, err := rt.svc.ListUsers(r.Context(), parsePage(r), parseSearch(r))
	if err != nil {
		rt.fail(w, r, err)
		return
	}
	rt.renderPage(w, r, http.StatusOK, "users.html", "Users", map[string]any{"List": list})
}

func (rt *router) handleVerifyUser(w http.ResponseWriter, r *http.Request) {
	_, err := rt.svc.VerifyUser(r.Context(), r.PathValue("id"))
	rt.afterMutation(w, r, err, msgUserVerified, pageURL("/users", parsePage(r), parseSearch(r)))
}

// Rentals

type rentalsView struct {
	List      *service.Page[*motoadmin.Rental]
	Search    string
	LoadError string
}

func (rt *router) handleRentals(w http.ResponseWriter, r *http.Request) {
	search := parseSearch(r)
	list, err := rt.svc.ListRentals(r.Context(), parsePage(r), search)
	if err != nil {
		if motoadmin.IsAuthError(err) {
			rt.endSession(w, r)
			return
		}
		rt.logError("list rentals", err)
		rt.renderPage(w, r, http.StatusBadGateway, "rentals.html", "Rentals", &rentalsView{
			Search:    search,
			LoadError: msgLoadRentals,
		})
		return
	}
	rt.renderPage(w, r, http.StatusOK, "rentals.html", "Rentals", &rentalsView{List: list, Search: search})
}

func (rt *router) handleReturnMotorcycle(w http.ResponseWriter, r *http.Request) {
	_, err := rt.svc.ReturnMotorcycle(r.Context(), r.PathValue("id"), r.PostFormValue("motorcycle"))
	rt.afterMutation(w, r, err, msgMotorcycleReturned, pageURL("/rentals", parsePage(r), parseSearch(r)))
}
