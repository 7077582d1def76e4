// Package backendtest runs an in-process stand-in for the travel backend's
// REST surface. Tests point an apiclient at it, seed collections, and assert
// on what the sync layer sent.
package backendtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/wanderlist/tripsync/internal/travel"
)

const suggestionPoints = 10

// Account is a login the fake backend accepts.
type Account struct {
	Password string
	Role     string
	UserID   int
}

// Backend is the fake travel backend. All exported fields are safe to set
// before issuing requests; collections are guarded internally.
type Backend struct {
	Server *httptest.Server

	// RequireAuth makes every non-login route reject requests without a
	// bearer header.
	RequireAuth bool

	// FilteredNotFound makes filtered collection queries answer 404 instead
	// of an empty array when nothing matches.
	FilteredNotFound bool

	// LoginTokenOverride, when set, is returned verbatim by /Auth/login
	// instead of a freshly minted token.
	LoginTokenOverride string

	secret []byte

	mu           sync.Mutex
	destinations []travel.Destination
	suggestions  []travel.Suggestion
	users        []travel.User
	accounts     map[string]Account
	nextID       int
	requests     int
	lastAuth     string
}

// New starts the fake backend. Callers own the shutdown via Close.
func New() *Backend {
	b := &Backend{
		secret:   []byte("backendtest-secret"),
		accounts: map[string]Account{},
		nextID:   1000,
	}

	r := chi.NewRouter()
	r.Use(b.record)

	r.Post("/Auth/login", b.handleLogin)

	r.Route("/Destination", func(r chi.Router) {
		r.Get("/", b.listDestinations)
		r.Post("/", b.createDestination)
		r.Get("/{id}", b.getDestination)
		r.Put("/{id}", b.updateDestination)
		r.Delete("/{id}", b.deleteDestination)
	})

	r.Route("/Suggestion", func(r chi.Router) {
		r.Get("/", b.listSuggestions)
		r.Post("/", b.createSuggestion)
		r.Get("/{id}", b.getSuggestion)
		r.Put("/{id}", b.updateSuggestion)
		r.Delete("/{id}", b.deleteSuggestion)
	})

	r.Route("/User", func(r chi.Router) {
		r.Get("/", b.listUsers)
		r.Post("/", b.createUser)
		r.Get("/{id}", b.getUser)
		r.Put("/{id}", b.updateUser)
		r.Delete("/{id}", b.deleteUser)
	})

	b.Server = httptest.NewServer(r)
	return b
}

// Close shuts the backend down.
func (b *Backend) Close() { b.Server.Close() }

// URL is the backend's base URL.
func (b *Backend) URL() string { return b.Server.URL }

// Requests is the number of requests served so far.
func (b *Backend) Requests() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.requests
}

// LastAuthorization is the Authorization header of the most recent request.
func (b *Backend) LastAuthorization() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastAuth
}

// RegisterAccount makes a login succeed with the given role and user id.
func (b *Backend) RegisterAccount(userName string, acct Account) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.accounts[userName] = acct
}

// SeedDestinations replaces the destination collection.
func (b *Backend) SeedDestinations(items ...travel.Destination) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.destinations = append([]travel.Destination(nil), items...)
}

// SeedSuggestions replaces the suggestion collection.
func (b *Backend) SeedSuggestions(items ...travel.Suggestion) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.suggestions = append([]travel.Suggestion(nil), items...)
}

// SeedUsers replaces the user collection.
func (b *Backend) SeedUsers(items ...travel.User) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.users = append([]travel.User(nil), items...)
}

// MintToken signs a claims-bearing token the way the real backend does.
func (b *Backend) MintToken(role string, userID int) string {
	claims := jwt.MapClaims{
		"role":   role,
		"nameid": strconv.Itoa(userID),
		"exp":    time.Now().Add(time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(b.secret)
	if err != nil {
		panic("backendtest: signing token: " + err.Error())
	}
	return signed
}

// record counts requests, captures the auth header, and enforces RequireAuth.
func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.requests++
		b.lastAuth = r.Header.Get("Authorization")
		required := b.RequireAuth
		b.mu.Unlock()

		if required && r.URL.Path != "/Auth/login" {
			if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func idParam(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	return id, err == nil
}

func (b *Backend) assignID() int {
	b.nextID++
	return b.nextID
}

// ---- auth ----

func (b *Backend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		UserName string `json:"userName"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad payload"})
		return
	}

	b.mu.Lock()
	acct, ok := b.accounts[creds.UserName]
	override := b.LoginTokenOverride
	b.mu.Unlock()

	if !ok || acct.Password != creds.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		return
	}

	token := override
	if token == "" {
		token = b.MintToken(acct.Role, acct.UserID)
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// ---- destinations ----

func (b *Backend) listDestinations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	b.mu.Lock()
	items := make([]travel.Destination, 0, len(b.destinations))
	for _, d := range b.destinations {
		if v := q.Get("cityName"); v != "" && d.CityName != v {
			continue
		}
		if v := q.Get("season"); v != "" && d.Season != v {
			continue
		}
		if v := q.Get("category"); v != "" && d.Category != v {
			continue
		}
		if v := q.Get("userId"); v != "" && strconv.Itoa(d.UserID) != v {
			continue
		}
		if v := q.Get("isPopular"); v != "" && strconv.FormatBool(d.IsPopular) != v {
			continue
		}
		items = append(items, d)
	}
	notFound := b.FilteredNotFound && len(q) > 0 && len(items) == 0
	b.mu.Unlock()

	if notFound {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no destinations matched"})
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (b *Backend) createDestination(w http.ResponseWriter, r *http.Request) {
	var d travel.Destination
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad payload"})
		return
	}

	b.mu.Lock()
	d.ID = b.assignID()
	b.destinations = append(b.destinations, d)
	b.mu.Unlock()

	writeJSON(w, http.StatusCreated, d)
}

func (b *Backend) getDestination(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad id"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, d := range b.destinations {
		if d.ID == id {
			writeJSON(w, http.StatusOK, d)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "destination not found"})
}

func (b *Backend) updateDestination(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad id"})
		return
	}

	var upd travel.DestinationUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad payload"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for i, d := range b.destinations {
		if d.ID == id {
			d.CityName = upd.CityName
			d.Description = upd.Description
			d.Season = upd.Season
			d.IsPopular = upd.IsPopular
			d.Category = upd.Category
			d.ImageBase64 = upd.ImageBase64
			b.destinations[i] = d
			writeJSON(w, http.StatusOK, d)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "destination not found"})
}

func (b *Backend) deleteDestination(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad id"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for i, d := range b.destinations {
		if d.ID == id {
			b.destinations = append(b.destinations[:i], b.destinations[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "destination not found"})
}

// ---- suggestions ----

func (b *Backend) listSuggestions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	b.mu.Lock()
	items := make([]travel.Suggestion, 0, len(b.suggestions))
	for _, sg := range b.suggestions {
		if v := q.Get("destinationId"); v != "" && strconv.Itoa(sg.DestinationID) != v {
			continue
		}
		if v := q.Get("minPrice"); v != "" {
			if floor, err := strconv.ParseFloat(v, 64); err == nil && sg.Price < floor {
				continue
			}
		}
		if v := q.Get("maxPrice"); v != "" {
			if ceil, err := strconv.ParseFloat(v, 64); err == nil && sg.Price > ceil {
				continue
			}
		}
		if v := q.Get("rating"); v != "" {
			if rating, err := strconv.ParseFloat(v, 64); err == nil && sg.Rating < rating {
				continue
			}
		}
		items = append(items, sg)
	}
	notFound := b.FilteredNotFound && len(q) > 0 && len(items) == 0
	b.mu.Unlock()

	if notFound {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no suggestions matched"})
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (b *Backend) createSuggestion(w http.ResponseWriter, r *http.Request) {
	var sg travel.Suggestion
	if err := json.NewDecoder(r.Body).Decode(&sg); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad payload"})
		return
	}

	if v := r.URL.Query().Get("destinationId"); v != "" {
		if destID, err := strconv.Atoi(v); err == nil {
			sg.DestinationID = destID
		}
	}

	b.mu.Lock()
	sg.ID = b.assignID()
	sg.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	b.suggestions = append(b.suggestions, sg)
	// Authoring a suggestion awards points, as the real backend does.
	for i, u := range b.users {
		if u.ID == sg.UserID {
			b.users[i].Points += suggestionPoints
		}
	}
	b.mu.Unlock()

	writeJSON(w, http.StatusCreated, sg)
}

func (b *Backend) getSuggestion(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad id"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, sg := range b.suggestions {
		if sg.ID == id {
			writeJSON(w, http.StatusOK, sg)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "suggestion not found"})
}

func (b *Backend) updateSuggestion(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad id"})
		return
	}

	var upd travel.SuggestionUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad payload"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for i, sg := range b.suggestions {
		if sg.ID == id {
			sg.Title = upd.Title
			sg.Description = upd.Description
			sg.Price = upd.Price
			sg.Rating = upd.Rating
			b.suggestions[i] = sg
			writeJSON(w, http.StatusOK, sg)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "suggestion not found"})
}

func (b *Backend) deleteSuggestion(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad id"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for i, sg := range b.suggestions {
		if sg.ID == id {
			b.suggestions = append(b.suggestions[:i], b.suggestions[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "suggestion not found"})
}

// ---- users ----

func (b *Backend) listUsers(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	items := append([]travel.User(nil), b.users...)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, items)
}

func (b *Backend) createUser(w http.ResponseWriter, r *http.Request) {
	var u travel.User
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad payload"})
		return
	}

	b.mu.Lock()
	u.ID = b.assignID()
	b.users = append(b.users, u)
	b.mu.Unlock()

	writeJSON(w, http.StatusCreated, u)
}

func (b *Backend) getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad id"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, u := range b.users {
		if u.ID == id {
			writeJSON(w, http.StatusOK, u)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
}

func (b *Backend) updateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad id"})
		return
	}

	var upd travel.UserUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad payload"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for i, u := range b.users {
		if u.ID == id {
			u.UserName = upd.UserName
			u.Email = upd.Email
			b.users[i] = u
			writeJSON(w, http.StatusOK, u)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
}

func (b *Backend) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad id"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for i, u := range b.users {
		if u.ID == id {
			b.users = append(b.users[:i], b.users[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
}
