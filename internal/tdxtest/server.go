// Package tdxtest provides an in-memory TeamDynamix web API for tests. The
// server speaks the same paths, verbs and payload shapes as the real service
// and records every request it receives.
package tdxtest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
)

// Fake service defaults.
const (
	APIPath            = "/TDWebApi/api"
	DefaultUsername    = "svc-tdx"
	DefaultPassword    = "correct-horse"
	DefaultTicketAppID = 40
	DefaultAssetAppID  = 50
)

var signingKey = []byte("tdxtest-signing-key")

// RecordedRequest is a request received by the fake service.
type RecordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// JSON decodes the recorded body into a generic object.
func (r RecordedRequest) JSON() map[string]interface{} {
	var out map[string]interface{}

	_ = json.Unmarshal(r.Body, &out)

	return out
}

type fault struct {
	method string
	path   string
	status int
	body   string
	times  int
}

// Server is a fake TeamDynamix service.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	data     *Fixtures
	requests []RecordedRequest
	faults   []*fault
	tokens   int

	rateRemaining int
	rateReset     time.Time

	// Username and Password are the only accepted credentials.
	Username string
	Password string
	// TokenTTL is the lifetime of issued tokens.
	TokenTTL time.Duration
	// TicketAppID and AssetAppID are the only application IDs served.
	TicketAppID int
	AssetAppID  int
}

// NewServer starts a fake service seeded with DefaultFixtures. It is closed
// when the test ends.
func NewServer(tb testing.TB) *Server {
	tb.Helper()

	s := &Server{
		data:          DefaultFixtures(),
		Username:      DefaultUsername,
		Password:      DefaultPassword,
		TokenTTL:      24 * time.Hour,
		TicketAppID:   DefaultTicketAppID,
		AssetAppID:    DefaultAssetAppID,
		rateRemaining: -1,
	}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(s.record)

	r.Route(APIPath, func(r chi.Router) {
		r.Post("/auth", s.handleAuth)

		r.Group(func(r chi.Router) {
			r.Use(s.requireToken)
			r.Use(s.injectFaults)
			r.Use(s.rateHeaders)
			s.referenceRoutes(r)
			r.Route("/{appID}/tickets", s.ticketRoutes)
			r.Route("/{appID}/assets", s.assetRoutes)
		})
	})

	s.Server = httptest.NewServer(r)
	tb.Cleanup(s.Close)

	return s
}

// BaseURL returns the API root of the fake service.
func (s *Server) BaseURL() string {
	return s.URL + APIPath
}

// Update runs fn with exclusive access to the fixtures.
func (s *Server) Update(fn func(f *Fixtures)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(s.data)
}

// Requests returns every request received so far.
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]RecordedRequest(nil), s.requests...)
}

// RequestsTo returns the requests received for method and an API-relative path.
func (s *Server) RequestsTo(method, path string) []RecordedRequest {
	var out []RecordedRequest

	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}

	return out
}

// LastRequest returns the most recent request for method and path.
func (s *Server) LastRequest(method, path string) (RecordedRequest, bool) {
	reqs := s.RequestsTo(method, path)
	if len(reqs) == 0 {
		return RecordedRequest{}, false
	}

	return reqs[len(reqs)-1], true
}

// TokensIssued returns the number of successful password exchanges.
func (s *Server) TokensIssued() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.tokens
}

// FailNext answers the next times requests for method and an API-relative
// path with status and body.
func (s *Server) FailNext(method, path string, status, times int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.faults = append(s.faults, &fault{method: method, path: path, status: status, body: body, times: times})
}

// SetRateLimit makes every response report remaining calls and a reset time.
func (s *Server) SetRateLimit(remaining int, reset time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rateRemaining = remaining
	s.rateReset = reset
}

// IssueToken returns a signed token valid for ttl.
func IssueToken(subject string, ttl time.Duration) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		s.mu.Lock()
		s.requests = append(s.requests, RecordedRequest{
			Method: r.Method,
			Path:   strings.TrimPrefix(r.URL.Path, APIPath),
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
			Body:   body,
		})
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

		_, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(*jwt.Token) (interface{}, error) {
			return signingKey, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid bearer token")

			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFaults(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, APIPath)

		s.mu.Lock()

		var hit *fault

		for _, f := range s.faults {
			if f.times > 0 && f.method == r.Method && f.path == path {
				f.times--
				hit = f

				break
			}
		}
		s.mu.Unlock()

		if hit != nil {
			writeError(w, hit.status, hit.body)

			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) rateHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		remaining, reset := s.rateRemaining, s.rateReset
		s.mu.Unlock()

		if remaining >= 0 {
			w.Header().Set("X-RateLimit-Limit", "60")
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", reset.UTC().Format(http.TimeFormat))
		}

		next.ServeHTTP(w, r)
	})
}

type credentials struct {
	UserName string `json:"UserName"`
	Password string `json:"Password"`
}

func (s *Server) handleAuth(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "malformed credentials")

		return
	}

	if creds.UserName != s.Username || creds.Password != s.Password {
		writeError(w, http.StatusUnauthorized, "Invalid username or password.")

		return
	}

	token, err := IssueToken(creds.UserName, s.TokenTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())

		return
	}

	s.mu.Lock()
	s.tokens++
	s.mu.Unlock()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(token))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"Message": message})
}

func (s *Server) requireApp(appID func() int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id, ok := intParam(r, "appID"); !ok || id != appID() {
				writeError(w, http.StatusNotFound, "Application not found.")

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func decodeBody(r *http.Request, v interface{}) bool {
	return json.NewDecoder(r.Body).Decode(v) == nil
}

func intParam(r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(chi.URLParam(r, name))

	return v, err == nil
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(strings.TrimSpace(needle)))
}
