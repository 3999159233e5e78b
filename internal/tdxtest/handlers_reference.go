package tdxtest

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/fivetwenty-io/tdx-client/pkg/tdx"
	"github.com/go-chi/chi/v5"
)

func (s *Server) referenceRoutes(r chi.Router) {
	r.Get("/people/lookup", s.lookupPeople)
	r.Get("/people/{uid}", s.getPerson)

	r.Get("/accounts", s.listAccounts)
	r.Post("/accounts", s.createAccount)
	r.Post("/accounts/search", s.searchAccounts)
	r.Get("/accounts/{id}", s.getAccount)
	r.Put("/accounts/{id}", s.editAccount)

	r.Post("/groups/search", s.searchGroups)
	r.Get("/groups/{id}", s.getGroup)
	r.Get("/groups/{id}/members", s.groupMembers)

	r.Get("/locations", s.listLocations)
	r.Post("/locations/search", s.searchLocations)
	r.Get("/locations/{id}", s.getLocation)

	r.Get("/attributes/custom", s.listAttributes)
}

func (s *Server) lookupPeople(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("searchText")

	limit, err := strconv.Atoi(r.URL.Query().Get("maxResults"))
	if err != nil || limit <= 0 {
		limit = 50
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]tdx.Person, 0)

	for _, p := range s.data.People {
		if len(out) == limit {
			break
		}

		if containsFold(p.FullName, text) || containsFold(p.PrimaryEmail, text) || containsFold(p.UserName, text) {
			out = append(out, p)
		}
	}

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getPerson(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.data.People {
		if p.UID == uid {
			writeJSON(w, http.StatusOK, p)

			return
		}
	}

	writeError(w, http.StatusNotFound, "Person not found.")
}

func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	writeJSON(w, http.StatusOK, s.data.Accounts)
}

type accountSearch struct {
	SearchText string `json:"SearchText"`
	MaxResults int    `json:"MaxResults"`
}

func (s *Server) searchAccounts(w http.ResponseWriter, r *http.Request) {
	var q accountSearch
	if !decodeBody(r, &q) {
		writeError(w, http.StatusBadRequest, "malformed search")

		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]tdx.Account, 0)

	for _, a := range s.data.Accounts {
		if q.MaxResults > 0 && len(out) == q.MaxResults {
			break
		}

		if containsFold(a.Name, q.SearchText) {
			out = append(out, a)
		}
	}

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) findAccount(id int) (int, bool) {
	for i, a := range s.data.Accounts {
		if a.ID == id {
			return i, true
		}
	}

	return 0, false
}

func (s *Server) getAccount(w http.ResponseWriter, r *http.Request) {
	id, _ := intParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.findAccount(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Account not found.")

		return
	}

	writeJSON(w, http.StatusOK, s.data.Accounts[i])
}

func (s *Server) createAccount(w http.ResponseWriter, r *http.Request) {
	var account tdx.Account
	if !decodeBody(r, &account) || account.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required.")

		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	account.ID = s.data.NextID()
	account.IsActive = true
	s.data.Accounts = append(s.data.Accounts, account)

	writeJSON(w, http.StatusCreated, account)
}

func (s *Server) editAccount(w http.ResponseWriter, r *http.Request) {
	id, _ := intParam(r, "id")

	var account tdx.Account
	if !decodeBody(r, &account) {
		writeError(w, http.StatusBadRequest, "malformed account")

		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.findAccount(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Account not found.")

		return
	}

	account.ID = id
	s.data.Accounts[i] = account

	writeJSON(w, http.StatusOK, account)
}

type nameSearch struct {
	NameLike string `json:"NameLike"`
	IsActive *bool  `json:"IsActive"`
}

func (s *Server) searchGroups(w http.ResponseWriter, r *http.Request) {
	var q nameSearch
	if !decodeBody(r, &q) {
		writeError(w, http.StatusBadRequest, "malformed search")

		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]tdx.Group, 0)

	for _, g := range s.data.Groups {
		if containsFold(g.Name, q.NameLike) && (q.IsActive == nil || *q.IsActive == g.IsActive) {
			out = append(out, g)
		}
	}

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getGroup(w http.ResponseWriter, r *http.Request) {
	id, _ := intParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, g := range s.data.Groups {
		if g.ID == id {
			writeJSON(w, http.StatusOK, g)

			return
		}
	}

	writeError(w, http.StatusNotFound, "Group not found.")
}

func (s *Server) groupMembers(w http.ResponseWriter, r *http.Request) {
	id, _ := intParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()

	members := s.data.GroupMembers[id]
	if members == nil {
		members = []tdx.Person{}
	}

	writeJSON(w, http.StatusOK, members)
}

func (s *Server) listLocations(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	writeJSON(w, http.StatusOK, withoutRooms(s.data.Locations))
}

func (s *Server) searchLocations(w http.ResponseWriter, r *http.Request) {
	var q nameSearch
	if !decodeBody(r, &q) {
		writeError(w, http.StatusBadRequest, "malformed search")

		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]tdx.Location, 0)

	for _, l := range s.data.Locations {
		if containsFold(l.Name, q.NameLike) {
			out = append(out, l)
		}
	}

	writeJSON(w, http.StatusOK, withoutRooms(out))
}

func (s *Server) getLocation(w http.ResponseWriter, r *http.Request) {
	id, _ := intParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range s.data.Locations {
		if l.ID == id {
			writeJSON(w, http.StatusOK, l)

			return
		}
	}

	writeError(w, http.StatusNotFound, "Location not found.")
}

// withoutRooms mirrors the service, which only returns rooms on a full record.
func withoutRooms(locations []tdx.Location) []tdx.Location {
	out := make([]tdx.Location, 0, len(locations))

	for _, l := range locations {
		l.Rooms = nil
		out = append(out, l)
	}

	return out
}

func (s *Server) listAttributes(w http.ResponseWriter, r *http.Request) {
	component, err := strconv.Atoi(r.URL.Query().Get("componentId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "componentId is required.")

		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	attrs := s.data.Attributes[component]
	if attrs == nil {
		attrs = []tdx.CustomAttribute{}
	}

	writeJSON(w, http.StatusOK, attrs)
}

// clone deep-copies a JSON object through an encode/decode cycle.
func clone(obj map[string]interface{}) map[string]interface{} {
	data, _ := json.Marshal(obj)

	var out map[string]interface{}

	_ = json.Unmarshal(data, &out)

	return out
}
