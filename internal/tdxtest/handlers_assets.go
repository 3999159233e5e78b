package tdxtest

import (
	"net/http"

	"github.com/fivetwenty-io/tdx-client/pkg/tdx"
	"github.com/go-chi/chi/v5"
)

func (s *Server) assetRoutes(r chi.Router) {
	r.Use(s.requireApp(func() int { return s.AssetAppID }))

	r.Get("/statuses", s.serveList(func(f *Fixtures) interface{} { return f.AssetStatuses }))
	r.Get("/forms", s.serveList(func(f *Fixtures) interface{} { return f.AssetForms }))
	r.Get("/models", s.serveList(func(f *Fixtures) interface{} { return f.ProductModels }))
	r.Get("/models/types", s.serveList(func(f *Fixtures) interface{} { return f.ProductTypes }))
	r.Get("/vendors", s.serveList(func(f *Fixtures) interface{} { return f.Vendors }))

	r.Post("/search", s.searchAssets)
	r.Post("/", s.createAsset)
	r.Get("/{id}", s.getAsset)
	r.Post("/{id}", s.editAsset)

	r.Get("/{id}/users", s.listAssetUsers)
	r.Post("/{id}/users/{uid}", s.addAssetUser)
	r.Delete("/{id}/users/{uid}", s.removeAssetUser)

	r.Post("/{id}/attachments", s.uploadAttachment)
}

func assets(f *Fixtures) map[int]map[string]interface{} { return f.Assets }

func (s *Server) searchAssets(w http.ResponseWriter, r *http.Request) {
	var q recordSearch
	if !decodeBody(r, &q) {
		writeError(w, http.StatusBadRequest, "malformed search")

		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	writeJSON(w, http.StatusOK, searchRecords(s.data.Assets, q, "Name", "Tag", "SerialNumber"))
}

func (s *Server) getAsset(w http.ResponseWriter, r *http.Request) {
	s.getRecord(w, r, assets, "Asset")
}

func (s *Server) editAsset(w http.ResponseWriter, r *http.Request) {
	s.replaceRecord(w, r, assets, "Asset")
}

func (s *Server) createAsset(w http.ResponseWriter, r *http.Request) {
	var rec map[string]interface{}
	if !decodeBody(r, &rec) {
		writeError(w, http.StatusBadRequest, "malformed asset")

		return
	}

	if _, ok := rec["StatusID"]; !ok {
		writeError(w, http.StatusBadRequest, "StatusID is required.")

		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.data.NextID()
	rec["ID"] = id
	rec["AppID"] = s.AssetAppID
	s.data.Assets[id] = rec

	writeJSON(w, http.StatusCreated, clone(rec))
}

func (s *Server) assetExists(w http.ResponseWriter, id int) bool {
	if _, ok := s.data.Assets[id]; !ok {
		writeError(w, http.StatusNotFound, "Asset not found.")

		return false
	}

	return true
}

func (s *Server) listAssetUsers(w http.ResponseWriter, r *http.Request) {
	id, _ := intParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.assetExists(w, id) {
		return
	}

	users := s.data.AssetUsers[id]
	if users == nil {
		users = []tdx.ResourceItem{}
	}

	writeJSON(w, http.StatusOK, users)
}

func (s *Server) findPerson(uid string) (tdx.Person, bool) {
	for _, p := range s.data.People {
		if p.UID == uid {
			return p, true
		}
	}

	return tdx.Person{}, false
}

func (s *Server) addAssetUser(w http.ResponseWriter, r *http.Request) {
	id, _ := intParam(r, "id")
	uid := chi.URLParam(r, "uid")

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.assetExists(w, id) {
		return
	}

	person, ok := s.findPerson(uid)
	if !ok {
		writeError(w, http.StatusNotFound, "Person not found.")

		return
	}

	for _, u := range s.data.AssetUsers[id] {
		if u.Value == uid {
			w.WriteHeader(http.StatusOK)

			return
		}
	}

	s.data.AssetUsers[id] = append(s.data.AssetUsers[id], tdx.ResourceItem{Name: person.FullName, Value: uid})

	w.WriteHeader(http.StatusOK)
}

func (s *Server) removeAssetUser(w http.ResponseWriter, r *http.Request) {
	id, _ := intParam(r, "id")
	uid := chi.URLParam(r, "uid")

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.assetExists(w, id) {
		return
	}

	kept := make([]tdx.ResourceItem, 0)

	for _, u := range s.data.AssetUsers[id] {
		if u.Value != uid {
			kept = append(kept, u)
		}
	}

	s.data.AssetUsers[id] = kept

	w.WriteHeader(http.StatusOK)
}
