package tdxtest

import (
	"io"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/fivetwenty-io/tdx-client/pkg/tdx"
	"github.com/go-chi/chi/v5"
)

func (s *Server) ticketRoutes(r chi.Router) {
	r.Use(s.requireApp(func() int { return s.TicketAppID }))

	r.Get("/types", s.serveList(func(f *Fixtures) interface{} { return f.TicketTypes }))
	r.Get("/priorities", s.serveList(func(f *Fixtures) interface{} { return f.TicketPriorities }))
	r.Get("/urgencies", s.serveList(func(f *Fixtures) interface{} { return f.TicketUrgencies }))
	r.Get("/impacts", s.serveList(func(f *Fixtures) interface{} { return f.TicketImpacts }))
	r.Get("/sources", s.serveList(func(f *Fixtures) interface{} { return f.TicketSources }))
	r.Get("/forms", s.serveList(func(f *Fixtures) interface{} { return f.TicketForms }))
	r.Post("/statuses/search", s.searchTicketStatuses)
	r.Get("/statuses/{id}", s.getTicketStatus)

	r.Post("/search", s.searchTickets)
	r.Post("/", s.createTicket)
	r.Get("/{id}", s.getTicket)
	r.Post("/{id}", s.editTicket)

	r.Get("/{id}/tasks", s.listTasks)
	r.Post("/{id}/tasks", s.createTask)
	r.Get("/{id}/tasks/{taskID}", s.getTask)
	r.Put("/{id}/tasks/{taskID}", s.editTask)
	r.Delete("/{id}/tasks/{taskID}", s.deleteTask)

	r.Post("/{id}/attachments", s.uploadAttachment)
}

// serveList answers with the fixture list chosen by pick.
func (s *Server) serveList(pick func(f *Fixtures) interface{}) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()

		writeJSON(w, http.StatusOK, pick(s.data))
	}
}

type statusSearch struct {
	SearchText string `json:"SearchText"`
}

func (s *Server) searchTicketStatuses(w http.ResponseWriter, r *http.Request) {
	var q statusSearch
	if !decodeBody(r, &q) {
		writeError(w, http.StatusBadRequest, "malformed search")

		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]tdx.TicketStatus, 0)

	for _, st := range s.data.TicketStatuses {
		if containsFold(st.Name, q.SearchText) {
			out = append(out, st)
		}
	}

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getTicketStatus(w http.ResponseWriter, r *http.Request) {
	id, _ := intParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, st := range s.data.TicketStatuses {
		if st.ID == id {
			writeJSON(w, http.StatusOK, st)

			return
		}
	}

	writeError(w, http.StatusNotFound, "Status not found.")
}

type recordSearch struct {
	MaxResults int    `json:"MaxResults"`
	StatusIDs  []int  `json:"StatusIDs"`
	SearchText string `json:"SearchText"`
	SerialLike string `json:"SerialLike"`
}

// searchRecords filters raw records by status and text, ordered by ID.
func searchRecords(records map[int]map[string]interface{}, q recordSearch, textFields ...string) []map[string]interface{} {
	ids := make([]int, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}

	sort.Ints(ids)

	out := make([]map[string]interface{}, 0)

	for _, id := range ids {
		if q.MaxResults > 0 && len(out) == q.MaxResults {
			break
		}

		rec := records[id]

		if len(q.StatusIDs) > 0 && !containsInt(q.StatusIDs, toInt(rec["StatusID"])) {
			continue
		}

		if q.SearchText != "" && !anyFieldContains(rec, q.SearchText, textFields) {
			continue
		}

		if q.SerialLike != "" && !anyFieldContains(rec, q.SerialLike, []string{"SerialNumber"}) {
			continue
		}

		out = append(out, clone(rec))
	}

	return out
}

func anyFieldContains(rec map[string]interface{}, text string, fields []string) bool {
	for _, field := range fields {
		if v, ok := rec[field].(string); ok && containsFold(v, text) {
			return true
		}
	}

	return false
}

func containsInt(list []int, v int) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}

	return false
}

// toInt reads a JSON number held as either a Go int or a decoded float64.
func toInt(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	default:
		return 0
	}
}

func (s *Server) searchTickets(w http.ResponseWriter, r *http.Request) {
	var q recordSearch
	if !decodeBody(r, &q) {
		writeError(w, http.StatusBadRequest, "malformed search")

		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	writeJSON(w, http.StatusOK, searchRecords(s.data.Tickets, q, "Title", "Description"))
}

func (s *Server) getTicket(w http.ResponseWriter, r *http.Request) {
	s.getRecord(w, r, func(f *Fixtures) map[int]map[string]interface{} { return f.Tickets }, "Ticket")
}

func (s *Server) getRecord(
	w http.ResponseWriter,
	r *http.Request,
	pick func(f *Fixtures) map[int]map[string]interface{},
	what string,
) {
	id, _ := intParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := pick(s.data)[id]
	if !ok {
		writeError(w, http.StatusNotFound, what+" not found.")

		return
	}

	writeJSON(w, http.StatusOK, clone(rec))
}

func (s *Server) createTicket(w http.ResponseWriter, r *http.Request) {
	var rec map[string]interface{}
	if !decodeBody(r, &rec) {
		writeError(w, http.StatusBadRequest, "malformed ticket")

		return
	}

	for _, field := range []string{"Title", "TypeID", "AccountID", "StatusID", "PriorityID", "RequestorUid"} {
		if _, ok := rec[field]; !ok {
			writeError(w, http.StatusBadRequest, field+" is required.")

			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.data.NextID()
	rec["ID"] = id
	rec["AppID"] = s.TicketAppID
	rec["CreatedDate"] = time.Now().UTC().Format(time.RFC3339)
	s.data.Tickets[id] = rec

	writeJSON(w, http.StatusCreated, clone(rec))
}

func (s *Server) editTicket(w http.ResponseWriter, r *http.Request) {
	s.replaceRecord(w, r, func(f *Fixtures) map[int]map[string]interface{} { return f.Tickets }, "Ticket")
}

// replaceRecord stores the request body as the full new state of a record.
func (s *Server) replaceRecord(
	w http.ResponseWriter,
	r *http.Request,
	pick func(f *Fixtures) map[int]map[string]interface{},
	what string,
) {
	id, _ := intParam(r, "id")

	var rec map[string]interface{}
	if !decodeBody(r, &rec) {
		writeError(w, http.StatusBadRequest, "malformed "+what)

		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records := pick(s.data)

	current, ok := records[id]
	if !ok {
		writeError(w, http.StatusNotFound, what+" not found.")

		return
	}

	rec["ID"] = id
	rec["AppID"] = current["AppID"]
	records[id] = rec

	writeJSON(w, http.StatusOK, clone(rec))
}

func (s *Server) ticketExists(w http.ResponseWriter, id int) bool {
	if _, ok := s.data.Tickets[id]; !ok {
		writeError(w, http.StatusNotFound, "Ticket not found.")

		return false
	}

	return true
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	id, _ := intParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ticketExists(w, id) {
		return
	}

	tasks := s.data.TicketTasks[id]
	if tasks == nil {
		tasks = []tdx.TicketTask{}
	}

	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) findTask(ticketID, taskID int) (int, bool) {
	for i, task := range s.data.TicketTasks[ticketID] {
		if task.ID == taskID {
			return i, true
		}
	}

	return 0, false
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	id, _ := intParam(r, "id")
	taskID, _ := intParam(r, "taskID")

	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.findTask(id, taskID)
	if !ok {
		writeError(w, http.StatusNotFound, "Task not found.")

		return
	}

	writeJSON(w, http.StatusOK, s.data.TicketTasks[id][i])
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	id, _ := intParam(r, "id")

	var task tdx.TicketTask
	if !decodeBody(r, &task) || task.Title == "" {
		writeError(w, http.StatusBadRequest, "Title is required.")

		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ticketExists(w, id) {
		return
	}

	task.ID = s.data.NextID()
	task.TicketID = id
	s.data.TicketTasks[id] = append(s.data.TicketTasks[id], task)

	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) editTask(w http.ResponseWriter, r *http.Request) {
	id, _ := intParam(r, "id")
	taskID, _ := intParam(r, "taskID")

	var task tdx.TicketTask
	if !decodeBody(r, &task) {
		writeError(w, http.StatusBadRequest, "malformed task")

		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.findTask(id, taskID)
	if !ok {
		writeError(w, http.StatusNotFound, "Task not found.")

		return
	}

	task.ID = taskID
	task.TicketID = id
	s.data.TicketTasks[id][i] = task

	writeJSON(w, http.StatusOK, task)
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	id, _ := intParam(r, "id")
	taskID, _ := intParam(r, "taskID")

	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.findTask(id, taskID)
	if !ok {
		writeError(w, http.StatusNotFound, "Task not found.")

		return
	}

	tasks := s.data.TicketTasks[id]
	s.data.TicketTasks[id] = append(tasks[:i:i], tasks[i+1:]...)

	w.WriteHeader(http.StatusOK)
}

func (s *Server) uploadAttachment(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "A file is required.")

		return
	}
	defer file.Close()

	size, err := io.Copy(io.Discard, file)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())

		return
	}

	s.mu.Lock()
	id := s.data.NextID()
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, tdx.Attachment{
		ID:          "att-" + chi.URLParam(r, "id") + "-" + strconv.Itoa(id),
		Name:        header.Filename,
		Size:        size,
		CreatedUID:  ServiceID,
		CreatedDate: time.Now().UTC().Format(time.RFC3339),
		URI:         r.URL.Path,
	})
}
