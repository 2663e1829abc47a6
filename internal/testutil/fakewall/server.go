// Package fakewall is an in-memory stand-in for the WhisperWall service.
// It speaks the same HTTP/JSON protocol so the client, feed and shell can be
// exercised end to end in tests without a real backend.
package fakewall

import (
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"WhisperWall/internal/core/posts"
)

// Operation names used by Fail and HoldList
const (
	OpList   = "list"
	OpCreate = "create"
	OpLike   = "like"
	OpFlag   = "flag"
)

// Prefix is the path the API is mounted under
const Prefix = "/api/v1"

// RecordedRequest is a request seen by the server
type RecordedRequest struct {
	Header http.Header
	Method string
	Path   string
	Query  string
	Body   string
}

type hold struct {
	ch   chan struct{}
	once sync.Once
}

func (h *hold) release() {
	h.once.Do(func() { close(h.ch) })
}

type failure struct {
	detail string
	status int
	raw    bool
}

// Server is the fake wall service.
type Server struct {
	srv      *httptest.Server
	failures map[string]failure
	holds    map[int]*hold
	posts    []posts.Post // newest first
	requests []RecordedRequest
	mu       sync.Mutex
	nextID   int
}

// New starts a fake wall service. Call Close when done.
func New() *Server {
	s := &Server{
		failures: make(map[string]failure),
		holds:    make(map[int]*hold),
		nextID:   1,
	}
	s.srv = httptest.NewServer(s.Handler())
	return s
}

// URL returns the base URL clients should be configured with
func (s *Server) URL() string {
	return s.srv.URL + Prefix
}

// Close shuts the server down and releases any held requests
func (s *Server) Close() {
	s.mu.Lock()
	for page, h := range s.holds {
		h.release()
		delete(s.holds, page)
	}
	s.mu.Unlock()
	s.srv.Close()
}

// Handler returns the chi router serving the API
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.record)

	r.Route(Prefix, func(r chi.Router) {
		r.Get("/posts", s.handleList)
		r.Post("/posts", s.handleCreate)
		r.Post("/posts/{id}/like", s.handleLike)
		r.Post("/posts/{id}/flag", s.handleFlag)
	})
	return r
}

// Seed inserts a post as the newest one and returns it
func (s *Server) Seed(content, alias string, likes int) posts.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(content, alias, likes, time.Now().UTC())
}

// SeedN inserts n numbered posts, oldest first
func (s *Server) SeedN(n int) {
	for i := 1; i <= n; i++ {
		s.Seed("whisper "+strconv.Itoa(i), "", 0)
	}
}

// Post returns the stored copy of a post
func (s *Server) Post(id posts.PostID) (posts.Post, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(id)
	if idx < 0 {
		return posts.Post{}, false
	}
	return s.posts[idx], true
}

// Fail makes every request of op answer status with the given detail until Recover
func (s *Server) Fail(op string, status int, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = failure{status: status, detail: detail}
}

// FailRaw makes op answer status with a non-JSON body
func (s *Server) FailRaw(op string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = failure{status: status, detail: body, raw: true}
}

// Recover clears the failure configured for op
func (s *Server) Recover(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, op)
}

// HoldList blocks list requests for page until the returned release func is called.
func (s *Server) HoldList(page int) (release func()) {
	h := &hold{ch: make(chan struct{})}
	s.mu.Lock()
	s.holds[page] = h
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		if s.holds[page] == h {
			delete(s.holds, page)
		}
		s.mu.Unlock()
		h.release()
	}
}

// Requests returns the requests seen so far
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RecordedRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

// CountRequests returns how many requests hit method+path
func (s *Server) CountRequests(method, path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == Prefix+path {
			n++
		}
	}
	return n
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		s.mu.Lock()
		s.requests = append(s.requests, RecordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Header: r.Header.Clone(),
			Body:   string(body),
		})
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

// failed writes the configured failure for op, if any
func (s *Server) failed(w http.ResponseWriter, op string) bool {
	s.mu.Lock()
	f, ok := s.failures[op]
	s.mu.Unlock()
	if !ok {
		return false
	}
	if f.raw {
		w.WriteHeader(f.status)
		_, _ = w.Write([]byte(f.detail))
		return true
	}
	writeDetail(w, f.status, f.detail)
	return true
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		writeDetail(w, http.StatusUnprocessableEntity, "page must be a positive integer")
		return
	}
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 1 || limit > 100 {
		writeDetail(w, http.StatusUnprocessableEntity, "limit must be between 1 and 100")
		return
	}

	s.mu.Lock()
	h := s.holds[page]
	s.mu.Unlock()
	if h != nil {
		select {
		case <-h.ch:
		case <-r.Context().Done():
			return
		}
	}

	if s.failed(w, OpList) {
		return
	}

	s.mu.Lock()
	total := len(s.posts)
	pages := int(math.Ceil(float64(total) / float64(limit)))
	start := (page - 1) * limit
	end := start + limit
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	items := make([]posts.Post, end-start)
	copy(items, s.posts[start:end])
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, posts.Page{
		Posts:   items,
		Total:   total,
		Page:    page,
		Pages:   pages,
		HasNext: page < pages,
		HasPrev: page > 1,
	})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	if s.failed(w, OpCreate) {
		return
	}

	var req posts.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeDetail(w, http.StatusBadRequest, "Content cannot be empty or only whitespace")
		return
	}

	s.mu.Lock()
	created := s.insertLocked(strings.TrimSpace(req.Content), req.AuthorAlias, 0, time.Now().UTC())
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleLike(w http.ResponseWriter, r *http.Request) {
	if s.failed(w, OpLike) {
		return
	}
	s.mutate(w, posts.PostID(chi.URLParam(r, "id")), func(p *posts.Post) {
		p.Likes++
	})
}

func (s *Server) handleFlag(w http.ResponseWriter, r *http.Request) {
	if s.failed(w, OpFlag) {
		return
	}
	s.mutate(w, posts.PostID(chi.URLParam(r, "id")), func(p *posts.Post) {
		p.IsFlagged = true
	})
}

func (s *Server) mutate(w http.ResponseWriter, id posts.PostID, fn func(*posts.Post)) {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		writeDetail(w, http.StatusNotFound, "Post not found")
		return
	}
	fn(&s.posts[idx])
	s.posts[idx].UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	updated := s.posts[idx]
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) insertLocked(content, alias string, likes int, now time.Time) posts.Post {
	p := posts.Post{
		ID:          posts.PostID(strconv.Itoa(s.nextID)),
		Content:     content,
		AuthorAlias: posts.NormalizeAlias(alias),
		Likes:       likes,
		CreatedAt:   now.Format(time.RFC3339),
	}
	s.nextID++
	s.posts = append([]posts.Post{p}, s.posts...)
	return p
}

func (s *Server) indexLocked(id posts.PostID) int {
	for i := range s.posts {
		if s.posts[i].ID == id {
			return i
		}
	}
	return -1
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	body := map[string]any{}
	if detail != "" {
		body["detail"] = detail
	}
	writeJSON(w, status, body)
}
