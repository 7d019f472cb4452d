package controlplane

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/taskademic/taskademic/internal/models"
	"github.com/taskademic/taskademic/internal/planner"
	"github.com/taskademic/taskademic/internal/store"
)

const version = "0.1.0"

// Server provides the HTTP API for TaskAdemic.
type Server struct {
	service     *Service
	store       *store.Store
	addr        string
	defaultUser string
	server      *http.Server
}

// NewServer creates a new HTTP server. defaultUser is the user id applied
// when a request carries no explicit user parameter.
func NewServer(service *Service, st *store.Store, addr, defaultUser string) *Server {
	return &Server{
		service:     service,
		store:       st,
		addr:        addr,
		defaultUser: defaultUser,
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	log.Printf("Starting TaskAdemic daemon on %s", s.addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/tasks", s.handleTasks)
	mux.HandleFunc("/tasks/", s.handleTaskByID)
	mux.HandleFunc("/timeblocks", s.handleTimeBlocks)
	mux.HandleFunc("/timeblocks/", s.handleTimeBlockByID)
	mux.HandleFunc("/analysis", s.handleAnalysis)
	mux.HandleFunc("/schedule", s.handleSchedule)
	mux.HandleFunc("/health", s.handleHealth)

	return mux
}

// user resolves the effective user id for a request.
func (s *Server) user(r *http.Request) string {
	if u := r.URL.Query().Get("user"); u != "" {
		return u
	}
	return s.defaultUser
}

// writeError maps service errors to HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrTaskNotFound), errors.Is(err, ErrBlockNotFound), errors.Is(err, ErrScheduleNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, planner.ErrNoCapacity):
		status = http.StatusUnprocessableEntity
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// --- Health ---

// HealthResponse is the /health payload.
type HealthResponse struct {
	OK      bool   `json:"ok"`
	DB      string `json:"db"`
	Version string `json:"version"`
	Time    string `json:"time"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	health := HealthResponse{
		OK:      true,
		DB:      "ok",
		Version: version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.store.Ping(ctx); err != nil {
		health.OK = false
		health.DB = err.Error()
		writeJSON(w, http.StatusServiceUnavailable, health)
		return
	}

	writeJSON(w, http.StatusOK, health)
}

// --- Task Handlers ---

type taskRequest struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	DueDate       string   `json:"due_date,omitempty"`
	EstimatedSize string   `json:"estimated_size,omitempty"`
	CourseWeight  *float64 `json:"course_weight,omitempty"`
}

func (r taskRequest) toInput() (store.TaskInput, error) {
	in := store.TaskInput{
		Title:         r.Title,
		Description:   r.Description,
		EstimatedSize: models.TaskSize(r.EstimatedSize),
		CourseWeight:  r.CourseWeight,
	}
	if r.DueDate != "" {
		due, err := parseDue(r.DueDate)
		if err != nil {
			return in, err
		}
		in.DueDate = &due
	}
	return in, nil
}

// parseDue accepts RFC 3339 timestamps or bare dates, which are taken as
// end of day.
func parseDue(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: due_date must be RFC 3339 or YYYY-MM-DD", ErrInvalidInput)
	}
	return t.Add(23*time.Hour + 59*time.Minute).UTC(), nil
}

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.createTask(w, r)
	case http.MethodGet:
		s.listTasks(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	in, err := req.toInput()
	if err != nil {
		writeError(w, err)
		return
	}

	task, err := s.service.CreateTask(s.user(r), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.service.ListTasks(s.user(r), r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, err)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

// handleTaskByID handles /tasks/{id} and /tasks/{id}/{action}.
func (s *Server) handleTaskByID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/tasks/")
	parts := strings.Split(path, "/")

	if len(parts) == 0 || parts[0] == "" {
		http.Error(w, "task id required", http.StatusBadRequest)
		return
	}

	taskID := parts[0]
	action := ""
	if len(parts) > 1 {
		action = parts[1]
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		s.getTask(w, r, taskID)
	case action == "" && r.Method == http.MethodPut:
		s.updateTask(w, r, taskID)
	case action == "" && r.Method == http.MethodDelete:
		s.deleteTask(w, r, taskID)
	case action == "start" && r.Method == http.MethodPost:
		s.startTask(w, r, taskID)
	case action == "complete" && r.Method == http.MethodPost:
		s.completeTask(w, r, taskID)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request, taskID string) {
	task, err := s.service.GetTask(taskID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request, taskID string) {
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	in, err := req.toInput()
	if err != nil {
		writeError(w, err)
		return
	}

	task, err := s.service.UpdateTask(taskID, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request, taskID string) {
	if err := s.service.DeleteTask(taskID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) startTask(w http.ResponseWriter, r *http.Request, taskID string) {
	task, err := s.service.StartTask(taskID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) completeTask(w http.ResponseWriter, r *http.Request, taskID string) {
	task, err := s.service.CompleteTask(taskID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// --- Time Block Handlers ---

type timeBlockRequest struct {
	DayOfWeek   int    `json:"day_of_week"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	IsAvailable *bool  `json:"is_available,omitempty"`
}

func (s *Server) handleTimeBlocks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.createTimeBlock(w, r)
	case http.MethodGet:
		s.listTimeBlocks(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) createTimeBlock(w http.ResponseWriter, r *http.Request) {
	var req timeBlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}

	block, err := s.service.CreateTimeBlock(s.user(r), req.DayOfWeek, req.StartTime, req.EndTime, available)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, block)
}

func (s *Server) listTimeBlocks(w http.ResponseWriter, r *http.Request) {
	blocks, err := s.service.ListTimeBlocks(s.user(r))
	if err != nil {
		writeError(w, err)
		return
	}
	if blocks == nil {
		blocks = []models.TimeBlock{}
	}
	writeJSON(w, http.StatusOK, blocks)
}

func (s *Server) handleTimeBlockByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/timeblocks/")
	if id == "" {
		http.Error(w, "time block id required", http.StatusBadRequest)
		return
	}
	if r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := s.service.DeleteTimeBlock(id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// --- Analysis and Schedule Handlers ---

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	refresh := r.URL.Query().Get("refresh") == "1" || r.URL.Query().Get("refresh") == "true"
	snapshot, err := s.service.Analysis(s.user(r), refresh)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

type generateRequest struct {
	Date string `json:"date"`
}

// scheduleResponse bundles the summary row with its scheduled tasks.
type scheduleResponse struct {
	Schedule *models.DailySchedule  `json:"schedule"`
	Tasks    []models.ScheduledTask `json:"tasks"`
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.generateSchedule(w, r)
	case http.MethodGet:
		s.getSchedule(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) generateSchedule(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	date := time.Now()
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		date = parsed
	}

	schedule, tasks, err := s.service.GenerateSchedule(r.Context(), s.user(r), date)
	if err != nil {
		writeError(w, err)
		return
	}
	if tasks == nil {
		tasks = []models.ScheduledTask{}
	}
	writeJSON(w, http.StatusCreated, scheduleResponse{Schedule: schedule, Tasks: tasks})
}

func (s *Server) getSchedule(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	schedule, tasks, err := s.service.GetSchedule(s.user(r), date)
	if err != nil {
		writeError(w, err)
		return
	}
	if tasks == nil {
		tasks = []models.ScheduledTask{}
	}
	writeJSON(w, http.StatusOK, scheduleResponse{Schedule: schedule, Tasks: tasks})
}
