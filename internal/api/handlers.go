package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"formrunner/internal/automation/orchestrator"
	"formrunner/internal/automation/provider"
	"formrunner/internal/domain/entity"
)

// runOptions is the caller-controlled slice of the review policy.
type runOptions struct {
	AutoClose  *bool `json:"auto_close,omitempty"`
	CloseDelay *int  `json:"close_delay,omitempty"` // seconds
}

type asyncStartResponse struct {
	Success   bool      `json:"success"`
	TaskID    string    `json:"task_id"`
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type statusResponse struct {
	TaskID             string                   `json:"task_id"`
	Status             entity.TaskStatus        `json:"status"`
	CurrentField       string                   `json:"current_field,omitempty"`
	FieldsFilled       int                      `json:"fields_filled"`
	TotalFields        int                      `json:"total_fields"`
	ProgressPercentage int                      `json:"progress_percentage"`
	Message            string                   `json:"message"`
	Error              string                   `json:"error,omitempty"`
	Result             *entity.AutomationResult `json:"result,omitempty"`
}

type errorResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

type fieldInfo struct {
	Name     string           `json:"name"`
	Label    string           `json:"label"`
	Type     entity.FieldKind `json:"type"`
	Required bool             `json:"required"`
	Default  string           `json:"default,omitempty"`
	Critical bool             `json:"critical,omitempty"`
}

type fieldsResponse struct {
	Success   bool        `json:"success"`
	Provider  string      `json:"provider"`
	PortalURL string      `json:"portal_url"`
	Fields    []fieldInfo `json:"fields"`
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	p, values, review, ok := s.parseStartRequest(w, r)
	if !ok {
		return
	}

	result := s.engine.Run(r.Context(), orchestrator.Request{
		Provider: p,
		Values:   values,
		Review:   review,
	})

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleStartAsync(w http.ResponseWriter, r *http.Request) {
	p, values, review, ok := s.parseStartRequest(w, r)
	if !ok {
		return
	}

	taskID := s.registry.Submit(orchestrator.Request{
		Provider: p,
		Values:   values,
		Review:   review,
	})

	writeJSON(w, http.StatusOK, asyncStartResponse{
		Success:   true,
		TaskID:    taskID,
		Status:    string(entity.TaskStatusStarting),
		Message:   "Automation started, browser opening. Poll /api/automation/status/" + taskID,
		Timestamp: time.Now(),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")
	rec := s.registry.Status(taskID)

	resp := statusResponse{
		TaskID:             rec.TaskID,
		Status:             rec.Status,
		CurrentField:       rec.CurrentField,
		FieldsFilled:       rec.FieldsFilled,
		TotalFields:        rec.TotalFields,
		ProgressPercentage: rec.ProgressPercentage,
		Message:            rec.Message,
		Error:              rec.Error,
	}
	// Result is exposed only once the run is done.
	if rec.Status == entity.TaskStatusCompleted {
		resp.Result = rec.Result
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFields(w http.ResponseWriter, r *http.Request) {
	p, ok := s.lookupProvider(w, r)
	if !ok {
		return
	}

	required := map[string]bool{}
	for _, name := range p.Required {
		required[name] = true
	}

	fields := make([]fieldInfo, 0, len(p.Fields))
	for _, f := range p.Fields {
		fields = append(fields, fieldInfo{
			Name:     f.Name,
			Label:    f.Label,
			Type:     f.Kind,
			Required: required[f.Name],
			Default:  p.Defaults[f.Name],
			Critical: f.Critical,
		})
	}

	writeJSON(w, http.StatusOK, fieldsResponse{
		Success:   true,
		Provider:  p.Key,
		PortalURL: p.PortalURL,
		Fields:    fields,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	providers := make([]string, 0)
	for _, p := range provider.All() {
		providers = append(providers, p.Key)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "automation service is ready",
		"providers": providers,
		"timestamp": time.Now(),
	})
}

// parseStartRequest decodes the flat field->value body, extracts the
// options block, and runs pre-flight validation. Violations yield a 400
// and never reach the engine.
func (s *Server) parseStartRequest(w http.ResponseWriter, r *http.Request) (*provider.Provider, map[string]string, *orchestrator.ReviewPolicy, bool) {
	p, ok := s.lookupProvider(w, r)
	if !ok {
		return nil, nil, nil, false
	}

	var body map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid JSON body"})
		return nil, nil, nil, false
	}

	values := make(map[string]string)
	var review *orchestrator.ReviewPolicy
	for key, raw := range body {
		if key == "options" {
			var opts runOptions
			if err := json.Unmarshal(raw, &opts); err != nil {
				writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid options block"})
				return nil, nil, nil, false
			}
			review = reviewFromOptions(opts)
			continue
		}
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			// Non-string provider fields are a caller mistake.
			writeJSON(w, http.StatusBadRequest, errorResponse{
				Message: "field " + key + " must be a string",
			})
			return nil, nil, nil, false
		}
		values[key] = strings.TrimSpace(v)
	}

	if problems := p.Validate(values); len(problems) > 0 {
		s.log.Info("request rejected by validation",
			zap.String("provider", p.Key),
			zap.Strings("problems", problems))
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Message: "validation failed",
			Details: problems,
		})
		return nil, nil, nil, false
	}

	return p, values, review, true
}

func (s *Server) lookupProvider(w http.ResponseWriter, r *http.Request) (*provider.Provider, bool) {
	key := chi.URLParam(r, "provider")
	p, ok := provider.Lookup(key)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{
			Message: "unknown provider: " + key,
		})
		return nil, false
	}
	return p, true
}

func reviewFromOptions(opts runOptions) *orchestrator.ReviewPolicy {
	if opts.AutoClose == nil && opts.CloseDelay == nil {
		return nil
	}
	review := orchestrator.DefaultReviewPolicy()
	if opts.AutoClose != nil {
		review.AutoClose = *opts.AutoClose
	}
	if opts.CloseDelay != nil {
		review.CloseDelay = time.Duration(*opts.CloseDelay) * time.Second
	}
	return &review
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
