package board

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"clawban/internal/auth"
)

// taskPayload is the create/patch request body. Pointer fields distinguish
// "absent" from zero values; unknown fields are rejected.
type taskPayload struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Assignee    *Assignee `json:"assignee"`
	Status      *Status   `json:"status"`
	Priority    *Priority `json:"priority"`
}

type unlockRequest struct {
	Password string `json:"password"`
}

type boardResponse struct {
	Tasks []Task    `json:"tasks"`
	Meta  boardMeta `json:"meta"`
}

type boardMeta struct {
	Storage string `json:"storage"`
}

type taskResponse struct {
	Task Task `json:"task"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

type authStatusResponse struct {
	CanEdit bool `json:"canEdit"`
}

type errResponse struct {
	Error   string       `json:"error"`
	Details []FieldError `json:"details,omitempty"`
}

// RegisterRoutes mounts the board and auth API. Reads are public; every
// mutation goes through the gate first.
func RegisterRoutes(r chi.Router, svc *Service, gate *auth.Gate) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/tasks", getBoard(svc))
		r.Post("/tasks", createTask(svc, gate))
		r.Patch("/tasks/{id}", patchTask(svc, gate))
		r.Delete("/tasks/{id}", deleteTask(svc, gate))

		r.Get("/auth", authStatus(gate))
		r.Post("/auth", unlock(gate))
		r.Delete("/auth", lock(gate))
	})
}

func getBoard(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		b, err := svc.ReadBoard(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, boardResponse{
			Tasks: b.Tasks,
			Meta:  boardMeta{Storage: svc.StorageMode()},
		})
	}
}

func createTask(svc *Service, gate *auth.Gate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := gate.RequireEdit(r); err != nil {
			writeError(w, err)
			return
		}

		payload, ok := decodePayload(w, r.Body)
		if !ok {
			return
		}
		if payload.Title == nil {
			writeJSON(w, http.StatusUnprocessableEntity, errResponse{
				Error:   "validation_error",
				Details: []FieldError{{Field: "title", Message: "title is required"}},
			})
			return
		}

		patch := payload.toPatch("t_" + uuid.NewString())
		t, err := svc.UpsertTask(r.Context(), patch)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, taskResponse{Task: t})
	}
}

func patchTask(svc *Service, gate *auth.Gate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := gate.RequireEdit(r); err != nil {
			writeError(w, err)
			return
		}

		payload, ok := decodePayload(w, r.Body)
		if !ok {
			return
		}
		patch := payload.toPatch(chi.URLParam(r, "id"))
		t, err := svc.UpsertTask(r.Context(), patch)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, taskResponse{Task: t})
	}
}

func deleteTask(svc *Service, gate *auth.Gate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := gate.RequireEdit(r); err != nil {
			writeError(w, err)
			return
		}
		if err := svc.DeleteTask(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, okResponse{OK: true})
	}
}

func authStatus(gate *auth.Gate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		writeJSON(w, http.StatusOK, authStatusResponse{CanEdit: gate.CanEdit(r)})
	}
}

func unlock(gate *auth.Gate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		var req unlockRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errResponse{Error: "invalid_json"})
			return
		}
		if req.Password == "" {
			writeJSON(w, http.StatusUnprocessableEntity, errResponse{
				Error:   "validation_error",
				Details: []FieldError{{Field: "password", Message: "password is required"}},
			})
			return
		}
		if !gate.Unlock(w, req.Password) {
			writeJSON(w, http.StatusUnauthorized, okResponse{OK: false})
			return
		}
		writeJSON(w, http.StatusOK, okResponse{OK: true})
	}
}

func lock(gate *auth.Gate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		gate.Lock(w)
		writeJSON(w, http.StatusOK, okResponse{OK: true})
	}
}

func (p taskPayload) toPatch(id string) TaskPatch {
	return TaskPatch{
		ID:          id,
		Title:       p.Title,
		Description: p.Description,
		Assignee:    p.Assignee,
		Status:      p.Status,
		Priority:    p.Priority,
	}
}

func decodePayload(w http.ResponseWriter, body io.Reader) (taskPayload, bool) {
	var payload taskPayload
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errResponse{Error: "invalid_json"})
		return taskPayload{}, false
	}
	return payload, true
}

func writeError(w http.ResponseWriter, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, errResponse{
			Error:   "validation_error",
			Details: verr.Fields,
		})
	case errors.Is(err, auth.ErrEditForbidden):
		writeJSON(w, http.StatusForbidden, errResponse{Error: "forbidden"})
	case errors.Is(err, ErrBackendNotConfigured):
		writeJSON(w, http.StatusInternalServerError, errResponse{Error: "backend_not_configured"})
	default:
		writeJSON(w, http.StatusInternalServerError, errResponse{Error: "unexpected_error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
