package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/habits/internal/habits/domain"
	"github.com/aussiebroadwan/habits/internal/habits/service"
	"github.com/aussiebroadwan/habits/pkg/httpx"
)

type HabitsHandler struct {
	HabitService *service.HabitService
	Identity     Identity
}

func (h *HabitsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := h.Identity.User(r, r.URL.Query().Get("userId"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	statuses, err := h.HabitService.ListWithStatus(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]HabitInfo, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, toHabitInfo(s))
	}
	httpx.WriteJSON(w, http.StatusOK, ListHabitsResponse{Success: true, Habits: out})
}

func (h *HabitsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateHabitRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeError(w, r, errBadBody)
		return
	}
	userID, err := h.Identity.User(r, req.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	habit, err := h.HabitService.CreateHabit(r.Context(), userID, req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, HabitResponse{
		Success: true,
		Habit:   toHabitInfo(domain.HabitStatus{Habit: habit}),
	})
}

func (h *HabitsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := h.Identity.User(r, r.URL.Query().Get("userId"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.HabitService.DeleteHabit(r.Context(), r.PathValue("id"), userID); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// Complete marks a habit done for the requested day, or today.
func (h *HabitsHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var req CompletionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeError(w, r, errBadBody)
		return
	}
	userID, err := h.Identity.User(r, req.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	day, err := parseOptionalDay(req.Date)
	if err != nil {
		writeError(w, r, err)
		return
	}

	recorded, err := h.HabitService.MarkComplete(r.Context(), r.PathValue("id"), userID, day)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, CompletionResponse{Success: true, Date: domain.FormatDay(recorded)})
}

func (h *HabitsHandler) Uncomplete(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	userID, err := h.Identity.User(r, q.Get("userId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	day, err := parseOptionalDay(q.Get("date"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	removed, err := h.HabitService.UnmarkComplete(r.Context(), r.PathValue("id"), userID, day)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, CompletionResponse{Success: true, Date: domain.FormatDay(removed)})
}

func (h *HabitsHandler) Completions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	userID, err := h.Identity.User(r, q.Get("userId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	start, err := parseOptionalDay(q.Get("startDate"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	end, err := parseOptionalDay(q.Get("endDate"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	completions, err := h.HabitService.ListCompletions(r.Context(), userID, start, end)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]CompletionInfo, 0, len(completions))
	for _, c := range completions {
		out = append(out, CompletionInfo{HabitID: c.HabitID, CompletionDate: domain.FormatDay(c.Day)})
	}
	httpx.WriteJSON(w, http.StatusOK, ListCompletionsResponse{Success: true, Completions: out})
}

// parseOptionalDay returns the zero time for an empty string.
func parseOptionalDay(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	day, err := domain.ParseDay(s)
	if err != nil {
		return time.Time{}, service.ErrInvalidDate
	}
	return day, nil
}
