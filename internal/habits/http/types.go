package http

import (
	"time"

	"github.com/aussiebroadwan/habits/internal/habits/domain"
)

// Every body carries success. Failures use httpx.ErrorBody.

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignupResponse struct {
	Success bool   `json:"success"`
	UserID  string `json:"userId"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

type LoginResponse struct {
	Success   bool      `json:"success"`
	UserID    string    `json:"userId"`
	Remember  bool      `json:"remember"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type HabitInfo struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Streak         int       `json:"streak"`
	CompletedToday bool      `json:"completedToday"`
	CreatedAt      time.Time `json:"createdAt"`
}

type ListHabitsResponse struct {
	Success bool        `json:"success"`
	Habits  []HabitInfo `json:"habits"`
}

type CreateHabitRequest struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
}

type HabitResponse struct {
	Success bool      `json:"success"`
	Habit   HabitInfo `json:"habit"`
}

type CompletionRequest struct {
	UserID string `json:"userId"`
	Date   string `json:"date,omitempty"`
}

type CompletionResponse struct {
	Success bool   `json:"success"`
	Date    string `json:"date"`
}

// CompletionInfo keeps the snake_case keys the calendar view reads.
type CompletionInfo struct {
	HabitID        string `json:"habit_id"`
	CompletionDate string `json:"completion_date"`
}

type ListCompletionsResponse struct {
	Success     bool             `json:"success"`
	Completions []CompletionInfo `json:"completions"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

type ThreadInfo struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId,omitempty"`
	AnonID    string    `json:"anonId,omitempty"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type ListThreadsResponse struct {
	Success bool         `json:"success"`
	Threads []ThreadInfo `json:"threads"`
}

type CreateThreadRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	UserID  string `json:"userId"`
}

type ThreadResponse struct {
	Success bool       `json:"success"`
	Thread  ThreadInfo `json:"thread"`
	AnonID  string     `json:"anonId"`
}

type PostInfo struct {
	ID        string    `json:"id"`
	ThreadID  string    `json:"threadId"`
	UserID    string    `json:"user_id,omitempty"`
	AnonID    string    `json:"anonId,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type ListPostsResponse struct {
	Success bool       `json:"success"`
	Posts   []PostInfo `json:"posts"`
}

type CreatePostRequest struct {
	Content string `json:"content"`
	UserID  string `json:"userId"`
}

type PostResponse struct {
	Success bool     `json:"success"`
	Post    PostInfo `json:"post"`
	AnonID  string   `json:"anonId"`
}

type UploadInfo struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	FileHash   string    `json:"fileHash"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
}

type UploadResponse struct {
	Success  bool       `json:"success"`
	FileHash string     `json:"fileHash"`
	Upload   UploadInfo `json:"upload"`
}

type ListUploadsResponse struct {
	Success bool         `json:"success"`
	Uploads []UploadInfo `json:"uploads"`
}

type HealthResponse struct {
	Status  string            `json:"status"`
	Uptime  string            `json:"uptime"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks,omitempty"`
}

func toHabitInfo(h domain.HabitStatus) HabitInfo {
	return HabitInfo{
		ID:             h.ID,
		Name:           h.Name,
		Streak:         h.Streak,
		CompletedToday: h.CompletedToday,
		CreatedAt:      h.CreatedAt,
	}
}

func toThreadInfo(t domain.ForumThread) ThreadInfo {
	return ThreadInfo{
		ID:        t.ID,
		UserID:    t.UserID,
		AnonID:    t.AnonID,
		Title:     t.Title,
		Content:   t.Content,
		CreatedAt: t.CreatedAt,
	}
}

func toPostInfo(p domain.ForumPost) PostInfo {
	return PostInfo{
		ID:        p.ID,
		ThreadID:  p.ThreadID,
		UserID:    p.UserID,
		AnonID:    p.AnonID,
		Content:   p.Content,
		CreatedAt: p.CreatedAt,
	}
}

func toUploadInfo(u domain.Upload) UploadInfo {
	return UploadInfo{
		ID:         u.ID,
		Filename:   u.Filename,
		FileHash:   u.FileHash,
		Size:       u.Size,
		UploadedAt: u.UploadedAt,
	}
}
