package http

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/habits/internal/habits/service"
	"github.com/aussiebroadwan/habits/pkg/httpx"
)

// AnonIDHeader carries a returning anonymous participant's identifier.
const AnonIDHeader = "X-Anon-Id"

const maxAnonIDLen = 64

type ForumHandler struct {
	ForumService *service.ForumService
	Identity     Identity
}

func (h *ForumHandler) ListThreads(w http.ResponseWriter, r *http.Request) {
	threads, err := h.ForumService.ListThreads(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]ThreadInfo, 0, len(threads))
	for _, t := range threads {
		out = append(out, toThreadInfo(t))
	}
	httpx.WriteJSON(w, http.StatusOK, ListThreadsResponse{Success: true, Threads: out})
}

func (h *ForumHandler) CreateThread(w http.ResponseWriter, r *http.Request) {
	var req CreateThreadRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeError(w, r, errBadBody)
		return
	}
	author, err := h.author(r, req.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	thread, err := h.ForumService.CreateThread(r.Context(), author, req.Title, req.Content)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, ThreadResponse{
		Success: true,
		Thread:  toThreadInfo(thread),
		AnonID:  thread.AnonID,
	})
}

func (h *ForumHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.ForumService.ListPosts(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]PostInfo, 0, len(posts))
	for _, p := range posts {
		out = append(out, toPostInfo(p))
	}
	httpx.WriteJSON(w, http.StatusOK, ListPostsResponse{Success: true, Posts: out})
}

func (h *ForumHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req CreatePostRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeError(w, r, errBadBody)
		return
	}
	author, err := h.author(r, req.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	post, err := h.ForumService.CreatePost(r.Context(), r.PathValue("id"), author, req.Content)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, PostResponse{
		Success: true,
		Post:    toPostInfo(post),
		AnonID:  post.AnonID,
	})
}

func (h *ForumHandler) author(r *http.Request, supplied string) (service.Author, error) {
	userID, err := h.Identity.OptionalUser(r, supplied)
	if err != nil {
		return service.Author{}, err
	}
	if userID != "" {
		return service.Author{UserID: userID}, nil
	}

	anon := strings.TrimSpace(r.Header.Get(AnonIDHeader))
	if len(anon) > maxAnonIDLen {
		anon = ""
	}
	return service.Author{AnonID: anon}, nil
}
