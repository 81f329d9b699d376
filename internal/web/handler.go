package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/cexll/sticky/internal/concurrency"
	"github.com/cexll/sticky/internal/github/comment"
	"github.com/gorilla/mux"
)

const maxBodyBytes = 1 << 20

// ClientFactory returns a comment client authenticated for thread.
type ClientFactory func(ctx context.Context, thread comment.Thread) (comment.Client, error)

// ThreadResolver turns request fields into a thread, applying defaults.
type ThreadResolver func(repo string, issue int) (comment.Thread, error)

// Handler serves the signed publish/withdraw/find API.
type Handler struct {
	secret   string
	clients  ClientFactory
	threads  ThreadResolver
	deliver  *deliveryDeduper
	locks    *concurrency.Manager
	maxBytes int64
}

// NewHandler creates an API handler. threads may be nil, in which case
// requests must name repo and issue explicitly.
func NewHandler(secret string, clients ClientFactory, threads ThreadResolver) *Handler {
	if threads == nil {
		threads = comment.ParseThread
	}
	return &Handler{
		secret:   secret,
		clients:  clients,
		threads:  threads,
		deliver:  newDeliveryDeduper(12 * time.Hour),
		locks:    concurrency.NewManager(),
		maxBytes: maxBodyBytes,
	}
}

// RegisterRoutes registers the API routes on r.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/v1").Subrouter()
	api.HandleFunc("/publish", h.signed(h.handlePublish)).Methods(http.MethodPost)
	api.HandleFunc("/withdraw", h.signed(h.handleWithdraw)).Methods(http.MethodPost)
	api.HandleFunc("/find", h.signed(h.handleFind)).Methods(http.MethodPost)
}

type threadRequest struct {
	Repo  string `json:"repo"`
	Issue int    `json:"issue"`
}

// PublishRequest is the body of POST /v1/publish.
type PublishRequest struct {
	Repo     string  `json:"repo"`
	Issue    int     `json:"issue"`
	Message  string  `json:"message"`
	ID       TagList `json:"id"`
	Update   bool    `json:"update"`
	Append   bool    `json:"append"`
	Sanitize bool    `json:"sanitize"`
}

// TagList is an identity as sent by callers: either a single tag
// ("build") or an array of tags (["stable", "run-1"]).
type TagList []string

// UnmarshalJSON accepts a string, an array of strings or null.
func (t *TagList) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var one string
	if err := json.Unmarshal(b, &one); err == nil {
		*t = TagList{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return fmt.Errorf("id must be a string or an array of strings: %w", err)
	}
	*t = many
	return nil
}

// PublishResponse is returned by POST /v1/publish.
type PublishResponse struct {
	Action                 string `json:"action"`
	CommentID              int64  `json:"comment_id,omitempty"`
	UpdatedPreviousComment bool   `json:"updated_previous_comment"`
	Body                   string `json:"body,omitempty"`
}

// WithdrawRequest is the body of POST /v1/withdraw and POST /v1/find.
type WithdrawRequest struct {
	Repo  string `json:"repo"`
	Issue int    `json:"issue"`
	ID    string `json:"id"`
}

// WithdrawResponse is returned by POST /v1/withdraw.
type WithdrawResponse struct {
	Deleted bool `json:"deleted"`
}

// FoundComment is one entry of FindResponse.
type FoundComment struct {
	ID   int64  `json:"id"`
	Body string `json:"body"`
}

// FindResponse is returned by POST /v1/find.
type FindResponse struct {
	Comments []FoundComment `json:"comments"`
}

type errorResponse struct {
	Error          string `json:"error"`
	UpstreamStatus int    `json:"upstream_status,omitempty"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// signed reads the body, verifies its signature and rejects replays
// before handing the raw payload to next.
func (h *Handler) signed(next func(http.ResponseWriter, *http.Request, []byte)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := io.ReadAll(io.LimitReader(r.Body, h.maxBytes+1))
		if err != nil {
			log.Printf("[API] Error reading payload: %v", err)
			writeError(w, http.StatusBadRequest, "error reading payload", 0)
			return
		}
		if int64(len(payload)) > h.maxBytes {
			writeError(w, http.StatusRequestEntityTooLarge, "payload too large", 0)
			return
		}

		signature := r.Header.Get(SignatureHeader)
		if err := ValidateSignatureHeader(signature); err != nil {
			log.Printf("[API] Invalid signature header: %v", err)
			writeError(w, http.StatusUnauthorized, "invalid signature", 0)
			return
		}
		if !VerifySignature(payload, signature, h.secret) {
			log.Printf("[API] Signature verification failed")
			writeError(w, http.StatusUnauthorized, "invalid signature", 0)
			return
		}

		id := r.Header.Get(DeliveryHeader)
		if id == "" {
			next(w, r, payload)
			return
		}
		if !h.deliver.markIfNew(id) {
			log.Printf("[API] Ignoring replayed delivery: %s", id)
			writeError(w, http.StatusConflict, "duplicate delivery", 0)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r, payload)
		if rec.status >= http.StatusMultipleChoices {
			log.Printf("[API] Delivery %s failed with %d, accepting retries", id, rec.status)
			h.deliver.forget(id)
		}
	}
}

// statusRecorder remembers the status code written through it.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (h *Handler) handlePublish(w http.ResponseWriter, r *http.Request, payload []byte) {
	var req PublishRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", 0)
		return
	}

	publisher, thread, ok := h.publisher(w, r, threadRequest{Repo: req.Repo, Issue: req.Issue})
	if !ok {
		return
	}

	if !h.lock(w, r, thread) {
		return
	}
	defer h.locks.Release(thread.String())

	message := req.Message
	if req.Sanitize {
		message = comment.SanitizeMessage(message)
	}

	res, err := publisher.Publish(r.Context(), thread, message, comment.Options{
		Identity:         comment.Tags(req.ID...),
		UpdateExisting:   req.Update,
		AppendToExisting: req.Append,
	})
	if err != nil {
		h.writeEngineError(w, "publish", thread, err)
		return
	}

	writeJSON(w, http.StatusOK, PublishResponse{
		Action:                 string(res.Action),
		CommentID:              res.CommentID,
		UpdatedPreviousComment: res.UpdatedPreviousComment,
		Body:                   res.Body,
	})
}

func (h *Handler) handleWithdraw(w http.ResponseWriter, r *http.Request, payload []byte) {
	var req WithdrawRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", 0)
		return
	}

	publisher, thread, ok := h.publisher(w, r, threadRequest{Repo: req.Repo, Issue: req.Issue})
	if !ok {
		return
	}

	if !h.lock(w, r, thread) {
		return
	}
	defer h.locks.Release(thread.String())

	deleted, err := publisher.Withdraw(r.Context(), thread, req.ID)
	if err != nil {
		h.writeEngineError(w, "withdraw", thread, err)
		return
	}
	writeJSON(w, http.StatusOK, WithdrawResponse{Deleted: deleted})
}

func (h *Handler) handleFind(w http.ResponseWriter, r *http.Request, payload []byte) {
	var req WithdrawRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", 0)
		return
	}

	publisher, thread, ok := h.publisher(w, r, threadRequest{Repo: req.Repo, Issue: req.Issue})
	if !ok {
		return
	}

	found, err := publisher.Find(r.Context(), thread, req.ID)
	if err != nil {
		h.writeEngineError(w, "find", thread, err)
		return
	}

	resp := FindResponse{Comments: make([]FoundComment, 0, len(found))}
	for _, c := range found {
		resp.Comments = append(resp.Comments, FoundComment{ID: c.ID, Body: c.Body})
	}
	writeJSON(w, http.StatusOK, resp)
}

// publisher resolves the thread and builds a publisher for it. On failure it
// writes the response and returns ok=false.
func (h *Handler) publisher(w http.ResponseWriter, r *http.Request, req threadRequest) (*comment.Publisher, comment.Thread, bool) {
	thread, err := h.threads(req.Repo, req.Issue)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), 0)
		return nil, comment.Thread{}, false
	}

	client, err := h.clients(r.Context(), thread)
	if err != nil {
		log.Printf("[API] Failed to create client for %s: %v", thread, err)
		writeError(w, http.StatusBadGateway, "failed to create GitHub client", 0)
		return nil, comment.Thread{}, false
	}
	return comment.NewPublisher(client), thread, true
}

// lock serializes writes to one thread within this server.
func (h *Handler) lock(w http.ResponseWriter, r *http.Request, thread comment.Thread) bool {
	if err := h.locks.Acquire(r.Context(), thread.String()); err != nil {
		log.Printf("[API] Gave up waiting for %s: %v", thread, err)
		writeError(w, http.StatusServiceUnavailable, "request canceled while waiting for thread", 0)
		return false
	}
	return true
}

func (h *Handler) writeEngineError(w http.ResponseWriter, op string, thread comment.Thread, err error) {
	log.Printf("[API] %s on %s failed: %v", op, thread, err)

	switch {
	case errors.Is(err, comment.ErrInvalidThread):
		writeError(w, http.StatusBadRequest, err.Error(), 0)
	case comment.IsTransportError(err), comment.IsMalformedResponse(err):
		writeError(w, http.StatusBadGateway, err.Error(), comment.StatusCode(err))
	default:
		writeError(w, http.StatusInternalServerError, err.Error(), 0)
	}
}

func writeError(w http.ResponseWriter, status int, msg string, upstream int) {
	writeJSON(w, status, errorResponse{Error: msg, UpstreamStatus: upstream})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
