package server

import (
	"chat-room/domain"
	"chat-room/errors"
	"chat-room/services"
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/samber/lo"
)

// UserHeader carries the presence name of the caller.
const UserHeader = "User"

const timeLayout = "15:04:05"

// Health tells whether the background cycles can still reach the store.
type Health interface {
	Serving() bool
}

type ChatServer struct {
	log             *slog.Logger
	presence        services.IPresenceService
	messages        services.IMessageService
	health          Health
	srv             *http.Server
	shutdownTimeout time.Duration
}

func NewChatServer(log *slog.Logger, presence services.IPresenceService,
	messages services.IMessageService, health Health, shutdownTimeout time.Duration) *ChatServer {
	s := &ChatServer{
		log:             log,
		presence:        presence,
		messages:        messages,
		health:          health,
		shutdownTimeout: shutdownTimeout,
	}
	s.srv = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler exposes the routes, wrapped in the CORS middleware.
func (s *ChatServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /participants", s.handleListParticipants)
	mux.HandleFunc("POST /participants", s.handleJoin)
	mux.HandleFunc("GET /messages", s.handleListMessages)
	mux.HandleFunc("POST /messages", s.handleSend)
	mux.HandleFunc("DELETE /messages/{id}", s.handleDelete)
	mux.HandleFunc("POST /status", s.handleHeartbeat)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return cors(mux)
}

// ListenAndServe blocks until ctx is done or the listener fails.
func (s *ChatServer) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.Serve(l) }()
	s.log.Info("Starting HTTP server", "address", l.Addr().String())

	select {
	case <-ctx.Done():
		cctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		return s.srv.Shutdown(cctx)
	case err := <-errCh:
		return err
	}
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, User")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type participantResponse struct {
	Name       string `json:"name"`
	LastStatus int64  `json:"lastStatus"`
}

type joinRequest struct {
	Name string `json:"name"`
}

type messageResponse struct {
	ID   string `json:"id"`
	From string `json:"from"`
	To   string `json:"to"`
	Text string `json:"text"`
	Type string `json:"type"`
	Time string `json:"time"`
}

type sendRequest struct {
	To   string `json:"to"`
	Text string `json:"text"`
	Type string `json:"type"`
}

func (s *ChatServer) handleListParticipants(w http.ResponseWriter, r *http.Request) {
	participants, err := s.presence.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toParticipantResponse(participants))
}

func (s *ChatServer) handleJoin(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.ErrValidation)
		return
	}
	if err := s.presence.Join(r.Context(), req.Name); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *ChatServer) handleListMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := s.messages.List(r.Context(), domain.GetMessagesCommand{
		Viewer: r.Header.Get(UserHeader),
		Limit:  parseLimit(r.URL.Query().Get("limit")),
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMessageResponse(messages))
}

func (s *ChatServer) handleSend(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.ErrValidation)
		return
	}
	err := s.messages.Send(r.Context(), domain.SendMessageCommand{
		From: r.Header.Get(UserHeader),
		To:   req.To,
		Text: req.Text,
		Kind: domain.Kind(req.Type),
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *ChatServer) handleDelete(w http.ResponseWriter, r *http.Request) {
	err := s.messages.Delete(r.Context(), domain.DeleteMessageCommand{
		ID:        r.PathValue("id"),
		Requester: r.Header.Get(UserHeader),
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *ChatServer) handleHeartbeat(w http.ResponseWriter, r *http.Request) {
	if err := s.presence.Heartbeat(r.Context(), r.Header.Get(UserHeader)); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *ChatServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	if s.health != nil && !s.health.Serving() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not_serving"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// parseLimit treats a missing, malformed or non-positive limit as "everything".
func parseLimit(raw string) int {
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}

func toParticipantResponse(participants []domain.Participant) []participantResponse {
	return lo.Map(participants, func(item domain.Participant, _ int) participantResponse {
		return participantResponse{Name: item.Name, LastStatus: item.LastHeartbeat.UnixMilli()}
	})
}

func toMessageResponse(messages []domain.Message) []messageResponse {
	return lo.Map(messages, func(item domain.Message, _ int) messageResponse {
		return messageResponse{
			ID:   item.ID.String(),
			From: item.From,
			To:   item.To,
			Text: item.Text,
			Type: string(item.Kind),
			Time: item.At.Format(timeLayout),
		}
	})
}

func (s *ChatServer) writeError(w http.ResponseWriter, err error) {
	status := errors.MapToHTTPStatus(err)
	if status == http.StatusInternalServerError {
		s.log.Error("Request failed", "error", err)
	} else {
		s.log.Debug("Request rejected", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": errors.PublicMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
