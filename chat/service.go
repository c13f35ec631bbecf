package chat

import (
	"context"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/orderdesk/go-chatbot-client/httpclient"
	"github.com/orderdesk/go-chatbot-client/internal/apierrors"
)

const (
	messagePath = "/api/chat/message"
	healthPath  = "/api/chat/health"
)

// Request is the chat message payload.
type Request struct {
	Message string `json:"message"`
}

// Response is the chatbot's reply.
type Response struct {
	Message    string  `json:"message"`
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
	Timestamp  string  `json:"timestamp"`
}

// Service talks to the chat endpoints.
type Service struct {
	client *httpclient.Client
	tokens httpclient.TokenSource
}

// NewService creates the chat service.
func NewService(client *httpclient.Client, tokens httpclient.TokenSource) (*Service, error) {
	if client == nil {
		return nil, errors.New("[chat.NewService] client is required")
	}
	if tokens == nil {
		return nil, errors.New("[chat.NewService] token source is required")
	}
	return &Service{client: client, tokens: tokens}, nil
}

// SendMessage posts a user message and returns the bot's reply. Requires an
// authenticated session.
func (s *Service) SendMessage(ctx context.Context, message string) (*Response, error) {
	if strings.TrimSpace(message) == "" {
		return nil, apierrors.Validation("Message cannot be empty")
	}
	if s.tokens.Token() == "" {
		return nil, apierrors.New(apierrors.ErrAuthentication, "Authentication required")
	}

	var resp Response
	if err := s.client.PostJSON(ctx, messagePath, Request{Message: message}, &resp); err != nil {
		return nil, remapError(err)
	}
	return &resp, nil
}

// Health probes the chat health endpoint. Failures are logged, not surfaced.
func (s *Service) Health(ctx context.Context) bool {
	if err := s.client.GetJSON(ctx, healthPath, nil); err != nil {
		log.Error().Err(err).Msg("Chat service health check failed")
		return false
	}
	return true
}

func remapError(err error) error {
	switch apierrors.StatusOf(err) {
	case http.StatusUnauthorized:
		return apierrors.WithMessage(err, "Authentication failed. Please log in again.")
	case http.StatusTooManyRequests:
		return apierrors.WithMessage(err, "Rate limit exceeded. Please wait a moment before sending another message.")
	}
	return err
}
