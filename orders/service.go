package orders

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/orderdesk/go-chatbot-client/httpclient"
	"github.com/orderdesk/go-chatbot-client/internal/apierrors"
)

const (
	myOrdersPath     = "/api/orders/my-orders"
	recentOrdersPath = "/api/orders/my-orders/recent"
	statusPathPrefix = "/api/orders/my-orders/status/"
	orderPathPrefix  = "/api/orders/"
	trackPathPrefix  = "/api/orders/track/"

	defaultLimit = 10
)

const invalidStatusMessage = "Invalid status provided. Please use: PROCESSING, SHIPPED, DELIVERED, or CANCELLED"

// Service talks to the order endpoints. Every operation requires an
// authenticated session.
type Service struct {
	client *httpclient.Client
	tokens httpclient.TokenSource
}

// NewService creates the order service.
func NewService(client *httpclient.Client, tokens httpclient.TokenSource) (*Service, error) {
	if client == nil {
		return nil, errors.New("[orders.NewService] client is required")
	}
	if tokens == nil {
		return nil, errors.New("[orders.NewService] token source is required")
	}
	return &Service{client: client, tokens: tokens}, nil
}

// MyOrders returns the customer's orders, newest first, capped at limit
// (default 10 when limit is not positive).
func (s *Service) MyOrders(ctx context.Context, limit int) ([]Order, error) {
	if err := s.requireAuth(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultLimit
	}

	var result []Order
	path := fmt.Sprintf("%s?limit=%d", myOrdersPath, limit)
	if err := s.client.GetJSON(ctx, path, &result); err != nil {
		return nil, remapListError(err, "Failed to fetch order history. Please try again.")
	}
	return result, nil
}

// RecentOrders returns orders from the last 30 days.
func (s *Service) RecentOrders(ctx context.Context) ([]Order, error) {
	if err := s.requireAuth(); err != nil {
		return nil, err
	}

	var result []Order
	if err := s.client.GetJSON(ctx, recentOrdersPath, &result); err != nil {
		return nil, remapListError(err, "Failed to fetch recent orders. Please try again.")
	}
	return result, nil
}

// OrdersByStatus returns the customer's orders filtered by status. An
// unknown status fails client-side with a message naming the valid values;
// a server-side 400 maps to the same guidance.
func (s *Service) OrdersByStatus(ctx context.Context, status string) ([]Order, error) {
	if !IsValidStatus(status) {
		return nil, apierrors.Validation(invalidStatusMessage)
	}
	if err := s.requireAuth(); err != nil {
		return nil, err
	}

	var result []Order
	path := statusPathPrefix + strings.ToUpper(status)
	if err := s.client.GetJSON(ctx, path, &result); err != nil {
		if apierrors.StatusOf(err) == http.StatusBadRequest {
			return nil, apierrors.WithMessage(err, invalidStatusMessage)
		}
		return nil, remapListError(err, "Failed to fetch orders by status. Please try again.")
	}
	return result, nil
}

// OrderByNumber returns one order. 403 means the order belongs to another
// customer; 404 means it does not exist.
func (s *Service) OrderByNumber(ctx context.Context, orderNumber string) (*Order, error) {
	if strings.TrimSpace(orderNumber) == "" {
		return nil, apierrors.Validation("Order number is required")
	}
	if err := s.requireAuth(); err != nil {
		return nil, err
	}

	var result Order
	if err := s.client.GetJSON(ctx, orderPathPrefix+orderNumber, &result); err != nil {
		switch apierrors.StatusOf(err) {
		case http.StatusForbidden:
			return nil, apierrors.WithMessage(err, "You do not have permission to view this order.")
		case http.StatusNotFound:
			return nil, apierrors.WithMessage(err, fmt.Sprintf("Order %s not found.", orderNumber))
		}
		return nil, remapListError(err, "Failed to fetch order details. Please try again.")
	}
	return &result, nil
}

// Track returns shipment tracking for an order.
func (s *Service) Track(ctx context.Context, orderNumber string) (*Tracking, error) {
	if strings.TrimSpace(orderNumber) == "" {
		return nil, apierrors.Validation("Order number is required")
	}
	if err := s.requireAuth(); err != nil {
		return nil, err
	}

	var result Tracking
	if err := s.client.GetJSON(ctx, trackPathPrefix+orderNumber, &result); err != nil {
		switch apierrors.StatusOf(err) {
		case http.StatusForbidden:
			return nil, apierrors.WithMessage(err, "You do not have permission to track this order.")
		case http.StatusNotFound:
			return nil, apierrors.WithMessage(err, fmt.Sprintf("Tracking information for order %s not found.", orderNumber))
		}
		return nil, remapListError(err, "Failed to fetch tracking information. Please try again.")
	}
	return &result, nil
}

// Health probes the order service by fetching a single order. Failures are
// logged, not surfaced.
func (s *Service) Health(ctx context.Context) bool {
	if err := s.client.GetJSON(ctx, myOrdersPath+"?limit=1", nil); err != nil {
		log.Error().Err(err).Msg("Order service health check failed")
		return false
	}
	return true
}

func (s *Service) requireAuth() error {
	if s.tokens.Token() == "" {
		return apierrors.New(apierrors.ErrAuthentication, "Authentication required")
	}
	return nil
}

func remapListError(err error, fallback string) error {
	if apierrors.StatusOf(err) == http.StatusUnauthorized {
		return apierrors.WithMessage(err, "Authentication failed. Please log in again.")
	}
	if errors.Is(err, apierrors.ErrServer) && apierrors.Generic(err) {
		return apierrors.WithMessage(err, fallback)
	}
	return err
}
