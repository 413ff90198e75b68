package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/mmynk/billsplit/internal/middleware"
	"github.com/mmynk/billsplit/internal/models"
	"github.com/mmynk/billsplit/internal/storage"
)

const (
	// ShareServiceName is the fully-qualified name of the share link service.
	ShareServiceName = "billsplit.v1.ShareService"

	// CreateLinkProcedure stores a state token and returns its short link ID.
	CreateLinkProcedure = "/" + ShareServiceName + "/CreateLink"

	// ResolveLinkProcedure returns the state token behind a short link ID.
	ResolveLinkProcedure = "/" + ShareServiceName + "/ResolveLink"

	// DefaultMaxTokenBytes bounds the size of a stored state token.
	DefaultMaxTokenBytes = 64 * 1024
)

// ShareService stores opaque bill state tokens behind short links.
// It never decodes a token or computes a bill; that happens in the client.
type ShareService struct {
	store         storage.Store
	maxTokenBytes int
	metrics       *middleware.Metrics
}

// Option configures a ShareService.
type Option func(*ShareService)

// WithMaxTokenBytes overrides DefaultMaxTokenBytes.
func WithMaxTokenBytes(n int) Option {
	return func(s *ShareService) {
		if n > 0 {
			s.maxTokenBytes = n
		}
	}
}

// WithMetrics counts created and resolved links.
func WithMetrics(m *middleware.Metrics) Option {
	return func(s *ShareService) {
		s.metrics = m
	}
}

// NewShareService creates a new ShareService with the given storage backend.
func NewShareService(store storage.Store, opts ...Option) *ShareService {
	s := &ShareService{store: store, maxTokenBytes: DefaultMaxTokenBytes}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewShareServiceHandler builds the Connect handler for the service and returns the
// path prefix to mount it on.
func NewShareServiceHandler(svc *ShareService, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	mux.Handle(CreateLinkProcedure, connect.NewUnaryHandler(CreateLinkProcedure, svc.CreateLink, opts...))
	mux.Handle(ResolveLinkProcedure, connect.NewUnaryHandler(ResolveLinkProcedure, svc.ResolveLink, opts...))
	return "/" + ShareServiceName + "/", mux
}

// validateToken checks that a token looks like an encoded state without decoding it
// into a bill.
func (s *ShareService) validateToken(token string) error {
	if token == "" {
		return errors.New("token is required")
	}
	if len(token) > s.maxTokenBytes {
		return fmt.Errorf("token exceeds %d bytes", s.maxTokenBytes)
	}
	if _, err := base64.RawURLEncoding.DecodeString(token); err != nil {
		return fmt.Errorf("token is not URL-safe base64: %w", err)
	}
	return nil
}

// CreateLink stores a state token and returns the new link ID.
func (s *ShareService) CreateLink(ctx context.Context, req *connect.Request[wrapperspb.StringValue]) (*connect.Response[wrapperspb.StringValue], error) {
	token := strings.TrimSpace(req.Msg.GetValue())
	if err := s.validateToken(token); err != nil {
		slog.Debug("CreateLink rejected token", "error", err, "token_length", len(token))
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	link := &models.ShareLink{Token: token}
	if err := s.store.CreateLink(ctx, link); err != nil {
		slog.Error("CreateLink failed", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	if s.metrics != nil {
		s.metrics.LinksCreated.Inc()
	}
	slog.Info("Share link created", "link_id", link.ID, "token_length", len(token))

	return connect.NewResponse(wrapperspb.String(link.ID)), nil
}

// ResolveLink returns the state token stored behind a link ID.
func (s *ShareService) ResolveLink(ctx context.Context, req *connect.Request[wrapperspb.StringValue]) (*connect.Response[wrapperspb.StringValue], error) {
	token, err := s.Resolve(ctx, req.Msg.GetValue())
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(wrapperspb.String(token)), nil
}

// Resolve looks up a link, counts the hit and returns its token.
// Errors are Connect errors so both RPC and plain HTTP callers can map them.
func (s *ShareService) Resolve(ctx context.Context, linkID string) (string, error) {
	linkID = strings.TrimSpace(linkID)
	if linkID == "" {
		return "", connect.NewError(connect.CodeInvalidArgument, errors.New("link id is required"))
	}

	link, err := s.store.GetLink(ctx, linkID)
	if errors.Is(err, storage.ErrNotFound) {
		return "", connect.NewError(connect.CodeNotFound, err)
	}
	if err != nil {
		slog.Error("ResolveLink failed", "link_id", linkID, "error", err)
		return "", connect.NewError(connect.CodeInternal, err)
	}

	if err := s.store.TouchLink(ctx, linkID); err != nil {
		// Hit counting is best effort.
		slog.Warn("Failed to count link hit", "link_id", linkID, "error", err)
	}
	if s.metrics != nil {
		s.metrics.LinksResolved.Inc()
	}

	return link.Token, nil
}

// RedirectHandler serves GET /s/{id} by redirecting to the app with the stored state.
func (s *ShareService) RedirectHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := s.Resolve(r.Context(), r.PathValue("id"))
		if err != nil {
			switch connect.CodeOf(err) {
			case connect.CodeNotFound:
				http.NotFound(w, r)
			case connect.CodeInvalidArgument:
				http.Error(w, "invalid link id", http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}
		http.Redirect(w, r, "/?state="+token, http.StatusFound)
	})
}
