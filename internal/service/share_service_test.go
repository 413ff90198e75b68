package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/mmynk/billsplit/internal/middleware"
	"github.com/mmynk/billsplit/internal/models"
	"github.com/mmynk/billsplit/internal/sharestate"
	"github.com/mmynk/billsplit/internal/storage/sqlite"
)

type shareClients struct {
	create  *connect.Client[wrapperspb.StringValue, wrapperspb.StringValue]
	resolve *connect.Client[wrapperspb.StringValue, wrapperspb.StringValue]
	baseURL string
	metrics *middleware.Metrics
}

// setupShareTestServer creates a test server backed by a temp SQLite database.
func setupShareTestServer(t *testing.T, opts ...Option) shareClients {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "links.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	metrics := middleware.NewMetrics("test", prometheus.NewRegistry(), CreateLinkProcedure, ResolveLinkProcedure)
	svc := NewShareService(store, append([]Option{WithMetrics(metrics)}, opts...)...)

	mux := http.NewServeMux()
	mux.Handle(NewShareServiceHandler(svc, connect.WithInterceptors(middleware.LoggingInterceptor())))
	mux.Handle("GET /s/{id}", svc.RedirectHandler())

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	return shareClients{
		create:  connect.NewClient[wrapperspb.StringValue, wrapperspb.StringValue](http.DefaultClient, server.URL+CreateLinkProcedure),
		resolve: connect.NewClient[wrapperspb.StringValue, wrapperspb.StringValue](http.DefaultClient, server.URL+ResolveLinkProcedure),
		baseURL: server.URL,
		metrics: metrics,
	}
}

func sampleToken(t *testing.T) string {
	t.Helper()
	token, err := sharestate.Encode(models.BillState{
		Participants: []models.Participant{
			{Name: "Alice", Items: []models.Item{{Name: "Pizza", Quantity: 1, Price: 100000}}},
			{Name: "Bob", Items: []models.Item{{Name: "Pasta", Quantity: 1, Price: 100000}}},
		},
		Discount: models.DiscountConfig{Kind: models.DiscountFlat, Value: 50000},
	})
	if err != nil {
		t.Fatalf("failed to encode state: %v", err)
	}
	return token
}

func TestCreateAndResolveLink(t *testing.T) {
	clients := setupShareTestServer(t)
	ctx := context.Background()
	token := sampleToken(t)

	created, err := clients.create.CallUnary(ctx, connect.NewRequest(wrapperspb.String(token)))
	if err != nil {
		t.Fatalf("CreateLink failed: %v", err)
	}
	linkID := created.Msg.GetValue()
	if linkID == "" {
		t.Fatal("expected link ID in response")
	}

	resolved, err := clients.resolve.CallUnary(ctx, connect.NewRequest(wrapperspb.String(linkID)))
	if err != nil {
		t.Fatalf("ResolveLink failed: %v", err)
	}
	if resolved.Msg.GetValue() != token {
		t.Errorf("resolved token = %q, want %q", resolved.Msg.GetValue(), token)
	}

	if got := testutil.ToFloat64(clients.metrics.LinksCreated); got != 1 {
		t.Errorf("links created metric = %v, want 1", got)
	}
	if got := testutil.ToFloat64(clients.metrics.LinksResolved); got != 1 {
		t.Errorf("links resolved metric = %v, want 1", got)
	}
}

func TestCreateLinkValidation(t *testing.T) {
	clients := setupShareTestServer(t, WithMaxTokenBytes(32))

	tests := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"whitespace token", "   "},
		{"not base64url", "abc+/=="},
		{"too long", strings.Repeat("A", 33)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := clients.create.CallUnary(context.Background(), connect.NewRequest(wrapperspb.String(tt.token)))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if connect.CodeOf(err) != connect.CodeInvalidArgument {
				t.Errorf("expected CodeInvalidArgument, got %v", connect.CodeOf(err))
			}
		})
	}
}

func TestResolveLinkErrors(t *testing.T) {
	clients := setupShareTestServer(t)

	tests := []struct {
		name     string
		linkID   string
		wantCode connect.Code
	}{
		{"unknown link", "doesnotexist", connect.CodeNotFound},
		{"empty link id", "", connect.CodeInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := clients.resolve.CallUnary(context.Background(), connect.NewRequest(wrapperspb.String(tt.linkID)))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if connect.CodeOf(err) != tt.wantCode {
				t.Errorf("expected %v, got %v", tt.wantCode, connect.CodeOf(err))
			}
		})
	}
}

func TestRedirectHandler(t *testing.T) {
	clients := setupShareTestServer(t)
	token := sampleToken(t)

	created, err := clients.create.CallUnary(context.Background(), connect.NewRequest(wrapperspb.String(token)))
	if err != nil {
		t.Fatalf("CreateLink failed: %v", err)
	}

	noRedirect := &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}

	t.Run("known link redirects with state", func(t *testing.T) {
		resp, err := noRedirect.Get(clients.baseURL + "/s/" + created.Msg.GetValue())
		if err != nil {
			t.Fatalf("GET failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusFound {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusFound)
		}
		if got, want := resp.Header.Get("Location"), "/?state="+token; got != want {
			t.Errorf("Location = %q, want %q", got, want)
		}

		// The redirected state decodes back into the shared bill.
		state := sharestate.Decode(strings.TrimPrefix(resp.Header.Get("Location"), "/?state="))
		if len(state.Participants) != 2 {
			t.Errorf("decoded %d participants, want 2", len(state.Participants))
		}
	})

	t.Run("unknown link is 404", func(t *testing.T) {
		resp, err := noRedirect.Get(clients.baseURL + "/s/missing")
		if err != nil {
			t.Fatalf("GET failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
		}
	})
}
