package database

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/SusheelSathyaraj/TableMigrator/config"
	"github.com/supabase-community/postgrest-go"
)

// SupabaseClient inserts rows through the PostgREST endpoint of a Supabase project.
type SupabaseClient struct {
	URL        string
	ServiceKey string

	rest      *postgrest.Client
	transport *statusTransport
}

var _ Destination = (*SupabaseClient)(nil)

// APIError is a request PostgREST rejected. Status is 0 when no response arrived.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "supabase: status %d", e.Status)
	if e.Code != "" {
		fmt.Fprintf(&b, " code %s", e.Code)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	return b.String()
}

// postgrest-go reports error bodies as "(code) message"
var executeErrorPattern = regexp.MustCompile(`(?s)^\(([^)]*)\) (.*)$`)

// statusTransport remembers the status of the last response, which postgrest-go does not expose
type statusTransport struct {
	next       *http.Transport
	lastStatus int
}

func (t *statusTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.lastStatus = 0
	resp, err := t.next.RoundTrip(req)
	if resp != nil {
		t.lastStatus = resp.StatusCode
	}
	return resp, err
}

func NewSupabaseClient(endpoint, serviceKey string) *SupabaseClient {
	return &SupabaseClient{
		URL:        endpoint,
		ServiceKey: serviceKey,
	}
}

func NewSupabaseClientFromConfig(cfg *config.Config) *SupabaseClient {
	return NewSupabaseClient(cfg.Supabase.URL, cfg.Supabase.ServiceKey)
}

// Connect validates the endpoint and builds the PostgREST client. No request is made.
func (s *SupabaseClient) Connect(ctx context.Context) error {
	if s.URL == "" || s.ServiceKey == "" {
		return fmt.Errorf("supabase url and service key are required")
	}
	u, err := url.Parse(strings.TrimRight(s.URL, "/"))
	if err != nil {
		return fmt.Errorf("invalid supabase url %s, %w", s.URL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid supabase url %s, scheme must be http or https", s.URL)
	}

	rest := postgrest.NewClient(u.JoinPath("rest", "v1").String(), "", map[string]string{
		"apikey":        s.ServiceKey,
		"Authorization": "Bearer " + s.ServiceKey,
	})
	if rest.ClientError != nil {
		return fmt.Errorf("invalid supabase url %s, %w", s.URL, rest.ClientError)
	}

	s.transport = &statusTransport{next: http.DefaultTransport.(*http.Transport).Clone()}
	rest.Transport.Parent = s.transport
	s.rest = rest
	return nil
}

func (s *SupabaseClient) Close() error {
	if s.transport != nil {
		s.transport.next.CloseIdleConnections()
	}
	return nil
}

// InsertBatch posts rows as one JSON array. PostgREST runs the insert in a single
// transaction, so a rejected request stores none of the rows.
func (s *SupabaseClient) InsertBatch(ctx context.Context, table string, rows []Row) error {
	if s.rest == nil {
		return fmt.Errorf("supabase client not connected")
	}
	if len(rows) == 0 {
		return nil
	}
	// postgrest-go takes no context, so only cancellation before the request is honoured
	if err := ctx.Err(); err != nil {
		return err
	}

	query := s.rest.From(table).Insert(rows, false, "", "minimal", "")
	if s.rest.ClientError != nil {
		err := s.rest.ClientError
		s.rest.ClientError = nil
		return fmt.Errorf("failed to encode %d rows for %s, %w", len(rows), table, err)
	}

	if _, _, err := query.Execute(); err != nil {
		return s.executeError(table, err)
	}
	return nil
}

// executeError turns an error from postgrest-go back into an *APIError when a response was received.
func (s *SupabaseClient) executeError(table string, err error) error {
	status := s.transport.lastStatus
	if status == 0 {
		return fmt.Errorf("insert into %s failed, %w", table, err)
	}

	apiErr := &APIError{Status: status}
	if m := executeErrorPattern.FindStringSubmatch(err.Error()); m != nil {
		apiErr.Code = m[1]
		apiErr.Message = m[2]
	} else {
		// body was not a PostgREST error document
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}
