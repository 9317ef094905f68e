package openfda

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barfriedman1/FDA-drug-recall/internal/recall"
)

const sampleBody = `{
  "meta": {"last_updated": "2026-10-14", "results": {"skip": 0, "limit": 1000, "total": 17422}},
  "results": [
    {
      "product_description": "Sodium Chloride Injection, USP, 0.9%, 10 mL single-dose vials, Rx only",
      "classification": "Class II",
      "reason_for_recall": "Lack of Assurance of Sterility",
      "report_date": "20240117",
      "recall_number": "D-0234-2024"
    },
    {
      "classification": "Class I",
      "reason_for_recall": null,
      "report_date": "202"
    },
    {
      "product_description": "Ibuprofen Tablets",
      "report_date": "n/a-date"
    }
  ]
}`

func newTestServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchDecodesRecords(t *testing.T) {
	var gotLimit, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLimit = r.URL.Query().Get("limit")
		gotAccept = r.Header.Get("Accept")
		_, _ = w.Write([]byte(sampleBody))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0, 5*time.Second)
	res, err := c.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "1000", gotLimit)
	assert.Equal(t, "application/json", gotAccept)
	assert.Equal(t, 17422, res.Meta.Total)
	assert.Equal(t, "2026-10-14", res.Meta.LastUpdated)
	require.Len(t, res.Records, 3)

	first := res.Records[0]
	assert.Equal(t, "Sodium Chloride Injection, USP, 0.9%, 10 mL single", first.Product)
	assert.Equal(t, 50, utf8.RuneCountInString(first.Product))
	assert.Equal(t, recall.ClassII, first.Classification)
	assert.Equal(t, "Lack of Assurance of Sterility", first.Reason)
	assert.Equal(t, "2024", first.Year)

	second := res.Records[1]
	assert.Equal(t, recall.Unknown, second.Product)
	assert.Equal(t, recall.ClassI, second.Classification)
	assert.Equal(t, recall.Unknown, second.Reason)
	assert.Equal(t, recall.Unknown, second.Year)

	third := res.Records[2]
	assert.Equal(t, recall.Unknown, third.Classification)
	assert.Equal(t, recall.Unknown, third.Year)
}

func TestFetchYearInvariant(t *testing.T) {
	res, err := Decode([]byte(sampleBody))
	require.NoError(t, err)
	for _, r := range res.Records {
		if r.Year == recall.Unknown {
			continue
		}
		assert.Len(t, r.Year, 4)
		for _, c := range r.Year {
			assert.True(t, c >= '0' && c <= '9', "year %q is not numeric", r.Year)
		}
	}
}

func TestFetchStatusErrorWithEnvelope(t *testing.T) {
	srv := newTestServer(t, http.StatusNotFound, `{"error":{"code":"NOT_FOUND","message":"No matches found!"}}`)

	_, err := NewClient(srv.URL, 10, time.Second).Fetch(context.Background())
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
	assert.Equal(t, "NOT_FOUND", se.Code)
	assert.Contains(t, err.Error(), "No matches found!")
	assert.False(t, errors.Is(err, ErrMalformed))
}

func TestFetchStatusErrorPlainBody(t *testing.T) {
	srv := newTestServer(t, http.StatusBadGateway, "upstream down")

	_, err := NewClient(srv.URL, 10, time.Second).Fetch(context.Background())
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadGateway, se.StatusCode)
	assert.Empty(t, se.Code)
	assert.Contains(t, err.Error(), "502")
}

func TestFetchMalformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "<html>oops</html>"},
		{"missing results", `{"meta": {}}`},
		{"null results", `{"results": null}`},
		{"results not array", `{"results": {"a": 1}}`},
		{"top level array", `[1, 2, 3]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, http.StatusOK, tt.body)
			_, err := NewClient(srv.URL, 10, time.Second).Fetch(context.Background())
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformed), "got %v", err)
		})
	}
}

func TestFetchEmptyResults(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `{"results": []}`)
	res, err := NewClient(srv.URL, 10, time.Second).Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Records)
}

func TestFetchTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, 10, time.Second).Fetch(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransport), "got %v", err)
}

func TestURL(t *testing.T) {
	tests := []struct {
		endpoint string
		limit    int
		want     string
	}{
		{"", 0, DefaultEndpoint + "?limit=1000"},
		{"https://example.com/drug/enforcement.json", 25, "https://example.com/drug/enforcement.json?limit=25"},
		{"https://example.com/e.json", 5000, "https://example.com/e.json?limit=1000"},
		{"https://example.com/e.json?api_key=abc", 10, "https://example.com/e.json?api_key=abc&limit=10"},
	}
	for _, tt := range tests {
		got, err := NewClient(tt.endpoint, tt.limit, time.Second).URL()
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input string
		n     int
		want  string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"this is a long string", 10, "this is a "},
		{"", 5, ""},
		{"こんにちは世界です", 5, "こんにちは"},
	}
	for _, tt := range tests {
		got := truncate(tt.input, tt.n)
		if got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.n, got, tt.want)
		}
	}
}

func TestYearOf(t *testing.T) {
	s := func(v string) *string { return &v }
	tests := []struct {
		input *string
		want  string
	}{
		{nil, recall.Unknown},
		{s(""), recall.Unknown},
		{s("202"), recall.Unknown},
		{s("2024"), "2024"},
		{s("20240117"), "2024"},
		{s("2024-01-17"), "2024"},
		{s("Jan 2024"), recall.Unknown},
	}
	for _, tt := range tests {
		got := yearOf(tt.input)
		if got != tt.want {
			in := "<nil>"
			if tt.input != nil {
				in = *tt.input
			}
			t.Errorf("yearOf(%q) = %q, want %q", in, got, tt.want)
		}
	}
}

func TestStatusErrorMessage(t *testing.T) {
	err := &StatusError{StatusCode: 429}
	if !strings.Contains(err.Error(), "Too Many Requests") {
		t.Errorf("unexpected message %q", err.Error())
	}
}
