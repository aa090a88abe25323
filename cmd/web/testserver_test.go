package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	url2 "net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/ruliana/technoir-transmission-generator/internal/errors"
	"github.com/ruliana/technoir-transmission-generator/internal/genai"
	"github.com/ruliana/technoir-transmission-generator/internal/logging"
	"github.com/ruliana/technoir-transmission-generator/internal/models"
	"github.com/ruliana/technoir-transmission-generator/internal/pipeline"
	"github.com/ruliana/technoir-transmission-generator/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

// waitForReady calls the specified endpoint until it gets a HTTP 200 Success
// response or until the context is cancelled or the 1-second timeout is reached.
func waitForReady(ctx context.Context, endpoint string) error {
	timeout := 1 * time.Second
	client := http.Client{}
	startTime := time.Now()
	var (
		err  error
		req  *http.Request
		resp *http.Response
	)
	for {
		if req, err = http.NewRequestWithContext(
			ctx,
			http.MethodGet,
			endpoint,
			nil,
		); err != nil {
			return errors.Wrap(err, "create request")
		}

		if resp, err = client.Do(req); err == nil {
			if resp.StatusCode == http.StatusOK {
				if err = resp.Body.Close(); err != nil {
					return errors.Wrap(err, "close response body")
				}
				return nil
			}
			if err = resp.Body.Close(); err != nil {
				return errors.Wrap(err, "close response body")
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			if time.Since(startTime) >= timeout {
				return errors.New("timeout waiting for endpoint to be ready")
			}
			time.Sleep(250 * time.Millisecond)
		}
	}
}

// newTestLookupEnv backs the server with an in-memory database and a
// throwaway credential file.
func newTestLookupEnv(t *testing.T, extra map[string]string) func(string) (string, bool) {
	t.Helper()
	env := map[string]string{
		"TECHNOIR_ADDR":            "localhost:0",
		"TECHNOIR_SQLITE_URL":      ":memory:",
		"TECHNOIR_CREDENTIAL_PATH": filepath.Join(t.TempDir(), "api_key"),
	}
	for key, value := range extra {
		env[key] = value
	}
	return func(key string) (string, bool) {
		value, ok := env[key]
		return value, ok
	}
}

// script wires a MockGenerator that recognizes each stage by its prompt
// preamble.
type script struct{}

func rosterJSON() string {
	var leads []map[string]string
	for i := range models.LeadCount {
		leads = append(leads, map[string]string{
			"id":          fmt.Sprintf("lead-%d", i),
			"name":        fmt.Sprintf("Lead %d", i),
			"description": "One sentence.",
			"category":    string(models.Categories[i%len(models.Categories)]),
		})
	}
	payload, _ := json.Marshal(map[string]any{"leads": leads})
	return string(payload)
}

func (s *script) generator() *genai.MockGenerator {
	return &genai.MockGenerator{
		TextFn: func(req genai.TextRequest) (string, error) {
			switch {
			case strings.Contains(req.Prompt, "Create the frame"):
				return `{"title":"Dead Channel","settingSummary":"A drowned city runs on salvage."}`, nil
			case strings.Contains(req.Prompt, "Write the exposition"):
				return `{"technology":"t","society":"s","environment":"e"}`, nil
			case strings.Contains(req.Prompt, "Create the lead roster"):
				return rosterJSON(), nil
			case strings.Contains(req.Prompt, "Write the dossier"):
				return `{"sensory":{"sight":"si","sound":"so","smell":"sm","vibe":"v"},"expandedDescription":"long"}`, nil
			case strings.Contains(req.Prompt, "Existing"):
				return `{"smell":"burnt copper"}`, nil
			}
			return "", fmt.Errorf("unexpected prompt: %s", req.Prompt)
		},
		ImageFn: func(genai.ImageRequest) (string, error) {
			return "data:image/png;base64,IMG", nil
		},
	}
}

func withScriptedGenerator(s *script) func(*application) {
	return func(app *application) {
		app.newOrchestrator = func() (*pipeline.Orchestrator, error) {
			return pipeline.New(s.generator(), testhelpers.NewLogger(io.Discard),
				pipeline.WithLimiter(rate.NewLimiter(rate.Inf, 1))), nil
		}
	}
}

type testServer struct {
	url    string
	client http.Client
}

// startTestServer starts the test server, waits for it to be ready, and
// returns a client-side handle for testing.
func startTestServer(
	t *testing.T, lookupEnv func(string) (string, bool), overrides ...func(*application),
) testServer {
	t.Helper()
	t.Setenv("GENAI_API_KEY", "")
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	// We need to grab the dynamically allocated port from the log output.
	addrCh := make(chan string, 1)
	logger := slog.New(logging.NewContextHandler(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		AddSource: false,
		Level:     slog.LevelDebug,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == "addr" {
				addrCh <- a.Value.String()
			}
			return a
		},
	})))

	// Start the server and wait for it to be ready.
	go func() {
		if err := run(ctx, logger, lookupEnv, overrides...); err != nil {
			cancel()
			assert.NoError(t, err)
		}
	}()
	select {
	case <-ctx.Done():
		t.Fatal("server failed to start")
		return testServer{}
	case addr := <-addrCh:
		// swap 127.0.0.1 with localhost to make secure cookies work in the jar
		port := strings.Split(addr, ":")[1]
		serverURL := fmt.Sprintf("http://localhost:%s", port)
		if err := waitForReady(ctx, fmt.Sprintf("%s/api/healthy", serverURL)); err != nil {
			require.NoError(t, err)
		}
		jar, err := newUnsafeCookieJar()
		require.NoError(t, err)
		return testServer{
			url:    serverURL,
			client: http.Client{Jar: jar},
		}
	}
}

// Get fetches a URL and returns the response.
func (s *testServer) Get(t *testing.T, urlPath string) *http.Response {
	t.Helper()
	resp, err := s.client.Get(s.url + urlPath)
	require.NoError(t, err)
	return resp
}

// GetDoc fetches a URL and returns a goquery document.
func (s *testServer) GetDoc(t *testing.T, urlPath string) *goquery.Document {
	t.Helper()
	resp := s.Get(t, urlPath)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	defer func() {
		err := resp.Body.Close()
		require.NoError(t, err)
	}()
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	require.NoError(t, err)
	return doc
}

// SubmitForm posts the form with the given action found on formURLPath,
// merging in the given values, and returns the final response after
// redirects.
func (s *testServer) SubmitForm(t *testing.T, formURLPath, action string, values url2.Values) *http.Response {
	t.Helper()
	doc := s.GetDoc(t, formURLPath)

	formSelector := fmt.Sprintf("form[action='%s']", action)
	form := doc.Find(formSelector).First()
	require.Equal(t, 1, form.Length(), "form %s not found on %s", formSelector, formURLPath)
	csrfToken, ok := form.Find("input[name=csrf_token]").Attr("value")
	require.True(t, ok, "csrf_token not found in form %s", formSelector)

	formData := url2.Values{}
	for key, vals := range values {
		formData[key] = vals
	}
	formData.Set("csrf_token", csrfToken)

	resp, err := s.client.PostForm(s.url+action, formData)
	require.NoError(t, err)
	return resp
}

// SubmitFormDoc is SubmitForm plus parsing the final page.
func (s *testServer) SubmitFormDoc(t *testing.T, formURLPath, action string, values url2.Values) *goquery.Document {
	t.Helper()
	resp := s.SubmitForm(t, formURLPath, action, values)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	defer func() {
		err := resp.Body.Close()
		require.NoError(t, err)
	}()
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	require.NoError(t, err)
	return doc
}

// sseEvent is one parsed Server Sent Event.
type sseEvent struct {
	name string
	data string
}

// readSSE consumes the whole event stream; the progress endpoint terminates
// it once the run ends.
func (s *testServer) readSSE(t *testing.T, urlPath string) []sseEvent {
	t.Helper()
	resp := s.Get(t, urlPath)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	var events []sseEvent
	var current sseEvent
	for _, line := range strings.Split(string(body), "\n") {
		switch {
		case strings.HasPrefix(line, "event: "):
			current.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			current.data = strings.TrimPrefix(line, "data: ")
		case line == "" && current.name != "":
			events = append(events, current)
			current = sseEvent{}
		}
	}
	return events
}

// storeKey walks through the key settings form like a user would.
func (s *testServer) storeKey(t *testing.T, key string) {
	t.Helper()
	doc := s.SubmitFormDoc(t, "/settings/key", "/settings/key", url2.Values{"key": {key}})
	require.Contains(t, doc.Find("body").Text(), "A key is stored")
}
