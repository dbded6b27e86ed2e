package restapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"otpviewer.org/internal/app"
	"otpviewer.org/internal/appconf"
	"otpviewer.org/internal/clock"
	"otpviewer.org/internal/logging"
	"otpviewer.org/internal/metrics"
	"otpviewer.org/internal/models"
	"otpviewer.org/internal/otp"
	"otpviewer.org/internal/realtime"
	"otpviewer.org/internal/store"
	"otpviewer.org/internal/transitindex"
)

const testAPIKey = "TEST"

// testNow is 2024-05-01 10:00 in Los Angeles.
var testNow = time.Date(2024, 5, 1, 17, 0, 0, 0, time.UTC)

var operationRegex = regexp.MustCompile(`^query (\w+)\(`)

type otpRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// fakeOTP answers GraphQL queries with canned data keyed by operation:
// the query name, or "routes", "serviceTimeRange" and "ping" for the
// anonymous queries.
type fakeOTP struct {
	mu        sync.Mutex
	responses map[string]string
	status    int
	requests  []otpRequest
}

func operationOf(query string) string {
	q := strings.TrimSpace(query)
	if m := operationRegex.FindStringSubmatch(q); m != nil {
		return m[1]
	}
	switch {
	case strings.Contains(q, "__typename"):
		return "ping"
	case strings.Contains(q, "serviceTimeRange"):
		return "serviceTimeRange"
	default:
		return "routes"
	}
}

func (f *fakeOTP) set(operation, data string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[operation] = data
}

func (f *fakeOTP) requestsFor(operation string) []otpRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []otpRequest
	for _, req := range f.requests {
		if operationOf(req.Query) == operation {
			out = append(out, req)
		}
	}
	return out
}

func (f *fakeOTP) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	f.requests = append(f.requests, req)
	status := f.status
	data, ok := f.responses[operationOf(req.Query)]
	f.mu.Unlock()

	if status != 0 {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if !ok {
		data = `{}`
	}
	_, _ = io.WriteString(w, `{"data":`+data+`}`)
}

func newFakeOTP(t *testing.T) (*fakeOTP, *httptest.Server) {
	t.Helper()
	fake := &fakeOTP{responses: map[string]string{"ping": `{"__typename":"QueryType"}`}}
	for op, data := range defaultOTPResponses {
		fake.responses[op] = data
	}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)
	return fake, server
}

type testEnv struct {
	api   *RestAPI
	otp   *fakeOTP
	clock *clock.MockClock
}

// createTestApi builds a RestAPI wired to a fake OTP server, an in-memory
// favorites store and a mock clock.
func createTestApi(t *testing.T) *RestAPI {
	return createTestEnv(t).api
}

func createTestEnv(t *testing.T) *testEnv {
	t.Helper()
	fake, server := newFakeOTP(t)
	mockClock := clock.NewMockClock(testNow)
	logger := logging.NewLogger(io.Discard, 0, false)
	m := metrics.NewWithLogger(logger)

	client, err := otp.NewClient(otp.Config{BaseURL: server.URL, Timeout: 5 * time.Second}, m)
	require.NoError(t, err)

	viewerCfg := appconf.DefaultViewerConfig()
	viewerCfg.StopViewer.ShowBlockIds = true

	favorites, err := store.Open(context.Background(), store.Config{
		DBPath: ":memory:",
		Env:    appconf.Test,
		Clock:  mockClock,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = favorites.Close() })

	application := &app.Application{
		Config: appconf.Config{
			Env:       appconf.Test,
			ApiKeys:   []string{testAPIKey, "OTHER"},
			RateLimit: 100,
		},
		ViewerConfig: viewerCfg,
		Logger:       logger,
		Clock:        mockClock,
		Metrics:      m,
		OTP:          client,
		Index: transitindex.New(client, transitindex.Config{
			Viewer: viewerCfg,
			Clock:  mockClock,
		}, m),
		Poller: realtime.NewPoller(client, realtime.Config{
			Clock:    mockClock,
			Logger:   logger,
			Observer: m,
		}),
		Store: favorites,
	}

	api := NewRestAPI(application)
	t.Cleanup(api.Shutdown)
	return &testEnv{api: api, otp: fake, clock: mockClock}
}

func serveApi(t *testing.T, api *RestAPI) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	api.SetRoutes(mux)
	server := httptest.NewServer(api.Handler(mux))
	t.Cleanup(server.Close)
	return server
}

func doRequest(t *testing.T, api *RestAPI, method, endpoint, body string) (*http.Response, models.ResponseModel) {
	t.Helper()
	server := serveApi(t, api)

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, server.URL+endpoint, reader)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var model models.ResponseModel
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &model), string(raw))
	}
	return resp, model
}

func serveApiAndRetrieveEndpoint(t *testing.T, api *RestAPI, endpoint string) (*http.Response, models.ResponseModel) {
	t.Helper()
	return doRequest(t, api, http.MethodGet, endpoint, "")
}

func serveAndRetrieveEndpoint(t *testing.T, endpoint string) (*RestAPI, *http.Response, models.ResponseModel) {
	t.Helper()
	api := createTestApi(t)
	resp, model := serveApiAndRetrieveEndpoint(t, api, endpoint)
	return api, resp, model
}

func entryOf(t *testing.T, model models.ResponseModel) map[string]any {
	t.Helper()
	data, ok := model.Data.(map[string]any)
	require.True(t, ok, "data is %T", model.Data)
	entry, ok := data["entry"].(map[string]any)
	require.True(t, ok, "entry is %T", data["entry"])
	return entry
}

func listOf(t *testing.T, model models.ResponseModel) []any {
	t.Helper()
	data, ok := model.Data.(map[string]any)
	require.True(t, ok, "data is %T", model.Data)
	list, ok := data["list"].([]any)
	require.True(t, ok, "list is %T", data["list"])
	return list
}

func idsOf(t *testing.T, list []any, key string) []string {
	t.Helper()
	ids := make([]string, 0, len(list))
	for i, item := range list {
		object, ok := item.(map[string]any)
		require.True(t, ok, "item %d is %T", i, item)
		id, ok := object[key].(string)
		require.True(t, ok, "item %d key %q is %T", i, key, object[key])
		ids = append(ids, id)
	}
	return ids
}
