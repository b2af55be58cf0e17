package integration

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/linesd/az-fda/internal/testutil"
	"github.com/linesd/az-fda/pkg/analysis"
	"github.com/linesd/az-fda/pkg/client"
	"github.com/linesd/az-fda/pkg/pagination"
	"github.com/linesd/az-fda/pkg/query"
	"github.com/linesd/az-fda/pkg/store"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedis creates a Redis container for integration testing.
func setupRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	cleanup := func() {
		redisClient.Close()
		container.Terminate(ctx)
	}

	return redisClient, cleanup
}

// testTransport sends requests for the public openFDA host to the mock server.
type testTransport struct {
	mockServer *testutil.MockFDA
}

func (t *testTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = "http"
	if req.URL.Host == "" || req.URL.Host == "api.fda.gov" {
		req.URL.Host = strings.TrimPrefix(t.mockServer.URL(), "http://")
	}
	return http.DefaultTransport.RoundTrip(req)
}

// labels builds n labels spread over three years with every third label lacking a route.
func labels(n int) []map[string]any {
	out := make([]map[string]any, 0, n)
	for i := 0; i < n; i++ {
		year := 2017 + i%3
		route := "ORAL"
		switch i % 3 {
		case 1:
			route = "TOPICAL"
		case 2:
			route = ""
		}
		ingredients := make([]string, 1+i%4)
		for j := range ingredients {
			ingredients[j] = fmt.Sprintf("ING%d", j)
		}
		out = append(out, testutil.NewLabel(fmt.Sprintf("%d0101", year), fmt.Sprintf("DRUG%03d", i), route, ingredients...))
	}
	return out
}

func newPipeline(t *testing.T, mock *testutil.MockFDA) (*analysis.Session, query.Query) {
	t.Helper()

	c, err := client.New(client.DefaultConfig("az-fda-integration/1.0 (integration@test.com)"))
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	c.SetHTTPClient(&http.Client{
		Transport: &testTransport{mockServer: mock},
		Timeout:   30 * time.Second,
	})

	fetcher, err := pagination.NewFetcher(c, pagination.DefaultConfig())
	if err != nil {
		t.Fatalf("Failed to create fetcher: %v", err)
	}

	q, err := query.ForManufacturer(query.DefaultBaseURL, "Acme Pharmaceuticals LP")
	if err != nil {
		t.Fatalf("Failed to build query: %v", err)
	}

	return analysis.NewSession(fetcher, q), q
}

// TestFullPipeline runs Count → Plan → Fetch → Extract → Aggregate → Reshape → Publish.
func TestFullPipeline(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockFDA(labels(250)...)
	defer mock.Close()

	session, q := newPipeline(t, mock)
	ctx := context.Background()

	res, matrix, err := session.Series(ctx, analysis.ByRoute)
	if err != nil {
		t.Fatalf("Series() failed: %v", err)
	}

	wantPages := []testutil.PageRequest{{Skip: 0, Limit: 99}, {Skip: 99, Limit: 99}, {Skip: 198, Limit: 52}}
	gotPages := mock.GetPageRequests()
	if fmt.Sprint(gotPages) != fmt.Sprint(wantPages) {
		t.Errorf("page requests = %v, want %v", gotPages, wantPages)
	}
	if mock.GetCountRequests() != 1 {
		t.Errorf("count requests = %d, want 1", mock.GetCountRequests())
	}

	// 3 years x {ORAL, TOPICAL, none}, but each year only sees one route.
	if len(res.Summaries) != 3 {
		t.Errorf("summaries = %d, want 3", len(res.Summaries))
	}
	if len(matrix.Years) != 3 || len(matrix.Series) != 3 {
		t.Errorf("matrix = %dx%d, want 3x3", len(matrix.Years), len(matrix.Series))
	}
	if v, ok := matrix.Value("2019", analysis.NoRoute); !ok || v == 0 {
		t.Errorf("2019/none = %v (%v), want non-zero", v, ok)
	}

	run, err := store.NewRun(q.URL(), res, matrix)
	if err != nil {
		t.Fatalf("NewRun() failed: %v", err)
	}

	before := promtestutil.ToFloat64(store.StoreWrites.WithLabelValues("redis", "ok"))

	rs := store.NewRedisStore(redisClient, time.Minute)
	if err := store.SaveAll(ctx, run, rs); err != nil {
		t.Fatalf("SaveAll() failed: %v", err)
	}

	after := promtestutil.ToFloat64(store.StoreWrites.WithLabelValues("redis", "ok"))
	if after-before != 1 {
		t.Errorf("redis ok writes delta = %v, want 1", after-before)
	}

	latest, err := rs.Latest(ctx, q.URL(), analysis.ByRoute)
	if err != nil {
		t.Fatalf("Latest() failed: %v", err)
	}
	if latest.ID != run.ID {
		t.Errorf("Latest().ID = %q, want %q", latest.ID, run.ID)
	}
	if len(latest.Result.Summaries) != len(res.Summaries) {
		t.Errorf("stored summaries = %d, want %d", len(latest.Result.Summaries), len(res.Summaries))
	}
}

// TestSessionReusesRows checks that a second analysis does not hit openFDA again.
func TestSessionReusesRows(t *testing.T) {
	mock := testutil.NewMockFDA(labels(120)...)
	defer mock.Close()

	session, _ := newPipeline(t, mock)
	ctx := context.Background()

	if _, err := session.Analysis(ctx, analysis.Generic); err != nil {
		t.Fatalf("Generic analysis failed: %v", err)
	}
	requests := mock.GetRequestCount()

	if _, err := session.Analysis(ctx, analysis.ByRoute); err != nil {
		t.Fatalf("Route analysis failed: %v", err)
	}
	if mock.GetRequestCount() != requests {
		t.Errorf("openFDA requests = %d after second analysis, want %d", mock.GetRequestCount(), requests)
	}
}

// TestFailedPageAbortsRun checks that a broken page yields no partial result.
func TestFailedPageAbortsRun(t *testing.T) {
	mock := testutil.NewMockFDA(labels(250)...)
	defer mock.Close()
	mock.FailPage(99, testutil.NewServerErrorResponse())

	session, _ := newPipeline(t, mock)

	res, err := session.Analysis(context.Background(), analysis.Generic)
	if err == nil {
		t.Fatal("expected error for failed page")
	}
	if res != nil {
		t.Errorf("result = %+v, want nil", res)
	}
	if !errors.Is(err, client.ErrMalformedResponse) {
		t.Errorf("error = %v, want ErrMalformedResponse", err)
	}

	// Pages after the failure are never requested.
	for _, p := range mock.GetPageRequests() {
		if p.Skip > 99 {
			t.Errorf("page %+v requested after failure", p)
		}
	}
}

// TestRedisTTL checks that published runs expire.
func TestRedisTTL(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	res := &analysis.Result{
		Kind:      analysis.Generic,
		Summaries: []analysis.Summary{{Year: "2020", DrugNames: []string{"ALPHA"}, AverageNumIngredients: 1}},
	}
	run, err := store.NewRun("q", res, nil)
	if err != nil {
		t.Fatalf("NewRun() failed: %v", err)
	}

	rs := store.NewRedisStore(redisClient, 2*time.Second)
	ctx := context.Background()
	if err := rs.Save(ctx, run); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	if _, err := rs.Get(ctx, run.ID); err != nil {
		t.Fatalf("Get() before expiry failed: %v", err)
	}

	time.Sleep(3 * time.Second)

	if _, err := rs.Get(ctx, run.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Get() after expiry error = %v, want ErrNotFound", err)
	}
}
