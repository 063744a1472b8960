package builds

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/buildscout/buildcat-backend/database"
	"github.com/buildscout/buildcat-backend/internal/services"
	"github.com/buildscout/buildcat-backend/model"
)

// testApp mounts the build handlers on an empty catalog. Paths that need
// database state are covered by the service tests.
func testApp(t *testing.T) *fiber.App {
	t.Helper()
	catalog := services.NewCatalogService(database.DBConnection{}, nil)

	app := fiber.New()
	app.Post("/builds", PostBuild(catalog))
	app.Get("/builds", GetBuilds(catalog))
	app.Get("/builds/search", SearchBuilds(catalog))
	app.Get("/builds/resolve", ResolveBuild(catalog))
	app.Get("/branches", GetBranches(catalog))
	app.Post("/queries/validate", ValidateQuery(catalog))
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, target, body string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request %s %s failed: %v", method, target, err)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}
	return resp, raw
}

func TestPostBuildValidation(t *testing.T) {
	app := testApp(t)

	cases := []struct {
		name string
		body string
	}{
		{name: "empty body", body: `{}`},
		{name: "missing branch", body: `{"version": "4.3.0", "commit_time": "2024-07-30T11:12:13Z"}`},
		{name: "missing commit time", body: `{"version": "4.3.0", "branch": "daily"}`},
		{name: "not json", body: `version=4.3.0`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, raw := doRequest(t, app, fiber.MethodPost, "/builds", tc.body)
			if resp.StatusCode != fiber.StatusBadRequest {
				t.Fatalf("Expected 400, got %d: %s", resp.StatusCode, raw)
			}

			var body map[string]any
			if err := json.Unmarshal(raw, &body); err != nil {
				t.Fatalf("Invalid JSON response: %v", err)
			}
			if success, _ := body["success"].(bool); success {
				t.Errorf("Expected success=false, got %s", raw)
			}
		})
	}
}

func TestGetBuildsEmptyCatalog(t *testing.T) {
	app := testApp(t)

	resp, raw := doRequest(t, app, fiber.MethodGet, "/builds", "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", resp.StatusCode, raw)
	}

	var body struct {
		Success bool          `json:"success"`
		Count   int           `json:"count"`
		Builds  []model.Build `json:"builds"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("Invalid JSON response: %v", err)
	}
	if !body.Success || body.Count != 0 || len(body.Builds) != 0 {
		t.Errorf("Expected empty catalog response, got %s", raw)
	}
}

func TestSearchBuilds(t *testing.T) {
	app := testApp(t)

	t.Run("missing query parameter", func(t *testing.T) {
		resp, _ := doRequest(t, app, fiber.MethodGet, "/builds/search", "")
		if resp.StatusCode != fiber.StatusBadRequest {
			t.Fatalf("Expected 400, got %d", resp.StatusCode)
		}
	})

	t.Run("malformed query", func(t *testing.T) {
		resp, raw := doRequest(t, app, fiber.MethodGet, "/builds/search?query=latest", "")
		if resp.StatusCode != fiber.StatusBadRequest {
			t.Fatalf("Expected 400, got %d: %s", resp.StatusCode, raw)
		}
	})

	t.Run("canonical form is echoed", func(t *testing.T) {
		resp, raw := doRequest(t, app, fiber.MethodGet, "/builds/search?query=4.3.*-daily", "")
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", resp.StatusCode, raw)
		}

		var body model.BuildSearchResponse
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Fatalf("Invalid JSON response: %v", err)
		}
		if body.Query != "4.3.*-daily@^" {
			t.Errorf("Expected canonical query 4.3.*-daily@^, got %q", body.Query)
		}
		if body.Count != 0 || len(body.Builds) != 0 {
			t.Errorf("Expected no matches on empty catalog, got %s", raw)
		}
	})
}

func TestResolveBuild(t *testing.T) {
	app := testApp(t)

	t.Run("missing query parameter", func(t *testing.T) {
		resp, _ := doRequest(t, app, fiber.MethodGet, "/builds/resolve", "")
		if resp.StatusCode != fiber.StatusBadRequest {
			t.Fatalf("Expected 400, got %d", resp.StatusCode)
		}
	})

	t.Run("no match is not found", func(t *testing.T) {
		resp, raw := doRequest(t, app, fiber.MethodGet, "/builds/resolve?query=%5E.%5E.%5E%40%5E", "")
		if resp.StatusCode != fiber.StatusNotFound {
			t.Fatalf("Expected 404, got %d: %s", resp.StatusCode, raw)
		}

		var body map[string]any
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Fatalf("Invalid JSON response: %v", err)
		}
		if msg, _ := body["message"].(string); !strings.Contains(msg, "^.^.^@^") {
			t.Errorf("Expected message naming the query, got %s", raw)
		}
	})
}

func TestGetBranchesEmptyCatalog(t *testing.T) {
	app := testApp(t)

	resp, raw := doRequest(t, app, fiber.MethodGet, "/branches", "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", resp.StatusCode, raw)
	}

	var body struct {
		Success  bool     `json:"success"`
		Branches []string `json:"branches"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("Invalid JSON response: %v", err)
	}
	if !body.Success || len(body.Branches) != 0 {
		t.Errorf("Expected no branches, got %s", raw)
	}
}

func TestValidateQuery(t *testing.T) {
	app := testApp(t)

	cases := []struct {
		name      string
		query     string
		valid     bool
		canonical string
	}{
		{name: "default form", query: "^.^.^@^", valid: true, canonical: "^.^.^@^"},
		{name: "expands commit time", query: "4.3.*-daily", valid: true, canonical: "4.3.*-daily@^"},
		{name: "raw commit time survives", query: "*.*.*@111:22", valid: true, canonical: "*.*.*@111:22"},
		{name: "malformed", query: "latest", valid: false},
		{name: "selector on branch", query: "*.*.*-^", valid: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			payload, _ := json.Marshal(model.QueryValidateRequest{Query: tc.query})
			resp, raw := doRequest(t, app, fiber.MethodPost, "/queries/validate", string(payload))
			if resp.StatusCode != fiber.StatusOK {
				t.Fatalf("Expected 200, got %d: %s", resp.StatusCode, raw)
			}

			var body model.QueryValidateResponse
			if err := json.Unmarshal(raw, &body); err != nil {
				t.Fatalf("Invalid JSON response: %v", err)
			}
			if body.Valid != tc.valid {
				t.Fatalf("Expected valid=%v for %q, got %s", tc.valid, tc.query, raw)
			}
			if tc.valid && body.Canonical != tc.canonical {
				t.Errorf("Expected canonical %q, got %q", tc.canonical, body.Canonical)
			}
			if !tc.valid && body.Error == "" {
				t.Errorf("Expected an error message for %q", tc.query)
			}
		})
	}
}
