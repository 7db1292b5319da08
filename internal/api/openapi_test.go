package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestBuildOpenAPIDoc_Paths(t *testing.T) {
	doc := buildOpenAPIDoc(true)

	if doc["openapi"] != "3.1.0" {
		t.Errorf("expected openapi 3.1.0, got %v", doc["openapi"])
	}
	paths := doc["paths"].(map[string]any)
	if len(paths) != 2 {
		t.Fatalf("expected 2 paths, got %d", len(paths))
	}

	collection, ok := paths["/api/webhooks/"].(map[string]any)
	if !ok {
		t.Fatal("expected /api/webhooks/ path")
	}
	post := collection["post"].(map[string]any)
	if post["operationId"] != "receive_webhook" {
		t.Errorf("expected operationId receive_webhook, got %v", post["operationId"])
	}
	if _, ok := post["responses"].(map[string]any)["202"]; !ok {
		t.Error("expected 202 response on create")
	}

	item, ok := paths["/api/webhooks/{webhook_id}"].(map[string]any)
	if !ok {
		t.Fatal("expected /api/webhooks/{webhook_id} path")
	}
	for _, method := range []string{"get", "put", "patch", "delete"} {
		if _, ok := item[method]; !ok {
			t.Errorf("expected %s operation on item path", method)
		}
	}
	del := item["delete"].(map[string]any)
	if _, ok := del["responses"].(map[string]any)["204"]; !ok {
		t.Error("expected 204 response on delete")
	}
}

func TestBuildOpenAPIDoc_Security(t *testing.T) {
	secured := buildOpenAPIDoc(true)
	get := secured["paths"].(map[string]any)["/api/webhooks/"].(map[string]any)["get"].(map[string]any)
	if got := len(get["security"].([]any)); got != 1 {
		t.Errorf("expected 1 security requirement with auth enabled, got %d", got)
	}

	open := buildOpenAPIDoc(false)
	get = open["paths"].(map[string]any)["/api/webhooks/"].(map[string]any)["get"].(map[string]any)
	if got := len(get["security"].([]any)); got != 0 {
		t.Errorf("expected no security requirement with auth disabled, got %d", got)
	}

	scheme := open["components"].(map[string]any)["securitySchemes"].(map[string]any)["ApiKeyAuth"].(map[string]any)
	if scheme["name"] != "X-API-KEY" || scheme["in"] != "header" {
		t.Errorf("unexpected security scheme: %v", scheme)
	}
}

func TestBuildOpenAPIDoc_PayloadSchemaRequiresAllFields(t *testing.T) {
	doc := buildOpenAPIDoc(false)
	payload := doc["components"].(map[string]any)["schemas"].(map[string]any)["WebhookPayload"].(map[string]any)

	required := payload["required"].([]string)
	if len(required) != 3 {
		t.Fatalf("expected 3 required fields, got %v", required)
	}

	update := doc["components"].(map[string]any)["schemas"].(map[string]any)["WebhookUpdate"].(map[string]any)
	if _, ok := update["required"]; ok {
		t.Error("expected WebhookUpdate to have no required fields")
	}
}

func TestHandleDocs_ServesValidJSON(t *testing.T) {
	s := newTestServer(t, true, nil)
	req := httptest.NewRequest(http.MethodGet, "/docs", nil)
	rec := httptest.NewRecorder()

	s.setupRoutes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var doc map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("docs response is not JSON: %v", err)
	}
	if doc["openapi"] != "3.1.0" {
		t.Errorf("expected openapi 3.1.0, got %v", doc["openapi"])
	}
}
