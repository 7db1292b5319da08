package api

import "github.com/mattjoyce/sapwebhooks/internal/auth"

// buildOpenAPIDoc returns an OpenAPI 3.1 document for the webhook routes.
func buildOpenAPIDoc(authEnabled bool) map[string]any {
	security := []any{}
	if authEnabled {
		security = []any{map[string]any{"ApiKeyAuth": []string{}}}
	}

	op := func(id, summary, okStatus, okDesc string, body, record bool) map[string]any {
		responses := map[string]any{
			okStatus: map[string]any{"description": okDesc},
			"401":    map[string]any{"description": "Missing or invalid API key"},
			"500":    map[string]any{"description": "Internal server error"},
		}
		if record {
			responses[okStatus] = map[string]any{
				"description": okDesc,
				"content":     jsonContent(schemaRef("WebhookRecord")),
			}
		}
		operation := map[string]any{
			"operationId": id,
			"summary":     summary,
			"tags":        []string{"webhooks"},
			"responses":   responses,
			"security":    security,
		}
		if body {
			responses["413"] = map[string]any{"description": "Payload too large"}
			responses["422"] = map[string]any{"description": "Validation error"}
		}
		return operation
	}

	create := op("receive_webhook", "Receive a webhook", "202", "Webhook accepted", true, false)
	create["requestBody"] = map[string]any{"required": true, "content": jsonContent(schemaRef("WebhookPayload"))}

	list := op("list_webhooks", "List recent webhooks", "200", "Recent webhooks", false, false)
	list["responses"].(map[string]any)["200"] = map[string]any{
		"description": "Recent webhooks",
		"content": jsonContent(map[string]any{
			"type":  "array",
			"items": schemaRef("WebhookSummary"),
		}),
	}

	update := op("update_webhook", "Replace a webhook", "200", "Updated webhook", true, true)
	update["requestBody"] = map[string]any{"required": true, "content": jsonContent(schemaRef("WebhookPayload"))}

	patch := op("patch_webhook", "Partially update a webhook", "200", "Updated webhook", true, true)
	patch["requestBody"] = map[string]any{"required": true, "content": jsonContent(schemaRef("WebhookUpdate"))}

	idParam := []any{map[string]any{
		"name":     "webhook_id",
		"in":       "path",
		"required": true,
		"schema":   map[string]any{"type": "string"},
	}}

	item := map[string]any{
		"parameters": idParam,
		"get":        op("get_webhook", "Get a webhook", "200", "Webhook", false, true),
		"put":        update,
		"patch":      patch,
		"delete":     op("delete_webhook", "Delete a webhook", "204", "Deleted", false, false),
	}

	return map[string]any{
		"openapi": "3.1.0",
		"info": map[string]any{
			"title":       "SAP Webhooks API",
			"description": "API for receiving and processing SAP webhooks",
			"version":     "1.0.0",
		},
		"paths": map[string]any{
			"/api/webhooks/": map[string]any{
				"post": create,
				"get":  list,
			},
			"/api/webhooks/{webhook_id}": item,
		},
		"components": map[string]any{
			"securitySchemes": map[string]any{
				"ApiKeyAuth": map[string]any{
					"type": "apiKey",
					"in":   "header",
					"name": auth.HeaderAPIKey,
				},
			},
			"schemas": schemas(),
		},
	}
}

func schemaRef(name string) map[string]any {
	return map[string]any{"$ref": "#/components/schemas/" + name}
}

func jsonContent(schema map[string]any) map[string]any {
	return map[string]any{"application/json": map[string]any{"schema": schema}}
}

func schemas() map[string]any {
	str := map[string]any{"type": "string"}
	obj := map[string]any{"type": "object", "additionalProperties": true}
	return map[string]any{
		"WebhookPayload": map[string]any{
			"type":       "object",
			"required":   []string{"event_type", "entity_id", "data"},
			"properties": map[string]any{"event_type": str, "entity_id": str, "data": obj},
		},
		"WebhookUpdate": map[string]any{
			"type":       "object",
			"properties": map[string]any{"event_type": str, "data": obj},
		},
		"WebhookSummary": map[string]any{
			"type":     "object",
			"required": []string{"id", "event_type", "entity_id", "timestamp"},
			"properties": map[string]any{
				"id": str, "event_type": str, "entity_id": str,
				"timestamp": map[string]any{"type": "string", "format": "date-time"},
			},
		},
		"WebhookRecord": map[string]any{
			"type":     "object",
			"required": []string{"id", "event_type", "entity_id", "timestamp", "data"},
			"properties": map[string]any{
				"id": str, "event_type": str, "entity_id": str,
				"timestamp": map[string]any{"type": "string", "format": "date-time"},
				"data":      obj,
				"status":    str,
			},
		},
	}
}
