package api

// Mock data served by the read endpoints. Values are fixed so repeated reads
// are byte-identical.
const (
	mockTimestamp      = "2023-09-15T10:30:00Z"
	mockEventType      = "order.created"
	mockEntityID       = "order123"
	mockRecordStatus   = "processed"
	defaultPatchStatus = "partially updated"
)

func mockSummaries() []WebhookSummary {
	return []WebhookSummary{
		{
			ID:        "webhook123",
			EventType: "order.created",
			EntityID:  "order123",
			Timestamp: "2023-09-15T10:30:00Z",
		},
		{
			ID:        "webhook124",
			EventType: "inventory.updated",
			EntityID:  "product456",
			Timestamp: "2023-09-15T10:35:00Z",
		},
	}
}

func mockRecord(id string) WebhookRecord {
	return WebhookRecord{
		ID:        id,
		EventType: mockEventType,
		EntityID:  mockEntityID,
		Timestamp: mockTimestamp,
		Data: map[string]any{
			"order_id":    "ORD-123",
			"customer_id": "CUST-456",
			"total":       99.99,
		},
		Status: mockRecordStatus,
	}
}
