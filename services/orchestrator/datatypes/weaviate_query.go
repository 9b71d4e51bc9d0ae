// Copyright (C) 2026 Ritesh Bawaskar
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import (
	"encoding/json"
	"fmt"

	"github.com/weaviate/weaviate/entities/models"
)

// ParseGraphQLResponse parses a Weaviate GraphQL response into the target type.
//
// It encapsulates the marshal/unmarshal round trip required to convert
// Weaviate's dynamic response (map[string]models.JSONObject) into a
// strongly-typed struct. The target type T must have json tags matching the
// response shape; type mismatches yield zero values, not errors.
func ParseGraphQLResponse[T any](resp *models.GraphQLResponse) (*T, error) {
	if resp == nil {
		return nil, fmt.Errorf("nil GraphQL response")
	}

	respBytes, err := json.Marshal(resp.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal GraphQL response data: %w", err)
	}

	var result T
	if err := json.Unmarshal(respBytes, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal into target type: %w", err)
	}

	return &result, nil
}

// SessionQueryResponse represents the response from querying the Session class.
type SessionQueryResponse struct {
	Get struct {
		Session []SessionResult `json:"Session"`
	} `json:"Get"`
}

// SessionResult represents a single session from a query.
type SessionResult struct {
	SessionID  string `json:"session_id"`
	Summary    string `json:"summary"`
	Timestamp  int64  `json:"timestamp"`
	Additional struct {
		ID string `json:"id"`
	} `json:"_additional"`
}

// ConversationQueryResponse represents the response from querying the
// Conversation class.
type ConversationQueryResponse struct {
	Get struct {
		Conversation []ConversationResult `json:"Conversation"`
	} `json:"Get"`
}

// ConversationResult represents a single conversation turn from a query.
type ConversationResult struct {
	SessionID string `json:"session_id"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	Timestamp int64  `json:"timestamp"`
}

// DocumentQueryResponse represents the response from querying the Document class.
type DocumentQueryResponse struct {
	Get struct {
		Document []DocumentResult `json:"Document"`
	} `json:"Get"`
}

// DocumentResult represents a single document chunk from a query.
type DocumentResult struct {
	Content      string `json:"content"`
	Source       string `json:"source"`
	ParentSource string `json:"parent_source"`
	DocumentType string `json:"document_type"`
	EmployeeID   *int64 `json:"employee_id"`
	IngestedAt   int64  `json:"ingested_at"`
	Additional   struct {
		ID       string   `json:"id"`
		Distance *float32 `json:"distance"`
	} `json:"_additional"`
}

// ToMap converts SessionProperties to the map format Weaviate's
// WithProperties() method expects.
func (p *SessionProperties) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"session_id": p.SessionId,
		"summary":    p.Summary,
		"timestamp":  p.Timestamp,
	}
}

// ToMap converts ConversationProperties to the map format Weaviate's
// WithProperties() method expects.
func (p *ConversationProperties) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"session_id": p.SessionId,
		"question":   p.Question,
		"answer":     p.Answer,
		"timestamp":  p.Timestamp,
	}
}

// DocumentProperties represents the properties for creating a Document chunk.
type DocumentProperties struct {
	Content      string `json:"content"`
	Source       string `json:"source"`
	ParentSource string `json:"parent_source"`
	DocumentType string `json:"document_type"`
	EmployeeID   int64  `json:"employee_id"`
	IngestedAt   int64  `json:"ingested_at"`
}

// ToMap converts DocumentProperties to map[string]interface{} for Weaviate.
func (p *DocumentProperties) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"content":       p.Content,
		"source":        p.Source,
		"parent_source": p.ParentSource,
		"document_type": p.DocumentType,
		"employee_id":   p.EmployeeID,
		"ingested_at":   p.IngestedAt,
	}
}

// BeaconRef represents a Weaviate cross-reference beacon.
type BeaconRef struct {
	Beacon string `json:"beacon"`
}

// WithBeacon adds an inSession beacon reference to the properties map.
// "weaviate://localhost/" is the standard beacon URI scheme; localhost is a
// protocol identifier, not a real host.
func WithBeacon(props map[string]interface{}, sessionUUID string) {
	beacon := BeaconRef{
		Beacon: fmt.Sprintf("weaviate://localhost/Session/%s", sessionUUID),
	}
	props["inSession"] = []BeaconRef{beacon}
}
