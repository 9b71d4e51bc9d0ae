// Copyright (C) 2026 Ritesh Bawaskar
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

// AskRequest is the payload for the question-answering endpoint.
//
// SessionId is optional; when empty a new session is created and its ID is
// returned in the response. EmployeeID optionally scopes retrieval to the
// documents of a single employee record.
type AskRequest struct {
	Question   string `json:"question"`
	SessionId  string `json:"session_id,omitempty"`
	EmployeeID int64  `json:"employee_id,omitempty"`
}

// SourceInfo identifies a retrieved chunk that contributed to an answer.
type SourceInfo struct {
	Source       string  `json:"source"`
	ParentSource string  `json:"parent_source,omitempty"`
	DocumentType string  `json:"document_type,omitempty"`
	Distance     float32 `json:"distance,omitempty"`
}

// AskResponse is returned by the question-answering endpoint.
type AskResponse struct {
	Answer    string       `json:"answer"`
	SessionId string       `json:"session_id"`
	Sources   []SourceInfo `json:"sources,omitempty"`
}

// RetrievedChunk is a document chunk returned by vector search, carrying
// enough metadata to build both the generation context and the source list.
type RetrievedChunk struct {
	Content      string
	Source       string
	ParentSource string
	DocumentType string
	Distance     float32
}

// SessionProperties are the fields stored on a Session object.
type SessionProperties struct {
	SessionId string
	Summary   string
	Timestamp int64
}

// ConversationProperties are the fields stored on a Conversation object.
type ConversationProperties struct {
	SessionId string
	Question  string
	Answer    string
	Timestamp int64
}
