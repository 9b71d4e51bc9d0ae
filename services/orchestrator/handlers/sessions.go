// Copyright (C) 2026 Ritesh Bawaskar
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/riteshbawaskar/doc-classify/services/orchestrator/datatypes"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
)

func ListSessions(client *weaviate.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		slog.Info("Received request to list sessions")
		fields := []graphql.Field{
			{Name: "session_id"},
			{Name: "summary"},
			{Name: "timestamp"},
		}
		result, err := client.GraphQL().Get().
			WithClassName("Session").
			WithFields(fields...).
			Do(context.Background())
		if err != nil {
			slog.Error("failed to query Weaviate for sessions", "error", err)
			c.JSON(http.StatusInternalServerError,
				gin.H{"error": "failed to query Weaviate for sessions"})
			return
		}
		c.JSON(http.StatusOK, result.Data)
	}
}

// GetSessionHistory returns all conversation turns for a session, oldest
// first.
func GetSessionHistory(client *weaviate.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := c.Param("sessionId")
		slog.Info("Received request for session history", "sessionId", session)

		where := filters.Where().
			WithPath([]string{"session_id"}).
			WithOperator(filters.Equal).
			WithValueString(session)

		fields := []graphql.Field{
			{Name: "session_id"},
			{Name: "question"},
			{Name: "answer"},
			{Name: "timestamp"},
		}

		sort := graphql.Sort{Path: []string{"timestamp"}, Order: graphql.Asc}

		result, err := client.GraphQL().Get().
			WithClassName("Conversation").
			WithWhere(where).
			WithSort(sort).
			WithFields(fields...).
			Do(context.Background())
		if err != nil {
			slog.Error("failed to query Weaviate for session history", "sessionId", session, "error", err)
			c.JSON(http.StatusInternalServerError,
				gin.H{"error": "failed to query Weaviate for session history"})
			return
		}

		parsed, err := datatypes.ParseGraphQLResponse[datatypes.ConversationQueryResponse](result)
		if err != nil {
			slog.Error("failed to parse session history response", "sessionId", session, "error", err)
			c.JSON(http.StatusInternalServerError,
				gin.H{"error": "failed to parse session history"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"session_id": session,
			"turns":      parsed.Get.Conversation,
		})
	}
}

func DeleteSessions(client *weaviate.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := c.Param("sessionId")
		slog.Info("Received a request to delete a session", "sessionId", session)

		whereFilter := filters.Where().
			WithPath([]string{"session_id"}).
			WithOperator(filters.Equal).
			WithValueString(session)

		// Delete all Conversation objects for this session first, then the
		// Session object itself.
		response, err := client.Batch().ObjectsBatchDeleter().
			WithClassName("Conversation").
			WithOutput("minimal").
			WithWhere(whereFilter).
			Do(context.Background())
		if err != nil {
			slog.Error("failed to delete conversation objects from the Weaviate DB", "error", err)
		}

		_, err = client.Batch().ObjectsBatchDeleter().
			WithClassName("Session").
			WithOutput("minimal").
			WithWhere(whereFilter).
			Do(context.Background())
		if err != nil {
			slog.Error("failed to delete session object from the Weaviate DB", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fully delete session"})
			return
		}

		slog.Info("Successfully deleted all data for session", "sessionId", session, "response", &response.Output)
		c.JSON(http.StatusOK, gin.H{"status": "success", "deleted_session_id": session})
	}
}
