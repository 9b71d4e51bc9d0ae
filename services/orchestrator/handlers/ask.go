// Copyright (C) 2026 Ritesh Bawaskar
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/riteshbawaskar/doc-classify/services/orchestrator/datatypes"
	"github.com/riteshbawaskar/doc-classify/services/orchestrator/services"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var askTracer = otel.Tracer("docclassify.orchestrator.handlers.ask")

// HandleAsk answers a question about the indexed documents.
//
// When no session ID is supplied a new one is minted and returned. Each
// turn is persisted to Weaviate asynchronously so the response is not held
// up by conversation bookkeeping.
func HandleAsk(svc *services.QAService, client *weaviate.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := askTracer.Start(c.Request.Context(), "HandleAsk")
		defer span.End()

		var req datatypes.AskRequest
		if err := c.BindJSON(&req); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		if strings.TrimSpace(req.Question) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Question must not be empty"})
			return
		}

		if req.SessionId == "" {
			req.SessionId = uuid.New().String()
			span.SetAttributes(attribute.String("session_id_new", req.SessionId))
			slog.Info("No SessionId provided, creating a new one", "sessionId", req.SessionId)
		}
		span.SetAttributes(
			attribute.String("session_id", req.SessionId),
			attribute.Int64("employee_id", req.EmployeeID),
		)

		resp, err := svc.Answer(ctx, &req)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Question answering failed", "sessionId", req.SessionId, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		resp.SessionId = req.SessionId

		if client != nil {
			convo := datatypes.Conversation{
				SessionId: req.SessionId,
				Question:  req.Question,
				Answer:    resp.Answer,
			}
			go func() {
				if err := convo.Save(client); err != nil {
					slog.Error("Failed to save conversation async", "session_id", convo.SessionId, "error", err)
				}
			}()
		}

		c.JSON(http.StatusOK, resp)
	}
}
