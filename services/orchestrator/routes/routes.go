// Copyright (C) 2026 Ritesh Bawaskar
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/riteshbawaskar/doc-classify/services/llm"
	"github.com/riteshbawaskar/doc-classify/services/orchestrator/handlers"
	"github.com/riteshbawaskar/doc-classify/services/orchestrator/middleware"
	"github.com/riteshbawaskar/doc-classify/services/orchestrator/services"
	"github.com/riteshbawaskar/doc-classify/services/pipeline"
	"github.com/riteshbawaskar/doc-classify/services/store"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
)

// Deps bundles everything the route tree needs. QAService and the Weaviate
// client may be nil when the service runs in lightweight mode (classification
// and employee CRUD only).
type Deps struct {
	WeaviateClient *weaviate.Client
	Embedder       llm.Embedder
	Classifier     *pipeline.Classifier
	Store          *store.Store
	QAService      *services.QAService
	APIKey         string
}

func SetupRoutes(router *gin.Engine, deps Deps) {
	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/v1")
	v1.Use(middleware.APIKeyAuth(deps.APIKey))
	{
		v1.POST("/classify", handlers.HandleClassifyUpload(deps.Classifier, deps.WeaviateClient, deps.Embedder))
		v1.POST("/classify/path", handlers.HandleClassifyPath(deps.Classifier, deps.WeaviateClient, deps.Embedder))

		// Employee record administration
		employees := v1.Group("/employees")
		{
			employees.GET("", handlers.ListEmployees(deps.Store))
			employees.GET("/:id", handlers.GetEmployee(deps.Store))
			employees.PATCH("/:id", handlers.UpdateEmployee(deps.Store))
			employees.DELETE("/:id", handlers.DeleteEmployee(deps.Store))
		}

		// Vector store routes need a live Weaviate connection.
		if deps.WeaviateClient != nil {
			v1.POST("/documents", handlers.CreateDocument(deps.WeaviateClient, deps.Embedder))
			v1.GET("/documents", handlers.ListDocuments(deps.WeaviateClient))
			v1.DELETE("/document", handlers.DeleteBySource(deps.WeaviateClient))

			sessions := v1.Group("/sessions")
			{
				sessions.GET("", handlers.ListSessions(deps.WeaviateClient))
				sessions.GET("/:sessionId/history", handlers.GetSessionHistory(deps.WeaviateClient))
				sessions.DELETE("/:sessionId", handlers.DeleteSessions(deps.WeaviateClient))
			}

			weaviateAdmin := v1.Group("/weaviate")
			{
				weaviateAdmin.POST("/backups", handlers.HandleBackup(deps.WeaviateClient))
				weaviateAdmin.GET("/summary", handlers.GetSummary(deps.WeaviateClient))
				weaviateAdmin.DELETE("/data", handlers.DeleteAll(deps.WeaviateClient))
			}
		}

		if deps.QAService != nil {
			v1.POST("/ask", handlers.HandleAsk(deps.QAService, deps.WeaviateClient))
		}
	}
}
