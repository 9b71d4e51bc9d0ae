// Copyright (C) 2026 Ritesh Bawaskar
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/riteshbawaskar/doc-classify/pkg/validation"
	"github.com/riteshbawaskar/doc-classify/services/store"
)

// employeeValidator checks identifier formats on manual edits.
var employeeValidator = validation.NewValidator()

const defaultListLimit = 100

func parseEmployeeID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid employee id"})
		return 0, false
	}
	return id, true
}

// ListEmployees returns employee records, newest first. Supports a ?limit=
// query parameter and lookup by ?aadhaar= or ?pan=.
func ListEmployees(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if aadhaar := c.Query("aadhaar"); aadhaar != "" {
			employees, err := st.FindByAadhaar(c.Request.Context(), aadhaar)
			if err != nil {
				slog.Error("Aadhaar lookup failed", "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"employees": employees})
			return
		}
		if pan := c.Query("pan"); pan != "" {
			employees, err := st.FindByPAN(c.Request.Context(), pan)
			if err != nil {
				slog.Error("PAN lookup failed", "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"employees": employees})
			return
		}

		limit := defaultListLimit
		if raw := c.Query("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
				return
			}
			limit = parsed
		}

		employees, err := st.List(c.Request.Context(), limit)
		if err != nil {
			slog.Error("Failed to list employees", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list employees"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"employees": employees})
	}
}

// GetEmployee returns a single employee record by ID.
func GetEmployee(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseEmployeeID(c)
		if !ok {
			return
		}

		employee, err := st.Get(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "employee not found"})
				return
			}
			slog.Error("Failed to get employee", "id", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get employee"})
			return
		}
		c.JSON(http.StatusOK, employee)
	}
}

// UpdateEmployee applies a manual correction to an employee record. Fields
// edited this way are stored with full confidence.
func UpdateEmployee(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseEmployeeID(c)
		if !ok {
			return
		}

		var req store.UpdateRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		if err := employeeValidator.Struct(&req); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) && len(verrs) > 0 {
				c.JSON(http.StatusBadRequest, gin.H{
					"error": "validation failed",
					"field": verrs[0].Field(),
					"rule":  verrs[0].Tag(),
				})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed"})
			return
		}

		if err := st.Update(c.Request.Context(), id, &req); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "employee not found"})
				return
			}
			slog.Error("Failed to update employee", "id", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update employee"})
			return
		}

		employee, err := st.Get(c.Request.Context(), id)
		if err != nil {
			slog.Error("Failed to reload employee after update", "id", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reload employee"})
			return
		}
		c.JSON(http.StatusOK, employee)
	}
}

// DeleteEmployee removes an employee record.
func DeleteEmployee(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseEmployeeID(c)
		if !ok {
			return
		}

		if err := st.Delete(c.Request.Context(), id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "employee not found"})
				return
			}
			slog.Error("Failed to delete employee", "id", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete employee"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "success", "deleted_id": id})
	}
}
