package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/UnknownOlympus/mapmarker/internal/models"
	"github.com/UnknownOlympus/mapmarker/internal/repository"
	"github.com/gin-gonic/gin"
)

// MarkerStore is the marker registry the handlers work on.
type MarkerStore interface {
	Create(ctx context.Context, fn func(marker *models.MapMarker) error) (string, error)
	View(ctx context.Context, id string, fn func(marker *models.MapMarker) error) error
	Update(ctx context.Context, id string, fn func(marker *models.MapMarker) error) error
	Delete(ctx context.Context, id string) error
}

// Resolver geocodes a marker.
type Resolver interface {
	Resolve(ctx context.Context, marker *models.MapMarker) models.Status
}

// MarkerHandler handles marker requests.
type MarkerHandler struct {
	store    MarkerStore
	resolver Resolver
	log      *slog.Logger
}

// MarkerView is the JSON representation of a marker.
type MarkerView struct {
	ID          string   `json:"id"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Street      string   `json:"street"`
	City        string   `json:"city"`
	PostalCode  string   `json:"postal_code"`
	AdminArea1  string   `json:"admin_area_1"`
	AdminArea2  string   `json:"admin_area_2"`
	AdminArea3  string   `json:"admin_area_3"`
	Status      int      `json:"status"`
	StatusLabel string   `json:"status_label"`
	Display     string   `json:"display"`
}

// StatusView is the JSON representation of a taxonomy entry.
type StatusView struct {
	Code  int    `json:"code"`
	Label string `json:"label"`
	Text  string `json:"text"`
}

var errEmptyBody = errors.New("request body is empty")

// NewMarkerHandler creates a new marker handler.
func NewMarkerHandler(store MarkerStore, resolver Resolver, log *slog.Logger) *MarkerHandler {
	return &MarkerHandler{store: store, resolver: resolver, log: log}
}

// Register mounts the marker routes on group.
func (h *MarkerHandler) Register(group *gin.RouterGroup) {
	group.GET("/statuses", h.Statuses)
	group.POST("/markers", h.Create)
	group.GET("/markers/:id", h.Get)
	group.PATCH("/markers/:id", h.Update)
	group.DELETE("/markers/:id", h.Delete)
	group.POST("/markers/:id/geocode", h.Geocode)
}

// Create handles POST /markers. The optional body is a map of field name to value.
func (h *MarkerHandler) Create(c *gin.Context) {
	fields, err := decodeFields(c)
	if err != nil && !errors.Is(err, errEmptyBody) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var view MarkerView
	id, err := h.store.Create(c.Request.Context(), func(marker *models.MapMarker) error {
		if errApply := applyFields(marker, fields); errApply != nil {
			return errApply
		}
		view = newMarkerView("", marker)
		return nil
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	view.ID = id
	c.JSON(http.StatusCreated, view)
}

// Get handles GET /markers/:id.
func (h *MarkerHandler) Get(c *gin.Context) {
	id := c.Param("id")

	var view MarkerView
	err := h.store.View(c.Request.Context(), id, func(marker *models.MapMarker) error {
		view = newMarkerView(id, marker)
		return nil
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// Update handles PATCH /markers/:id. Either every field is applied or none.
func (h *MarkerHandler) Update(c *gin.Context) {
	id := c.Param("id")

	fields, err := decodeFields(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var view MarkerView
	err = h.store.Update(c.Request.Context(), id, func(marker *models.MapMarker) error {
		if errApply := applyFields(marker, fields); errApply != nil {
			return errApply
		}
		view = newMarkerView(id, marker)
		return nil
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// Delete handles DELETE /markers/:id.
func (h *MarkerHandler) Delete(c *gin.Context) {
	if err := h.store.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Geocode handles POST /markers/:id/geocode. Geocoding problems are not HTTP errors:
// they are expressed in the returned marker status.
func (h *MarkerHandler) Geocode(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()

	var view MarkerView
	err := h.store.Update(ctx, id, func(marker *models.MapMarker) error {
		status := h.resolver.Resolve(ctx, marker)
		h.log.DebugContext(ctx, "Marker geocoded", "id", id, "status", status.Label())
		view = newMarkerView(id, marker)
		return nil
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// Statuses handles GET /statuses.
func (h *MarkerHandler) Statuses(c *gin.Context) {
	statuses := models.Statuses()
	views := make([]StatusView, 0, len(statuses))
	for _, status := range statuses {
		views = append(views, StatusView{Code: int(status), Label: status.Label(), Text: status.String()})
	}

	c.JSON(http.StatusOK, views)
}

func (h *MarkerHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrMarkerNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrUnknownField), errors.Is(err, models.ErrReadOnlyField):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.log.ErrorContext(c.Request.Context(), "Marker request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// decodeFields reads the body as a JSON object. Numbers are kept as json.Number
// so the marker validators see them unchanged.
func decodeFields(c *gin.Context) (map[string]any, error) {
	body, err := c.GetRawData()
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errEmptyBody
	}

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()

	var fields map[string]any
	if err = decoder.Decode(&fields); err != nil {
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}

	return fields, nil
}

func validateFields(fields map[string]any) error {
	for name := range fields {
		field := models.Field(name)
		if field == models.FieldStatusLabel {
			return fmt.Errorf("%w: %s", models.ErrReadOnlyField, name)
		}
		if !field.Writable() {
			return fmt.Errorf("%w: %s", models.ErrUnknownField, name)
		}
	}

	return nil
}

func applyFields(marker *models.MapMarker, fields map[string]any) error {
	if err := validateFields(fields); err != nil {
		return err
	}

	for name, raw := range fields {
		if err := marker.Set(models.Field(name), raw); err != nil {
			return err
		}
	}

	return nil
}

func newMarkerView(id string, marker *models.MapMarker) MarkerView {
	view := MarkerView{
		ID:          id,
		Street:      marker.Street(),
		City:        marker.City(),
		PostalCode:  marker.PostalCode(),
		AdminArea1:  marker.AdminArea1(),
		AdminArea2:  marker.AdminArea2(),
		AdminArea3:  marker.AdminArea3(),
		Status:      int(marker.Status()),
		StatusLabel: marker.StatusLabel(),
		Display:     marker.String(),
	}
	if lat, ok := marker.Latitude().Float64(); ok {
		view.Latitude = &lat
	}
	if lng, ok := marker.Longitude().Float64(); ok {
		view.Longitude = &lng
	}

	return view
}
