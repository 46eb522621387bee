package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"portfolio-backend/internal/model"
)

const defaultContactLimit = 10

// DocumentStore is the document database the contact and diagnostics
// endpoints depend on. A nil DocumentStore means no database is configured.
type DocumentStore interface {
	CreateDocument(ctx context.Context, collection string, data any) (string, error)
	GetDocuments(ctx context.Context, collection string, filter any, limit int64) ([]bson.M, error)
	Name() string
	CollectionNames(ctx context.Context) ([]string, error)
}

// ContactHandler serves contact-form submission and listing.
type ContactHandler struct {
	store  DocumentStore
	logger *slog.Logger
	now    func() time.Time
}

// NewContactHandler creates a ContactHandler. store may be nil.
func NewContactHandler(store DocumentStore, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{
		store:  store,
		logger: logger.With("component", "contact_handler"),
		now:    time.Now,
	}
}

type createContactResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

type listContactResponse struct {
	Items []map[string]any `json:"items"`
}

// Create validates and stores a contact message.
func (h *ContactHandler) Create(c echo.Context) error {
	msg := model.NewContactMessage()
	if err := (&echo.DefaultBinder{}).BindBody(c, msg); err != nil {
		return detail(c, http.StatusUnprocessableEntity, "Invalid request body")
	}
	if err := msg.Validate(); err != nil {
		return detail(c, http.StatusUnprocessableEntity, err.Error())
	}

	if h.store == nil {
		return detail(c, http.StatusInternalServerError, "Database not configured")
	}

	msg.ReceivedAt = h.now().UTC()
	id, err := h.store.CreateDocument(c.Request().Context(), model.ContactCollection, msg)
	if err != nil {
		h.logger.Error("store contact message", "err", err)
		return detail(c, http.StatusInternalServerError, err.Error())
	}

	h.logger.Info("contact message stored", "id", id, "source", msg.Source)
	return c.JSON(http.StatusOK, createContactResponse{Success: true, ID: id})
}

// List returns the most recent stored contact messages, up to ?limit (default 10).
func (h *ContactHandler) List(c echo.Context) error {
	limit := int64(defaultContactLimit)
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			return detail(c, http.StatusUnprocessableEntity, "limit must be a non-negative integer")
		}
		limit = n
	}

	if h.store == nil {
		return detail(c, http.StatusInternalServerError, "Database not configured")
	}

	docs, err := h.store.GetDocuments(c.Request().Context(), model.ContactCollection, bson.D{}, limit)
	if err != nil {
		h.logger.Error("list contact messages", "err", err)
		return detail(c, http.StatusInternalServerError, err.Error())
	}

	items := make([]map[string]any, 0, len(docs))
	for _, d := range docs {
		items = append(items, serializeDocument(d))
	}
	return c.JSON(http.StatusOK, listContactResponse{Items: items})
}

// serializeDocument renders ObjectIDs as hex strings and timestamps as RFC 3339
// UTC strings. Nested documents are left as they are.
func serializeDocument(doc bson.M) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		switch val := v.(type) {
		case primitive.ObjectID:
			out[k] = val.Hex()
		case primitive.DateTime:
			out[k] = val.Time().UTC().Format(time.RFC3339Nano)
		case time.Time:
			out[k] = val.UTC().Format(time.RFC3339Nano)
		default:
			out[k] = v
		}
	}
	return out
}
