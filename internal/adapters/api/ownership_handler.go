package api

import (
	"net/http"

	"log/slog"

	"cardbinder.app/internal/core/ownership"
	"cardbinder.app/pkg/errors"
	"github.com/gin-gonic/gin"
)

// CardOwnershipRequest represents the HTTP request for toggling one card
type CardOwnershipRequest struct {
	Owned     *bool  `json:"owned" binding:"required"`
	Quantity  int    `json:"quantity" binding:"min=0"`
	Condition string `json:"condition" binding:"omitempty,condition"`
	Notes     string `json:"notes" binding:"max=500"`
}

// BulkCard is one entry of a bulk ownership request
type BulkCard struct {
	ID        string `json:"id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"min=0"`
	Condition string `json:"condition" binding:"omitempty,condition"`
	Notes     string `json:"notes" binding:"max=500"`
}

// BulkOwnershipRequest represents the HTTP request for toggling many cards at once
type BulkOwnershipRequest struct {
	Owned *bool      `json:"owned" binding:"required"`
	Cards []BulkCard `json:"cards" binding:"required,min=1,max=1000,dive"`
}

// OwnershipResponse is one owned-set snapshot with its progress
type OwnershipResponse struct {
	Status  string          `json:"status"`
	CardIDs []string        `json:"cardIds"`
	Stats   ownership.Stats `json:"stats"`
}

// getOwnership handles GET /api/collections/:id/ownership requests
func (s *HTTPServerAdapter) getOwnership(c *gin.Context) {
	owned, stats, err := s.ownershipUseCase.Progress(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, OwnershipResponse{
		Status:  ownership.StatusReady.String(),
		CardIDs: owned.IDs(),
		Stats:   stats,
	})
}

// setOwnership handles PUT /api/collections/:id/cards/:cardID/ownership requests
func (s *HTTPServerAdapter) setOwnership(c *gin.Context) {
	var httpReq CardOwnershipRequest
	if err := c.ShouldBindJSON(&httpReq); err != nil {
		slog.Debug("Request binding error", "error", err)
		s.handleError(c, errors.NewValidationError("Invalid request format"))
		return
	}

	collectionID, cardID := c.Param("id"), c.Param("cardID")
	err := s.ownershipUseCase.SetOwnership(c.Request.Context(), ownership.SetOwnershipParams{
		UserID:       currentUser(c),
		CollectionID: collectionID,
		Card: ownership.CardRef{
			ID:        cardID,
			Quantity:  httpReq.Quantity,
			Condition: ownership.Condition(httpReq.Condition),
			Notes:     httpReq.Notes,
		},
		ShouldOwn: *httpReq.Owned,
	})
	if err != nil {
		slog.Error("Set ownership error", "error", err, "collection_id", collectionID, "card_id", cardID)
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Ownership updated"})
}

// bulkSetOwnership handles POST /api/collections/:id/ownership/bulk requests
func (s *HTTPServerAdapter) bulkSetOwnership(c *gin.Context) {
	var httpReq BulkOwnershipRequest
	if err := c.ShouldBindJSON(&httpReq); err != nil {
		slog.Debug("Request binding error", "error", err)
		s.handleError(c, errors.NewValidationError("Invalid request format"))
		return
	}

	cards := make([]ownership.CardRef, len(httpReq.Cards))
	for i, card := range httpReq.Cards {
		cards[i] = ownership.CardRef{
			ID:        card.ID,
			Quantity:  card.Quantity,
			Condition: ownership.Condition(card.Condition),
			Notes:     card.Notes,
		}
	}

	collectionID := c.Param("id")
	err := s.ownershipUseCase.BulkSetOwnership(c.Request.Context(), ownership.BulkSetOwnershipParams{
		UserID:       currentUser(c),
		CollectionID: collectionID,
		Cards:        cards,
		ShouldOwn:    *httpReq.Owned,
	})
	if err != nil {
		slog.Error("Bulk ownership error", "error", err, "collection_id", collectionID, "cards", len(cards))
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Ownership updated"})
}

// streamOwnership handles GET /api/collections/:id/ownership/stream requests.
// Every recomputed owned set is sent as an "ownership" event. A terminal
// failure is sent as an "error" event and ends the stream.
func (s *HTTPServerAdapter) streamOwnership(c *gin.Context) {
	ctx := c.Request.Context()
	userID, collectionID := currentUser(c), c.Param("id")

	col, err := s.collectionUseCase.Get(ctx, userID, collectionID)
	if err != nil {
		s.handleError(c, err)
		return
	}

	sub, err := s.ownershipUseCase.Subscribe(ctx, userID, collectionID)
	if err != nil {
		s.handleError(c, err)
		return
	}
	defer sub.Cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)

	c.SSEvent("ownership", OwnershipResponse{Status: ownership.StatusLoading.String(), CardIDs: []string{}})
	c.Writer.Flush()

	updates, failures := sub.Updates(), sub.Errors()
	for updates != nil || failures != nil {
		select {
		case <-ctx.Done():
			return
		case set, ok := <-updates:
			if !ok {
				updates = nil
				continue
			}
			c.SSEvent("ownership", OwnershipResponse{
				Status:  ownership.StatusReady.String(),
				CardIDs: set.IDs(),
				Stats:   ownership.ComputeStats(set.Len(), col.TotalCards),
			})
			c.Writer.Flush()
		case err, ok := <-failures:
			if !ok {
				failures = nil
				continue
			}
			slog.Warn("Ownership stream failed", "error", err, "collection_id", collectionID)
			_, message := errorStatus(err)
			c.SSEvent("error", ErrorResponse{Error: message, RequestID: c.GetString(contextRequestID)})
			c.Writer.Flush()
			return
		}
	}
}
