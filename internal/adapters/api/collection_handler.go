package api

import (
	"net/http"

	"log/slog"

	"cardbinder.app/internal/core/collection"
	"cardbinder.app/pkg/errors"
	"github.com/gin-gonic/gin"
)

// CreateCollectionRequest represents the HTTP request for creating a collection
type CreateCollectionRequest struct {
	Name         string `json:"name" binding:"required,max=100"`
	Game         string `json:"game" binding:"omitempty,oneof=pokemon"`
	Language     string `json:"language" binding:"omitempty,language"`
	SetID        string `json:"setId" binding:"required"`
	PrefillOwned bool   `json:"prefillOwned"`
}

// AddMemberRequest represents the HTTP request for sharing a collection
type AddMemberRequest struct {
	UserID string `json:"userId" binding:"required"`
	Role   string `json:"role" binding:"required,oneof=editor viewer"`
}

// CollectionsResponse wraps a collection listing
type CollectionsResponse struct {
	Collections []*collection.Collection `json:"collections"`
}

// SuccessResponse represents a successful HTTP response
type SuccessResponse struct {
	Message string `json:"message"`
}

// createCollection handles POST /api/collections requests
func (s *HTTPServerAdapter) createCollection(c *gin.Context) {
	var httpReq CreateCollectionRequest
	if err := c.ShouldBindJSON(&httpReq); err != nil {
		slog.Debug("Request binding error", "error", err)
		s.handleError(c, errors.NewValidationError("Invalid request format"))
		return
	}

	col, err := s.collectionUseCase.Create(c.Request.Context(), collection.CreateParams{
		OwnerID:      currentUser(c),
		Name:         httpReq.Name,
		Game:         httpReq.Game,
		Language:     httpReq.Language,
		SetID:        httpReq.SetID,
		PrefillOwned: httpReq.PrefillOwned,
	})
	if err != nil {
		slog.Error("Create collection error", "error", err, "set_id", httpReq.SetID)
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, col)
}

// listCollections handles GET /api/collections requests
func (s *HTTPServerAdapter) listCollections(c *gin.Context) {
	collections, err := s.collectionUseCase.ListForUser(c.Request.Context(), currentUser(c))
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, CollectionsResponse{Collections: collections})
}

// getCollection handles GET /api/collections/:id requests
func (s *HTTPServerAdapter) getCollection(c *gin.Context) {
	col, err := s.collectionUseCase.Get(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, col)
}

// deleteCollection handles DELETE /api/collections/:id requests
func (s *HTTPServerAdapter) deleteCollection(c *gin.Context) {
	collectionID := c.Param("id")
	if err := s.collectionUseCase.Delete(c.Request.Context(), currentUser(c), collectionID); err != nil {
		slog.Error("Delete collection error", "error", err, "collection_id", collectionID)
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Collection deleted"})
}

// addMember handles POST /api/collections/:id/members requests
func (s *HTTPServerAdapter) addMember(c *gin.Context) {
	var httpReq AddMemberRequest
	if err := c.ShouldBindJSON(&httpReq); err != nil {
		slog.Debug("Request binding error", "error", err)
		s.handleError(c, errors.NewValidationError("Invalid request format"))
		return
	}

	collectionID := c.Param("id")
	err := s.collectionUseCase.AddMember(c.Request.Context(), currentUser(c), collectionID, httpReq.UserID, collection.Role(httpReq.Role))
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Member added"})
}

// removeMember handles DELETE /api/collections/:id/members/:userID requests
func (s *HTTPServerAdapter) removeMember(c *gin.Context) {
	err := s.collectionUseCase.RemoveMember(c.Request.Context(), currentUser(c), c.Param("id"), c.Param("userID"))
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Member removed"})
}
