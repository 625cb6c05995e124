package api

import (
	"net/http"

	"log/slog"

	"cardbinder.app/internal/core/catalog"
	"cardbinder.app/pkg/errors"
	"github.com/gin-gonic/gin"
)

// LanguageQuery selects the catalog language; empty means the configured default
type LanguageQuery struct {
	Lang string `form:"lang" binding:"omitempty,language"`
}

// CardSearchQuery represents the query string of GET /api/cards
type CardSearchQuery struct {
	Lang     string `form:"lang" binding:"omitempty,language"`
	Name     string `form:"name" binding:"max=100"`
	Rarity   string `form:"rarity" binding:"max=50"`
	Type     string `form:"type" binding:"max=30"`
	Set      string `form:"set" binding:"omitempty,max=128"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"pageSize" binding:"min=0,max=250"`
}

// RandomCardsQuery represents the query string of GET /api/cards/random
type RandomCardsQuery struct {
	Lang  string `form:"lang" binding:"omitempty,language"`
	Count int    `form:"count,default=1" binding:"min=1"`
}

// SetsResponse wraps a set listing
type SetsResponse struct {
	Sets []catalog.Set `json:"sets"`
}

// CardsResponse wraps a card listing
type CardsResponse struct {
	Cards []catalog.Card `json:"cards"`
	Count int            `json:"count"`
}

// listSets handles GET /api/sets requests
func (s *HTTPServerAdapter) listSets(c *gin.Context) {
	var query LanguageQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		s.handleError(c, errors.NewValidationError("unsupported language"))
		return
	}

	sets, err := s.catalogUseCase.ListSets(c.Request.Context(), query.Lang)
	if err != nil {
		slog.Error("List sets error", "error", err, "lang", query.Lang)
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, SetsResponse{Sets: sets})
}

// getSet handles GET /api/sets/:setID requests
func (s *HTTPServerAdapter) getSet(c *gin.Context) {
	var query LanguageQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		s.handleError(c, errors.NewValidationError("unsupported language"))
		return
	}
	setID := c.Param("setID")

	set, err := s.catalogUseCase.GetSet(c.Request.Context(), query.Lang, setID)
	if err != nil {
		slog.Error("Get set error", "error", err, "set_id", setID, "lang", query.Lang)
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, set)
}

// searchCards handles GET /api/cards requests
func (s *HTTPServerAdapter) searchCards(c *gin.Context) {
	var query CardSearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		slog.Debug("Card search binding error", "error", err)
		s.handleError(c, errors.NewValidationError("Invalid card search"))
		return
	}

	cards, err := s.catalogUseCase.SearchCards(c.Request.Context(), query.Lang, catalog.SearchParams{
		Name:     query.Name,
		Rarity:   query.Rarity,
		Type:     query.Type,
		SetID:    query.Set,
		Page:     query.Page,
		PageSize: query.PageSize,
	})
	if err != nil {
		slog.Error("Card search error", "error", err, "lang", query.Lang)
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, CardsResponse{Cards: cards, Count: len(cards)})
}

// randomCards handles GET /api/cards/random requests
func (s *HTTPServerAdapter) randomCards(c *gin.Context) {
	var query RandomCardsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		s.handleError(c, errors.NewValidationError("count must be a positive number"))
		return
	}

	cards, err := s.catalogUseCase.RandomCards(c.Request.Context(), query.Lang, query.Count)
	if err != nil {
		slog.Error("Random cards error", "error", err, "lang", query.Lang, "count", query.Count)
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, CardsResponse{Cards: cards, Count: len(cards)})
}
