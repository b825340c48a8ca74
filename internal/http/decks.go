package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"deckhand/internal/database"
)

type DecksController struct {
	db *database.Database
}

func NewDecksController(db *database.Database) *DecksController {
	return &DecksController{db: db}
}

// GetAllDecks returns all decks without their cards.
func (c *DecksController) GetAllDecks(ctx *gin.Context) {
	decks, err := c.db.GetAllDecks()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list decks"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"decks": decks, "count": len(decks)})
}

// GetDeck returns one deck with its cards and note types.
func (c *DecksController) GetDeck(ctx *gin.Context) {
	id, err := parseUintParam(ctx, "id")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid deck id"})
		return
	}

	deck, err := c.db.GetDeckByID(id)
	if err == gorm.ErrRecordNotFound {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "deck not found"})
		return
	}
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load deck"})
		return
	}
	ctx.JSON(http.StatusOK, deck)
}

// GetDeckCards returns a page of a deck's cards.
func (c *DecksController) GetDeckCards(ctx *gin.Context) {
	id, err := parseUintParam(ctx, "id")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid deck id"})
		return
	}

	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(ctx.DefaultQuery("offset", "0"))

	cards, err := c.db.GetCardsForDeck(id, limit, offset)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load cards"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"cards": cards, "count": len(cards)})
}

// DeleteDeck removes a deck and its cards.
func (c *DecksController) DeleteDeck(ctx *gin.Context) {
	id, err := parseUintParam(ctx, "id")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid deck id"})
		return
	}

	if _, err := c.db.GetDeckByID(id); err == gorm.ErrRecordNotFound {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "deck not found"})
		return
	}

	if err := c.db.DeleteDeck(id); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete deck"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"deleted": id})
}

// GetDeckStats returns aggregate deck and card counts.
func (c *DecksController) GetDeckStats(ctx *gin.Context) {
	decks, cards, err := c.db.GetStats()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute stats"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"total_decks": decks,
		"total_cards": cards,
	})
}
