package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/omarshanyour/nutrimind-backend/internal/feed"

	log "github.com/sirupsen/logrus"
)

const msgFeedDown = "Could not load headlines right now."

// getNews handles GET /api/news.
// Returns deal-like items from the health news feed. A feed failure still
// answers 200, with ok=false and an empty list.
func (h *Handler) getNews(c *gin.Context) {
	items, err := h.feeds.DealHeadlines(c.Request.Context())
	h.observeFeed("news", err)
	if err != nil {
		log.Warnf("[news] %s", err)
		c.JSON(http.StatusOK, gin.H{"ok": false, "message": msgFeedDown, "items": []feed.Item{}})
		return
	}
	apiOK(c, gin.H{"items": nonNilItems(items)})
}

// getDeals handles GET /api/deals.
// Passes through the top health headlines; failure answers {ok:false, deals:[]}.
func (h *Handler) getDeals(c *gin.Context) {
	items, err := h.feeds.HealthHeadlines(c.Request.Context())
	h.observeFeed("deals", err)
	if err != nil {
		log.Warnf("[deals] %s", err)
		c.JSON(http.StatusOK, gin.H{"ok": false, "message": msgFeedDown, "deals": []feed.Item{}})
		return
	}
	apiOK(c, gin.H{"deals": nonNilItems(items)})
}

func nonNilItems(items []feed.Item) []feed.Item {
	if items == nil {
		return []feed.Item{}
	}
	return items
}
