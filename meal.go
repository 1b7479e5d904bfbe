package main

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/omarshanyour/nutrimind-backend/internal/meals"

	log "github.com/sirupsen/logrus"
)

// maxPhotoBytes caps uploaded meal photos.
const maxPhotoBytes = 8 << 20

const (
	msgDescribeMeal    = "Please describe your meal like 'Chipotle bowl, chicken, rice, cheese'."
	msgCouldNotGuess   = "Could not estimate macros for this meal."
	msgNoPhoto         = "No photo received."
	msgNotAnImage      = "Please upload an image file."
	msgPhotoTooLarge   = "That photo is too large. Please keep it under 8 MB."
	msgPhotoUnreadable = "Could not read the uploaded photo."
)

/* ─── Request / Response types ───────────────────────────────────────── */

// mealTextRequest is the request body for POST /api/meal.
type mealTextRequest struct {
	Description string `json:"description"`
}

// macrosResponse is the envelope for both estimation endpoints.
func macrosResponse(m meals.Macros) gin.H {
	return gin.H{
		"kcal":      m.Kcal,
		"protein_g": m.ProteinG,
		"carbs_g":   m.CarbsG,
		"fats_g":    m.FatsG,
	}
}

/* ─── Handlers ───────────────────────────────────────────────────────── */

// estimateMealText handles POST /api/meal.
// Estimates calories and macros for a free-text meal description.
func (h *Handler) estimateMealText(c *gin.Context) {
	var req mealTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, msgDescribeMeal)
		return
	}
	if h.estimator == nil {
		apiError(c, http.StatusInternalServerError, msgMisconfigured)
		return
	}

	start := time.Now()
	macros, err := h.estimator.FromText(c.Request.Context(), req.Description)
	if errors.Is(err, meals.ErrDescriptionTooShort) {
		apiError(c, http.StatusBadRequest, msgDescribeMeal)
		return
	}
	h.observeLLM("meal_text", start, err)
	h.respondMacros(c, "meal", macros, err)
}

// estimateMealPhoto handles POST /api/meal-photo.
// Expects a multipart form with an image in the "file" field.
func (h *Handler) estimateMealPhoto(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxPhotoBytes+1<<20)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			apiError(c, http.StatusBadRequest, msgPhotoTooLarge)
			return
		}
		apiError(c, http.StatusBadRequest, msgNoPhoto)
		return
	}
	if fh.Size > maxPhotoBytes {
		apiError(c, http.StatusBadRequest, msgPhotoTooLarge)
		return
	}
	contentType := fh.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		apiError(c, http.StatusBadRequest, msgNotAnImage)
		return
	}
	if h.estimator == nil {
		apiError(c, http.StatusInternalServerError, msgMisconfigured)
		return
	}

	image, err := readUpload(fh)
	if err != nil {
		log.Errorf("[meal-photo] read upload: %s", err)
		apiError(c, http.StatusBadRequest, msgPhotoUnreadable)
		return
	}

	start := time.Now()
	macros, err := h.estimator.FromPhoto(c.Request.Context(), contentType, image)
	h.observeLLM("meal_photo", start, err)
	h.respondMacros(c, "meal-photo", macros, err)
}

// respondMacros writes the estimation result. Upstream and parse failures
// still answer 200 with ok=false.
func (h *Handler) respondMacros(c *gin.Context, tag string, macros meals.Macros, err error) {
	switch {
	case err == nil:
		apiOK(c, macrosResponse(macros))
	case errors.Is(err, meals.ErrUnparseable):
		log.Warnf("[%s] model answer was not JSON", tag)
		apiError(c, http.StatusOK, msgCouldNotGuess)
	default:
		log.Errorf("[%s] estimation failed: %s", tag, err)
		apiError(c, http.StatusOK, msgCouldNotGuess)
	}
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, maxPhotoBytes+1))
}
