package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"faceswap-go/internal/core/processor"
	"faceswap-go/internal/core/swap"
	"faceswap-go/internal/imaging"
)

// ProcessSwap nimmt zwei Bilder entgegen und liefert das Ergebnisbild.
// Erwartet ein Multipart-Formular mit den Feldern 'source' und
// 'destination' sowie optional 'format' ('jpg' oder 'png').
func (h *APIHandler) ProcessSwap(c *gin.Context) {
	maxBytes := int64(h.cfg.Server.MaxUploadMB) << 20
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)

	sourceData, err := h.readFormImage(c, "source")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	destData, err := h.readFormImage(c, "destination")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	formatName := c.PostForm("format")
	if formatName == "" {
		formatName = h.cfg.Swap.OutputFormat
	}
	format, err := imaging.ParseFormat(formatName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.ProcessSwap(c.Request.Context(), &processor.SwapRequest{
		SourceData: sourceData,
		DestData:   destData,
		Options:    swap.Options{Format: format},
	})
	if err != nil {
		h.writeSwapError(c, err)
		return
	}

	c.Data(http.StatusOK, result.Format.ContentType(), result.Data)
}

// readFormImage liest eine Bilddatei aus dem Multipart-Formular
func (h *APIHandler) readFormImage(c *gin.Context, field string) ([]byte, error) {
	file, _, err := c.Request.FormFile(field)
	if err != nil {
		return nil, fmt.Errorf("missing or invalid form file '%s'", field)
	}
	defer func(f multipart.File) { _ = f.Close() }(file)

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read form file '%s': %v", field, err)
	}
	return data, nil
}

// writeSwapError bildet die Fehler der Swap-Pipeline auf HTTP-Statuscodes ab:
// ungültige Eingabebilder sind Client-Fehler (400), Bilder ohne Gesicht
// sind semantisch unverarbeitbar (422), alles andere ist ein Serverfehler.
func (h *APIHandler) writeSwapError(c *gin.Context, err error) {
	var invalidErr *swap.InvalidImageError
	if errors.As(err, &invalidErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": invalidErr.Error(),
			"image": string(invalidErr.Role),
		})
		return
	}

	var noFaceErr *swap.NoFaceDetectedError
	if errors.As(err, &noFaceErr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": noFaceErr.Error(),
			"image": string(noFaceErr.Role),
		})
		return
	}

	log.Errorf("Swap request failed: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "face swap failed"})
}
