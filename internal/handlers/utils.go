package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xpanvictor/aigreeter/internal/domains/compliment"
	"github.com/xpanvictor/aigreeter/pkg/assistant"
	"github.com/xpanvictor/aigreeter/pkg/utils"
)

const sessionHeader = "x-session-id"

var errBodyTooLarge = errors.New("request body too large")

// ExtractSessionID reads the client session id from the x-session-id header,
// falling back to the sessionId query parameter.
func ExtractSessionID(c *gin.Context) string {
	return utils.FirstNonEmpty(c.GetHeader(sessionHeader), c.Query("sessionId"))
}

// readBody reads the raw request body, refusing anything above limit bytes.
func readBody(c *gin.Context, limit int64) ([]byte, error) {
	if limit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, errBodyTooLarge
		}
		return nil, err
	}
	return body, nil
}

// isConfigError reports whether err comes from a provider or store that was
// never configured.
func isConfigError(err error) bool {
	return errors.Is(err, assistant.ErrNotConfigured) || errors.Is(err, compliment.ErrStoreNotConfigured)
}

func respondConfigError(c *gin.Context, err error) {
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   "Server configuration error",
		Details: err.Error(),
	})
}
