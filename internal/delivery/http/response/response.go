package response

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Response standardizes JSON responses
type Response struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// Success sends a JSON success response
func Success(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, Response{
		Success:   true,
		Message:   message,
		Data:      data,
		RequestID: c.GetString("RequestID"),
	})
}

// Error sends an error in the format the client asked for: JSON when it
// accepts JSON, otherwise the HTML error page.
func Error(c *gin.Context, code int, message string) {
	if wantsJSON(c) {
		c.JSON(code, Response{
			Success:   false,
			Message:   message,
			RequestID: c.GetString("RequestID"),
		})
		return
	}
	c.HTML(code, "error.html", gin.H{
		"status":  http.StatusText(code),
		"message": message,
	})
}

// PageData builds template data for page templates. The flashes key is
// always present because templates are executed with missingkey=error.
func PageData(flashes []string, kv gin.H) gin.H {
	data := gin.H{"flashes": flashes}
	for k, v := range kv {
		data[k] = v
	}
	return data
}

func wantsJSON(c *gin.Context) bool {
	accept := c.GetHeader("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}
