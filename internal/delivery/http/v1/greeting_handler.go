package v1

import (
	"net/http"

	"go-minimalapp/internal/delivery/http/response"

	"github.com/gin-gonic/gin"
)

type GreetingHandler struct{}

// NewGreetingHandler registers the greeting routes
func NewGreetingHandler(rg *gin.RouterGroup) {
	handler := &GreetingHandler{}

	rg.GET("/hello/:name", handler.Hello)
	rg.POST("/hello/:name", handler.Hello)
	rg.GET("/name/:name", handler.ShowName)
}

// Hello answers with a plain-text greeting
func (h *GreetingHandler) Hello(c *gin.Context) {
	c.String(http.StatusOK, "Hello, %s", c.Param("name"))
}

// ShowName renders index.html with the name from the path
func (h *GreetingHandler) ShowName(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", response.PageData(nil, gin.H{
		"name": c.Param("name"),
	}))
}
