package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// FetchFile streams a stored attachment. Retrieval is unauthenticated and
// unscoped: any caller who knows or guesses a filename can fetch it. This
// mirrors the observed system and is a documented gap, not an oversight.
func (s *Server) FetchFile(c *gin.Context) {
	reader, contentType, err := s.attachments.Retrieve(c.Param("filename"))
	if err != nil {
		s.fail(c, err)
		return
	}
	defer reader.Close()

	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, reader)
}
