package routes

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"pdf-qa-backend/internal/config"
	"pdf-qa-backend/internal/qa"
	"pdf-qa-backend/internal/storage"
	"pdf-qa-backend/services"
	"pdf-qa-backend/utils"

	"github.com/gin-gonic/gin"
)

// AskRequest is the /ask payload.
type AskRequest struct {
	Question string `json:"question" binding:"required"`
}

// SetupQARoutes wires the document upload and question-answering
// endpoints. Typed pipeline failures map to status codes here: 404 when
// no document is active, 422 when there is nothing to ground an answer
// on, 409 for superseded builds, 500 for capability failures.
func SetupQARoutes(router *gin.Engine, cfg *config.Config, svc *qa.Service, store *storage.MongoStore, extractor *services.PDFExtractor) {
	router.POST("/upload", func(c *gin.Context) {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			utils.RespondWithBadRequest(c, "No file provided", gin.H{"error": err.Error()})
			return
		}

		if fileHeader.Size > cfg.MaxFileSize {
			utils.RespondWithBadRequest(c, "File size exceeds maximum limit", gin.H{
				"max_bytes": cfg.MaxFileSize,
				"got_bytes": fileHeader.Size,
			})
			return
		}

		contentType := fileHeader.Header.Get("Content-Type")
		if !typeAllowed(contentType, cfg.AllowedTypes) {
			utils.RespondWithBadRequest(c, "Invalid file type, only PDF files are allowed", gin.H{
				"content_type": contentType,
			})
			return
		}
		if strings.ToLower(filepath.Ext(fileHeader.Filename)) != ".pdf" {
			utils.RespondWithBadRequest(c, "File must have .pdf extension", nil)
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to read uploaded file", nil)
			return
		}
		defer file.Close()

		content, err := io.ReadAll(io.LimitReader(file, cfg.MaxFileSize+1))
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to read uploaded file", nil)
			return
		}

		extraction, err := extractor.ExtractText(c.Request.Context(), content)
		if err != nil {
			utils.RespondWithUnprocessable(c, "Failed to extract text from PDF")
			return
		}

		resp, err := svc.Upload(c.Request.Context(), fileHeader.Filename, extraction.Text)
		if err != nil {
			respondPipelineError(c, err)
			return
		}

		c.JSON(http.StatusOK, resp)
	})

	router.POST("/ask", func(c *gin.Context) {
		var req AskRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		question := strings.TrimSpace(req.Question)
		if question == "" || len(question) > 1000 {
			utils.RespondWithBadRequest(c, "Question must be between 1 and 1000 characters", nil)
			return
		}

		ans, err := svc.Ask(c.Request.Context(), question)
		if err != nil {
			respondPipelineError(c, err)
			return
		}

		c.JSON(http.StatusOK, ans)
	})

	router.GET("/documents", func(c *gin.Context) {
		limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
		docs, err := store.ListDocuments(c.Request.Context(), limit)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to list documents", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"documents": docs, "total": len(docs)})
	})

	router.GET("/questions", func(c *gin.Context) {
		limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "100"), 10, 64)
		recs, err := store.ListQueryRecords(c.Request.Context(), c.Query("document_id"), limit)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to list query records", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"questions": recs, "total": len(recs)})
	})
}

// respondPipelineError maps pipeline failures to HTTP status codes.
func respondPipelineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, qa.ErrNoActiveDocument):
		utils.RespondWithNotFound(c, "No document found. Please upload a PDF first.")
	case errors.Is(err, qa.ErrEmptyInput):
		utils.RespondWithUnprocessable(c, "The uploaded document contains no text content")
	case errors.Is(err, qa.ErrNoContext):
		utils.RespondWithUnprocessable(c, "No relevant content found for this question")
	case errors.Is(err, qa.ErrBuildSuperseded):
		utils.RespondWithConflict(c, "Upload superseded by a newer upload")
	default:
		utils.RespondWithInternalError(c, "Failed to process request", gin.H{"error": err.Error()})
	}
}

func typeAllowed(contentType string, allowed []string) bool {
	for _, t := range allowed {
		if strings.EqualFold(strings.TrimSpace(t), contentType) {
			return true
		}
	}
	return false
}
