package http

import (
	"net/http"
	"strconv"

	"snappoint/pkg/logger"
	"snappoint/services/post/internal/entity"
	"snappoint/services/post/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PostHandler struct {
	postUseCase usecase.PostUseCase
	logger      *logger.Logger
}

func NewPostHandler(postUseCase usecase.PostUseCase, logger *logger.Logger) *PostHandler {
	return &PostHandler{
		postUseCase: postUseCase,
		logger:      logger,
	}
}

// RegisterRoutes mounts the public reads on public and the writes on authed.
func (h *PostHandler) RegisterRoutes(public, authed *gin.RouterGroup) {
	public.GET("/posts", h.FindNearbyPosts)
	public.GET("/posts/:uuid", h.FindPost)

	authed.POST("/posts/publish", h.WritePost)
	authed.PUT("/posts/:uuid", h.ModifyPost)
	authed.DELETE("/posts/:uuid", h.DeletePost)
}

type nearbyQuery struct {
	LatitudeMin  *float64 `form:"latitudeMin" binding:"required"`
	LatitudeMax  *float64 `form:"latitudeMax" binding:"required"`
	LongitudeMin *float64 `form:"longitudeMin" binding:"required"`
	LongitudeMax *float64 `form:"longitudeMax" binding:"required"`
}

func (q nearbyQuery) bbox() entity.BBox {
	return entity.BBox{
		LatitudeMin:  *q.LatitudeMin,
		LatitudeMax:  *q.LatitudeMax,
		LongitudeMin: *q.LongitudeMin,
		LongitudeMax: *q.LongitudeMax,
	}
}

// FindPost handles GET /posts/:uuid. detail defaults to true.
func (h *PostHandler) FindPost(c *gin.Context) {
	postID, ok := postIDParam(c)
	if !ok {
		return
	}

	detail, err := strconv.ParseBool(c.DefaultQuery("detail", "true"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "detail must be a boolean"})
		return
	}

	post, err := h.postUseCase.FindPost(c.Request.Context(), postID, detail)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

// FindNearbyPosts handles GET /posts?latitudeMin=&latitudeMax=&longitudeMin=&longitudeMax=.
func (h *PostHandler) FindNearbyPosts(c *gin.Context) {
	var query nearbyQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	posts, err := h.postUseCase.FindNearbyPosts(c.Request.Context(), query.bbox())
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts": posts,
		"count": len(posts),
	})
}

func (h *PostHandler) WritePost(c *gin.Context) {
	userID := c.GetString("user_id")

	var input entity.WritePostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.postUseCase.WritePost(c.Request.Context(), input, userID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, post)
}

func (h *PostHandler) ModifyPost(c *gin.Context) {
	userID := c.GetString("user_id")
	postID, ok := postIDParam(c)
	if !ok {
		return
	}

	var input entity.WritePostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.postUseCase.ModifyPost(c.Request.Context(), postID, input, userID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) DeletePost(c *gin.Context) {
	userID := c.GetString("user_id")
	postID, ok := postIDParam(c)
	if !ok {
		return
	}

	post, err := h.postUseCase.DeletePost(c.Request.Context(), postID, userID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

func postIDParam(c *gin.Context) (string, bool) {
	postID := c.Param("uuid")
	if _, err := uuid.Parse(postID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post id"})
		return "", false
	}
	return postID, true
}

func (h *PostHandler) writeError(c *gin.Context, err error) {
	switch {
	case entity.IsValidationError(err), entity.IsRangeError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case entity.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case entity.IsForbidden(err):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		h.logger.Error("[HTTP] %s %s failed: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
