package http

import (
	"net/http"

	"post-manager/domain/dto"
	"post-manager/usecase"

	"github.com/gin-gonic/gin"
)

type IPostHandler interface {
	GetProfile(ctx *gin.Context)
	GetPosts(ctx *gin.Context)
	GetScheduledPosts(ctx *gin.Context)
	CreatePost(ctx *gin.Context)
	UpdatePost(ctx *gin.Context)
	DeletePost(ctx *gin.Context)
}

// PostHandler answers 200 for every well formed request; degraded answers
// carry simulated data.
type PostHandler struct {
	postUsecase usecase.IPostUsecase
}

func NewPostHandler(postUsecase usecase.IPostUsecase) IPostHandler {
	return &PostHandler{postUsecase: postUsecase}
}

func (h *PostHandler) GetProfile(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"data": h.postUsecase.GetProfile(ctx.Request.Context())})
}

func (h *PostHandler) GetPosts(ctx *gin.Context) {
	posts := h.postUsecase.GetPosts(ctx.Request.Context())
	ctx.JSON(http.StatusOK, gin.H{"data": posts, "count": len(posts)})
}

func (h *PostHandler) GetScheduledPosts(ctx *gin.Context) {
	posts := h.postUsecase.GetScheduledPosts(ctx.Request.Context())
	ctx.JSON(http.StatusOK, gin.H{"data": posts, "count": len(posts)})
}

func (h *PostHandler) CreatePost(ctx *gin.Context) {
	var data dto.PostPayload
	if err := ctx.ShouldBindJSON(&data); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: "Invalid post body"})
		return
	}
	ctx.JSON(http.StatusOK, h.postUsecase.CreatePost(ctx.Request.Context(), data))
}

func (h *PostHandler) UpdatePost(ctx *gin.Context) {
	var data dto.PostPayload
	if err := ctx.ShouldBindJSON(&data); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: "Invalid post body"})
		return
	}
	ctx.JSON(http.StatusOK, h.postUsecase.UpdatePost(ctx.Request.Context(), ctx.Param("id"), data))
}

func (h *PostHandler) DeletePost(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, h.postUsecase.DeletePost(ctx.Request.Context(), ctx.Param("id")))
}
