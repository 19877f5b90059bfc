package controller

import (
	"net/http"
	"strconv"
	"time"

	errors "github.com/Laisky/errors/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Laisky/notion-blog/internal/web/blog/dto"
	"github.com/Laisky/notion-blog/internal/web/blog/model"
)

const (
	visitorCookie = "lid"
	visitorMaxAge = 2 * 365 * 24 * time.Hour
)

// visitorID returns the visitor token of the request, issuing a new
// one when the cookie is absent.
func (c *Blog) visitorID(ctx *gin.Context) string {
	if id, err := ctx.Cookie(visitorCookie); err == nil && id != "" {
		return id
	}

	id := uuid.NewString()
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(visitorCookie, id, int(visitorMaxAge/time.Second), "/", "",
		c.service.Settings().Engagement.Production, true)
	return id
}

// ListComments serves GET /api/comments?slug=.
func (c *Blog) ListComments(ctx *gin.Context) {
	comments, err := c.service.ListComments(ctx, ctx.Query("slug"))
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.Header("Cache-Control", cacheControlComments)
	ctx.JSON(http.StatusOK, comments)
}

// PostComment serves POST /api/comments.
func (c *Blog) PostComment(ctx *gin.Context) {
	ctx.Header("Cache-Control", cacheControlNoStore)

	req := new(dto.PostCommentRequest)
	if err := ctx.ShouldBindJSON(req); err != nil {
		abortWithError(ctx, errors.Wrapf(model.ErrInvalidArgument, "decode body: %v", err))
		return
	}

	comment, err := c.service.PostComment(ctx, req, ctx.ClientIP())
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, comment)
}

// GetLikes serves GET /api/likes?slug=[&lite=1] and GET /api/likes?slugs=a,b.
func (c *Blog) GetLikes(ctx *gin.Context) {
	if raw, ok := ctx.GetQuery("slugs"); ok {
		slugs := splitList(raw)
		if len(slugs) == 0 {
			abortWithError(ctx, errors.Wrap(model.ErrInvalidArgument, "slug is required"))
			return
		}

		counts, err := c.service.GetLikeCounts(ctx, slugs)
		if err != nil {
			abortWithError(ctx, err)
			return
		}

		c.setReadCache(ctx)
		ctx.JSON(http.StatusOK, dto.LikeCountsResponse{Counts: counts})
		return
	}

	lite, _ := strconv.ParseBool(ctx.Query("lite"))
	var visitor string
	if !lite {
		visitor = c.visitorID(ctx)
	}

	state, err := c.service.GetLikeState(ctx, ctx.Query("slug"), visitor, lite)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	if lite {
		c.setReadCache(ctx)
	} else {
		ctx.Header("Cache-Control", cacheControlPrivate)
	}
	ctx.JSON(http.StatusOK, state)
}

// ToggleLike serves POST /api/likes.
func (c *Blog) ToggleLike(ctx *gin.Context) {
	ctx.Header("Cache-Control", cacheControlNoStore)

	req := new(dto.ToggleLikeRequest)
	if err := ctx.ShouldBindJSON(req); err != nil {
		abortWithError(ctx, errors.Wrapf(model.ErrInvalidArgument, "decode body: %v", err))
		return
	}

	var visitor string
	if c.service.ToggleNeedsVisitor(req) {
		visitor = c.visitorID(ctx)
	}

	state, err := c.service.ToggleLike(ctx, visitor, req)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, state)
}
