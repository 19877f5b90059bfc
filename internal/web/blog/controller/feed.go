package controller

import (
	"net/http"
	"strconv"
	"strings"

	errors "github.com/Laisky/errors/v2"
	"github.com/gin-gonic/gin"

	"github.com/Laisky/notion-blog/internal/web/blog/dto"
	"github.com/Laisky/notion-blog/internal/web/blog/model"
)

const maxPageSize = 100

// parseFeedQuery reads the feed filters of a request.
func parseFeedQuery(ctx *gin.Context) (dto.FeedQuery, error) {
	q := dto.FeedQuery{
		Text:     ctx.Query("q"),
		Tags:     splitList(ctx.Query("tag")),
		TagMode:  dto.TagMode(strings.ToLower(ctx.Query("tagMode"))),
		Category: strings.TrimSpace(ctx.Query("category")),
		Order:    dto.Order(strings.ToLower(ctx.Query("order"))),
		Types:    splitList(ctx.Query("type")),
	}

	var err error
	if q.Page, err = queryInt(ctx, "page"); err != nil {
		return q, err
	}
	if q.PageSize, err = queryInt(ctx, "size"); err != nil {
		return q, err
	}
	if q.PageSize > maxPageSize {
		return q, errors.Wrapf(model.ErrInvalidArgument, "size exceeds %d", maxPageSize)
	}

	return q, nil
}

func queryInt(ctx *gin.Context, key string) (int, error) {
	raw := strings.TrimSpace(ctx.Query(key))
	if raw == "" {
		return 0, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Wrapf(model.ErrInvalidArgument, "%s must be an integer", key)
	}
	return v, nil
}

// ListPosts serves one page of the feed.
func (c *Blog) ListPosts(ctx *gin.Context) {
	q, err := parseFeedQuery(ctx)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	resp, err := c.service.ListFeed(ctx, q)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	c.setReadCache(ctx)
	ctx.JSON(http.StatusOK, resp)
}

// GetPost serves the detail of one post.
func (c *Blog) GetPost(ctx *gin.Context) {
	resp, err := c.service.GetPost(ctx, ctx.Param("slug"))
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	c.setReadCache(ctx)
	ctx.JSON(http.StatusOK, resp)
}

// ListTags serves the most used tags.
func (c *Blog) ListTags(ctx *gin.Context) {
	limit, err := queryInt(ctx, "limit")
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	tags, err := c.service.ListTopTags(ctx, limit)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	c.setReadCache(ctx)
	ctx.JSON(http.StatusOK, tags)
}

// ListCategories serves the categories of public posts.
func (c *Blog) ListCategories(ctx *gin.Context) {
	categories, err := c.service.ListCategories(ctx)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	c.setReadCache(ctx)
	ctx.JSON(http.StatusOK, categories)
}

// Sitemap serves sitemap.xml.
func (c *Blog) Sitemap(ctx *gin.Context) {
	body, err := c.service.Sitemap(ctx)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	c.setReadCache(ctx)
	ctx.Data(http.StatusOK, "application/xml; charset=utf-8", body)
}

// RSS serves feed.xml.
func (c *Blog) RSS(ctx *gin.Context) {
	body, err := c.service.RSS(ctx)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	c.setReadCache(ctx)
	ctx.Data(http.StatusOK, "application/rss+xml; charset=utf-8", []byte(body))
}
