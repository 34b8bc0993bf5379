package server

import (
	"strconv"

	"riptide/internal/loader"
	"riptide/internal/middleware"
	"riptide/internal/models"
	"riptide/internal/service"

	"github.com/gofiber/fiber/v2"
)

// requestLoaders builds a fresh loader bundle scoped to this request.
// Loaders cache resolved rows, and a viewer's vote rows must never leak
// into another viewer's response, so the bundle dies with the request.
func (s *Server) requestLoaders() *loader.Bundle {
	return loader.NewBundle(s.userRepo, s.voteRepo)
}

// parseID extracts a positive integer path parameter. On failure it writes
// the error response and returns 0.
func (s *Server) parseID(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+name+" parameter"))
	}
	return uint(id), nil
}

// respondAppError maps an application error to its HTTP status and writes it.
func respondAppError(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, models.StatusForError(err), err)
}

// GetFeed handles GET /api/posts
//
//	@Summary		Get the post feed
//	@Description	Returns one reverse-chronological page of posts. Pass the next_cursor from the previous page to continue.
//	@Tags			posts
//	@Produce		json
//	@Param			limit	query		int		false	"Page size (1-50, default 20)"
//	@Param			cursor	query		string	false	"Opaque cursor from the previous page"
//	@Success		200		{object}	models.FeedPage
//	@Failure		400		{object}	models.ErrorResponse
//	@Router			/api/posts [get]
func (s *Server) GetFeed(c *fiber.Ctx) error {
	ctx := c.Context()
	viewerID, _ := middleware.OptionalUserID(c)
	limit := c.QueryInt("limit", 0)
	cursor := c.Query("cursor")

	page, err := s.feedService.FetchPage(ctx, s.requestLoaders(), viewerID, limit, cursor)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(page)
}

// GetPost handles GET /api/posts/:id
//
//	@Summary	Get a single post with its full body
//	@Tags		posts
//	@Produce	json
//	@Param		id	path		int	true	"Post ID"
//	@Success	200	{object}	models.Post
//	@Failure	404	{object}	models.ErrorResponse
//	@Router		/api/posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil || id == 0 {
		return err
	}

	post, err := s.postService.Get(ctx, id)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(post)
}

// CreatePost handles POST /api/posts
//
//	@Summary	Create a post
//	@Tags		posts
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Success	201	{object}	models.Post
//	@Failure	400	{object}	models.ErrorResponse
//	@Router		/api/posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.Create(ctx, service.CreatePostInput{
		UserID:  userID,
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		return respondAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdatePost handles PUT /api/posts/:id
//
//	@Summary	Update a post you created
//	@Tags		posts
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		int	true	"Post ID"
//	@Success	200	{object}	models.Post
//	@Failure	401	{object}	models.ErrorResponse
//	@Failure	404	{object}	models.ErrorResponse
//	@Router		/api/posts/{id} [put]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	id, err := s.parseID(c, "id")
	if err != nil || id == 0 {
		return err
	}

	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.Update(ctx, service.UpdatePostInput{
		UserID:  userID,
		PostID:  id,
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
//
//	@Summary	Delete a post you created
//	@Tags		posts
//	@Security	BearerAuth
//	@Param		id	path	int	true	"Post ID"
//	@Success	204
//	@Failure	404	{object}	models.ErrorResponse
//	@Router		/api/posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	id, err := s.parseID(c, "id")
	if err != nil || id == 0 {
		return err
	}

	if err := s.postService.Delete(ctx, id, userID); err != nil {
		return respondAppError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// VotePost handles POST /api/posts/:id/vote
//
//	@Summary		Vote on a post
//	@Description	Value -1 is a downvote; any other value counts as an upvote. Repeating a vote is a no-op, the opposite value flips it.
//	@Tags			posts
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path	int	true	"Post ID"
//	@Success		200	{object}	models.Post
//	@Failure		401	{object}	models.ErrorResponse
//	@Failure		404	{object}	models.ErrorResponse
//	@Router			/api/posts/{id}/vote [post]
func (s *Server) VotePost(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	id, err := s.parseID(c, "id")
	if err != nil || id == 0 {
		return err
	}

	var req struct {
		Value int `json:"value"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := s.voteService.Cast(ctx, id, userID, req.Value); err != nil {
		return respondAppError(c, err)
	}

	// Return the post with its refreshed points.
	post, err := s.postService.Get(ctx, id)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(post)
}
