package server

import (
	"firenet/internal/models"
	"firenet/internal/service"

	"github.com/gofiber/fiber/v2"
)

type postBody struct {
	Body string `json:"body"`
}

// GetPosts handles GET /api/posts
func (s *Server) GetPosts(c *fiber.Ctx) error {
	posts, err := s.postService.ListPosts(c.UserContext())
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, posts)
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req postBody
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		Author: identityFrom(c),
		Body:   req.Body,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusCreated, post)
}

// GetPost handles GET /api/posts/:postId
func (s *Server) GetPost(c *fiber.Ctx) error {
	detail, err := s.postService.GetPost(c.UserContext(), c.Params("postId"))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, detail)
}

// CreateComment handles POST /api/posts/:postId/comment
func (s *Server) CreateComment(c *fiber.Ctx) error {
	var req postBody
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	comment, err := s.postService.CreateComment(c.UserContext(), service.CreateCommentInput{
		Author: identityFrom(c),
		PostID: c.Params("postId"),
		Body:   req.Body,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusCreated, comment)
}

// LikePost handles GET /api/posts/:postId/like
func (s *Server) LikePost(c *fiber.Ctx) error {
	post, err := s.postService.LikePost(c.UserContext(), s.postAction(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, post)
}

// UnlikePost handles GET /api/posts/:postId/unlike
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	post, err := s.postService.UnlikePost(c.UserContext(), s.postAction(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, post)
}

// DeletePost handles DELETE /api/posts/:postId
func (s *Server) DeletePost(c *fiber.Ctx) error {
	if err := s.postService.DeletePost(c.UserContext(), s.postAction(c)); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return models.RespondWithMessage(c, fiber.StatusOK, service.MsgPostDeleted)
}

func (s *Server) postAction(c *fiber.Ctx) service.PostActionInput {
	return service.PostActionInput{Actor: identityFrom(c), PostID: c.Params("postId")}
}
