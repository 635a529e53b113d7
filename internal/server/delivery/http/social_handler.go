package http

import (
	"net/http"
	"strconv"

	"papertrade/internal/entity"
	"papertrade/internal/server/dto"
	"papertrade/internal/server/service"
	"papertrade/pkg/logger"

	"github.com/labstack/echo/v4"
)

// SocialHandler handles the follow graph, feed, posts, comments, and
// reactions.
type SocialHandler struct {
	socialService service.SocialService
	logger        *logger.Logger
}

// NewSocialHandler creates a new SocialHandler.
func NewSocialHandler(socialService service.SocialService, logger *logger.Logger) *SocialHandler {
	return &SocialHandler{socialService: socialService, logger: logger}
}

// RegisterRoutes registers the social routes.
func (h *SocialHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/users/:id", h.UserProfile)
	g.GET("/users/:id/posts", h.UserPosts)
	g.POST("/users/:id/follow", h.Follow)
	g.POST("/users/:id/unfollow", h.Unfollow)
	g.GET("/me/following", h.Following)
	g.GET("/me/followers", h.Followers)

	g.GET("/feed", h.Feed)
	g.GET("/posts/mine", h.MyPosts)
	g.GET("/posts/:id", h.Post)
	g.POST("/posts/:id/visibility", h.ToggleVisibility)
	g.POST("/posts/:id/comments", h.AddComment)
	g.POST("/comments/:id/replies", h.AddReply)
	g.POST("/posts/:id/like", h.Like)
	g.POST("/posts/:id/dislike", h.Dislike)
}

// UserProfile returns another user's public profile.
func (h *SocialHandler) UserProfile(c echo.Context) error {
	targetID, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.Fail("Invalid user ID"))
	}

	profile, err := h.socialService.GetUserProfile(c.Request().Context(), authedUserID(c), targetID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OK(profile))
}

// UserPosts lists a user's posts; private ones only for the owner.
func (h *SocialHandler) UserPosts(c echo.Context) error {
	targetID, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.Fail("Invalid user ID"))
	}

	posts, err := h.socialService.ListUserPosts(c.Request().Context(), authedUserID(c), targetID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OK(posts))
}

// Follow starts following a user.
func (h *SocialHandler) Follow(c echo.Context) error {
	targetID, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.Fail("Invalid user ID"))
	}

	result, err := h.socialService.Follow(c.Request().Context(), authedUserID(c), targetID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OK(result))
}

// Unfollow stops following a user.
func (h *SocialHandler) Unfollow(c echo.Context) error {
	targetID, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.Fail("Invalid user ID"))
	}

	result, err := h.socialService.Unfollow(c.Request().Context(), authedUserID(c), targetID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OK(result))
}

// Following lists the users the caller follows.
func (h *SocialHandler) Following(c echo.Context) error {
	users, err := h.socialService.ListFollowing(c.Request().Context(), authedUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OK(users))
}

// Followers lists the users following the caller.
func (h *SocialHandler) Followers(c echo.Context) error {
	users, err := h.socialService.ListFollowers(c.Request().Context(), authedUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OK(users))
}

// Feed returns followed posts plus popular posts.
func (h *SocialHandler) Feed(c echo.Context) error {
	feed, err := h.socialService.GetFeed(c.Request().Context(), authedUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OK(feed))
}

// Post returns one post with its comments.
func (h *SocialHandler) Post(c echo.Context) error {
	postID, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.Fail("Invalid post ID"))
	}

	post, err := h.socialService.GetPost(c.Request().Context(), authedUserID(c), postID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OK(post))
}

// MyPosts lists the caller's own posts, public and private.
func (h *SocialHandler) MyPosts(c echo.Context) error {
	posts, err := h.socialService.ListMyPosts(c.Request().Context(), authedUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OK(posts))
}

// ToggleVisibility flips a post between public and private.
func (h *SocialHandler) ToggleVisibility(c echo.Context) error {
	postID, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.Fail("Invalid post ID"))
	}

	result, err := h.socialService.ToggleVisibility(c.Request().Context(), authedUserID(c), postID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OK(result))
}

// AddComment adds a top-level comment to a post.
func (h *SocialHandler) AddComment(c echo.Context) error {
	postID, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.Fail("Invalid post ID"))
	}

	var req dto.CommentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.Fail("Invalid request payload"))
	}

	comment, err := h.socialService.AddComment(c.Request().Context(), authedUserID(c), postID, req.ParentID, req.Content)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, dto.OK(comment))
}

// AddReply adds a reply under an existing comment.
func (h *SocialHandler) AddReply(c echo.Context) error {
	commentID, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.Fail("Invalid comment ID"))
	}

	var req dto.CommentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.Fail("Invalid request payload"))
	}

	comment, err := h.socialService.AddReply(c.Request().Context(), authedUserID(c), commentID, req.Content)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, dto.OK(comment))
}

// Like toggles a like on a post.
func (h *SocialHandler) Like(c echo.Context) error {
	return h.react(c, entity.InteractionTypeLike)
}

// Dislike toggles a dislike on a post.
func (h *SocialHandler) Dislike(c echo.Context) error {
	return h.react(c, entity.InteractionTypeDislike)
}

func (h *SocialHandler) react(c echo.Context, interactionType string) error {
	postID, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.Fail("Invalid post ID"))
	}

	result, err := h.socialService.React(c.Request().Context(), authedUserID(c), postID, interactionType)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OK(result))
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
