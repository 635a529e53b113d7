package service

import (
	"context"
	"errors"
	"fmt"

	"papertrade/internal/entity"
	"papertrade/internal/server/dto"
	"papertrade/internal/server/repository"
	"papertrade/pkg/logger"

	"gorm.io/gorm"
)

// SocialService covers the follow graph, the feed, post visibility,
// comments, and reactions.
type SocialService interface {
	Follow(ctx context.Context, followerID, followedID uint) (*dto.FollowResult, error)
	Unfollow(ctx context.Context, followerID, followedID uint) (*dto.FollowResult, error)
	ListFollowing(ctx context.Context, userID uint) ([]dto.UserResponse, error)
	ListFollowers(ctx context.Context, userID uint) ([]dto.UserResponse, error)

	GetFeed(ctx context.Context, userID uint) (*dto.FeedResponse, error)
	GetPost(ctx context.Context, viewerID, postID uint) (*dto.PostResponse, error)
	ListMyPosts(ctx context.Context, userID uint) ([]dto.PostResponse, error)
	ListUserPosts(ctx context.Context, viewerID, targetID uint) ([]dto.PostResponse, error)
	GetUserProfile(ctx context.Context, viewerID, targetID uint) (*dto.UserProfileResponse, error)
	ToggleVisibility(ctx context.Context, userID, postID uint) (*dto.VisibilityResult, error)

	AddComment(ctx context.Context, userID, postID uint, parentID *uint, content string) (*dto.CommentResponse, error)
	AddReply(ctx context.Context, userID, commentID uint, content string) (*dto.CommentResponse, error)
	React(ctx context.Context, userID, postID uint, interactionType string) (*dto.ReactionResult, error)
}

// NewSocialService creates a social service.
func NewSocialService(social repository.SocialRepository, users repository.UserRepository, log *logger.Logger) SocialService {
	return &socialService{social: social, users: users, logger: log}
}

type socialService struct {
	social repository.SocialRepository
	users  repository.UserRepository
	logger *logger.Logger
}

// Follow creates a follow edge. Following someone already followed is a
// no-op, not an error; following yourself is rejected.
func (s *socialService) Follow(ctx context.Context, followerID, followedID uint) (*dto.FollowResult, error) {
	if followerID == followedID {
		return nil, fmt.Errorf("%w: cannot follow yourself", ErrValidation)
	}
	if _, err := s.users.FindByID(ctx, followedID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, followedID)
		}
		return nil, err
	}

	exists, err := s.social.FollowExists(ctx, followerID, followedID)
	if err != nil {
		return nil, err
	}
	if exists {
		return &dto.FollowResult{Changed: false, IsFollowing: true}, nil
	}
	if err := s.social.CreateFollow(ctx, followerID, followedID); err != nil {
		return nil, err
	}
	return &dto.FollowResult{Changed: true, IsFollowing: true}, nil
}

// Unfollow removes a follow edge if present.
func (s *socialService) Unfollow(ctx context.Context, followerID, followedID uint) (*dto.FollowResult, error) {
	if followerID == followedID {
		return nil, fmt.Errorf("%w: cannot unfollow yourself", ErrValidation)
	}
	removed, err := s.social.DeleteFollow(ctx, followerID, followedID)
	if err != nil {
		return nil, err
	}
	return &dto.FollowResult{Changed: removed, IsFollowing: false}, nil
}

func (s *socialService) ListFollowing(ctx context.Context, userID uint) ([]dto.UserResponse, error) {
	users, err := s.social.ListFollowing(ctx, userID)
	if err != nil {
		return nil, err
	}
	return mapUsers(users), nil
}

func (s *socialService) ListFollowers(ctx context.Context, userID uint) ([]dto.UserResponse, error) {
	users, err := s.social.ListFollowers(ctx, userID)
	if err != nil {
		return nil, err
	}
	return mapUsers(users), nil
}

// GetFeed returns posts from followed users plus popular public posts from
// everyone the user does not already follow (and not their own).
func (s *socialService) GetFeed(ctx context.Context, userID uint) (*dto.FeedResponse, error) {
	followedPosts, err := s.social.FollowedPosts(ctx, userID)
	if err != nil {
		return nil, err
	}

	following, err := s.social.ListFollowing(ctx, userID)
	if err != nil {
		return nil, err
	}
	exclude := make([]uint, 0, len(following)+1)
	exclude = append(exclude, userID)
	for _, u := range following {
		exclude = append(exclude, u.ID)
	}

	popular, err := s.social.PopularPosts(ctx, exclude, 10)
	if err != nil {
		return nil, err
	}

	return &dto.FeedResponse{
		FollowedPosts: s.mapPosts(ctx, followedPosts),
		PopularPosts:  s.mapPosts(ctx, popular),
	}, nil
}

// GetPost returns one post with its comment tree. Private posts are only
// visible to their author.
func (s *socialService) GetPost(ctx context.Context, viewerID, postID uint) (*dto.PostResponse, error) {
	post, err := s.social.FindPost(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: post %d", ErrNotFound, postID)
		}
		return nil, err
	}
	if !post.IsPublic && post.UserID != viewerID {
		return nil, fmt.Errorf("%w: post %d is private", ErrForbidden, postID)
	}

	resp := s.mapPost(ctx, post)
	comments, err := s.social.ListComments(ctx, postID)
	if err != nil {
		return nil, err
	}
	resp.Comments = buildCommentTree(comments)
	return &resp, nil
}

func (s *socialService) ListMyPosts(ctx context.Context, userID uint) ([]dto.PostResponse, error) {
	posts, err := s.social.ListPostsByUser(ctx, userID, false)
	if err != nil {
		return nil, err
	}
	return s.mapPosts(ctx, posts), nil
}

// ListUserPosts returns a user's posts; private ones only when viewing
// your own.
func (s *socialService) ListUserPosts(ctx context.Context, viewerID, targetID uint) ([]dto.PostResponse, error) {
	if _, err := s.users.FindByID(ctx, targetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, targetID)
		}
		return nil, err
	}
	posts, err := s.social.ListPostsByUser(ctx, targetID, viewerID != targetID)
	if err != nil {
		return nil, err
	}
	return s.mapPosts(ctx, posts), nil
}

// GetUserProfile returns another user's public profile: their public posts
// and whether the viewer follows them.
func (s *socialService) GetUserProfile(ctx context.Context, viewerID, targetID uint) (*dto.UserProfileResponse, error) {
	user, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, targetID)
		}
		return nil, err
	}

	isFollowing := false
	if viewerID != user.ID {
		isFollowing, err = s.social.FollowExists(ctx, viewerID, user.ID)
		if err != nil {
			return nil, err
		}
	}

	posts, err := s.ListUserPosts(ctx, viewerID, targetID)
	if err != nil {
		return nil, err
	}

	return &dto.UserProfileResponse{
		User:        dto.NewUserResponse(user),
		IsFollowing: isFollowing,
		Posts:       posts,
	}, nil
}

// ToggleVisibility flips a post between public and private. Only the author
// may do it.
func (s *socialService) ToggleVisibility(ctx context.Context, userID, postID uint) (*dto.VisibilityResult, error) {
	post, err := s.social.FindPost(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: post %d", ErrNotFound, postID)
		}
		return nil, err
	}
	if post.UserID != userID {
		return nil, fmt.Errorf("%w: not the author of post %d", ErrForbidden, postID)
	}

	post.IsPublic = !post.IsPublic
	post.Author = nil
	if err := s.social.SavePost(ctx, post); err != nil {
		return nil, err
	}
	return &dto.VisibilityResult{IsPublic: post.IsPublic}, nil
}

// AddComment adds a comment to a post, or a reply when parentID is set. The
// parent must belong to the same post.
func (s *socialService) AddComment(ctx context.Context, userID, postID uint, parentID *uint, content string) (*dto.CommentResponse, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: comment content is required", ErrValidation)
	}
	post, err := s.social.FindPost(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: post %d", ErrNotFound, postID)
		}
		return nil, err
	}
	if !post.IsPublic && post.UserID != userID {
		return nil, fmt.Errorf("%w: post %d is private", ErrForbidden, postID)
	}

	if parentID != nil {
		parent, err := s.social.FindComment(ctx, *parentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: comment %d", ErrNotFound, *parentID)
			}
			return nil, err
		}
		if parent.PostID != postID {
			return nil, fmt.Errorf("%w: parent comment belongs to a different post", ErrValidation)
		}
	}

	comment := &entity.Comment{
		PostID:   postID,
		UserID:   userID,
		ParentID: parentID,
		Content:  content,
	}
	if err := s.social.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	author, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &dto.CommentResponse{
		ID:        comment.ID,
		Author:    dto.NewAuthorBrief(author),
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
	}, nil
}

// AddReply adds a reply under an existing comment.
func (s *socialService) AddReply(ctx context.Context, userID, commentID uint, content string) (*dto.CommentResponse, error) {
	parent, err := s.social.FindComment(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: comment %d", ErrNotFound, commentID)
		}
		return nil, err
	}
	return s.AddComment(ctx, userID, parent.PostID, &parent.ID, content)
}

// React records a like or dislike. Repeating the same reaction removes it;
// the opposite reaction replaces the existing one. At most one reaction per
// user and post survives.
func (s *socialService) React(ctx context.Context, userID, postID uint, interactionType string) (*dto.ReactionResult, error) {
	if interactionType != entity.InteractionTypeLike && interactionType != entity.InteractionTypeDislike {
		return nil, fmt.Errorf("%w: unknown reaction %q", ErrValidation, interactionType)
	}
	post, err := s.social.FindPost(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: post %d", ErrNotFound, postID)
		}
		return nil, err
	}
	if !post.IsPublic && post.UserID != userID {
		return nil, fmt.Errorf("%w: post %d is private", ErrForbidden, postID)
	}

	existing, err := s.social.FindInteraction(ctx, userID, postID)
	switch {
	case err == nil:
		if existing.InteractionType == interactionType {
			if err := s.social.DeleteInteraction(ctx, existing.ID); err != nil {
				return nil, err
			}
		} else {
			existing.InteractionType = interactionType
			if err := s.social.UpdateInteraction(ctx, existing); err != nil {
				return nil, err
			}
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		interaction := &entity.PostInteraction{
			UserID:          userID,
			PostID:          postID,
			InteractionType: interactionType,
		}
		if err := s.social.CreateInteraction(ctx, interaction); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	likes, err := s.social.CountInteractions(ctx, postID, entity.InteractionTypeLike)
	if err != nil {
		return nil, err
	}
	dislikes, err := s.social.CountInteractions(ctx, postID, entity.InteractionTypeDislike)
	if err != nil {
		return nil, err
	}
	return &dto.ReactionResult{Likes: likes, Dislikes: dislikes}, nil
}

func (s *socialService) mapPosts(ctx context.Context, posts []entity.TradingPost) []dto.PostResponse {
	result := make([]dto.PostResponse, 0, len(posts))
	for i := range posts {
		result = append(result, s.mapPost(ctx, &posts[i]))
	}
	return result
}

func (s *socialService) mapPost(ctx context.Context, post *entity.TradingPost) dto.PostResponse {
	likes, err := s.social.CountInteractions(ctx, post.ID, entity.InteractionTypeLike)
	if err != nil {
		s.logger.DebugContext(ctx, "Failed to count likes", logger.Field("post_id", post.ID), logger.ErrorField(err))
	}
	dislikes, err := s.social.CountInteractions(ctx, post.ID, entity.InteractionTypeDislike)
	if err != nil {
		s.logger.DebugContext(ctx, "Failed to count dislikes", logger.Field("post_id", post.ID), logger.ErrorField(err))
	}
	return dto.PostResponse{
		ID:        post.ID,
		Author:    dto.NewAuthorBrief(post.Author),
		Title:     post.Title,
		Content:   post.Content,
		Ticker:    post.Ticker,
		TradeType: post.TradeType,
		Quantity:  post.Quantity,
		Price:     post.Price,
		IsPublic:  post.IsPublic,
		Likes:     likes,
		Dislikes:  dislikes,
		CreatedAt: post.CreatedAt,
	}
}

// buildCommentTree renders the flat comment list as top-level comments with
// one level of replies. Replies to replies attach to their nearest
// top-level ancestor, oldest first throughout.
func buildCommentTree(comments []entity.Comment) []dto.CommentResponse {
	byID := make(map[uint]*entity.Comment, len(comments))
	for i := range comments {
		byID[comments[i].ID] = &comments[i]
	}
	resolveTop := func(c *entity.Comment) uint {
		for c.ParentID != nil {
			parent, ok := byID[*c.ParentID]
			if !ok {
				break
			}
			c = parent
		}
		return c.ID
	}

	tree := make([]dto.CommentResponse, 0)
	index := make(map[uint]int)
	for i := range comments {
		c := &comments[i]
		if c.ParentID == nil {
			index[c.ID] = len(tree)
			tree = append(tree, dto.CommentResponse{
				ID:        c.ID,
				Author:    dto.NewAuthorBrief(c.Author),
				Content:   c.Content,
				CreatedAt: c.CreatedAt,
			})
		}
	}
	for i := range comments {
		c := &comments[i]
		if c.ParentID == nil {
			continue
		}
		top := resolveTop(c)
		pos, ok := index[top]
		if !ok {
			continue
		}
		tree[pos].Replies = append(tree[pos].Replies, dto.CommentResponse{
			ID:        c.ID,
			Author:    dto.NewAuthorBrief(c.Author),
			Content:   c.Content,
			CreatedAt: c.CreatedAt,
		})
	}
	return tree
}

func mapUsers(users []entity.User) []dto.UserResponse {
	result := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, dto.NewUserResponse(&users[i]))
	}
	return result
}
