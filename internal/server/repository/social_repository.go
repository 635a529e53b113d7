package repository

import (
	"context"

	"papertrade/internal/entity"

	"gorm.io/gorm"
)

// SocialRepository defines the data operations for the follow graph, posts,
// comments, and reactions.
type SocialRepository interface {
	CreateFollow(ctx context.Context, followerID, followedID uint) error
	DeleteFollow(ctx context.Context, followerID, followedID uint) (bool, error)
	FollowExists(ctx context.Context, followerID, followedID uint) (bool, error)
	ListFollowing(ctx context.Context, userID uint) ([]entity.User, error)
	ListFollowers(ctx context.Context, userID uint) ([]entity.User, error)

	FindPost(ctx context.Context, id uint) (*entity.TradingPost, error)
	ListPostsByUser(ctx context.Context, userID uint, publicOnly bool) ([]entity.TradingPost, error)
	FollowedPosts(ctx context.Context, userID uint) ([]entity.TradingPost, error)
	PopularPosts(ctx context.Context, excludeUserIDs []uint, limit int) ([]entity.TradingPost, error)
	SavePost(ctx context.Context, post *entity.TradingPost) error

	CreateComment(ctx context.Context, comment *entity.Comment) error
	FindComment(ctx context.Context, id uint) (*entity.Comment, error)
	ListComments(ctx context.Context, postID uint) ([]entity.Comment, error)

	FindInteraction(ctx context.Context, userID, postID uint) (*entity.PostInteraction, error)
	CreateInteraction(ctx context.Context, interaction *entity.PostInteraction) error
	UpdateInteraction(ctx context.Context, interaction *entity.PostInteraction) error
	DeleteInteraction(ctx context.Context, id uint) error
	CountInteractions(ctx context.Context, postID uint, interactionType string) (int64, error)
}

// NewSocialRepository creates a new GORM-based social repository.
func NewSocialRepository(db *gorm.DB) SocialRepository {
	return &socialRepository{db: db}
}

type socialRepository struct {
	db *gorm.DB
}

func (r *socialRepository) CreateFollow(ctx context.Context, followerID, followedID uint) error {
	edge := entity.Follow{FollowerID: followerID, FollowedID: followedID}
	return r.db.WithContext(ctx).Create(&edge).Error
}

// DeleteFollow removes an edge and reports whether one existed.
func (r *socialRepository) DeleteFollow(ctx context.Context, followerID, followedID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Delete(&entity.Follow{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *socialRepository) FollowExists(ctx context.Context, followerID, followedID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Follow{}).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *socialRepository) ListFollowing(ctx context.Context, userID uint) ([]entity.User, error) {
	var users []entity.User
	err := r.db.WithContext(ctx).
		Joins("JOIN follows ON follows.followed_id = users.id").
		Where("follows.follower_id = ?", userID).
		Order("users.net_id").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *socialRepository) ListFollowers(ctx context.Context, userID uint) ([]entity.User, error) {
	var users []entity.User
	err := r.db.WithContext(ctx).
		Joins("JOIN follows ON follows.follower_id = users.id").
		Where("follows.followed_id = ?", userID).
		Order("users.net_id").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *socialRepository) FindPost(ctx context.Context, id uint) (*entity.TradingPost, error) {
	var post entity.TradingPost
	if err := r.db.WithContext(ctx).Preload("Author").First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *socialRepository) ListPostsByUser(ctx context.Context, userID uint, publicOnly bool) ([]entity.TradingPost, error) {
	q := r.db.WithContext(ctx).
		Preload("Author").
		Where("user_id = ?", userID)
	if publicOnly {
		q = q.Where("is_public = ?", true)
	}
	var posts []entity.TradingPost
	if err := q.Order("created_at DESC").Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// FollowedPosts returns public posts from users the given user follows,
// newest first.
func (r *socialRepository) FollowedPosts(ctx context.Context, userID uint) ([]entity.TradingPost, error) {
	var posts []entity.TradingPost
	err := r.db.WithContext(ctx).
		Preload("Author").
		Joins("JOIN follows ON follows.followed_id = trading_posts.user_id").
		Where("follows.follower_id = ?", userID).
		Where("trading_posts.is_public = ?", true).
		Order("trading_posts.created_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// PopularPosts returns public posts outside the excluded authors, ranked by
// like count then recency.
func (r *socialRepository) PopularPosts(ctx context.Context, excludeUserIDs []uint, limit int) ([]entity.TradingPost, error) {
	q := r.db.WithContext(ctx).
		Preload("Author").
		Model(&entity.TradingPost{}).
		Select("trading_posts.*, (SELECT COUNT(*) FROM post_interactions pi WHERE pi.post_id = trading_posts.id AND pi.interaction_type = ?) AS like_count", entity.InteractionTypeLike).
		Where("trading_posts.is_public = ?", true)
	if len(excludeUserIDs) > 0 {
		q = q.Where("trading_posts.user_id NOT IN ?", excludeUserIDs)
	}
	var posts []entity.TradingPost
	err := q.Order("like_count DESC, trading_posts.created_at DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *socialRepository) SavePost(ctx context.Context, post *entity.TradingPost) error {
	return r.db.WithContext(ctx).Save(post).Error
}

func (r *socialRepository) CreateComment(ctx context.Context, comment *entity.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *socialRepository) FindComment(ctx context.Context, id uint) (*entity.Comment, error) {
	var comment entity.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListComments returns every comment on a post, oldest first; callers
// assemble the reply tree from ParentID.
func (r *socialRepository) ListComments(ctx context.Context, postID uint) ([]entity.Comment, error) {
	var comments []entity.Comment
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *socialRepository) FindInteraction(ctx context.Context, userID, postID uint) (*entity.PostInteraction, error) {
	var interaction entity.PostInteraction
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		First(&interaction).Error
	if err != nil {
		return nil, err
	}
	return &interaction, nil
}

func (r *socialRepository) CreateInteraction(ctx context.Context, interaction *entity.PostInteraction) error {
	return r.db.WithContext(ctx).Create(interaction).Error
}

func (r *socialRepository) UpdateInteraction(ctx context.Context, interaction *entity.PostInteraction) error {
	return r.db.WithContext(ctx).Save(interaction).Error
}

func (r *socialRepository) DeleteInteraction(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&entity.PostInteraction{}, id).Error
}

func (r *socialRepository) CountInteractions(ctx context.Context, postID uint, interactionType string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.PostInteraction{}).
		Where("post_id = ? AND interaction_type = ?", postID, interactionType).
		Count(&count).Error
	return count, err
}
