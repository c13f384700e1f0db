package services

import (
	"context"
	"sync"

	"github.com/aaeducates/backend/internal/app/authz"
	"github.com/aaeducates/backend/internal/app/models"
	"github.com/aaeducates/backend/internal/app/repositories"
	"github.com/aaeducates/backend/internal/pkg/apperrors"
	"github.com/aaeducates/backend/internal/pkg/logger"
	"github.com/rs/zerolog"
)

// CommunityService defines the community operations outside plain CRUD
type CommunityService interface {
	ToggleLike(ctx context.Context, actor *authz.Actor, postID int64) (*models.Post, bool, error)
	JoinChat(ctx context.Context, actor *authz.Actor, chatID int64) (*models.GroupChat, error)
}

// communityServiceImpl implements CommunityService
type communityServiceImpl struct {
	posts     *ResourceService[models.Post]
	postStore repositories.Store[models.Post]
	chats     *ResourceService[models.GroupChat]
	logger    zerolog.Logger

	// likeMu serialises toggles so each one sees the edges written before it
	likeMu sync.Mutex
}

// NewCommunityService creates a new CommunityService
func NewCommunityService(catalog *Catalog, stores *repositories.Stores) CommunityService {
	return &communityServiceImpl{
		posts:     catalog.Posts,
		postStore: stores.Posts,
		chats:     catalog.GroupChats,
		logger:    logger.Component("community"),
	}
}

// ToggleLike adds the caller's like to a post, or removes it when present.
// It reports whether the post is liked afterwards.
func (s *communityServiceImpl) ToggleLike(ctx context.Context, actor *authz.Actor, postID int64) (*models.Post, bool, error) {
	if !actor.Authenticated() {
		return nil, false, apperrors.ErrUnauthorized
	}

	s.likeMu.Lock()
	defer s.likeMu.Unlock()

	post, err := s.posts.Get(ctx, actor, postID)
	if err != nil {
		return nil, false, err
	}

	liked := !post.LikedBy(actor.UserID)
	if liked {
		post.Likes = append(post.Likes, actor.UserID)
	} else {
		remaining := make([]int64, 0, len(post.Likes))
		for _, id := range post.Likes {
			if id != actor.UserID {
				remaining = append(remaining, id)
			}
		}
		post.Likes = remaining
	}

	if err := s.postStore.Update(ctx, post); err != nil {
		return nil, false, err
	}

	s.logger.Debug().Int64("postID", postID).Int64("userID", actor.UserID).Bool("liked", liked).Msg("Post like toggled")
	return post, liked, nil
}

// JoinChat returns the chat when the caller may subscribe to its live messages
func (s *communityServiceImpl) JoinChat(ctx context.Context, actor *authz.Actor, chatID int64) (*models.GroupChat, error) {
	chat, err := s.chats.Get(ctx, actor, chatID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !chat.HasMember(actor.UserID) {
		return nil, apperrors.NewForbiddenError("You are not a member of this chat.")
	}
	return chat, nil
}
