package db

import (
	"errors"

	"recshelf/internal/lifecycle"
)

// Domain-level database error sentinels.
var (
	// User errors
	ErrUserNotFound = errors.New("user not found")

	// Recommendation errors. The not-found sentinel is the lifecycle
	// engine's so a stale id surfaces the same way on both paths.
	ErrRecommendationNotFound = lifecycle.ErrNotFound
	ErrSelfRecommend          = errors.New("you cannot recommend something to yourself")

	// Media item errors
	ErrMediaItemNotFound = errors.New("media item not found")

	// Friendship errors
	ErrFriendshipNotFound  = errors.New("friendship not found")
	ErrSelfFriend          = errors.New("you cannot send a friend request to yourself")
	ErrDuplicateFriendship = errors.New("a friend request already exists between these users")
)
