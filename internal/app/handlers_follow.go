package app

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thapelomagqazana/social-media-2/internal/sdk/middleware"
	"github.com/thapelomagqazana/social-media-2/internal/sdk/models"
	"github.com/thapelomagqazana/social-media-2/internal/sdk/mongodb"
	"github.com/thapelomagqazana/social-media-2/internal/services/sentry"
)

// HandleFollow adds the target to the actor's following list and the actor
// to the target's followers list.
func (a *App) HandleFollow(c *gin.Context) {
	targetID := c.Param("userId")
	if !isValidUserID(targetID) {
		writeError(c, ErrInvalidUserID, nil)
		return
	}

	actor, err := middleware.GetUser(c)
	if err != nil {
		writeError(c, ErrUnauthorized, nil)
		return
	}

	if actor.ID.Hex() == targetID {
		writeError(c, ErrCannotFollowSelf, nil)
		return
	}

	target, err := a.db.GetUserByID(c.Request.Context(), targetID)
	if err != nil {
		if mongodb.IsNotFound(err) {
			writeError(c, ErrUserNotFound, nil)
			return
		}
		a.toSentry(c, "follow", "db", sentry.LevelError, err)
		writeError(c, ErrFollowUser, nil)
		return
	}

	if actor.IsFollowing(target.ID) {
		writeError(c, ErrAlreadyFollowing, nil)
		return
	}

	if err := a.db.AddFollow(c.Request.Context(), actor.ID.Hex(), targetID); err != nil {
		if mongodb.IsNotFound(err) {
			writeError(c, ErrUserNotFound, nil)
			return
		}
		a.toSentry(c, "follow", "db", sentry.LevelError, err)
		writeError(c, ErrFollowUser, nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Now following " + target.Name})
}

// HandleUnfollow removes the follow edge in both directions.
func (a *App) HandleUnfollow(c *gin.Context) {
	targetID := c.Param("userId")
	if !isValidUserID(targetID) {
		writeError(c, ErrInvalidUserID, nil)
		return
	}

	actor, err := middleware.GetUser(c)
	if err != nil {
		writeError(c, ErrUnauthorized, nil)
		return
	}

	if actor.ID.Hex() == targetID {
		writeError(c, ErrCannotUnfollowSelf, nil)
		return
	}

	target, err := a.db.GetUserByID(c.Request.Context(), targetID)
	if err != nil {
		if mongodb.IsNotFound(err) {
			writeError(c, ErrUserNotFound, nil)
			return
		}
		a.toSentry(c, "unfollow", "db", sentry.LevelError, err)
		writeError(c, ErrFollowUser, nil)
		return
	}

	if !actor.IsFollowing(target.ID) {
		writeError(c, ErrNotFollowing, nil)
		return
	}

	if err := a.db.RemoveFollow(c.Request.Context(), actor.ID.Hex(), targetID); err != nil {
		if mongodb.IsNotFound(err) {
			writeError(c, ErrUserNotFound, nil)
			return
		}
		a.toSentry(c, "unfollow", "db", sentry.LevelError, err)
		writeError(c, ErrFollowUser, nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Unfollowed " + target.Name})
}

// HandleGetFollowers lists the populated follower summaries of a user,
// honoring the private-account rule.
func (a *App) HandleGetFollowers(c *gin.Context) {
	owner, errCode := a.loadFollowListOwner(c)
	if errCode != "" {
		writeError(c, errCode, nil)
		return
	}

	users, err := a.db.GetUsersByIDs(c.Request.Context(), owner.Followers)
	if err != nil {
		a.toSentry(c, "get_followers", "db", sentry.LevelError, err)
		writeError(c, ErrRetrieveUsers, nil)
		return
	}

	summaries := make([]UserSummary, 0, len(users))
	for _, u := range users {
		summaries = append(summaries, toUserSummary(u))
	}

	c.JSON(http.StatusOK, gin.H{"followers": summaries})
}

// HandleGetFollowing lists the populated following summaries of a user,
// honoring the private-account rule.
func (a *App) HandleGetFollowing(c *gin.Context) {
	owner, errCode := a.loadFollowListOwner(c)
	if errCode != "" {
		writeError(c, errCode, nil)
		return
	}

	users, err := a.db.GetUsersByIDs(c.Request.Context(), owner.Following)
	if err != nil {
		a.toSentry(c, "get_following", "db", sentry.LevelError, err)
		writeError(c, ErrRetrieveUsers, nil)
		return
	}

	summaries := make([]UserSummary, 0, len(users))
	for _, u := range users {
		summaries = append(summaries, toUserSummary(u))
	}

	c.JSON(http.StatusOK, gin.H{"following": summaries})
}

// loadFollowListOwner resolves the :userId owner and applies the privacy
// check: a private account's lists are visible only to itself, its
// followers, and admins.
func (a *App) loadFollowListOwner(c *gin.Context) (models.User, string) {
	userID := c.Param("userId")
	if !isValidUserID(userID) {
		return models.User{}, ErrUserNotFound
	}

	actor, err := middleware.GetUser(c)
	if err != nil {
		return models.User{}, ErrUnauthorized
	}

	owner, err := a.db.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		if mongodb.IsNotFound(err) {
			return models.User{}, ErrUserNotFound
		}
		a.toSentry(c, "follow_list", "db", sentry.LevelError, err)
		return models.User{}, ErrRetrieveUsers
	}

	if owner.Private && actor.ID != owner.ID && actor.Role != models.RoleAdmin && !owner.HasFollower(actor.ID) {
		return models.User{}, ErrPrivateAccount
	}

	return owner, ""
}
