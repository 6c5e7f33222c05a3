package app

import (
	"net/http"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/thapelomagqazana/social-media-2/internal/sdk/models"
)

func TestHandleFollow(t *testing.T) {
	t.Run("records the edge on both documents", func(t *testing.T) {
		env := newTestEnv(t)
		actor := env.seedUser(t, "Alice", "alice@example.com")
		target := env.seedUser(t, "Bob", "bob@example.com")

		w := env.do(t, http.MethodPost, "/api/follow/"+target.ID.Hex(), nil, map[string]string{
			"Authorization": env.bearer(t, actor),
		})

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d (body %q)", w.Code, http.StatusOK, w.Body.String())
		}
		if !strings.Contains(w.Body.String(), "Now following Bob") {
			t.Errorf("body = %q, want the follow confirmation", w.Body.String())
		}

		if !env.getUser(t, actor.ID).IsFollowing(target.ID) {
			t.Error("actor's following list missing the target")
		}
		if !env.getUser(t, target.ID).HasFollower(actor.ID) {
			t.Error("target's followers list missing the actor")
		}
	})

	t.Run("duplicate follow", func(t *testing.T) {
		env := newTestEnv(t)
		actor := env.seedUser(t, "Alice", "alice@example.com")
		target := env.seedUser(t, "Bob", "bob@example.com")
		auth := map[string]string{"Authorization": env.bearer(t, actor)}

		env.do(t, http.MethodPost, "/api/follow/"+target.ID.Hex(), nil, auth)
		w := env.do(t, http.MethodPost, "/api/follow/"+target.ID.Hex(), nil, auth)

		assertError(t, w, http.StatusBadRequest, ErrAlreadyFollowing)
		if got := len(env.getUser(t, target.ID).Followers); got != 1 {
			t.Errorf("target has %d followers, want 1", got)
		}
	})

	t.Run("self follow", func(t *testing.T) {
		env := newTestEnv(t)
		actor := env.seedUser(t, "Alice", "alice@example.com")

		w := env.do(t, http.MethodPost, "/api/follow/"+actor.ID.Hex(), nil, map[string]string{
			"Authorization": env.bearer(t, actor),
		})

		assertError(t, w, http.StatusBadRequest, ErrCannotFollowSelf)
	})

	t.Run("unknown target", func(t *testing.T) {
		env := newTestEnv(t)
		actor := env.seedUser(t, "Alice", "alice@example.com")

		w := env.do(t, http.MethodPost, "/api/follow/"+primitive.NewObjectID().Hex(), nil, map[string]string{
			"Authorization": env.bearer(t, actor),
		})

		assertError(t, w, http.StatusNotFound, ErrUserNotFound)
	})

	t.Run("malformed target id", func(t *testing.T) {
		env := newTestEnv(t)
		actor := env.seedUser(t, "Alice", "alice@example.com")

		w := env.do(t, http.MethodPost, "/api/follow/not-hex", nil, map[string]string{
			"Authorization": env.bearer(t, actor),
		})

		assertError(t, w, http.StatusBadRequest, ErrInvalidUserID)
	})
}

func TestHandleUnfollow(t *testing.T) {
	t.Run("removes the edge on both documents", func(t *testing.T) {
		env := newTestEnv(t)
		actor := env.seedUser(t, "Alice", "alice@example.com")
		target := env.seedUser(t, "Bob", "bob@example.com")
		auth := map[string]string{"Authorization": env.bearer(t, actor)}

		env.do(t, http.MethodPost, "/api/follow/"+target.ID.Hex(), nil, auth)
		w := env.do(t, http.MethodDelete, "/api/follow/"+target.ID.Hex(), nil, auth)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d (body %q)", w.Code, http.StatusOK, w.Body.String())
		}
		if !strings.Contains(w.Body.String(), "Unfollowed Bob") {
			t.Errorf("body = %q, want the unfollow confirmation", w.Body.String())
		}

		if env.getUser(t, actor.ID).IsFollowing(target.ID) {
			t.Error("actor still following the target")
		}
		if env.getUser(t, target.ID).HasFollower(actor.ID) {
			t.Error("target still lists the actor as follower")
		}
	})

	t.Run("not following", func(t *testing.T) {
		env := newTestEnv(t)
		actor := env.seedUser(t, "Alice", "alice@example.com")
		target := env.seedUser(t, "Bob", "bob@example.com")

		w := env.do(t, http.MethodDelete, "/api/follow/"+target.ID.Hex(), nil, map[string]string{
			"Authorization": env.bearer(t, actor),
		})

		assertError(t, w, http.StatusBadRequest, ErrNotFollowing)
	})

	t.Run("self unfollow", func(t *testing.T) {
		env := newTestEnv(t)
		actor := env.seedUser(t, "Alice", "alice@example.com")

		w := env.do(t, http.MethodDelete, "/api/follow/"+actor.ID.Hex(), nil, map[string]string{
			"Authorization": env.bearer(t, actor),
		})

		assertError(t, w, http.StatusBadRequest, ErrCannotUnfollowSelf)
	})
}

func TestFollowListings(t *testing.T) {
	type followersBody struct {
		Followers []UserSummary `json:"followers"`
	}
	type followingBody struct {
		Following []UserSummary `json:"following"`
	}

	t.Run("followers are returned as summaries", func(t *testing.T) {
		env := newTestEnv(t)
		owner := env.seedUser(t, "Alice", "alice@example.com")
		fan := env.seedUser(t, "Bob", "bob@example.com")
		env.do(t, http.MethodPost, "/api/follow/"+owner.ID.Hex(), nil, map[string]string{
			"Authorization": env.bearer(t, fan),
		})

		w := env.do(t, http.MethodGet, "/api/users/"+owner.ID.Hex()+"/followers", nil, map[string]string{
			"Authorization": env.bearer(t, owner),
		})

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d (body %q)", w.Code, http.StatusOK, w.Body.String())
		}
		resp := decodeJSON[followersBody](t, w)
		if len(resp.Followers) != 1 {
			t.Fatalf("got %d followers, want 1", len(resp.Followers))
		}
		if resp.Followers[0].ID != fan.ID.Hex() {
			t.Errorf("follower id = %q, want %q", resp.Followers[0].ID, fan.ID.Hex())
		}
		if strings.Contains(w.Body.String(), "email") {
			t.Error("summaries should not expose email addresses")
		}
	})

	t.Run("following list", func(t *testing.T) {
		env := newTestEnv(t)
		owner := env.seedUser(t, "Alice", "alice@example.com")
		target := env.seedUser(t, "Bob", "bob@example.com")
		env.do(t, http.MethodPost, "/api/follow/"+target.ID.Hex(), nil, map[string]string{
			"Authorization": env.bearer(t, owner),
		})

		w := env.do(t, http.MethodGet, "/api/users/"+owner.ID.Hex()+"/following", nil, map[string]string{
			"Authorization": env.bearer(t, owner),
		})

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d (body %q)", w.Code, http.StatusOK, w.Body.String())
		}
		resp := decodeJSON[followingBody](t, w)
		if len(resp.Following) != 1 || resp.Following[0].ID != target.ID.Hex() {
			t.Fatalf("following = %+v, want just %s", resp.Following, target.ID.Hex())
		}
	})

	t.Run("private account hides lists from strangers", func(t *testing.T) {
		env := newTestEnv(t)
		owner := env.seedUser(t, "Alice", "alice@example.com")
		owner.Private = true
		env.putUser(owner)
		follower := env.seedUser(t, "Bob", "bob@example.com")
		env.do(t, http.MethodPost, "/api/follow/"+owner.ID.Hex(), nil, map[string]string{
			"Authorization": env.bearer(t, follower),
		})
		stranger := env.seedUser(t, "Mallory", "mallory@example.com")
		admin := env.seedUser(t, "Root", "root@example.com")
		admin.Role = models.RoleAdmin
		env.putUser(admin)

		path := "/api/users/" + owner.ID.Hex() + "/followers"

		w := env.do(t, http.MethodGet, path, nil, map[string]string{
			"Authorization": env.bearer(t, stranger),
		})
		assertError(t, w, http.StatusForbidden, ErrPrivateAccount)

		for name, viewer := range map[string]models.User{
			"owner":    owner,
			"follower": follower,
			"admin":    admin,
		} {
			w := env.do(t, http.MethodGet, path, nil, map[string]string{
				"Authorization": env.bearer(t, viewer),
			})
			if w.Code != http.StatusOK {
				t.Errorf("%s: status = %d, want %d (body %q)", name, w.Code, http.StatusOK, w.Body.String())
			}
		}
	})

	t.Run("malformed owner id reads as not found", func(t *testing.T) {
		env := newTestEnv(t)
		actor := env.seedUser(t, "Alice", "alice@example.com")

		w := env.do(t, http.MethodGet, "/api/users/not-hex/followers", nil, map[string]string{
			"Authorization": env.bearer(t, actor),
		})

		assertError(t, w, http.StatusNotFound, ErrUserNotFound)
	})
}
