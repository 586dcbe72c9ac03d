package services

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/blogsphere/backend/internal/models"
	"github.com/anonto42/blogsphere/backend/internal/repositories"
	"github.com/anonto42/blogsphere/backend/pkg/logger"
)

// Notifier writes notifications as a side effect of other actions. Every
// method takes the caller's transaction so the notification commits or rolls
// back together with the change that caused it.
type Notifier struct {
	now func() time.Time
}

func NewNotifier() *Notifier {
	return &Notifier{now: time.Now}
}

func (n *Notifier) create(ctx context.Context, tx *repositories.Store, notification *models.Notification) error {
	notification.CreatedAt = n.now()
	notification.Message = truncate(notification.Message, 255)
	if err := tx.Notifications.CreateNotification(ctx, notification); err != nil {
		return fmt.Errorf("create %s notification: %w", notification.Type, err)
	}
	l := logger.Ctx(ctx)
	l.Debug().Str("type", string(notification.Type)).Uint("recipient_id", notification.RecipientID).Msg("notification created")
	return nil
}

// Liked notifies the blog author unless they liked their own blog. Callers
// invoke it only on the unlike to like transition.
func (n *Notifier) Liked(ctx context.Context, tx *repositories.Store, liker *models.User, blog *models.Blog) error {
	if liker.ID == blog.AuthorID {
		return nil
	}
	return n.create(ctx, tx, &models.Notification{
		SenderID:    uintPtr(liker.ID),
		RecipientID: blog.AuthorID,
		Type:        models.NotificationLike,
		Message:     fmt.Sprintf("%s liked your blog \"%s\".", liker.Username, truncate(blog.Title, 120)),
		Ref:         models.BlogRef(blog.ID),
	})
}

// Commented notifies the blog author of a new comment or reply. A reply also
// notifies the parent comment's author when that is a third person.
func (n *Notifier) Commented(ctx context.Context, tx *repositories.Store, author *models.User, blog *models.Blog, comment *models.Comment, parent *models.Comment) error {
	kind, verb := models.NotificationComment, "commented on"
	if parent != nil {
		kind, verb = models.NotificationReply, "replied on"
	}
	err := n.create(ctx, tx, &models.Notification{
		SenderID:    uintPtr(author.ID),
		RecipientID: blog.AuthorID,
		Type:        kind,
		Message:     fmt.Sprintf("%s %s your blog \"%s\".", author.Username, verb, truncate(blog.Title, 120)),
		Ref:         models.CommentRef(comment.ID),
	})
	if err != nil {
		return err
	}
	if parent == nil || parent.UserID == author.ID || parent.UserID == blog.AuthorID {
		return nil
	}
	return n.create(ctx, tx, &models.Notification{
		SenderID:    uintPtr(author.ID),
		RecipientID: parent.UserID,
		Type:        models.NotificationReply,
		Message:     fmt.Sprintf("%s replied to your comment.", author.Username),
		Ref:         models.CommentRef(comment.ID),
	})
}

func (n *Notifier) Followed(ctx context.Context, tx *repositories.Store, follower *models.User, follow *models.Follow) error {
	return n.create(ctx, tx, &models.Notification{
		SenderID:    uintPtr(follower.ID),
		RecipientID: follow.FollowingID,
		Type:        models.NotificationFollow,
		Message:     fmt.Sprintf("%s started following you.", follower.Username),
		Ref:         models.FollowRef(follow.ID),
	})
}

func (n *Notifier) FollowRequested(ctx context.Context, tx *repositories.Store, follower *models.User, follow *models.Follow) error {
	return n.create(ctx, tx, &models.Notification{
		SenderID:    uintPtr(follower.ID),
		RecipientID: follow.FollowingID,
		Type:        models.NotificationFollowRequest,
		Message:     fmt.Sprintf("%s sent you a follow request.", follower.Username),
		Ref:         models.FollowRef(follow.ID),
	})
}

// FollowAccepted resolves the original request notification, if it still
// exists, and tells the follower.
func (n *Notifier) FollowAccepted(ctx context.Context, tx *repositories.Store, target, follower *models.User, follow *models.Follow, origin *models.Notification) error {
	if origin != nil {
		msg := fmt.Sprintf("You accepted %s's follow request.", follower.Username)
		if err := tx.Notifications.Resolve(ctx, origin.ID, msg); err != nil {
			return err
		}
	}
	return n.create(ctx, tx, &models.Notification{
		SenderID:    uintPtr(target.ID),
		RecipientID: follower.ID,
		Type:        models.NotificationFollowRequest,
		Message:     fmt.Sprintf("%s accepted your follow request.", target.Username),
		Ref:         models.FollowRef(follow.ID),
	})
}

// FollowRejected is FollowAccepted for a rejection. The edge is gone, so the
// new notification carries no reference.
func (n *Notifier) FollowRejected(ctx context.Context, tx *repositories.Store, target, follower *models.User, origin *models.Notification) error {
	if origin != nil {
		msg := fmt.Sprintf("You rejected %s's follow request.", follower.Username)
		if err := tx.Notifications.Resolve(ctx, origin.ID, msg); err != nil {
			return err
		}
	}
	return n.create(ctx, tx, &models.Notification{
		SenderID:    uintPtr(target.ID),
		RecipientID: follower.ID,
		Type:        models.NotificationFollowRequest,
		Message:     fmt.Sprintf("%s rejected your follow request.", target.Username),
		Ref:         models.NoRef(),
	})
}

func trendingKey(authorID uint, blogID string) string {
	return fmt.Sprintf("trending:%d:%s", authorID, blogID)
}

// Trending sends the system notification for blog at most once per
// (author, blog). The unique dedupe key makes the insert a no-op when a
// concurrent detection got there first.
func (n *Notifier) Trending(ctx context.Context, tx *repositories.Store, blog *models.Blog) (bool, error) {
	key := trendingKey(blog.AuthorID, blog.ID)
	exists, err := tx.Notifications.ExistsByDedupeKey(ctx, key)
	if err != nil || exists {
		return false, err
	}
	return tx.Notifications.CreateOnce(ctx, &models.Notification{
		RecipientID: blog.AuthorID,
		Type:        models.NotificationTrending,
		Message:     truncate(fmt.Sprintf("Your blog \"%s\" is now trending in the top 3!", blog.Title), 255),
		Ref:         models.BlogRef(blog.ID),
		DedupeKey:   &key,
		CreatedAt:   n.now(),
	})
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
