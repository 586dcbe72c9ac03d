package services

// Container holds one instance of every service, wired to a shared store.
type Container struct {
	Accounts      *AccountService
	Emails        *EmailService
	Follows       *FollowService
	Blogs         *BlogService
	Likes         *LikeService
	Comments      *CommentService
	Profiles      *ProfileService
	Notifications *NotificationService
}
