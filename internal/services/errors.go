package services

import "errors"

// Kind classifies errors that are reported back to the user rather than
// treated as failures of the service.
type Kind uint8

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindConflict
	KindRateLimit
	KindForbidden
)

// Error is a user-facing error. Msg is safe to show to the client.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

// Is lets errors.Is match a specific error against the bare kind sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Msg == "" && t.Kind == e.Kind
}

// Kind sentinels, for errors.Is(err, services.ErrNotFound) and the like.
var (
	ErrValidation    = &Error{Kind: KindValidation}
	ErrNotFound      = &Error{Kind: KindNotFound}
	ErrStateConflict = &Error{Kind: KindConflict}
	ErrRateLimited   = &Error{Kind: KindRateLimit}
	ErrForbidden     = &Error{Kind: KindForbidden}
)

var (
	ErrUserNotFound          = &Error{KindNotFound, "User not found."}
	ErrBlogNotFound          = &Error{KindNotFound, "Blog not found."}
	ErrCommentNotFound       = &Error{KindNotFound, "Comment not found."}
	ErrEmailNotFound         = &Error{KindNotFound, "Email address not found."}
	ErrNotificationNotFound  = &Error{KindNotFound, "Notification not found."}
	ErrFollowRequestNotFound = &Error{KindNotFound, "Follow request not found."}
	ErrNoPendingOTP          = &Error{KindNotFound, "No OTP found for this email. Please request a new one."}

	ErrSelfFollow         = &Error{KindValidation, "You cannot follow yourself."}
	ErrPasswordMismatch   = &Error{KindValidation, "Passwords do not match."}
	ErrWrongPassword      = &Error{KindValidation, "Incorrect password."}
	ErrInvalidCredentials = &Error{KindValidation, "Invalid login or password."}
	ErrBadConfirmation    = &Error{KindValidation, `Please type "DELETE" to confirm.`}
	ErrInvalidVisibility  = &Error{KindValidation, "Invalid visibility setting."}
	ErrInvalidAction      = &Error{KindValidation, "Invalid action."}
	ErrEmptyComment       = &Error{KindValidation, "Comment cannot be empty."}
	ErrUnverifiedEmail    = &Error{KindValidation, "Only verified emails can be set as primary."}
	ErrPrimaryEmail       = &Error{KindValidation, "The primary email address cannot be removed."}
	ErrNotFollowRequest   = &Error{KindValidation, "This notification is not a follow request."}
	ErrOTPRejected        = &Error{KindValidation, "Invalid or expired code."}

	ErrUsernameTaken        = &Error{KindConflict, "This username is already taken."}
	ErrEmailTaken           = &Error{KindConflict, "This email address is already in use."}
	ErrAlreadyFollowing     = &Error{KindConflict, "You are already following this user."}
	ErrAlreadyRequested     = &Error{KindConflict, "Follow request already sent."}
	ErrAlreadyApproved      = &Error{KindConflict, "This follow request was already accepted."}
	ErrNotFollowing         = &Error{KindConflict, "You are not following this user."}
	ErrEmailAlreadyVerified = &Error{KindConflict, "This email is already verified."}

	ErrTooManyOTPRequests = &Error{KindRateLimit, "Too many OTP requests. Please try again later."}

	ErrNotRequestRecipient = &Error{KindForbidden, "This follow request is not addressed to you."}
	ErrNotBlogAuthor       = &Error{KindForbidden, "You can only change your own blogs."}
)

// ErrMailDispatch is returned when the code could not be sent. The OTP row has
// already been removed when callers see it.
var ErrMailDispatch = errors.New("failed to send verification email")

// KindOf returns the kind of a user-facing error, or 0 for anything else.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
