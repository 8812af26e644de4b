package forum

import "github.com/ummahhub/community-api/internal/domain"

// Actor is whoever triggers a forum action.
type Actor struct {
	Admin *domain.Admin
}

// PublicActor is an unauthenticated visitor.
var PublicActor = Actor{}

// AdminActor wraps an authenticated admin session.
func AdminActor(admin *domain.Admin) Actor {
	return Actor{Admin: admin}
}

// CanReply reports whether the thread accepts new public replies.
func CanReply(thread *domain.ForumThread) bool {
	return thread != nil && !thread.IsClosed
}

// CanAdminReply reports whether an admin may reply. Admins may answer closed threads too.
func CanAdminReply(thread *domain.ForumThread, actor Actor) bool {
	return thread != nil && CanModerate(actor)
}

// CanModerate reports whether actor holds an admin session.
func CanModerate(actor Actor) bool {
	return actor.Admin != nil
}

// ClassifyReply derives the display badge. It gates nothing.
func ClassifyReply(reply domain.ForumReply) domain.ReplyClass {
	if reply.IsAdminReply {
		return domain.ReplyClassAdmin
	}
	return domain.ReplyClassPublic
}
