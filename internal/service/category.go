package service

import (
	"github.com/inkwell-labs/inkwell-admin-api/internal/models"
)

// Activity categories shown on the dashboard. CategoryOther catches
// (action, entity) pairs outside the fixed table; such events are kept and
// logged, never dropped.
const (
	CategoryUserManagement   = "user_management"
	CategoryToolManagement   = "tool_management"
	CategoryReviewManagement = "review_management"
	CategoryBlogModeration   = "blog_moderation"
	CategoryBlogCreation     = "blog_creation"
	CategoryOther            = "other"
)

// Classify maps an (action, entityType) pair to its dashboard category.
// The table is part of the reporting contract and must stay stable.
func Classify(action, entityType string) string {
	switch entityType {
	case models.TargetUser:
		switch action {
		case models.ActionRoleChanged, models.ActionBlocked, models.ActionUnblocked,
			models.ActionProfileUpdated, models.ActionDataModified, models.ActionAccountDeleted:
			return CategoryUserManagement
		}
	case models.TargetTool:
		switch action {
		case models.ActionCreated, models.ActionUpdated, models.ActionDeleted:
			return CategoryToolManagement
		}
	case models.TargetReview:
		switch action {
		case models.ActionHidden, models.ActionRestored, models.ActionReplied:
			return CategoryReviewManagement
		}
	case models.TargetBlog:
		switch action {
		case models.ActionApproved, models.ActionRejected, models.ActionReposted,
			models.ActionMovedToTrash, models.ActionRestored:
			return CategoryBlogModeration
		case models.ActionCreated:
			return CategoryBlogCreation
		}
	}
	return CategoryOther
}

// actionTitles maps actions to the human labels shown on dashboard cards.
var actionTitles = map[string]string{
	models.ActionRoleChanged:    "Changed a user role",
	models.ActionBlocked:        "Blocked a user",
	models.ActionUnblocked:      "Unblocked a user",
	models.ActionProfileUpdated: "Updated a profile",
	models.ActionDataModified:   "Modified user data",
	models.ActionAccountDeleted: "Deleted an account",
	models.ActionCreated:        "Created content",
	models.ActionUpdated:        "Updated content",
	models.ActionDeleted:        "Deleted content",
	models.ActionHidden:         "Hid a review",
	models.ActionRestored:       "Restored content",
	models.ActionReplied:        "Replied to a review",
	models.ActionApproved:       "Approved a blog post",
	models.ActionRejected:       "Rejected a blog post",
	models.ActionReposted:       "Reposted a blog post",
	models.ActionMovedToTrash:   "Moved a blog post to trash",
	models.ActionPublished:      "Published a blog post",
	models.ActionUnpublished:    "Unpublished a blog post",
	models.ActionVerified:       "Verified a tool",
	models.ActionUnverified:     "Unverified a tool",
}

// LastActionTitle resolves the dashboard label for an action, falling back
// to a generic description for unrecognized actions.
func LastActionTitle(action string) string {
	if title, ok := actionTitles[action]; ok {
		return title
	}
	if action == "" {
		return "No recent activity"
	}
	return "Performed " + action
}
