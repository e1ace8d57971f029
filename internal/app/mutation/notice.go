package mutation

import "github.com/Overland-East-Bay/club-portal-api/internal/ports/out/noticesink"

var successText = map[Kind]string{
	KindJoin:     "You have joined the club!",
	KindLeave:    "You have left the club",
	KindFollow:   "You are now following this club",
	KindUnfollow: "You have unfollowed this club",
}

var signInText = map[Kind]string{
	KindJoin:     "Please log in to join clubs",
	KindLeave:    "Please log in to leave clubs",
	KindFollow:   "Please log in to follow clubs",
	KindUnfollow: "Please log in to unfollow clubs",
}

var failureText = map[Kind]string{
	KindJoin:     "Could not join the club. Please try again.",
	KindLeave:    "Could not leave the club. Please try again.",
	KindFollow:   "Could not follow the club. Please try again.",
	KindUnfollow: "Could not unfollow the club. Please try again.",
}

// noticeFor translates an outcome into the message shown to the user.
// Ignored repeats produce no notice.
func noticeFor(o Outcome) *noticesink.Notice {
	switch {
	case o.Result == ResultIgnored:
		return nil
	case o.Result == ResultSuccess:
		return &noticesink.Notice{
			Title:       "Success",
			Description: successText[o.Kind],
			Variant:     noticesink.VariantDefault,
		}
	case o.Code == CodeUnauthenticated:
		return &noticesink.Notice{
			Title:       "Authentication required",
			Description: signInText[o.Kind],
			Variant:     noticesink.VariantDestructive,
		}
	default:
		return &noticesink.Notice{
			Title:       "Error",
			Description: failureText[o.Kind],
			Variant:     noticesink.VariantDestructive,
		}
	}
}
