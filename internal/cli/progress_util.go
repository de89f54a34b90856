package cli

import "reelkit/internal/tui"

func nonEmptyOrDash(value string) string {
	return tui.NonEmptyOrDash(value)
}

func truncateWithEllipsis(value string, limit int) string {
	return tui.TruncateWithEllipsis(value, limit)
}
