// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatloop Contributors

package auth

import "net/url"

// Avatar placeholder templates, keyed by gender.
// See https://avatar-placeholder.iran.liara.run/
const (
	boyAvatarTemplate  = "https://avatar.iran.liara.run/public/boy?username="
	girlAvatarTemplate = "https://avatar.iran.liara.run/public/girl?username="
)

// AvatarURL derives the profile picture URL from username and gender.
// The derivation is total: any gender other than male selects the girl
// template. Input validation rejects unrecognized genders before this
// point, so in practice only the two enum values reach here.
func AvatarURL(username string, gender Gender) string {
	if gender == GenderMale {
		return boyAvatarTemplate + url.QueryEscape(username)
	}
	return girlAvatarTemplate + url.QueryEscape(username)
}
