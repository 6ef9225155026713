package chatterbox

import "net/url"

// RoomURL derives the room URL from a page location: the fragment, with
// a trailing slash, resolved against the page. "http://h/#lobby" gives
// "http://h/lobby/".
func RoomURL(location string) (string, error) {
	page, err := url.Parse(location)
	if err != nil {
		return "", WrapError(ErrorInvalidConfig, "parse page location", err)
	}
	room := page.Fragment
	if room == "" {
		return "", WrapError(ErrorInvalidConfig, "page location has no room fragment", ErrInvalidConfig)
	}
	ref, err := url.Parse(room + "/")
	if err != nil {
		return "", WrapError(ErrorInvalidConfig, "parse room "+room, err)
	}
	page.Fragment = ""
	return page.ResolveReference(ref).String(), nil
}
