// Package share encodes markdown into URL-safe links and back.
package share

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
)

// Param is the query parameter carrying the encoded document.
const Param = "doc"

// Encode packs markdown into byte-safe base64 of its UTF-8 text.
func Encode(markdown string) string {
	return base64.URLEncoding.EncodeToString([]byte(markdown))
}

// Decode unpacks a share parameter. Standard base64 is accepted too, for
// links produced by older versions.
func Decode(encoded string) (string, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return "", fmt.Errorf("empty share payload")
	}
	data, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		data, err = base64.StdEncoding.DecodeString(encoded)
	}
	if err != nil {
		return "", fmt.Errorf("decode share payload: %w", err)
	}
	return string(data), nil
}

// Link holds a built share URL and whether it is long enough to break in
// some clients.
type Link struct {
	URL     string `json:"url"`
	Length  int    `json:"length"`
	TooLong bool   `json:"too_long"`
}

// Build constructs a share link on base (e.g. "https://host") pointing at
// the viewer page. warnLen is the URL length beyond which TooLong is set;
// ~2000 is where older browsers and chat clients start truncating.
func Build(base, markdown string, warnLen int) Link {
	u := strings.TrimRight(base, "/") + "/view?" + Param + "=" + url.QueryEscape(Encode(markdown))
	return Link{
		URL:     u,
		Length:  len(u),
		TooLong: warnLen > 0 && len(u) > warnLen,
	}
}
