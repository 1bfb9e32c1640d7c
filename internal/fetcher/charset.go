package fetcher

import (
	"bytes"
	"io"
	"mime"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// decodeCharset converts a response body to UTF-8 based on the charset
// parameter of the Content-Type header. The HTML parser downstream expects
// UTF-8. Bodies with no declared charset, an unknown one, or a decode
// failure are returned as-is: the parser degrades gracefully on mis-encoded
// text, while a dropped page would not.
func decodeCharset(body []byte, contentType string) []byte {
	if contentType == "" {
		return body
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return body
	}
	name := strings.ToLower(params["charset"])
	if name == "" || name == "utf-8" || name == "utf8" {
		return body
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return body
	}
	decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(body), enc.NewDecoder()))
	if err != nil {
		return body
	}
	return decoded
}
