package assets

import (
	"encoding/base64"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

var ErrInvalidDataURL = errors.New("assets: invalid data url")

func IsDataURL(uri string) bool {
	return strings.HasPrefix(uri, "data:")
}

// DataURLMediaType returns the media type of a data-URL, "" if omitted.
func DataURLMediaType(uri string) string {
	header, _, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return ""
	}
	mediaType, _, _ := strings.Cut(header, ";")
	return mediaType
}

// DecodeDataURL decodes "data:[<mediatype>][;base64],<data>".
func DecodeDataURL(uri string) ([]byte, error) {
	if !IsDataURL(uri) {
		return nil, ErrInvalidDataURL
	}
	header, payload, ok := strings.Cut(uri[len("data:"):], ",")
	if !ok {
		return nil, errors.Wrap(ErrInvalidDataURL, "missing ','")
	}
	if strings.HasSuffix(header, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			// some exporters drop the padding
			data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		}
		if err != nil {
			return nil, errors.Wrap(ErrInvalidDataURL, err.Error())
		}
		return data, nil
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidDataURL, err.Error())
	}
	return []byte(s), nil
}
