package lark

import (
	"encoding/base64"
	"errors"
	"strings"
)

// ErrInvalidDataURI is returned for payloads that are not base64 data URIs
var ErrInvalidDataURI = errors.New("invalid data URI")

// DecodeDataURI splits a "data:<type>;base64,<payload>" URI into its content type and bytes
func DecodeDataURI(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, ErrInvalidDataURI
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrInvalidDataURI
	}
	contentType, isBase64 := strings.CutSuffix(header, ";base64")
	if !isBase64 {
		return "", nil, ErrInvalidDataURI
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, errors.Join(ErrInvalidDataURI, err)
	}
	if contentType == "" {
		contentType = "text/plain"
	}
	return contentType, data, nil
}
