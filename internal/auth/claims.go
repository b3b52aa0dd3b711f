package auth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
)

var segmentParser = jwt.NewParser(jwt.WithPaddingAllowed())

// DecodeClaims reads id and role_id from the payload segment of a JWT-shaped
// token. The signature is not checked.
func DecodeClaims(token string) (Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return Claims{}, newError(KindTokenDecode, fmt.Sprintf("expected 3 segments, got %d", len(parts)), nil)
	}

	raw, err := segmentParser.DecodeSegment(parts[1])
	if err != nil {
		return Claims{}, newError(KindTokenDecode, "payload is not base64url", err)
	}
	if !utf8.Valid(raw) {
		return Claims{}, newError(KindTokenDecode, "payload is not valid UTF-8", nil)
	}

	var payload jwt.MapClaims
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		return Claims{}, newError(KindTokenDecode, "payload is not a JSON object", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return Claims{}, newError(KindTokenDecode, "trailing data after payload", nil)
	}
	if payload == nil {
		return Claims{}, newError(KindTokenDecode, "payload is not a JSON object", nil)
	}

	return Claims{
		ID:     claimString(payload["id"]),
		RoleID: claimString(payload["role_id"]),
	}, nil
}

// ClaimsOrUnknown applies the lenient policy: an undecodable token still yields
// a usable placeholder identity.
func ClaimsOrUnknown(token string) (Claims, error) {
	c, err := DecodeClaims(token)
	if err != nil {
		return Claims{ID: UnknownUserID}, err
	}
	return c, nil
}

func claimString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
