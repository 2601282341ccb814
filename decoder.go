package jwtdecode

import (
	"github.com/cybergodev/jwtdecode/internal/core"
)

// Decode splits and decodes a compact JWT without verifying its signature.
// Both header and payload are base64url-decoded before either is parsed, so a
// token with a broken payload encoding reports ErrBase64Decode even when the
// header is not valid JSON.
func Decode(token string) (*Token, error) {
	seg, err := core.SplitToken(token)
	if err != nil {
		return nil, &DecodeError{Kind: ErrMalformedToken, Err: err}
	}

	rawHeader, err := core.DecodeBase64URL(seg.Header)
	if err != nil {
		return nil, &DecodeError{Kind: ErrBase64Decode, Segment: "header", Err: err}
	}
	rawPayload, err := core.DecodeBase64URL(seg.Payload)
	if err != nil {
		return nil, &DecodeError{Kind: ErrBase64Decode, Segment: "payload", Err: err}
	}

	header, err := core.ParseObject(rawHeader)
	if err != nil {
		return nil, &DecodeError{Kind: ErrClaimParse, Segment: "header", Err: err}
	}
	payload, err := core.ParseObject(rawPayload)
	if err != nil {
		return nil, &DecodeError{Kind: ErrClaimParse, Segment: "payload", Err: err}
	}

	return &Token{
		Header:    Header(header),
		Payload:   Payload(payload),
		Raw:       token,
		signature: seg.Signature,
		signed:    seg.Signed,
	}, nil
}

// GetHeader decodes token and returns its header.
func GetHeader(token string) (Header, error) {
	tok, err := Decode(token)
	if err != nil {
		return nil, err
	}
	return tok.Header, nil
}

// GetPayload decodes token and returns its claims.
func GetPayload(token string) (Payload, error) {
	tok, err := Decode(token)
	if err != nil {
		return nil, err
	}
	return tok.Payload, nil
}
