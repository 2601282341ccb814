package core

import (
	"fmt"
)

// SplitToken splits a compact token into its 2 or 3 segments.
func SplitToken(token string) (Segments, error) {
	if len(token) == 0 {
		return Segments{}, ErrEmptyToken
	}

	first, second := -1, -1
	count := 1
	for i := 0; i < len(token); i++ {
		if token[i] != '.' {
			continue
		}
		count++
		switch count {
		case 2:
			first = i
		case 3:
			second = i
		}
	}

	switch count {
	case 2:
		return Segments{
			Header:  token[:first],
			Payload: token[first+1:],
		}, nil
	case 3:
		return Segments{
			Header:    token[:first],
			Payload:   token[first+1 : second],
			Signature: token[second+1:],
			Signed:    true,
		}, nil
	default:
		return Segments{}, fmt.Errorf("%w, got %d", ErrSegmentCount, count)
	}
}
