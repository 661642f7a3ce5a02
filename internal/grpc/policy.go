package grpc

import (
	"fmt"
	"strings"
)

// ReplyPolicy selects how a rejected request is answered.
type ReplyPolicy int

const (
	// ReplySentinel answers with a zero-valued reply and no transport error.
	ReplySentinel ReplyPolicy = iota
	// ReplyStatus answers with codes.InvalidArgument and BadRequest details.
	ReplyStatus
)

func (p ReplyPolicy) String() string {
	switch p {
	case ReplySentinel:
		return "sentinel"
	case ReplyStatus:
		return "status"
	default:
		return fmt.Sprintf("ReplyPolicy(%d)", int(p))
	}
}

// ParseReplyPolicy accepts "sentinel" or "status". Empty means sentinel.
func ParseReplyPolicy(s string) (ReplyPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sentinel":
		return ReplySentinel, nil
	case "status":
		return ReplyStatus, nil
	default:
		return ReplySentinel, fmt.Errorf("unknown reply policy %q", s)
	}
}
