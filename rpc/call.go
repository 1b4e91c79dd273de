// Package rpc wraps mono request-reply calls whose responses carry a
// fault.Reply.
package rpc

import (
	"context"
	"encoding/json"

	"github.com/example/storefront/domain/fault"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// Replier is implemented by response types that embed fault.Reply.
type Replier[T any] interface {
	*T
	Failure() error
}

// Call invokes service and returns its typed failure, if any. Transport
// errors are reported as ServiceUnavailable.
func Call[Req any, Resp any, P Replier[Resp]](ctx context.Context, container mono.ServiceContainer, service string, req *Req) (*Resp, error) {
	var resp Resp
	if err := helper.CallRequestReplyService(
		ctx,
		container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		&resp,
	); err != nil {
		return nil, fault.Unavailable(service, err)
	}
	if err := P(&resp).Failure(); err != nil {
		return nil, err
	}
	return &resp, nil
}
