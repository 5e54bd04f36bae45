// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package poolclient

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/vechain/stakepool/api/events"
)

var ErrUnexpectedMsg = errors.New("unexpected message")

// EventWrapper carries either a received event or the error which ended the subscription.
type EventWrapper struct {
	Data  *events.FilteredEvent
	Error error
}

// SubscribeEvents streams the events matching query, see /subscriptions/event for the parameters.
// The channel is closed once the subscription ends or ctx is done.
func (c *Client) SubscribeEvents(ctx context.Context, query url.Values) (<-chan EventWrapper, error) {
	u, err := url.Parse(c.url)
	if err != nil {
		return nil, fmt.Errorf("invalid url - %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/subscriptions/event"
	u.RawQuery = query.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("unable to connect - %w", err)
	}

	eventChan := make(chan EventWrapper)
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()
	go func() {
		defer close(eventChan)
		defer close(done)
		defer conn.Close()

		for {
			var ev events.FilteredEvent
			if err := conn.ReadJSON(&ev); err != nil {
				if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					return
				}
				select {
				case eventChan <- EventWrapper{Error: fmt.Errorf("%w: %w", ErrUnexpectedMsg, err)}:
				case <-ctx.Done():
				}
				return
			}
			select {
			case eventChan <- EventWrapper{Data: &ev}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return eventChan, nil
}
