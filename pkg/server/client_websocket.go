package server

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"

	"codeberg.org/tslocum/bgrules"
	"github.com/coder/websocket"
)

var acceptOptions = &websocket.AcceptOptions{
	InsecureSkipVerify: true,
	CompressionMode:    websocket.CompressionContextTakeover,
}

var _ bgrules.Client = &webSocketClient{}

type webSocketClient struct {
	conn       *websocket.Conn
	address    string
	events     chan []byte
	commands   chan<- []byte
	terminated atomic.Bool
	wgEvents   sync.WaitGroup
	verbose    bool
}

func newWebSocketClient(r *http.Request, w http.ResponseWriter, commands chan<- []byte, events chan []byte, address string, verbose bool) *webSocketClient {
	conn, err := websocket.Accept(w, r, acceptOptions)
	if err != nil {
		return nil
	}

	return &webSocketClient{
		conn:     conn,
		address:  address,
		events:   events,
		commands: commands,
		verbose:  verbose,
	}
}

func (c *webSocketClient) Address() string {
	return c.address
}

func (c *webSocketClient) HandleReadWrite() {
	if c.Terminated() {
		return
	}

	closeWrite := make(chan struct{}, 1)

	go c.writeEvents(closeWrite)
	c.readCommands()

	closeWrite <- struct{}{}
}

func (c *webSocketClient) Write(message []byte) {
	if c.Terminated() {
		return
	}

	c.wgEvents.Add(1)
	c.events <- message
}

func (c *webSocketClient) readCommands() {
	for {
		if c.Terminated() {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), clientTimeout)
		msgType, msgContent, err := c.conn.Read(ctx)
		cancel()
		if err != nil {
			c.Terminate(err.Error())
			return
		} else if msgType != websocket.MessageText {
			continue
		}

		buf := make([]byte, len(msgContent))
		copy(buf, msgContent)
		c.commands <- buf

		if c.verbose {
			logClientRead(msgContent)
		}
	}
}

func (c *webSocketClient) writeEvents(closeWrite chan struct{}) {
	var event []byte
	for {
		select {
		case <-closeWrite:
			for {
				select {
				case <-c.events:
					c.wgEvents.Done()
				default:
					return
				}
			}
		case event = <-c.events:
		}

		if c.Terminated() {
			c.wgEvents.Done()
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), clientTimeout)
		err := c.conn.Write(ctx, websocket.MessageText, event)
		cancel()
		if err != nil {
			c.Terminate(err.Error())
			c.wgEvents.Done()
			continue
		}

		if c.verbose {
			logClientWrite(event)
		}
		c.wgEvents.Done()
	}
}

func (c *webSocketClient) Terminate(reason string) {
	if !c.terminated.CompareAndSwap(false, true) {
		return
	}
	c.conn.CloseNow()
}

func (c *webSocketClient) Terminated() bool {
	return c.terminated.Load()
}
