package status

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	INFO = iota
	ERROR
	PROGRESS
	// modal message box, ui must be acknowledged by user
	DIALOG
)

type Message struct {
	Message  string
	Title    string `json:",omitempty"`
	Time     time.Time
	Type     int
	Progress float32
}

type Listener func(m Message)

type client struct {
	conn *websocket.Conn
	send chan []byte
}

func (c *client) writePump() {
	ticker := time.NewTicker(time.Second * 30)
	defer func() {
		ticker.Stop()
		unregisterClient(c)
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(40 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Printf("[status] ws write msg error: %v", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(40 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[status] ws write ping error: %v", err)
				return
			}
		}
	}
}

// client only listens, incoming frames are read to process pings and close
func (c *client) readPump() {
	defer func() {
		unregisterClient(c)
		close(c.send)
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func NewClient(conn *websocket.Conn) *client {
	c := &client{conn: conn, send: make(chan []byte, 32)}
	globalLock.Lock()
	broadcastList[c] = true
	if lastMessage != nil {
		c.send <- lastMessage
	}
	globalLock.Unlock()
	go c.writePump()
	go c.readPump()
	return c
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Upgrades request to websocket and subscribes it to status messages
func Handler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[status] ws upgrade error: %v", err)
		return
	}
	NewClient(conn)
}

var statusBroadcast chan []byte
var broadcastList map[*client]bool
var listeners = make(map[int]Listener)
var listenerSeq int
var globalLock sync.Mutex
var lastMessage []byte = nil

func unregisterClient(c *client) {
	globalLock.Lock()
	defer globalLock.Unlock()
	delete(broadcastList, c)
}

// Listeners are called synchronously for every message.
// Returned func removes the listener.
func AddListener(l Listener) func() {
	globalLock.Lock()
	defer globalLock.Unlock()
	listenerSeq++
	id := listenerSeq
	listeners[id] = l
	return func() {
		globalLock.Lock()
		defer globalLock.Unlock()
		delete(listeners, id)
	}
}

func init() {
	statusBroadcast = make(chan []byte, 16)
	broadcastList = make(map[*client]bool)
	go func() {
		for data := range statusBroadcast {
			globalLock.Lock()
			lastMessage = data
			for c := range broadcastList {
				select {
				case c.send <- data:
				default:
					log.Printf("[status] ws client is too slow, message dropped")
				}
			}
			globalLock.Unlock()
		}
	}()
}

func Status(title, msg string, _type int, progress float32) {
	if math.IsNaN(float64(progress)) || math.IsInf(float64(progress), 0) {
		progress = 0
	}
	m := Message{
		Message:  msg,
		Title:    title,
		Time:     time.Now(),
		Type:     _type,
		Progress: progress}

	globalLock.Lock()
	ls := make([]Listener, 0, len(listeners))
	for _, l := range listeners {
		ls = append(ls, l)
	}
	globalLock.Unlock()
	for _, l := range ls {
		l(m)
	}

	data, err := json.Marshal(&m)
	if err != nil {
		panic(err)
	}
	statusBroadcast <- data
}

func Info(format string, a ...interface{}) {
	Status("", fmt.Sprintf(format, a...), INFO, 0.0)
}

func Error(format string, a ...interface{}) {
	Status("", fmt.Sprintf(format, a...), ERROR, 0.0)
}

func Progress(progress float32, format string, a ...interface{}) {
	Status("", fmt.Sprintf(format, a...), PROGRESS, progress)
}

func Dialog(title string, format string, a ...interface{}) {
	Status(title, fmt.Sprintf(format, a...), DIALOG, 0.0)
}

// Progress of a long operation split into a known number of steps
type Task struct {
	title string
	total int
	done  int
}

func BeginTask(title string, steps int) *Task {
	t := &Task{title: title, total: steps}
	Status(title, title, PROGRESS, 0)
	return t
}

func (t *Task) Step(format string, a ...interface{}) {
	t.done++
	var p float32 = 1
	if t.total > 0 && t.done < t.total {
		p = float32(t.done) / float32(t.total)
	}
	Status(t.title, fmt.Sprintf(format, a...), PROGRESS, p)
}

func (t *Task) Finish(format string, a ...interface{}) {
	t.done = t.total
	Status(t.title, fmt.Sprintf(format, a...), INFO, 1)
}
