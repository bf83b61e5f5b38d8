package main

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/moonvale/mud/internal/crypto"
	"github.com/moonvale/mud/internal/packet"
	"github.com/moonvale/mud/internal/protocol"
)

const (
	defaultHost = "127.0.0.1"
	defaultPort = 42523

	maxFrameSize = 1 << 16
)

func main() {
	host := defaultHost
	port := defaultPort
	if len(os.Args) > 1 {
		host = os.Args[1]
	}
	if len(os.Args) > 2 {
		p, err := strconv.Atoi(os.Args[2])
		if err != nil {
			fmt.Fprintf(os.Stderr, "bad port %q\n", os.Args[2])
			os.Exit(2)
		}
		port = p
	}

	if err := run(host, port); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(host string, port int) error {
	conn, err := net.Dial("tcp", fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		return fmt.Errorf("connecting: %w", err)
	}
	defer conn.Close()

	keys, err := crypto.GenerateKeyPair()
	if err != nil {
		return fmt.Errorf("generating keys: %w", err)
	}
	tr := protocol.NewTransport(conn, keys.Private, false, maxFrameSize)

	// announce our public key; the server replies with its own
	hello, err := packet.Encode(packet.ClientKey{
		N: keys.Public().N,
		E: int64(keys.Public().E),
	})
	if err != nil {
		return fmt.Errorf("encoding key announcement: %w", err)
	}
	if err := tr.WritePlain(hello); err != nil {
		return fmt.Errorf("sending key announcement: %w", err)
	}

	done := make(chan struct{})
	go receive(tr, done)

	c := &client{tr: tr}
	fmt.Println("commands: register <user> <pass> | login <user> <pass> | w a s d | say <msg> | grab | drop <id> | logout | quit")

	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		select {
		case <-done:
			return errors.New("server closed the connection")
		default:
		}
		if quit := c.command(strings.TrimSpace(sc.Text())); quit {
			return nil
		}
	}
	return sc.Err()
}

type client struct {
	tr       *protocol.Transport
	username string
}

// command parses one input line and sends the matching message.
// Returns true on quit.
func (c *client) command(line string) bool {
	if line == "" {
		return false
	}
	fields := strings.Fields(line)

	var msg packet.Message
	switch fields[0] {
	case "quit":
		return true
	case "register", "login":
		if len(fields) != 3 {
			fmt.Printf("usage: %s <user> <pass>\n", fields[0])
			return false
		}
		if fields[0] == "register" {
			msg = packet.Register{Username: fields[1], Password: fields[2]}
		} else {
			msg = packet.Login{Username: fields[1], Password: fields[2]}
			c.username = fields[1]
		}
	case "w":
		msg = packet.MoveUp{}
	case "a":
		msg = packet.MoveLeft{}
	case "s":
		msg = packet.MoveDown{}
	case "d":
		msg = packet.MoveRight{}
	case "say":
		msg = packet.Chat{Text: strings.TrimSpace(strings.TrimPrefix(line, "say"))}
	case "grab":
		msg = packet.GrabItem{}
	case "drop":
		if len(fields) != 2 {
			fmt.Println("usage: drop <inventory item id>")
			return false
		}
		id, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			fmt.Println("usage: drop <inventory item id>")
			return false
		}
		msg = packet.DropItem{InventoryItemID: id}
	case "logout":
		msg = packet.Logout{Username: c.username}
	default:
		fmt.Printf("unknown command %q\n", fields[0])
		return false
	}

	c.send(msg)
	return false
}

func (c *client) send(msg packet.Message) {
	data, err := packet.Encode(msg)
	if err != nil {
		fmt.Println("encode error:", err)
		return
	}
	if err := c.tr.Write(data); err != nil {
		fmt.Println("send error:", err)
	}
}

// receive prints server traffic until the stream ends.
func receive(tr *protocol.Transport, done chan<- struct{}) {
	defer close(done)
	for {
		payload, err := tr.Read()
		if err != nil {
			if errors.Is(err, protocol.ErrUndecryptable) {
				continue
			}
			return
		}
		msg, err := packet.Decode(payload)
		if err != nil {
			continue
		}
		show(tr, msg)
	}
}

func show(tr *protocol.Transport, msg packet.Message) {
	switch m := msg.(type) {
	case packet.ClientKey:
		pub, err := crypto.PublicKeyFromParts(m.N, m.E)
		if err != nil {
			fmt.Println("server sent a bad key:", err)
			return
		}
		tr.SetPeerKey(pub)
	case packet.Welcome:
		fmt.Println(m.Banner)
	case packet.ServerTickRate:
		fmt.Printf("[server ticks at %d/s]\n", m.TicksPerSecond)
	case packet.Ok:
		fmt.Println("[ok]")
	case packet.Deny:
		fmt.Println("[denied]", m.Reason)
	case packet.ServerLog:
		fmt.Println(m.Text)
	case packet.WeatherChange:
		fmt.Println("[weather]", m.State)
	case packet.MoveRooms:
		fmt.Printf("[entering room %d]\n", m.RoomID)
	case packet.Goodbye:
		fmt.Printf("[instance %d left view]\n", m.InstanceID)
	case packet.ServerModel:
		switch m.TypeTag {
		case "Instance":
			fmt.Printf("[%s %v at (%v,%v) x%v]\n", m.TypeTag,
				m.Model["id"], m.Model["y"], m.Model["x"], m.Model["amount"])
		case "InventoryItem":
			fmt.Printf("[inventory row %v: %v x%v]\n",
				m.Model["id"], itemName(m.Model), m.Model["amount"])
		default:
			fmt.Printf("[%s %v]\n", m.TypeTag, m.Model["id"])
		}
	}
}

func itemName(model map[string]any) any {
	item, ok := model["item"].(map[string]any)
	if !ok {
		return "?"
	}
	entity, ok := item["entity"].(map[string]any)
	if !ok {
		return "?"
	}
	return entity["name"]
}
