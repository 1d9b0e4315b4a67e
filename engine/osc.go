package engine

import (
	"context"
	"net"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/scgolang/osc"

	"go-drumpad/debug"
	"go-drumpad/pattern"
)

// OSC addresses understood by the pattern server
const (
	AddrHello    = "/drumpad/hello"
	AddrTrigger  = "/drumpad/trigger"
	AddrEvaluate = "/drumpad/evaluate"
	AddrHush     = "/drumpad/hush"
)

// sender is the part of an OSC connection the engine uses
type sender interface {
	Send(osc.Packet) error
	Close() error
}

// OSC drives an external live-coding pattern server over UDP. One-shots are
// sent as trigger messages, pattern text is evaluated remotely.
type OSC struct {
	addr    string
	session string

	mu    sync.Mutex
	conn  sender
	state State

	// swapped out in tests
	dial func(addr string) (sender, error)
}

// NewOSC creates an engine that talks to the server at addr (host:port)
func NewOSC(addr string) *OSC {
	return &OSC{
		addr:    addr,
		session: uuid.NewString(),
		state:   StatePending,
		dial:    dialUDP,
	}
}

func dialUDP(addr string) (sender, error) {
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, errors.Wrap(err, "resolve "+addr)
	}
	conn, err := osc.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, errors.Wrap(err, "dial "+addr)
	}
	return conn, nil
}

// Session identifies this process to the server
func (o *OSC) Session() string { return o.session }

// Init dials the server and announces the session
func (o *OSC) Init(ctx context.Context) error {
	conn, err := o.dial(o.addr)
	if err != nil {
		o.setState(StateUnavailable)
		return unavailable(err)
	}
	o.mu.Lock()
	o.conn = conn
	o.mu.Unlock()

	if err := o.send(AddrHello, osc.String(o.session)); err != nil {
		o.setState(StateUnavailable)
		return unavailable(err)
	}
	o.setState(StateReady)
	debug.Log("osc", "connected to %s session=%s", o.addr, o.session)
	return nil
}

func (o *OSC) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

func (o *OSC) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *OSC) Resume() error { return nil }

func (o *OSC) send(addr string, args ...osc.Argument) error {
	o.mu.Lock()
	conn := o.conn
	o.mu.Unlock()
	if conn == nil {
		return ErrNotReady
	}
	return conn.Send(osc.Message{Address: addr, Arguments: args})
}

// Trigger sends /drumpad/trigger sound bank code. The code is the one-shot
// rendering so servers that only evaluate can play it directly.
func (o *OSC) Trigger(sound, bank string) error {
	err := o.send(AddrTrigger,
		osc.String(sound),
		osc.String(bank),
		osc.String(pattern.OneShot(sound, bank)))
	if err != nil {
		return unavailable(err)
	}
	return nil
}

// Evaluate checks the code locally, then sends it for evaluation
func (o *OSC) Evaluate(code string) error {
	if err := pattern.Check(code); err != nil {
		return badPattern(err)
	}
	if err := o.send(AddrEvaluate, osc.String(code)); err != nil {
		return unavailable(err)
	}
	debug.Log("osc", "evaluate %q", code)
	return nil
}

// Stop hushes all lanes
func (o *OSC) Stop() error {
	if err := o.send(AddrHush); err != nil {
		return unavailable(err)
	}
	return nil
}

func (o *OSC) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.conn == nil {
		return nil
	}
	err := o.conn.Close()
	o.conn = nil
	return err
}
