package port

import "slices"

// Polarity tells inputs and outputs apart when ports are handled generically.
type Polarity int

const (
	In Polarity = iota
	Out
)

// Port is the view shared by inputs and outputs.
type Port interface {
	Tag() Tag
	Polarity() Polarity
	Owner() string
}

// Output is a data or control-flow source owned by a node. It fans out to an
// ordered list of destination inputs.
type Output struct {
	Name  string
	Type  Tag
	Node  string
	Index int

	// Data is the live value produced by CPU evaluation.
	Data any

	to []*Input
}

// Input is a sink owned by a node. It references at most one upstream output.
type Input struct {
	Name  string
	Type  Tag
	Node  string
	Index int

	ref    *Output
	notify func(*Input)
}

// NewOutput creates an unconnected output.
func NewOutput(t Tag, name string) *Output {
	return &Output{Name: name, Type: t}
}

// NewInput creates an unconnected input.
func NewInput(t Tag, name string) *Input {
	return &Input{Name: name, Type: t}
}

func (o *Output) Tag() Tag           { return o.Type }
func (o *Output) Polarity() Polarity { return Out }
func (o *Output) Owner() string      { return o.Node }

func (i *Input) Tag() Tag           { return i.Type }
func (i *Input) Polarity() Polarity { return In }
func (i *Input) Owner() string      { return i.Node }

// To returns the destination inputs in connection order. The slice must not
// be modified by callers.
func (o *Output) To() []*Input {
	return o.to
}

// IndexOf returns the position of in within the destination list, or -1.
func (o *Output) IndexOf(in *Input) int {
	return slices.Index(o.to, in)
}

// OnChange installs the hook fired after a non-silent connect or a
// disconnect. Nodes use it to trigger change propagation.
func (i *Input) OnChange(fn func(*Input)) {
	i.notify = fn
}

// HasInput reports whether the input has an upstream reference.
func (i *Input) HasInput() bool {
	return i.ref != nil
}

// IsValid reports whether the input is connected and its upstream output
// currently carries data.
func (i *Input) IsValid() bool {
	return i.ref != nil && i.ref.Data != nil
}

// Reference returns the upstream output, or nil.
func (i *Input) Reference() *Output {
	return i.ref
}

// Data returns the upstream output's data, or nil when unconnected.
func (i *Input) Data() any {
	if i.ref == nil {
		return nil
	}
	return i.ref.Data
}

func (i *Input) changed() {
	if i.notify != nil {
		i.notify(i)
	}
}

// Connect links out to in and fires the input's change hook. It is a no-op
// returning false when the tags do not intersect.
func Connect(out *Output, in *Input) bool {
	return InsertAt(out, len(out.to), in, false)
}

// ConnectSilent links out to in without firing the change hook. It is used
// while a graph is being rebuilt.
func ConnectSilent(out *Output, in *Input) bool {
	return InsertAt(out, len(out.to), in, true)
}

// InsertAt links out to in, placing in at index within the destination list
// (appending when index is past the end). Any prior upstream of in is
// disconnected first.
func InsertAt(out *Output, index int, in *Input, silent bool) bool {
	if out == nil || in == nil || !out.Type.Intersects(in.Type) {
		return false
	}
	if in.ref != nil {
		detach(in.ref, in)
	}
	in.ref = out
	if index < 0 || index >= len(out.to) {
		out.to = append(out.to, in)
	} else {
		out.to = slices.Insert(out.to, index, in)
	}
	if !silent {
		in.changed()
	}
	return true
}

// ConnectPorts connects two ports regardless of argument order. It is a
// no-op when both ports have the same polarity.
func ConnectPorts(a, b Port) bool {
	if a.Polarity() == b.Polarity() {
		return false
	}
	out, ok := a.(*Output)
	if !ok {
		a, b = b, a
		out, ok = a.(*Output)
		if !ok {
			return false
		}
	}
	in, ok := b.(*Input)
	if !ok {
		return false
	}
	return Connect(out, in)
}

// Disconnect removes the link between out and in. It is a no-op when they
// are not connected.
func Disconnect(out *Output, in *Input) {
	if out == nil || in == nil || in.ref != out {
		return
	}
	detach(out, in)
	in.changed()
}

// DisconnectAll severs every destination of the output.
func (o *Output) DisconnectAll() {
	for len(o.to) > 0 {
		Disconnect(o, o.to[len(o.to)-1])
	}
}

// DisconnectAll severs the input's upstream link, if any.
func (i *Input) DisconnectAll() {
	if i.ref != nil {
		Disconnect(i.ref, i)
	}
}

func detach(out *Output, in *Input) {
	if idx := slices.Index(out.to, in); idx >= 0 {
		out.to = slices.Delete(out.to, idx, idx+1)
	}
	in.ref = nil
}
