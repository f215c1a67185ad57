package protocol

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknown is returned for a benchmark selector that names no protocol.
var ErrUnknown = errors.New("unknown benchmark")

// Info describes a registered protocol.
type Info struct {
	ID    int
	Name  string
	Title string
	build func(Options) Protocol
}

var registry = []Info{
	{ID: 1, Name: "cas", Title: casTitle, build: func(o Options) Protocol { return NewCAS(o) }},
	{ID: 2, Name: "read-write", Title: readWriteTitle, build: func(o Options) Protocol { return NewReadWrite(o) }},
	{ID: 3, Name: "msg-passing", Title: msgPassingTitle, build: func(o Options) Protocol { return NewMsgPassing(o) }},
	{ID: 4, Name: "mem", Title: memStreamTitle, build: func(o Options) Protocol { return NewMemStream(o) }},
}

// All lists the registered protocols in id order.
func All() []Info {
	out := make([]Info, len(registry))
	copy(out, registry)
	return out
}

// Lookup resolves a selector, either the numeric id or the name.
func Lookup(selector string) (Info, error) {
	key := strings.ToLower(strings.TrimSpace(selector))
	if id, err := strconv.Atoi(key); err == nil {
		for _, info := range registry {
			if info.ID == id {
				return info, nil
			}
		}
		return Info{}, fmt.Errorf("%w: %d", ErrUnknown, id)
	}
	for _, info := range registry {
		if info.Name == key {
			return info, nil
		}
	}
	return Info{}, fmt.Errorf("%w: %q", ErrUnknown, selector)
}

// New builds the protocol named by selector.
func New(selector string, opts Options) (Protocol, error) {
	info, err := Lookup(selector)
	if err != nil {
		return nil, err
	}
	return info.build(opts), nil
}
