package client

import (
	"net/netip"

	iolib "basket/lib/io"
	"basket/transport"
	"basket/transport/tcp"
)

// CombineAddrFunc makes the address to dial from a resolved ip and a port.
type CombineAddrFunc func(ip netip.Addr, port uint16) transport.Addr

type Options struct {
	// CombineAddr defaults to [tcp.NewAddr].
	CombineAddr CombineAddrFunc

	// ChunkSize is the size of each read from the connection.
	ChunkSize uint
}

func (o Options) withDefaults() Options {
	if o.CombineAddr == nil {
		o.CombineAddr = tcp.NewAddr
	}
	if o.ChunkSize == 0 {
		o.ChunkSize = iolib.DefaultChunkSize
	}
	return o
}
