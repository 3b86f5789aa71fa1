package chainlock

import "github.com/yanet-dataplane/hashtable/htcore/spinlock"

// ChunkToken identifies a primary chunk's lock as already held by the
// calling goroutine. Sweep passes one to its keep callback for the
// chunk currently being walked, and Guard.Token derives one from an
// outstanding Lookup. Passing a token into Insert, Lookup, or Remove
// via WithToken lets that call recognize a lock it would otherwise
// spin against forever and skip acquiring it. A zero ChunkToken
// matches no chunk.
type ChunkToken struct {
	lock *spinlock.Lock
}

// Option configures a single Insert, Lookup, or Remove call.
type Option func(*callOptions)

type callOptions struct {
	token ChunkToken
}

// WithToken passes tok, obtained from Guard.Token or from Sweep's keep
// callback, so the call it configures is treated as already holding
// the chunk tok identifies rather than acquiring that chunk's lock
// itself.
func WithToken(tok ChunkToken) Option {
	return func(o *callOptions) { o.token = tok }
}

func resolveOptions(opts []Option) callOptions {
	var o callOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o callOptions) holds(lock *spinlock.Lock) bool {
	return o.token.lock == lock
}
