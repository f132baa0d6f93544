package scheduler

import "context"

// Network reports device connectivity. Implementations are external
// collaborators (platform integration); AlwaysOnline is the default.
type Network interface {
	Online(ctx context.Context) bool
}

// Battery reports whether the battery is critically low. NeverLow is the
// default.
type Battery interface {
	Low(ctx context.Context) bool
}

type AlwaysOnline struct{}

func (AlwaysOnline) Online(context.Context) bool { return true }

type NeverLow struct{}

func (NeverLow) Low(context.Context) bool { return false }
