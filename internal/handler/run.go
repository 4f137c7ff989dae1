package handler

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Run starts srv and stops it when ctx is done. It returns once the server
// has stopped; an error from either side is returned.
func Run(ctx context.Context, srv Server) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return srv.Start()
	})
	g.Go(func() error {
		<-ctx.Done()
		return srv.Stop()
	})
	return g.Wait()
}
