package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/leaderlog/internal/dashboard"
	"github.com/fyrsmithlabs/leaderlog/internal/storage"
)

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"ui"},
	Short:   "Open the interactive dashboard",
	Long: `Open a full-screen dashboard with weekly activity charts, the record
lists and on-demand coaching insights.

Keys:
  tab/shift+tab, 1-4  switch views
  j/k                 move the selection
  a                   add a record to the current list
  d                   delete the selected record
  g                   generate insights
  r                   refresh
  q                   quit

With the file backend, records added from another terminal show up
without a refresh.`,
	Args: cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
		ctx, cancel := context.WithCancel(a.ctx)
		defer cancel()

		opts := []dashboard.Option{
			dashboard.WithClock(now),
			dashboard.WithLogger(a.logger),
			dashboard.WithContext(ctx),
		}
		if changes := watchJournal(ctx, a); changes != nil {
			opts = append(opts, dashboard.WithChanges(changes))
		}

		return dashboard.Run(ctx, dashboard.NewModel(a.store, a.requester, opts...))
	}),
}

// watchJournal reloads the store whenever the state file is rewritten by
// another process and reports each reload on the returned channel. It returns
// nil for backends other than file, or if the watcher cannot start.
func watchJournal(ctx context.Context, a *app) <-chan error {
	fg, ok := a.gateway.(*storage.FileGateway)
	if !ok {
		return nil
	}

	w, err := storage.NewWatcher(fg.Path(), a.logger)
	if err != nil {
		a.logger.Warn(ctx, "journal watcher unavailable", zap.Error(err))
		return nil
	}
	if err := w.Start(ctx); err != nil {
		w.Stop()
		a.logger.Warn(ctx, "journal watcher unavailable", zap.Error(err))
		return nil
	}

	out := make(chan error)
	go func() {
		defer close(out)
		defer w.Stop()
		for range w.Changes() {
			changed, err := a.store.Reload(ctx, fg)
			if err == nil && !changed {
				continue
			}
			select {
			case out <- err:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
