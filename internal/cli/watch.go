package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	kfile "github.com/knadh/koanf/providers/file"

	"github.com/aretw0/skillgraph"
)

// settle lets editors finish writing before the document is re-read.
const settle = 100 * time.Millisecond

// RunWatch runs the document at opts.Ref and reruns it every time the file
// changes, until ctx is done. A change mid-run cancels the current skill.
func RunWatch(ctx context.Context, eng *skillgraph.Engine, opts RunOptions, out io.Writer) error {
	logger := eng.Logger()
	changes := make(chan error, 1)
	watcher := kfile.Provider(opts.Ref)
	err := watcher.Watch(func(_ any, err error) {
		select {
		case changes <- err:
		default:
		}
	})
	if err != nil {
		return fmt.Errorf("watch %s: %w", opts.Ref, err)
	}
	defer func() { _ = watcher.Unwatch() }()

	printSystemMessage(out, "Watching '%s'.", opts.Ref)
	for {
		runCtx, cancel := context.WithCancel(ctx)
		type outcome struct {
			res *RunResult
			err error
		}
		done := make(chan outcome, 1)
		go func() {
			res, err := RunOnce(runCtx, eng, opts)
			done <- outcome{res, err}
		}()

		select {
		case <-ctx.Done():
			cancel()
			<-done
			return nil
		case werr := <-changes:
			cancel()
			<-done
			if werr != nil {
				return werr
			}
			logger.Info("change detected, restarting", "path", opts.Ref)
		case o := <-done:
			cancel()
			if o.res != nil {
				if err := PrintResult(out, o.res, opts.JSON); err != nil {
					return err
				}
			}
			if o.err != nil && !errors.Is(o.err, context.Canceled) {
				logger.Error("run failed", "err", o.err)
				printSystemMessage(out, "Run failed: %v", o.err)
			}
			printSystemMessage(out, "Waiting for changes...")
			select {
			case <-ctx.Done():
				return nil
			case werr := <-changes:
				if werr != nil {
					return werr
				}
			}
		}
		printSystemMessage(out, "Change detected in '%s'.", opts.Ref)
		time.Sleep(settle)
	}
}
