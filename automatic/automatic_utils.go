package automatic

// Computer-vs-computer experiment driver.

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/mvidalg/tavla/config"
)

// StartCompVCompGames plays numGames games between the two specs across
// a pool of workers and blocks until they finish. Per-turn CSV lines
// land in outfile (experiment_<stamp>.txt when empty). When the config
// names a sqlite database, every result is stored there too. Ctx
// cancellation stops feeding new games; games in flight run to their
// end.
func StartCompVCompGames(ctx context.Context, cfg *config.Config,
	specs [2]PlayerSpec, numGames, threads int, outfile string) (*Summary, error) {

	if threads <= 0 {
		threads = cfg.Int(config.KeyAutoplayThreads)
	}
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	if outfile == "" {
		outfile = cfg.String(config.KeyAutoplayLogFile)
	}
	if outfile == "" {
		outfile = fmt.Sprintf("experiment_%s.txt", time.Now().Format("20060102_150405"))
	}
	logfile, err := os.Create(outfile)
	if err != nil {
		return nil, err
	}

	var store *Store
	if dbPath := cfg.String(config.KeyAutoplayDB); dbPath != "" {
		if store, err = NewStore(dbPath); err != nil {
			logfile.Close()
			return nil, err
		}
		defer store.Close()
	}

	log.Info().Int("games", numGames).Int("threads", threads).
		Str("logfile", outfile).Msg("starting games")

	summary := NewSummary(specs)
	jobs := make(chan int, 100)
	logChan := make(chan string, 100)

	collectorDone := make(chan struct{})
	go func() {
		defer close(collectorDone)
		logfile.WriteString("game,turn,side,dice,elapsed_ms,moves\n")
		for msg := range logChan {
			logfile.WriteString(msg)
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	for t := 0; t < threads; t++ {
		g.Go(func() error {
			r, err := NewGameRunner(cfg, specs, logChan)
			if err != nil {
				return err
			}
			for idx := range jobs {
				res, err := r.PlayGame(idx)
				if err != nil {
					return err
				}
				summary.Add(res)
				if store != nil {
					if err := store.SaveResult(res); err != nil {
						return err
					}
				}
			}
			summary.AddSolveTimes(r.SolveTimes())
			return nil
		})
	}
	g.Go(func() error {
		defer close(jobs)
		for i := 1; i <= numGames; i++ {
			select {
			case jobs <- i:
			case <-gctx.Done():
				log.Info().Int("queued", i-1).Msg("stop signal, no more games")
				return nil
			}
			if i%100 == 0 {
				log.Debug().Int("queued", i).Msg("queued games")
			}
		}
		return nil
	})

	err = g.Wait()
	close(logChan)
	<-collectorDone
	logfile.Close()
	if err != nil {
		return nil, err
	}
	log.Info().Int("played", summary.Games()).Msg("all games finished")
	return summary, nil
}
